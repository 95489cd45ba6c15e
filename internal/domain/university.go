package domain

// Universities is the set of campus codes the service knows about. Profile
// completion requires one of these; anything else is rejected.
var Universities = map[string]struct{}{
	"CHUNGANG_SEOUL":                {},
	"DONGDUKWOMENS_WOLGOK":          {},
	"DONGGUK_SEOUL":                 {},
	"DUKSUNGWOMENS_SSANGMUNGEUNHWA": {},
	"EWHA":                          {},
	"HANSUNG":                       {},
	"HUFS_SEOUL":                    {},
	"KONKUK_SEOUL":                  {},
	"KOOKMIN_BUKAK":                 {},
	"KOREA_SEOUL":                   {},
	"KWANGWOON":                     {},
	"KYONGGI_SEOUL":                 {},
	"KYUNGHEE_SEOUL":                {},
	"MYONGJI_HUMANITIES":            {},
	"MYONGJI_NATURALSCIENCES":       {},
	"SAHMYOOK":                      {},
	"SANGMYUNG_SEOUL":               {},
	"SEJONG":                        {},
	"SEOKYEONG_JEONGNEUNG":          {},
	"SEOULTECH":                     {},
	"SNUE":                          {},
	"SNU_GWANAK":                    {},
	"SOGANG":                        {},
	"SOOKMYUNGWOMENS":               {},
	"SOONGSIL":                      {},
	"SUNGKONGHOE":                   {},
	"SUNGKYUNKWAN_HUMANITIES":       {},
	"SUNGSHINWOMENS_DONAM":          {},
	"SWU":                           {},
	"UOS":                           {},
	"YONSEI_SINCHON":                {},
}

// ValidUniversity reports whether the given campus code is known.
func ValidUniversity(code string) bool {
	_, ok := Universities[code]
	return ok
}
