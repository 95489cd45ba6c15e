package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mapda-dev/mapda-api/internal/dto"
)

func (s *Suite) seedPlaces(university string, names ...string) {
	for _, name := range names {
		_, err := s.Postgres.DB.Exec(
			`INSERT INTO places_data (place_name, university, status) VALUES ($1, $2, 'Active')`,
			name, university,
		)
		s.Require().NoError(err)
	}
}

func (s *Suite) searchPlaces(accessToken, keyword string) dto.PlaceSearchResponse {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/search/place?keyword="+keyword, nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var searchResp dto.PlaceSearchResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&searchResp))
	return searchResp
}

func (s *Suite) TestSearchPlace() {
	_, login := s.kakaoLogin("2000001")
	s.completeRegistration(login.AccessToken)

	s.seedPlaces("YONSEI_SINCHON", "Central Library", "Engineering Library", "Student Union")
	s.seedPlaces("KOREA_SEOUL", "Anam Library")

	result := s.searchPlaces(login.AccessToken, "Library")

	s.Equal("Library", result.Keyword)
	s.ElementsMatch([]string{"Central Library", "Engineering Library"}, result.Results)
}

func (s *Suite) TestSearchPlace_CachedResultSurvivesRowDeletion() {
	_, login := s.kakaoLogin("2000002")
	s.completeRegistration(login.AccessToken)

	s.seedPlaces("YONSEI_SINCHON", "Central Library")

	first := s.searchPlaces(login.AccessToken, "Central")
	s.Require().Len(first.Results, 1)

	// The second identical query is answered from the cache, so removing the
	// row does not change the response until the TTL expires.
	_, err := s.Postgres.DB.Exec(`DELETE FROM places_data WHERE place_name = 'Central Library'`)
	s.Require().NoError(err)

	second := s.searchPlaces(login.AccessToken, "Central")
	s.Equal(first.Results, second.Results)
}

func (s *Suite) TestSearchPlace_MissingKeyword() {
	_, login := s.kakaoLogin("2000003")
	s.completeRegistration(login.AccessToken)

	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/search/place", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", login.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
