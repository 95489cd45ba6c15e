package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	JWT      JWTConfig      `env:",prefix=JWT_"`
	Kakao    KakaoConfig    `env:",prefix=KAKAO_"`
	Apple    AppleConfig    `env:",prefix=APPLE_"`
	Google   GoogleConfig   `env:",prefix=GOOGLE_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Admin    AdminConfig    `env:",prefix=ADMIN_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=mapda"`
	Password string `env:"PASSWORD,default=mapda_password"`
	DBName   string `env:"DB,default=mapda_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=15m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=7d"`
	AdminTokenExpiry   Duration `env:"ADMIN_TOKEN_EXPIRY,default=30d"`
}

// KakaoConfig holds the admin key used for server-side unlink calls. Login
// itself carries no server credential: the client talks to Kakao and
// forwards the verified profile payload.
type KakaoConfig struct {
	AdminKey string `env:"ADMIN_KEY,default="`
}

type AppleConfig struct {
	ClientID       string `env:"CLIENT_ID,default="`
	TeamID         string `env:"TEAM_ID,default="`
	KeyID          string `env:"KEY_ID,default="`
	PrivateKeyPath string `env:"PRIVATE_KEY_PATH,default="`
	RedirectURI    string `env:"REDIRECT_URI,default=https://api.mapda.site/login/apple"`
}

type GoogleConfig struct {
	// ClientIDs is the allow-list of accepted aud values; native and web
	// client ids of the same project all land here.
	ClientIDs []string `env:"CLIENT_IDS,default="`
}

// AuthConfig drives the authentication middleware's public-path allow-list.
type AuthConfig struct {
	PublicPaths        []string `env:"PUBLIC_PATHS,default=/login/kakao,/login/google,/login/apple,/admin/login,/health,/metrics"`
	PublicPathPrefixes []string `env:"PUBLIC_PATH_PREFIXES,default=/docs,/redoc,/openapi.json,/static,/auth,/proxy"`
}

// IsPublic reports whether the path skips bearer authentication.
func (a AuthConfig) IsPublic(path string) bool {
	for _, p := range a.PublicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range a.PublicPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

type AdminConfig struct {
	UUID         string `env:"UUID,default=ADMIN000000000000000"`
	PasswordHash string `env:"PASSWORD_HASH,default="`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	SearchCacheTTL    Duration `env:"SEARCH_CACHE_TTL,default=1h"`
	ProviderTimeout   Duration `env:"PROVIDER_TIMEOUT,default=10s"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	return &config, nil
}
