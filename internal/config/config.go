package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Two separate JWT secrets are used so an
// access token can never be replayed as a refresh token or vice versa.
type Config struct {
	Env                string   // application environment ("development", "production", "test")
	Port               string   // HTTP port to listen on
	DBUser             string   // database username
	DBPass             string   // database password (optional)
	DBHost             string   // database host address
	DBPort             string   // database port number
	DBName             string   // database name
	JWTAccessSecret    string   // secret used to sign access tokens
	JWTRefreshSecret   string   // secret used to sign refresh tokens
	AccessTTLMin       int      // access token time-to-live in minutes
	RefreshTTLDays     int      // refresh token time-to-live in days
	BcryptCost         int      // bcrypt cost for password hashing
	WhitelistedOrigins []string // origins allowed by CORS in production
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"),
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		JWTAccessSecret:    must("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   must("JWT_REFRESH_SECRET"),
		AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:     mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:         mustInt("BCRYPT_COST"),
		WhitelistedOrigins: splitList(getenv("WHITELISTED_ORIGINS", "https://docs.blog-api.classless.com")),
	}
}

// IsProduction reports whether the app runs in production.  Cookie
// security attributes and CORS strictness key off this.
func (c Config) IsProduction() bool { return c.Env == "production" }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
