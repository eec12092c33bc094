package config // package config loads application configuration from environment variables

import (
	"os" // os provides access to environment variables

	"github.com/joho/godotenv" // optional .env file for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only JWT_SECRET is mandatory; everything else
// falls back to a local development default.
type Config struct {
	Env                string // application environment (e.g. "dev", "prod")
	Port               string // HTTP port to listen on
	DBUser             string // database username
	DBPass             string // database password (optional)
	DBHost             string // database host address
	DBPort             string // database port number
	DBName             string // database name
	JWTSecret          string // secret used to sign JWTs
	AccessTTLMin       int    // access token time‑to‑live in minutes (24h by default)
	RefreshTTLDays     int    // refresh token time‑to‑live in days
	BcryptCost         int    // bcrypt cost for password hashing
	SeedOnStart        bool   // insert demonstration rows into an empty database
	DiagnosticsEnabled bool   // mount unauthenticated diagnostic routes
	LogLevel           string // logrus level name
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when
// present; real environment variables always win over it.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:                envStr("APP_ENV", "dev"),
		Port:               envStr("APP_PORT", "3000"),
		DBUser:             envStr("DB_USER", "root"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             envStr("DB_HOST", "127.0.0.1"),
		DBPort:             envStr("DB_PORT", "3306"),
		DBName:             envStr("DB_NAME", "ecommerce"),
		JWTSecret:          must("JWT_SECRET"),
		AccessTTLMin:       envInt("ACCESS_TOKEN_TTL_MIN", 24*60),
		RefreshTTLDays:     envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:         envInt("BCRYPT_COST", 10),
		SeedOnStart:        envBool("SEED_ON_START", true),
		DiagnosticsEnabled: envBool("DIAGNOSTICS_ENABLED", false),
		LogLevel:           envStr("LOG_LEVEL", "info"),
	}
}
