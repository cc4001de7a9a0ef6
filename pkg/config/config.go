package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                     string
	DatabaseURL              string
	JWTSecretKey             string
	JWTAlgorithm             string
	AccessTokenExpireMinutes int
	CORSAllowOrigins         string
}

// Load reads environment variables, optionally from a .env file if present.
// JWT_SECRET_KEY is the only required value; there is no safe default for it.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		JWTSecretKey:             os.Getenv("JWT_SECRET_KEY"),
		JWTAlgorithm:             getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenExpireMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		CORSAllowOrigins:         getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
	}
	if cfg.JWTSecretKey == "" {
		return Config{}, errors.New("JWT_SECRET_KEY is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}
	return cfg, nil
}

// dsnFromParts assembles a postgres URL from the individual DB_* variables,
// for deployments that configure the database piecewise rather than with a
// single DATABASE_URL.
func dsnFromParts() string {
	user := os.Getenv("DB_USER")
	if user == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, os.Getenv("DB_PASSWORD")),
		Host:   getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432"),
		Path:   "/" + getEnv("DB_NAME", "accounts"),
	}
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
