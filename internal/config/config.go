package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const MinSecretLen = 32

type Config struct {
	DBDriver     string
	DSN          string
	ServerPort   string
	JWTSecret    string
	RedisURL     string
	RedisChannel string
	Debug        bool
}

// Load reads the optional .env files and then the environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			log.WithField("file", file).Debug("env file not found, relying on environment variables")
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		DBDriver:     getenv("DB_DRIVER", "postgres"),
		ServerPort:   os.Getenv("SERVER_PORT"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		RedisURL:     os.Getenv("REDIS_URL"),
		RedisChannel: os.Getenv("REDIS_CHANNEL"),
	}
	if debug := os.Getenv("DEBUG"); debug != "" {
		parsed, err := strconv.ParseBool(debug)
		if err != nil {
			return Config{}, fmt.Errorf("DEBUG: %w", err)
		}
		cfg.Debug = parsed
	}

	required := []string{"SERVER_PORT"}
	switch cfg.DBDriver {
	case "postgres":
		required = append(required,
			"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_HOST", "POSTGRES_PORT")
	case "sqlite3":
		required = append(required, "SQLITE_PATH")
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", cfg.DBDriver)
	}
	for _, env := range required {
		if os.Getenv(env) == "" {
			return Config{}, fmt.Errorf("environment variable %s must be set", env)
		}
	}
	if len(cfg.JWTSecret) < MinSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLen)
	}

	if cfg.DBDriver == "postgres" {
		cfg.DSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("POSTGRES_HOST"), os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD"),
			os.Getenv("POSTGRES_DB"), os.Getenv("POSTGRES_PORT"))
	} else {
		cfg.DSN = os.Getenv("SQLITE_PATH")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
