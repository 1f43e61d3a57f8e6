package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	ImgBBAPIKey string
	SessionFile string
	AppEnv      string
	Platform    string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:  os.Getenv("API_BASE_URL"),
		ImgBBAPIKey: os.Getenv("IMGBB_API_KEY"),
		SessionFile: os.Getenv("SESSION_FILE"),
		AppEnv:      os.Getenv("APP_ENV"),
		Platform:    os.Getenv("PLATFORM"),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}

	return cfg
}

// IsWeb reports whether the client runs on a browser-like platform
// without an enforced permission model.
func (c *Config) IsWeb() bool {
	return c.Platform == "web"
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storekeep-session.json"
	}
	return dir + "/storekeep/session.json"
}
