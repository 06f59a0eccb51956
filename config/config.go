package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port                 string
	Timezone             string
	DBPath               string
	VarietyCSV           string
	ProtocolXLSX         string
	CategoryDefaultsPath string
	ResyncInterval       time.Duration
	EmbEndpoint          string
	EmbAPIKey            string
	EmbModel             string
	RequireAuth          bool
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("[cfg] No .env file found or error loading: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	resync := 1 * time.Hour
	if v := os.Getenv("RESYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			resync = d
		}
	}
	cfg := AppConfig{
		Port:                 get("PORT", "8080"),
		Timezone:             get("TZ", "UTC"),
		DBPath:               get("DB_PATH", "sprout.db"),
		VarietyCSV:           get("VARIETY_CSV", "./VarietyTimelines.csv"),
		ProtocolXLSX:         get("PROTOCOL_XLSX", "./CareProtocols.xlsx"),
		CategoryDefaultsPath: get("CATEGORY_DEFAULTS_PATH", "./CategoryDefaults.yaml"),
		ResyncInterval:       resync,
		EmbEndpoint:          get("EMB_ENDPOINT", ""),
		EmbAPIKey:            get("EMB_API_KEY", ""),
		EmbModel:             get("EMB_MODEL", ""),
		RequireAuth:          get("REQUIRE_AUTH", "false") == "true",
	}
	log.Printf("[cfg] port=%s db=%s defaults=%s resync=%s", cfg.Port, cfg.DBPath, cfg.CategoryDefaultsPath, cfg.ResyncInterval)
	return cfg
}
