package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the sync service. Everything is
// sourced from environment variables; a local .env file is honored when
// present.
type Config struct {
	// InventoryDatabaseURL points at the relational inventory (read-only
	// source of truth, plus the vpn_sync_status table owned by this service).
	InventoryDatabaseURL string

	// Neo4j connection settings for the topology graph.
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
}

func Load() (*Config, error) {
	// Best effort; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		InventoryDatabaseURL: getEnv("INVENTORY_DATABASE_URL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", ""),
		Neo4jUser:            getEnv("NEO4J_USER", ""),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:        getEnv("NEO4J_DATABASE", "neo4j"),
		MetricsListenAddr:    getEnv("METRICS_LISTEN_ADDR", ":9108"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ServiceName:          getEnv("SERVICE_NAME", "vpngraph-sync"),
	}

	return cfg, nil
}

// Validate reports every missing required setting in a single error. A
// failure here is fatal before any connection is attempted.
func (c *Config) Validate() error {
	var missing []string
	if c.InventoryDatabaseURL == "" {
		missing = append(missing, "INVENTORY_DATABASE_URL")
	}
	if c.Neo4jURI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		missing = append(missing, "NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
