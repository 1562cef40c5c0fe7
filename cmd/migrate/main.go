package main

import (
	"ecobloom_api/internal/config" // Custom import path (Config)
	"ecobloom_api/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Apply the schema to the donation store
}
