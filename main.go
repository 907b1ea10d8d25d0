package main

import (
	"os"

	"github.com/classon/classon/internal/app"
	log "github.com/sirupsen/logrus"
)

const defaultConfigPath = "./config/application.yaml"

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			log.Warnf("ignoring LOG_LEVEL %q: %v", raw, err)
			return
		}
		log.SetLevel(level)
	}
}

func main() {
	configPath := defaultConfigPath
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		configPath = path
	}

	application, err := app.NewApplication(configPath)
	if err != nil {
		log.Fatalf("failed to start classon with config %s: %v", configPath, err)
	}
	if application.Storage() == "memory" {
		log.Warn("Running on in-memory storage, changes are lost on shutdown")
	}
	if err := application.Run(); err != nil {
		log.Fatalf("classon stopped: %v", err)
	}
}
