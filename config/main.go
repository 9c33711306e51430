package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Load reads .env (if any), the environment and broadcasters.yaml.
func Load() error {
	if err := godotenv.Load(); err != nil {
		zap.S().Debugf("no .env file loaded: %v", err)
	}
	if err := LoadEnv(); err != nil {
		return fmt.Errorf("failed loading env: %w", err)
	}
	if err := LoadBroadcasterConfigs(broadcasterConfigPath); err != nil {
		return fmt.Errorf("failed loading broadcaster configs: %w", err)
	}
	zap.S().Debugf("loaded %d broadcaster configs", len(broadcasterConfigs))
	return nil
}
