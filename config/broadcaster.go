package config

import (
	"fmt"
	"maps"
	"os"

	"github.com/unsuns06/ReplayTV-Stremio-sub000/models"
	"github.com/unsuns06/ReplayTV-Stremio-sub000/util"

	"gopkg.in/yaml.v3"
)

const broadcasterConfigPath = "broadcasters.yaml"

var broadcasterConfigs = make(map[string]*models.BroadcasterConfig)

func LoadBroadcasterConfigs(path string) error {
	broadcasterConfigs = make(map[string]*models.BroadcasterConfig)

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed reading config file: %w", err)
	}

	var rawConfig map[string]*models.BroadcasterConfig

	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return fmt.Errorf("failed parsing config file: %w", err)
	}
	maps.Copy(broadcasterConfigs, rawConfig)

	return nil
}

// GetBroadcasterConfig returns the section for the base host of rawURL
// (e.g. "tf1" for https://vod.tf1.fr/...), or nil.
func GetBroadcasterConfig(rawURL string) *models.BroadcasterConfig {
	host, err := util.ExtractBaseHost(rawURL)
	if err != nil {
		return nil
	}
	if config, exists := broadcasterConfigs[host]; exists && !config.IsDisabled {
		return config
	}
	return nil
}
