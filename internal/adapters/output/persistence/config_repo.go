package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/ports"
)

// ConfigRepository reads the plugin configuration from a JSON or YAML file
// and applies GSH_* environment overrides on top.
type ConfigRepository struct {
	filepath string
	mu       sync.RWMutex
}

var _ ports.ConfigRepository = (*ConfigRepository)(nil)

func NewConfigRepository(filepath string) *ConfigRepository {
	return &ConfigRepository{filepath: filepath}
}

func (r *ConfigRepository) Get(ctx context.Context) (*model.PluginConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := &model.PluginConfig{}
	if r.filepath != "" {
		data, err := os.ReadFile(r.filepath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := decode(r.filepath, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *model.PluginConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func validate(cfg *model.PluginConfig) error {
	for i, inst := range cfg.Instances {
		if inst.Host == "" {
			return fmt.Errorf("instances[%d]: host is required", i)
		}
		if inst.Port <= 0 || inst.Port > 65535 {
			return fmt.Errorf("instances[%d]: invalid port %d", i, inst.Port)
		}
	}
	for i, m := range cfg.DeviceNameMap {
		if m.Replace == "" {
			return fmt.Errorf("deviceNameMap[%d]: replace is required", i)
		}
	}
	return nil
}
