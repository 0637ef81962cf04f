package ports

import (
	"context"

	"hap-gsh-bridge/internal/domain/model"
)

type ConfigRepository interface {
	Get(ctx context.Context) (*model.PluginConfig, error)
}
