package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. Production JSON output by default,
// human-readable console output in dev mode.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch mode {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	return cfg.Build()
}
