package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the application logger. Production config: JSON output,
// info level and above.
func NewLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
