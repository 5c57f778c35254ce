package config

import "go.uber.org/zap"

// NewLogger returns a development logger for "development" or an empty env
// and a production JSON logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
