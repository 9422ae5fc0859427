package main

import (
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
