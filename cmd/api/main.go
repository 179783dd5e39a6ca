package main

import (
	"os"

	"github.com/yigit/engageportal/internal/pkg/logger"
	"github.com/yigit/engageportal/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup failures are logged in detail where they happen
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
