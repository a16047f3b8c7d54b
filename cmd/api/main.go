package main

import (
	"context"
	"flag"
	"os"

	"github.com/yigit/campus/internal/pkg/logger"
	"github.com/yigit/campus/internal/server"
)

// @title Campus Scheduling API
// @version 1.0
// @description Semesters, course offerings, sections, instructor assignments and enrollment
// @termsOfService http://swagger.io/terms/

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	ctx := context.Background()

	srv, err := server.NewServer(ctx, *configPath)
	if err != nil {
		// NewServer logs the details of setup failures.
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
