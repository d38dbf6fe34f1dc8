// Package main is the entry point for the storefront telemetry API.
package main

import (
	"fmt"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront"
	"github.com/gaborage/go-bricks/app"
	"github.com/gaborage/go-bricks/logger"
)

func main() {
	// Create application instance with environment-based configuration
	application, log, err := app.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	modulesToLoad := getModulesToLoad()

	if err := registerModules(application, modulesToLoad, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register modules")
	}

	if err := application.Run(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
}

type ModuleConfig struct {
	Name    string
	Enabled bool
	Module  app.Module
}

func getModulesToLoad() []ModuleConfig {
	return []ModuleConfig{
		{
			Name:    "storefront",
			Enabled: true,
			Module:  storefront.NewModule(),
		},
	}
}

func registerModules(appInstance *app.App, modules []ModuleConfig, log logger.Logger) error {
	for _, mod := range modules {
		if !mod.Enabled {
			log.Info().Str("module", mod.Name).Msg("Module is disabled, skipping registration")
			continue
		}

		log.Info().Str("module", mod.Name).Msg("Registering module")
		if err := appInstance.RegisterModule(mod.Module); err != nil {
			return fmt.Errorf("failed to register module %s: %w", mod.Name, err)
		}
		log.Info().Str("module", mod.Name).Msg("Module registered successfully")
	}

	return nil
}
