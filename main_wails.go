package main

import (
	"embed"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"fileeraser/internal/app"
	"fileeraser/internal/config"
	"fileeraser/internal/erase"
	"fileeraser/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

// main is entry point for the Wails application
func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := logging.New(cfg, false)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	engine, err := erase.NewEngine(cfg, logger)
	if err != nil {
		panic("Failed to initialize erase engine: " + err.Error())
	}
	coordinator := erase.NewCoordinator(engine, cfg, logger)

	appInstance := app.New(cfg, logger, coordinator)

	err = wails.Run(&options.App{
		Title:  "File Eraser",
		Width:  750,
		Height: 220,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour:  &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:         appInstance.Startup,
		OnDomReady:        appInstance.DomReady,
		OnBeforeClose:     appInstance.BeforeClose,
		OnShutdown:        appInstance.Shutdown,
		Frameless:         false,
		StartHidden:       false,
		HideWindowOnClose: false,
		Bind: []interface{}{
			appInstance,
		},
	})

	if err != nil {
		panic("Error when running application: " + err.Error())
	}
}
