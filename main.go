package main

import (
	"embed"

	"go-chess-desk/config"
	"go-chess-desk/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := logging.Init(false); err != nil {
		println("Error initializing logging:", err.Error())
	}

	// Create an instance of the app structure
	cm := config.NewConfigManager()
	if err := cm.Load(); err != nil {
		println("Error loading config:", err.Error())
	}

	app := NewApp(cm)

	// Create application with options
	err := wails.Run(&options.App{
		Title:  "go-chess-desk",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 24, G: 26, B: 32, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
