package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/collections"
	"quotebuilder/commands"
	"quotebuilder/config"
	"quotebuilder/handlers"
	"quotebuilder/metrics"
)

func main() {
	cfg := config.Load()
	app := pocketbase.New()
	m := metrics.New(cfg.MetricsPrefix)

	app.RootCmd.AddCommand(commands.NewQuoteCommand(app, cfg))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if cfg.Seed {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		if err := collections.MigrateMissingJobNumbers(app); err != nil {
			log.Printf("Warning: job number migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		handlers.RegisterRoutes(se.Router, app, cfg, m)
		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
