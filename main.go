package main

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/collections"
	"quotedesk/config"
	"quotedesk/handlers"
)

func main() {
	app := pocketbase.New()

	cfg := config.RegisterFlags(app.RootCmd.PersistentFlags())
	app.RootCmd.AddCommand(newCalcCommand(cfg))

	// Create collections, seed the demo catalog and repair derived prices on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		collections.Setup(app)
		if cfg.SeedDemoData {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		if n, err := collections.MigrateDerivedPrices(app); err != nil {
			log.Printf("Warning: derived price migration failed: %v", err)
		} else if n > 0 {
			app.Logger().Info("repaired derived prices", "records", n)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Calculators ──────────────────────────────────────────
		se.Router.POST("/calc/price", handlers.HandleCalcPrice(app))
		se.Router.POST("/calc/msp-quote", handlers.HandleCalcMSPQuote(app))
		se.Router.POST("/calc/labor-budget", handlers.HandleCalcLaborBudget(app))

		// ── MSP offerings, service levels, options ───────────────
		se.Router.GET("/msp-offerings", handlers.HandleOfferingList(app))
		se.Router.POST("/msp-offerings", handlers.HandleOfferingCreate(app))
		se.Router.GET("/msp-offerings/{id}", handlers.HandleOfferingGet(app))
		se.Router.PUT("/msp-offerings/{id}", handlers.HandleOfferingUpdate(app))
		se.Router.DELETE("/msp-offerings/{id}", handlers.HandleOfferingDelete(app))
		se.Router.POST("/msp-offerings/{id}/service-levels", handlers.HandleServiceLevelCreate(app))
		se.Router.PUT("/service-levels/{id}", handlers.HandleServiceLevelUpdate(app))
		se.Router.DELETE("/service-levels/{id}", handlers.HandleServiceLevelDelete(app))
		se.Router.POST("/service-levels/{id}/options", handlers.HandleOptionCreate(app))
		se.Router.PUT("/options/{id}", handlers.HandleOptionUpdate(app))
		se.Router.DELETE("/options/{id}", handlers.HandleOptionDelete(app))

		// ── Labor catalog ────────────────────────────────────────
		se.Router.GET("/labor-items", handlers.HandleLaborItemList(app))
		se.Router.POST("/labor-items", handlers.HandleLaborItemCreate(app))
		se.Router.GET("/labor-items/template", handlers.HandleLaborItemTemplate(app))
		se.Router.POST("/labor-items/import", handlers.HandleLaborItemImport(app))
		se.Router.PUT("/labor-items/{id}", handlers.HandleLaborItemUpdate(app))
		se.Router.DELETE("/labor-items/{id}", handlers.HandleLaborItemDelete(app))
		se.Router.GET("/lookups", handlers.HandleLookups())

		// ── Solution blueprints ──────────────────────────────────
		se.Router.GET("/solution-blueprints", handlers.HandleBlueprintList(app))
		se.Router.POST("/solution-blueprints", handlers.HandleBlueprintCreate(app, cfg))
		se.Router.GET("/solution-blueprints/{id}", handlers.HandleBlueprintGet(app))
		se.Router.PUT("/solution-blueprints/{id}", handlers.HandleBlueprintUpdate(app, cfg))
		se.Router.DELETE("/solution-blueprints/{id}", handlers.HandleBlueprintDelete(app))
		se.Router.POST("/solution-blueprints/{id}/clone", handlers.HandleBlueprintClone(app, cfg))
		se.Router.GET("/solution-blueprints/{id}/export/excel", handlers.HandleBlueprintExportExcel(app, cfg))

		// ── Quotes ───────────────────────────────────────────────
		se.Router.GET("/quotes", handlers.HandleQuoteList(app))
		se.Router.POST("/quotes/msp", handlers.HandleQuoteCreateMSP(app, cfg))
		se.Router.POST("/quotes/labor", handlers.HandleQuoteCreateLabor(app, cfg))
		se.Router.GET("/quotes/{id}", handlers.HandleQuoteGet(app))
		se.Router.DELETE("/quotes/{id}", handlers.HandleQuoteDelete(app))
		se.Router.POST("/quotes/{id}/status", handlers.HandleQuoteStatus(app))
		se.Router.GET("/quotes/{id}/summary", handlers.HandleQuoteSummary(app, cfg))
		se.Router.GET("/quotes/{id}/export/pdf", handlers.HandleQuoteExportPDF(app, cfg))
		se.Router.GET("/quotes/{id}/export/excel", handlers.HandleQuoteExportExcel(app, cfg))

		se.Router.GET("/{$}", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/quotes")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
