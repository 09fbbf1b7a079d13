package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"lightingboq/commands"
	"lightingboq/config"
	"lightingboq/engine"
	"lightingboq/handlers"
)

func main() {
	app := pocketbase.New()

	// --config has to be known before any hook runs, so parse it eagerly
	// the same way PocketBase handles --dir.
	var configPath string
	app.RootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"_CONFIG"),
		"path to a lightingboq config file (toml, yaml or json)")
	app.RootCmd.ParseFlags(os.Args[1:])

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	var rt *backend
	start := func(_ context.Context) (*engine.Engine, error) {
		if rt == nil {
			r, err := bootstrap(app, cfg)
			if err != nil {
				return nil, err
			}
			rt = r
		}
		return rt.eng, nil
	}

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if rt != nil {
			rt.close()
		}
		return e.Next()
	})

	app.RootCmd.AddCommand(commands.NewExportCommand(start))

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		eng, err := start(context.Background())
		if err != nil {
			return err
		}
		symbol := cfg.CurrencySymbol

		api := se.Router.Group("/api")

		// ── Catalog ──────────────────────────────────────────────
		api.GET("/catalog/{kind}", handlers.HandleCatalogList(eng))
		api.GET("/catalog/products/{id}/compatible", handlers.HandleCompatible(eng))
		api.POST("/catalog/import", handlers.HandleCatalogImport(app, rt.purgeCatalog))

		// ── Project-scoped routes ────────────────────────────────
		project := api.Group("/projects/{projectId}")
		project.BindFunc(handlers.ProjectMiddleware(rt.directory))

		// Working set (scope from ?area=&sub_area=)
		project.GET("/working-set", handlers.HandleWorkingSet(eng, symbol))
		project.GET("/working-set/totals", handlers.HandleWorkingSetTotals(eng))
		project.POST("/working-set/lines", handlers.HandleAddProduct(eng, symbol))
		project.POST("/working-set/lines/{lineId}/drivers", handlers.HandleAttach(eng, engine.KindDriver, symbol))
		project.POST("/working-set/lines/{lineId}/accessories", handlers.HandleAttach(eng, engine.KindAccessory, symbol))
		project.PATCH("/working-set/lines/{lineId}", handlers.HandleUpdateQuantity(eng, symbol))
		project.DELETE("/working-set/lines/{lineId}", handlers.HandleRemoveLine(eng, symbol))

		// BOQ versions
		project.GET("/versions", handlers.HandleVersionList(eng, symbol))
		project.POST("/versions", handlers.HandleGenerate(eng, symbol))
		project.GET("/versions/{number}", handlers.HandleVersionView(eng, symbol))
		project.GET("/versions/{number}/summary", handlers.HandleVersionSummary(eng))
		project.POST("/versions/{number}/margin", handlers.HandleApplyMargin(eng, symbol))
		project.POST("/versions/{number}/approve", handlers.HandleApprove(eng, symbol))
		project.GET("/versions/{number}/export", handlers.HandleVersionExport(eng))

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/_/")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
