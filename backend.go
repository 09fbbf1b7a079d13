package main

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"

	"lightingboq/collections"
	"lightingboq/config"
	"lightingboq/engine"
	"lightingboq/services"
	"lightingboq/stores"
)

// backend holds the engine and the stores behind it for one process.
type backend struct {
	eng       *engine.Engine
	catalog   *stores.CachedCatalog
	directory engine.ProjectDirectory
	closers   []func() error
}

// bootstrap prepares the PocketBase schema and data, then builds the engine
// over the configured store backends.
func bootstrap(app core.App, cfg config.Config) (*backend, error) {
	if err := collections.Setup(app); err != nil {
		return nil, fmt.Errorf("setup collections: %w", err)
	}
	if err := collections.MigrateProjectInquiryModes(app); err != nil {
		log.Printf("Warning: inquiry mode migration failed: %v", err)
	}
	if cfg.Seed {
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
	}

	rt := &backend{directory: stores.NewPBProjects(app)}

	pbCatalog := stores.NewPBCatalog(app)
	rt.catalog = stores.NewCachedCatalog(pbCatalog, cfg.Catalog.CacheSize, cfg.Catalog.CacheTTL)

	var sets engine.WorkingSetStore
	switch cfg.WorkingSets.Backend {
	case config.BackendBadger:
		b, err := stores.OpenBadgerWorkingSets(cfg.WorkingSets.BadgerPath)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, b.Close)
		sets = b
		log.Printf("backend: working sets stored in badger at %s", cfg.WorkingSets.BadgerPath)
	default:
		sets = stores.NewMemoryWorkingSets()
	}

	var versions engine.VersionStore
	switch cfg.Versions.Backend {
	case config.BackendPostgres:
		g, err := stores.OpenGormVersions(cfg.Versions.PostgresDSN)
		if err != nil {
			rt.close()
			return nil, err
		}
		versions = g
		log.Printf("backend: BOQ versions stored in postgres")
	default:
		versions = stores.NewPBVersions(app)
	}

	rt.eng = engine.New(rt.catalog, sets, versions,
		engine.WithValidationCatalog(pbCatalog),
		engine.WithDirectory(rt.directory),
		engine.WithRenderer(services.NewRenderer(cfg.CompanyName)),
	)
	return rt, nil
}

// purgeCatalog drops cached catalog reads after an import.
func (rt *backend) purgeCatalog() {
	rt.catalog.Purge()
}

func (rt *backend) close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			log.Printf("backend: close: %v", err)
		}
	}
	rt.closers = nil
}
