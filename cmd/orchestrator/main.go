package main

import (
	"fmt"
	"log"
	"net/http"

	"bizflow/apps/orchestrator/internal/app"
	"bizflow/apps/orchestrator/internal/config"
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/seed"
)

func main() {
	if path, loaded, err := loadEnvFile(); err != nil {
		log.Printf("env file %s load failed: %v", path, err)
	} else if loaded > 0 {
		log.Printf("env file %s loaded %d entries", path, loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if cfg.SeedFile != "" {
		store, err := docstore.NewStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("init store failed: %v", err)
		}
		summary, err := seed.Load(store, cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed load failed: %v", err)
		}
		log.Printf("seed loaded companies=%d leads=%d workflow_configs=%d",
			summary.Companies, summary.Leads, summary.WorkflowConfigs)
	}

	srv, err := app.NewServer(cfg)
	if err != nil {
		log.Fatalf("init server failed: %v", err)
	}
	defer srv.Close()

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	log.Printf("orchestrator listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatalf("listen failed: %v", err)
	}
}
