package app

import (
	"context"
	"log"
	"time"

	"github.com/calebds/vaultive/internal/config"
	"github.com/calebds/vaultive/internal/core"
	db "github.com/calebds/vaultive/internal/core/database"
	"github.com/calebds/vaultive/internal/core/extraction"
	objectclient "github.com/calebds/vaultive/internal/core/object-client"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Dispatcher   *extraction.Dispatcher
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	extractionCfg := &extraction.Config{
		EngineBinary:  cfg.TesseractPath,
		TempDir:       cfg.TmpDir,
		DefaultLang:   cfg.OCRLang,
		EngineTimeout: time.Duration(cfg.OCRTimeoutSec) * time.Second,
	}
	manager := extraction.NewManager(dbClient, objClient, extractionCfg)
	dispatcher := extraction.NewDispatcher(dbClient, manager, cfg.OCRLang, cfg.OCRQueueSize)
	dispatcher.Start(ctx, cfg.OCRWorkers)
	log.Printf("Extraction pipeline ready (%d workers).", cfg.OCRWorkers)

	server := NewServer(cfg, dbClient, objClient, dispatcher)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Dispatcher:   dispatcher,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
