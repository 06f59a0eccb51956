package main

import (
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"sprout/config"
	"sprout/database"
	sproutMiddleware "sprout/pkg/middleware"
	"sprout/router"

	// Auth
	authCtrlImp "sprout/pkg/auth/controllerImp"

	// Plant
	plantCtrlImp "sprout/pkg/plant/controllerImp"
	plantRepoImp "sprout/pkg/plant/repositoryImp"

	// Variety
	varietyCtrlImp "sprout/pkg/variety/controllerImp"
	varietyRepoImp "sprout/pkg/variety/repositoryImp"
	varietySvcImp "sprout/pkg/variety/serviceImp"

	// Task
	taskCtrlImp "sprout/pkg/task/controllerImp"
	taskRepoImp "sprout/pkg/task/repositoryImp"

	// Activity
	activityCtrlImp "sprout/pkg/activity/controllerImp"
	activityRepoImp "sprout/pkg/activity/repositoryImp"
	activitySvcImp "sprout/pkg/activity/serviceImp"

	// Engine
	"sprout/pkg/defaults"
	"sprout/pkg/tasksync"
	syncCtrlImp "sprout/pkg/tasksync/controllerImp"

	// KB
	kbCtrlImp "sprout/pkg/kb/controllerImp"
	kbEmbedder "sprout/pkg/kb/embedder"
	kbRepoImp "sprout/pkg/kb/repositoryImp"
	kbServiceImp "sprout/pkg/kb/serviceImp"

	// Health
	healthCtrlImp "sprout/pkg/health/controllerImp"
)

func main() {
	// 1) Config
	cfg := config.Load()

	// 2) DB (sqlite) + automigrate
	db := database.OpenSQLite(cfg.DBPath)

	// 3) Repos
	plantRepo := plantRepoImp.New(db)
	varietyRepo := varietyRepoImp.New(db)
	taskRepo := taskRepoImp.New(db)
	activityRepo := activityRepoImp.New(db)

	// 4) Variety data files (timelines + protocols); warn-only, the server
	// still runs with whatever is already in the DB
	importer := varietySvcImp.NewImporter(varietyRepo)
	if _, err := os.Stat(cfg.VarietyCSV); err == nil {
		if n, err := importer.ImportTimelinesCSV(cfg.VarietyCSV); err != nil {
			log.Printf("[seed] timelines warn: %v", err)
		} else {
			log.Printf("[seed] %d varieties from %s", n, cfg.VarietyCSV)
		}
	}
	if _, err := os.Stat(cfg.ProtocolXLSX); err == nil {
		if n, err := importer.ImportProtocolsXLSX(cfg.ProtocolXLSX); err != nil {
			log.Printf("[seed] protocols warn: %v", err)
		} else {
			log.Printf("[seed] %d protocol entries from %s", n, cfg.ProtocolXLSX)
		}
	}

	// 5) Category defaults book + live reload
	book, err := defaults.LoadBook(cfg.CategoryDefaultsPath)
	if err != nil {
		log.Fatalf("category defaults: %v", err)
	}
	resolver := defaults.NewResolver(book)
	if stop, err := resolver.Watch(cfg.CategoryDefaultsPath); err != nil {
		log.Printf("[defaults] watch warn: %v", err)
	} else {
		defer stop()
	}

	// 6) Coordinator + periodic re-evaluation
	coord := tasksync.New(plantRepo, varietyRepo, taskRepo)
	defer coord.Close()
	stopTick := coord.StartTicker(cfg.ResyncInterval)
	defer stopTick()

	// 7) KB wiring — embedder optional, keyword search without it
	emb := kbEmbedder.New(cfg.EmbEndpoint, cfg.EmbAPIKey, cfg.EmbModel)
	kbRepo := kbRepoImp.New(db)
	kbSvc := kbServiceImp.New(kbRepo, emb)
	kbCtrl := kbCtrlImp.New(kbSvc)

	// 8) Services/Controllers
	activitySvc := activitySvcImp.New(activityRepo, plantRepo, varietyRepo, taskRepo, coord)

	plantCtrl := plantCtrlImp.New(plantRepo)
	varietyCtrl := varietyCtrlImp.New(varietyRepo)
	taskCtrl := taskCtrlImp.New(taskRepo, plantRepo)
	activityCtrl := activityCtrlImp.New(activitySvc, plantRepo)
	syncCtrl := syncCtrlImp.New(coord, plantRepo, varietyRepo, resolver, kbSvc)
	authCtrl := authCtrlImp.NewAuthController()
	hCtrl := healthCtrlImp.NewHealthCtrl(db)

	// 9) Echo + routes
	e := echo.New()
	e.Use(echoMiddleware.Recover())
	e.Use(sproutMiddleware.AuthGate(cfg.RequireAuth))
	r := router.New(
		e,
		plantCtrl,
		varietyCtrl,
		syncCtrl.Sync,
		syncCtrl.Defaults,
		taskCtrl,
		activityCtrl,
		authCtrl,
		kbCtrl,
		hCtrl,
	)

	// Arm the live feeds per user: first request from a uid subscribes the
	// coordinator to that user's plant/task feeds.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				coord.EnsureWatch(uid)
			}
			return next(c)
		}
	})

	// 10) Start
	log.Printf("listening on :%s", cfg.Port)
	if err := r.Start(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
