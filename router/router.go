package router

import (
	"github.com/labstack/echo/v4"

	"sprout/pkg/middleware"
)

func New(
	e *echo.Echo,
	plantCtrl interface {
		Create(echo.Context) error
		Get(echo.Context) error
		List(echo.Context) error
		ConfirmStage(echo.Context) error
		Deactivate(echo.Context) error
	},
	varietyCtrl interface {
		Create(echo.Context) error
		Get(echo.Context) error
		List(echo.Context) error
	},
	syncPlant func(echo.Context) error,
	plantDefaults func(echo.Context) error,
	taskCtrl interface {
		ListForPlant(echo.Context) error
		ListForUser(echo.Context) error
		Patch(echo.Context) error
	},
	activityCtrl interface {
		Create(echo.Context) error
		Bulk(echo.Context) error
		List(echo.Context) error
		Delete(echo.Context) error
	},
	authCtrl interface {
		DevLogin(echo.Context) error
		WhoAmI(echo.Context) error
	},
	kbCtrl interface {
		IngestText(echo.Context) error
		IngestURL(echo.Context) error
		Search(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.Use(middleware.DevLogin())
	api := e.Group("")

	api.GET("/whoami", authCtrl.WhoAmI)
	api.GET("/devlogin", authCtrl.DevLogin)
	e.GET("/health", healthCtrl.Health)

	// KB endpoints
	api.POST("/kb/ingest", kbCtrl.IngestText)
	api.POST("/kb/ingest/url", kbCtrl.IngestURL)
	api.GET("/kb/search", kbCtrl.Search)

	api.POST("/varieties", varietyCtrl.Create)
	api.GET("/varieties", varietyCtrl.List)
	api.GET("/varieties/:id", varietyCtrl.Get)

	api.POST("/plants", plantCtrl.Create)
	api.GET("/plants", plantCtrl.List)
	api.GET("/plants/:id", plantCtrl.Get)
	api.PATCH("/plants/:id/stage", plantCtrl.ConfirmStage)
	api.DELETE("/plants/:id", plantCtrl.Deactivate)

	g := e.Group("/plants")
	g.POST("/:id/sync", syncPlant)
	g.GET("/:id/defaults", plantDefaults)

	api.GET("/plants/:id/tasks", taskCtrl.ListForPlant)
	api.GET("/tasks", taskCtrl.ListForUser)
	api.PATCH("/tasks/:task_id", taskCtrl.Patch)

	api.POST("/plants/:id/activities", activityCtrl.Create)
	api.POST("/plants/:id/activities/bulk", activityCtrl.Bulk)
	api.GET("/plants/:id/activities", activityCtrl.List)
	api.DELETE("/activities/:activity_id", activityCtrl.Delete)

	return e
}
