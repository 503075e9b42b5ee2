// Package router builds the Echo instance: global middleware in order,
// the error handler, system routes and the versioned API.
package router

import (
	"net/http"

	"github.com/deppfellow/menu-api/internal/handler"
	"github.com/deppfellow/menu-api/internal/middleware"
	"github.com/deppfellow/menu-api/internal/server"
	"github.com/deppfellow/menu-api/internal/service"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// /api/v1/item/ and /api/v1/item are the same resource.
	router.Pre(echoMiddleware.RemoveTrailingSlash())

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	if !services.Auth.Enabled {
		s.Logger.Warn().Msg("auth.secret_key is empty, write routes are not authenticated")
	}

	v1 := router.Group("/api/v1")
	registerItemRoutes(v1, h, middlewares.Auth.Optional())
	registerSectionRoutes(v1, h, middlewares.Auth.Optional())

	return router
}

func registerItemRoutes(g *echo.Group, h *handler.Handlers, auth echo.MiddlewareFunc) {
	g.GET("/item", handler.Handle(h.Item.ListItems, http.StatusOK))
	g.POST("/item", handler.Handle(h.Item.CreateItem, http.StatusCreated), auth)
	g.GET("/item/:id", handler.Handle(h.Item.GetItem, http.StatusOK))
	g.PUT("/item/:id", handler.Handle(h.Item.UpdateItem, http.StatusOK), auth)
	g.DELETE("/item/:id", handler.HandleNoContent(h.Item.DeleteItem, http.StatusNoContent), auth)

	g.GET("/item_small", handler.Handle(h.Item.ListSmallItems, http.StatusOK))

	g.GET("/item_action/:id", handler.Handle(h.Item.GetItemAction, http.StatusOK))
	g.POST("/item_action/:id", handler.Handle(h.Item.ApplyItemAction, http.StatusOK), auth)
}

func registerSectionRoutes(g *echo.Group, h *handler.Handlers, auth echo.MiddlewareFunc) {
	g.POST("/section", handler.Handle(h.Section.CreateSection, http.StatusCreated), auth)
	g.GET("/section/:id", handler.Handle(h.Section.GetSection, http.StatusOK))
}
