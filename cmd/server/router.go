package main

import (
	"cmsmall/internal/image"
	"cmsmall/internal/middleware"
	"cmsmall/internal/page"
	"cmsmall/internal/site"
	"cmsmall/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type routerParams struct {
	frontendAddress string
	staticDir       string
	auth            *middleware.Auth
	users           *user.Handler
	pages           *page.Handler
	images          *image.Handler
	site            *site.Handler
}

func newRouter(p routerParams) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// cors setting, the session cookie needs credentials
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{p.frontendAddress},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	router.Use(middleware.ErrorHandler())

	router.Static("/static", p.staticDir)

	authed := p.auth.AuthMiddleWare()
	api := router.Group("/api")

	// Session routes
	api.POST("/sessions", p.users.Login)
	api.GET("/sessions/current", authed, p.users.Current)
	api.DELETE("/sessions/current", authed, p.users.Logout)
	api.GET("/users", authed, middleware.RequireAdmin(), p.users.ListUsers)

	// Page routes
	api.GET("/pages/front", p.pages.ShowFrontPages)
	api.GET("/pages/back", authed, p.pages.ShowBackPages)
	api.GET("/pages/:id", authed, p.pages.ShowPage)
	api.POST("/pages", authed, p.pages.Create)
	api.PUT("/pages/:id", authed, p.pages.Update)
	api.DELETE("/pages/:id", authed, p.pages.Delete)

	api.GET("/images", authed, p.images.List)

	api.GET("/titles", p.site.GetTitle)
	api.PUT("/titles", authed, middleware.RequireAdmin(), p.site.UpdateTitle)

	return router
}
