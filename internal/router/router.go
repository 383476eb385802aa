package router

import (
	"fmt"
	"yatube/internal/config"
	"yatube/internal/handlers"
	"yatube/internal/logger"
	"yatube/internal/middleware"
	"yatube/internal/monitoring"
	"yatube/internal/services"
	"yatube/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// IndexCachePrefix is the cache key prefix of the main page.
const IndexCachePrefix = "index_page"

// New builds the engine: middleware, templates, static files and routes.
func New(cfg *config.Config) (*gin.Engine, error) {
	r := gin.New()
	r.Use(logger.Middleware(), monitoring.Middleware())
	r.Use(gin.CustomRecovery(handlers.Recovery))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("yatube_session", store))

	renderer, err := web.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.HTMLRender = renderer

	r.StaticFS("/static", web.Static())
	r.Static("/media", cfg.MediaRoot)
	r.GET("/metrics", monitoring.Handler())

	r.Use(middleware.LoadUser())
	r.NoRoute(handlers.NotFound)

	RegisterRoutes(r, cfg)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config) {
	postHandler := handlers.NewPostHandler(services.NewImageStore(cfg.MediaRoot))
	profileHandler := handlers.NewProfileHandler()
	authHandler := handlers.NewAuthHandler()
	adminHandler := handlers.NewAdminHandler()
	seoHandler := handlers.NewSEOHandler(cfg.SiteURL)

	// Public Routes
	r.GET("/", middleware.CachePage(cfg.IndexCacheTTL, IndexCachePrefix), postHandler.Index)
	r.GET("/group/:slug/", postHandler.GroupPosts)
	r.GET("/groups/", postHandler.Groups)
	r.GET("/users/", profileHandler.Users)
	r.GET("/search/", postHandler.Search)
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	r.GET("/about/author/", handlers.AboutAuthor)
	r.GET("/about/tech/", handlers.AboutTech)

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", authHandler.ShowSignup)
		auth.POST("/signup/", authHandler.Signup)
		auth.GET("/login/", authHandler.ShowLogin)
		auth.POST("/login/", authHandler.Login)
		auth.GET("/logout/", authHandler.Logout)
	}

	admin := r.Group("/admin")
	{
		admin.GET("/groups/new/", adminHandler.ShowGroupForm)
		admin.POST("/groups/new/", adminHandler.CreateGroup)
	}

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/new/", postHandler.NewPost)
		authorized.POST("/new/", postHandler.NewPost)
		authorized.GET("/follow/", profileHandler.FollowIndex)
		authorized.GET("/followees/", profileHandler.Followees)
		authorized.GET("/followers/", profileHandler.Followers)
	}

	// Profile and post pages sit under /:username/, after every fixed prefix.
	r.GET("/:username/", profileHandler.Profile)
	r.GET("/:username/:post_id/", postHandler.PostView)
	for _, method := range []string{"GET", "POST"} {
		authorized.Handle(method, "/:username/:post_id/edit/", postHandler.PostEdit)
		authorized.Handle(method, "/:username/:post_id/comment/", postHandler.AddComment)
		authorized.Handle(method, "/:username/follow/", profileHandler.ProfileFollow)
		authorized.Handle(method, "/:username/unfollow/", profileHandler.ProfileUnfollow)
	}
}
