package api

import (
	"log"
	stdhttp "net/http"

	intconfig "parking/internal/config"
	h "parking/internal/http/handlers"
	"parking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hd *h.Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger("/api/health"),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.AuthOptional(hd.Auth),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	admin := middleware.RequireAdmin(hd.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)
		api.GET("/store-check", hd.StoreCheck)
		api.GET("/routes", h.Routes)

		// Tickets
		tickets := api.Group("/tickets")
		tickets.POST("/quote", hd.QuoteTicket)
		tickets.POST("", hd.CreateTicket)
		tickets.GET("", hd.ListTickets)
		tickets.GET("/:id", hd.GetTicket)
		tickets.POST("/:id/settle", hd.SettleTicket)
		tickets.GET("/:id/receipt", hd.GetTicketReceipt)

		// Dashboard & session
		api.GET("/dashboard", hd.GetDashboard)
		api.POST("/dashboard/refresh", hd.RefreshDashboard)
		api.PUT("/session/view", hd.SwitchView)

		// Reports
		reports := api.Group("/reports")
		reports.GET("", hd.GetReport)
		reports.GET("/export", hd.ExportReport)

		// Settings
		api.GET("/settings", hd.GetSettings)
		api.PUT("/settings", admin, hd.UpdateSettings)

		// Auth
		auth := api.Group("/auth")
		auth.GET("/status", hd.AuthStatus)
		auth.POST("/setup", hd.SetupAdmin)
		auth.POST("/login", hd.Login)
		auth.POST("/logout", hd.Logout)
		auth.PUT("/credentials", admin, hd.UpdateCredentials)

		// Admin
		api.POST("/admin/reset", admin, hd.ResetData)
	}

	h.SetRouter(r)
	return r
}
