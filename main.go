package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	intconfig "parking/internal/config"
	router "parking/internal/http"
	"parking/internal/http/handlers"
	"parking/internal/obs"
	"parking/internal/services"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	shutdownTelemetry := obs.Setup(env.OTelServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := intconfig.OpenStores(ctx, env)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	settings, err := services.LoadSettingsService(ctx, store)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	loc := env.Location()
	auth := services.NewAuthService(store, env.JWTSecret, env.SessionTTL)
	poller := services.NewDashboardPoller(services.TicketService{
		Store:    store,
		Settings: settings,
		Location: loc,
	}, env.DashboardRefreshInterval)
	session := services.NewSession(ctx, poller)
	defer session.Close()

	if err := session.SwitchView(services.ViewDashboard, false); err != nil {
		log.Fatalf("failed to start dashboard: %v", err)
	}

	r := router.NewRouter(env, handlers.New(handlers.Deps{
		Store:    store,
		Settings: settings,
		Auth:     auth,
		Poller:   poller,
		Session:  session,
		Location: loc,
	}))

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           otelhttp.NewHandler(r, env.OTelServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("parking API listening on %s (store=%s)", env.AppAddr, store.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown failed: %v", err)
	}
	log.Println("server stopped")
}
