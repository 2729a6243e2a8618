package config

import (
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE"`

	// Store
	StoreDriver       string        `envconfig:"STORE_DRIVER" default:"mysql"`
	DatabaseDSN       string        `envconfig:"DATABASE_DSN"`
	LocalStorePath    string        `envconfig:"LOCAL_STORE_PATH" default:"data/parking.json"`
	StoreProbeTimeout time.Duration `envconfig:"STORE_PROBE_TIMEOUT" default:"3s"`

	// Session
	JWTSecret  string        `envconfig:"JWT_SECRET"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	DashboardRefreshInterval time.Duration `envconfig:"DASHBOARD_REFRESH_INTERVAL" default:"30s"`
	Timezone                 string        `envconfig:"APP_TIMEZONE" default:"America/Bogota"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	OTelServiceName    string   `envconfig:"OTEL_SERVICE_NAME" default:"parking"`
}

// LoadEnv reads an optional .env file and then the process environment.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return env, err
	}
	env.StoreDriver = strings.ToLower(strings.TrimSpace(env.StoreDriver))
	if env.JWTSecret == "" {
		log.Println("[config] JWT_SECRET not set, sessions will not survive a restart")
		env.JWTSecret = randomSecret()
	}
	return env, nil
}

// Location resolves the operator's time zone, falling back to the host zone.
func (e Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		log.Printf("[config] unknown APP_TIMEZONE %q, using local time", e.Timezone)
		return time.Local
	}
	return loc
}

func randomSecret() string {
	return uuid.NewString() + uuid.NewString()
}
