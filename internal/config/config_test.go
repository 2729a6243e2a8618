package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	intdb "parking/internal/db"
	"parking/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", " Postgres ")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "postgres", env.StoreDriver)
	assert.Equal(t, "data/parking.json", env.LocalStorePath)
	assert.Equal(t, 12*time.Hour, env.SessionTTL)
	assert.Equal(t, 30*time.Second, env.DashboardRefreshInterval)
	assert.Equal(t, 3*time.Second, env.StoreProbeTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, env.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", env.JWTSecret)
}

func TestLoadEnvGeneratesSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Len(t, env.JWTSecret, 72)
}

func TestOpenStoresLocalDriver(t *testing.T) {
	env := Env{StoreDriver: "local", LocalStorePath: filepath.Join(t.TempDir(), "parking.json")}
	store, err := OpenStores(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, repositories.ModeLocal, store.Mode())
}

func TestOpenStoresFallsBackWhenRemoteIsDown(t *testing.T) {
	env := Env{
		StoreDriver:       "mysql",
		DatabaseDSN:       "root:@tcp(127.0.0.1:1)/parking",
		LocalStorePath:    filepath.Join(t.TempDir(), "parking.json"),
		StoreProbeTimeout: 500 * time.Millisecond,
	}
	store, err := OpenStores(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, repositories.ModeLocal, store.Mode())
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	_, err := OpenStores(context.Background(), Env{StoreDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnectDBForcesParseTime(t *testing.T) {
	db, err := ConnectDB(intdb.MySQL, "user:pw@tcp(db:3306)/parking")
	require.NoError(t, err)
	defer db.Close()

	_, err = ConnectDB(intdb.Postgres, "")
	assert.Error(t, err)
}
