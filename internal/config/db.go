package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	intdb "parking/internal/db"
	"parking/internal/repositories"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const defaultMySQLDSN = "root:@tcp(127.0.0.1:3306)/parking?charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"

// ConnectDB opens a pooled handle. It does not touch the network.
func ConnectDB(dialect intdb.Dialect, dsn string) (*sql.DB, error) {
	if dialect == intdb.MySQL {
		if dsn == "" {
			dsn = defaultMySQLDSN
		}
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		dsn = cfg.FormatDSN()
	}
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required for %s", dialect)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// OpenStores picks the backend once at startup. The remote database is used
// when it answers a ping within the probe timeout; otherwise the local JSON
// store takes over for the rest of the process lifetime.
func OpenStores(ctx context.Context, env Env) (repositories.Backend, error) {
	switch env.StoreDriver {
	case "local":
		return openLocal(env, "STORE_DRIVER=local")
	case "mysql", "":
		return openRemote(ctx, env, intdb.MySQL)
	case "postgres", "postgresql", "pgx":
		return openRemote(ctx, env, intdb.Postgres)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", env.StoreDriver)
	}
}

func openRemote(ctx context.Context, env Env, dialect intdb.Dialect) (repositories.Backend, error) {
	db, err := ConnectDB(dialect, env.DatabaseDSN)
	if err != nil {
		return openLocal(env, err.Error())
	}

	store := repositories.NewSQLStore(db, dialect)
	pctx, cancel := context.WithTimeout(ctx, env.StoreProbeTimeout)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		_ = db.Close()
		return openLocal(env, err.Error())
	}
	sctx, scancel := context.WithTimeout(ctx, 30*time.Second)
	defer scancel()
	if err := store.EnsureSchema(sctx); err != nil {
		_ = db.Close()
		return openLocal(env, "schema: "+err.Error())
	}

	log.Printf("[config] using %s store", dialect)
	return store, nil
}

func openLocal(env Env, reason string) (repositories.Backend, error) {
	store, err := repositories.OpenLocalStore(env.LocalStorePath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	log.Printf("[config] using local store at %s (%s)", env.LocalStorePath, reason)
	return store, nil
}
