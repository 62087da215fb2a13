// Package designer boots the workflow designer: storage, the editing
// session and the HTTP surfaces.
package designer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/RealZimboGuy/gopherflow-designer/internal/config"
	"github.com/RealZimboGuy/gopherflow-designer/internal/controllers"
	"github.com/RealZimboGuy/gopherflow-designer/internal/migrations"
	"github.com/RealZimboGuy/gopherflow-designer/internal/repository"
	"github.com/RealZimboGuy/gopherflow-designer/internal/web"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/session"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"

	_ "github.com/go-sql-driver/mysql"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Start opens the configured store, restores the session and serves the
// API and the diagram page. initial is used when nothing is stored or
// GFLOW_RESET_ON_START is set. This call blocks until the HTTP server stops.
func Start(mux *http.ServeMux, initial domain.Workflow) error {
	ctx := context.Background()

	store, closeStore, err := OpenStore(ctx)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		return err
	}
	defer closeStore()

	key := config.GetSystemSettingString(config.STORAGE_KEY)
	reset := config.GetSystemSettingBool(config.RESET_ON_START)
	s := session.Open(ctx, store, key, initial, reset)

	if mux == nil {
		mux = http.NewServeMux()
	}
	auth := controllers.NewAuthController(config.GetSystemSettingString(config.API_KEY_HASH))
	if len(auth.APIKeyHash) == 0 {
		slog.Warn("GFLOW_API_KEY_HASH is not set, the API is open")
	}
	designerController := controllers.NewDesignerController(s, auth, config.GetSystemSettingString(config.SHARE_BASE_URL))
	designerController.RegisterRoutes(mux)
	webController := web.NewWebController(designerController)
	webController.RegisterRoutes(mux)

	addr := ":" + config.GetSystemSettingString(config.SERVER_WEB_PORT)
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		addr = v
	}
	slog.Info("Starting HTTP server", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("HTTP server failed", "error", err)
		return err
	}
	return nil
}

// OpenStore builds the document store selected by GFLOW_DATABASE_TYPE,
// running migrations for the SQL databases. The returned func releases it.
func OpenStore(ctx context.Context) (session.Store, func() error, error) {
	databaseType := config.GetSystemSettingString(config.DATABASE_TYPE)
	switch databaseType {
	case config.DATABASE_TYPE_POSTGRES:
		db, err := setupPostgresDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLDocumentStore(db), db.Close, nil
	case config.DATABASE_TYPE_MYSQL:
		db, err := setupMysqlDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLDocumentStore(db), db.Close, nil
	case config.DATABASE_TYPE_SQLLITE:
		db, err := setupSqlLiteDatabase()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLDocumentStore(db), db.Close, nil
	case config.DATABASE_TYPE_REDIS:
		client, err := setupRedis(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisDocumentStore(client, "designer:"), client.Close, nil
	case config.DATABASE_TYPE_MEMORY:
		slog.Info("Using in-memory store, the workflow is lost on exit")
		return repository.NewMemoryDocumentStore(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("GFLOW_DATABASE_TYPE must be one of POSTGRES, MYSQL, SQLLITE, REDIS, MEMORY, got %q", databaseType)
	}
}

func setupPostgresDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, errors.New("GFLOW_DATABASE_URL must be set when using the POSTGRES database type")
	}
	slog.Info("Using Postgres database")
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("postgres", dbURL); err != nil {
		return nil, fmt.Errorf("db migration failed: %w", err)
	}
	slog.Info("Opening Postgres database")
	return openAndPing("postgres", dbURL)
}

func setupSqlLiteDatabase() (*sql.DB, error) {
	fileName := config.GetSystemSettingString(config.DATABASE_SQLLITE_FILE_NAME)
	dbURL := "sqlite3://" + fileName
	slog.Info("Using SQLite database", "file", fileName)
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("sqllite3", dbURL); err != nil {
		return nil, fmt.Errorf("db migration failed: %w", err)
	}
	slog.Info("Opening SQLite database")
	return openAndPing("sqlite3", fileName)
}

func setupMysqlDatabase() (*sql.DB, error) {
	dbURL := config.GetSystemSettingString(config.DATABASE_URL)
	if dbURL == "" {
		return nil, errors.New("GFLOW_DATABASE_URL must be set when using the MYSQL database type")
	}
	if !strings.Contains(dbURL, "parseTime=true") {
		return nil, errors.New("GFLOW_DATABASE_URL must contain 'parseTime=true' for MySQL")
	}
	if !strings.HasPrefix(dbURL, "mysql://") {
		return nil, errors.New("GFLOW_DATABASE_URL must start with 'mysql://' for MySQL")
	}
	slog.Info("Using MySQL database")
	slog.Info("Running migrations")
	if err := runMigrationsFromEmbed("mysql", dbURL); err != nil {
		return nil, fmt.Errorf("db migration failed: %w", err)
	}
	slog.Info("Opening MySQL database")
	//remove mysql:// prefix from url
	return openAndPing("mysql", strings.Replace(dbURL, "mysql://", "", 1))
}

func openAndPing(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func setupRedis(ctx context.Context) (*redis.Client, error) {
	addr := config.GetSystemSettingString(config.REDIS_ADDR)
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	slog.InfoContext(ctx, "Connected to Redis", "addr", addr)
	return client, nil
}

func runMigrationsFromEmbed(migrationsPath string, dbURL string) error {
	sub, err := fs.Sub(migrations.FS, migrationsPath)
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// ParseLevel maps GFLOW_LOG_LEVEL values onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func SetupLogger(level slog.Level) {
	w := os.Stderr
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339Nano,
		}),
	))
}
