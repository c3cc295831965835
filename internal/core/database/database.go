package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/frahmantamala/salary-simulator/db/migrations"
	"github.com/frahmantamala/salary-simulator/internal"
	referenceDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/reference"
	simulationDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/simulation"
	userDatamodel "github.com/frahmantamala/salary-simulator/internal/core/datamodel/user"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const migrationTable = "schema_migrations"

// DB is the data-access handle passed to every repository. Gorm and sqlx
// share one connection pool.
type DB struct {
	Gorm   *gorm.DB
	SQLX   *sqlx.DB
	Driver string
}

// Open connects to the configured store and verifies the connection.
func Open(cfg internal.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case internal.DriverPostgres, "":
		// gorm and sqlx share the pgx stdlib pool
		conn, err := sql.Open("pgx", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to open pgx connection: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: conn})
	case internal.DriverSQLite:
		dialector = sqlite.Open(cfg.Source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := New(gormDB, cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB := db.SQLX.DB
	if cfg.Driver == internal.DriverSQLite {
		// one writer; also keeps :memory: databases on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected", "driver", db.Driver)
	return db, nil
}

// New wraps an already opened gorm connection.
func New(gormDB *gorm.DB, driver string) (*DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	if driver == "" {
		driver = internal.DriverPostgres
	}
	return &DB{
		Gorm:   gormDB,
		SQLX:   sqlx.NewDb(sqlDB, sqlxDriverName(driver)),
		Driver: driver,
	}, nil
}

// sqlxDriverName picks the driver name sqlx uses to choose bind variables.
func sqlxDriverName(driver string) string {
	if driver == internal.DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

func (db *DB) SQL() *sql.DB {
	return db.SQLX.DB
}

func (db *DB) Close() error {
	return db.SQLX.DB.Close()
}

// Migrate brings the schema up to date. Postgres runs the embedded goose
// migrations; SQLite, used for local runs and tests, is auto-migrated from
// the gorm models.
func (db *DB) Migrate(ctx context.Context) error {
	if db.Driver == internal.DriverSQLite {
		return AutoMigrate(db.Gorm)
	}
	return RunMigrations(ctx, db.SQL(), "up")
}

// Rollback reverts the latest goose migration.
func (db *DB) Rollback(ctx context.Context) error {
	if db.Driver == internal.DriverSQLite {
		return fmt.Errorf("rollback is not supported for %s", db.Driver)
	}
	return RunMigrations(ctx, db.SQL(), "down")
}

func RunMigrations(ctx context.Context, sqlDB *sql.DB, command string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	if err := goose.RunContext(ctx, command, sqlDB, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrationFiles lists the embedded migration file names.
func MigrationFiles() ([]string, error) {
	return fs.Glob(migrations.FS, "*.sql")
}

func AutoMigrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&referenceDatamodel.Job{},
		&referenceDatamodel.Experience{},
		&referenceDatamodel.Seniority{},
		&userDatamodel.User{},
		&userDatamodel.Password{},
		&simulationDatamodel.Simulation{},
	)
}

// OpenMemory returns a migrated in-memory SQLite database, used by tests and
// the sqlite quick-start.
func OpenMemory() (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db, err := New(gormDB, internal.DriverSQLite)
	if err != nil {
		return nil, err
	}
	db.SQL().SetMaxOpenConns(1)

	if err := AutoMigrate(gormDB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return db, nil
}
