package database

import (
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appErrors "github.com/johnquangdev/capture-stitcher/errors"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// MigrationsDir is the directory holding sql-migrate files
const MigrationsDir = "migrations"

// NewPostgresDB creates a new PostgreSQL database connection using GORM
func NewPostgresDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if !cfg.IsDevelopment() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, appErrors.ErrDBConnectionFailed(err)
	}

	if log != nil {
		log.Info("✅ Database connected successfully",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name))
	}

	return db, nil
}

// Migrate applies (direction Up) or rolls back (direction Down, limited to steps) migrations
func Migrate(db *gorm.DB, dir string, direction migrate.MigrationDirection, steps int, log *zap.Logger) (int, error) {
	migrations := &migrate.FileMigrationSource{
		Dir: dir,
	}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate: %w", err)
	}

	n, err := migrate.ExecMax(sqlDB, "postgres", migrations, direction, steps)
	if err != nil {
		return n, fmt.Errorf("failed to apply migrations from %s: %w", dir, err)
	}

	if log != nil {
		log.Info("✅ Applied migrations", zap.Int("count", n), zap.String("dir", dir))
	}
	return n, nil
}

// AutoMigrate runs every pending migration from MigrationsDir
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	if log != nil {
		log.Info("🔄 Applying migrations using sql-migrate...", zap.String("dir", MigrationsDir))
	}
	_, err := Migrate(db, MigrationsDir, migrate.Up, 0, log)
	return err
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
