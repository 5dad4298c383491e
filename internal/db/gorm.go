package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
	zaplog "github.com/Rogue-Bear-Innovations/notekeeper-back/internal/logger"
)

const (
	NoteTagsTable       = "note_tags"
	NoteCategoriesTable = "note_categories"
)

var Module = fx.Provide(NewGormClientLC)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Note struct {
		GormForkedModel
		Title      string     `gorm:"size:200;not null"`
		Content    string     `gorm:"type:text;not null"`
		Tags       []Tag      `gorm:"many2many:note_tags;"`
		Categories []Category `gorm:"many2many:note_categories;"`
	}

	Tag struct {
		ID   uint64 `gorm:"primarykey"`
		Name string `gorm:"size:50;not null;uniqueIndex"`
	}

	Category struct {
		GormForkedModel
		Name        string `gorm:"size:100;not null;uniqueIndex"`
		Description string `gorm:"type:text"`
		Color       string `gorm:"size:7;not null"`
		Icon        string `gorm:"size:10;not null"`
	}
)

func NewGormClient(cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	newLogger := logger.New(zaplog.GormWriter{L: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewGormClientLC is NewGormClient with the connection pool closed on app stop.
func NewGormClientLC(lc fx.Lifecycle, cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := NewGormClient(cfg, l)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Info("Closing database.")
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	if err := db.AutoMigrate(&Category{}); err != nil {
		return errors.Wrap(err, "migrate category")
	}
	if err := db.AutoMigrate(&Note{}); err != nil {
		return errors.Wrap(err, "migrate note")
	}
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		if err := ensureDirForSQLite(cfg.DBPath); err != nil {
			return nil, err
		}
		return sqlite.Open(cfg.DBPath), nil
	default:
		return nil, errors.New(fmt.Sprintf("unsupported DB driver: %s", cfg.DBDriver))
	}
}

func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create db dir %q", dir)
	}
	return nil
}
