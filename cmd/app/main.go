package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/chat"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/config"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/pomodoro"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/proto"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/service"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/transport"
)

var rootCmd = &cobra.Command{
	Use:   "notekeeper",
	Short: "Note taking backend with categories, tags, AI chat and a pomodoro tracker",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the gRPC health endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			config.Module,
			logger.Module,
			db.Module,
			service.Module,
			chat.Module,
			pomodoro.Module,
			transport.Module,
			proto.Module,
			fx.Invoke(func(*transport.HTTPServer, *proto.HealthServer) {}),
		)
		if err := app.Err(); err != nil {
			return errors.Wrap(err, "build app")
		}
		app.Run()
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		l, err := logger.NewLogger(cfg)
		if err != nil {
			return errors.Wrap(err, "create logger")
		}
		defer l.Sync()

		// NewGormClient migrates on open.
		gdb, err := db.NewGormClient(cfg, l)
		if err != nil {
			return err
		}
		defer closeDB(gdb, l)

		l.Infow("schema is up to date", "driver", cfg.DBDriver)
		return nil
	},
}

func closeDB(gdb *gorm.DB, l *zap.SugaredLogger) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		l.Warnw("close db", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
