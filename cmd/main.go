package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glrv/reviewd/internal/app"
	"github.com/glrv/reviewd/internal/config"
	"github.com/glrv/reviewd/internal/db"
	"github.com/glrv/reviewd/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "reviewd",
	Short: "reviewd - automated GitLab code review service",
	Long: `reviewd receives GitLab webhooks, reviews commits and merge requests
with an LLM agent that inspects the repository through the GitLab API, and
notifies repository members of the findings.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}

		// Drain in-flight reviews before exiting on SIGINT/SIGTERM.
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-stop
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.Shutdown(ctx); err != nil {
				logger.Errorf("shutdown: %v", err)
			}
		}()

		logger.Infof("listening on %s", cfg.ListenAddr)
		return a.Listen()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		gdb, err := db.New(db.Options{
			Host:       cfg.DBHost,
			User:       cfg.DBUser,
			Password:   cfg.DBPassword,
			DBName:     cfg.DBName,
			Port:       cfg.DBPort,
			SSLEnabled: cfg.DBSSLMode,
			LogLevel:   gormlogger.Info,
		})
		if err != nil {
			return err
		}

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	logger.InitializeAndConfigure()

	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("%v", err)
	}
}
