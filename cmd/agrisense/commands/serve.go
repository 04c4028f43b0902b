package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/api"
	"github.com/agrisense/agrisense/internal/api/handlers"
	"github.com/agrisense/agrisense/internal/store"
	"github.com/agrisense/agrisense/pkg/database"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the alert API server",
	Long: `Starts the REST API serving persisted alert runs.

Endpoints:
  GET /health                     - Health check
  GET /api/runs/latest            - Latest run summary
  GET /api/runs/{runID}/alerts    - Alert days for a run (?gated=true)
  GET /api/runs/{runID}/events    - Merged events for a run

Example:
  go run ./cmd/agrisense serve
  go run ./cmd/agrisense serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	appCfg, log, err := loadApp()
	if err != nil {
		return err
	}
	if servePort != "" {
		appCfg.Port = servePort
	}
	alertCfg, _, err := loadAlerts(appCfg)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"port":     appCfg.Port,
		"strategy": alertCfg.Meta.StrategyID,
	}).Info("Initializing API server")

	db, err := database.New(appCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	st := store.New(db, log)
	if err := st.EnsureSchema(cmd.Context()); err != nil {
		return err
	}

	alertHandler := handlers.NewAlertHandler(st, alertCfg.Meta.StrategyID, log)
	router := api.NewRouter(alertHandler, db, log)
	server := api.New(appCfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", appCfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
