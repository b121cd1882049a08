package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"opshub/internal/api"
	"opshub/internal/cache"
	"opshub/internal/config"
	"opshub/internal/gateway"
	"opshub/internal/logging"
	"opshub/internal/resilience"
	"opshub/internal/services"
	"opshub/internal/upstream/connecteam"
	"opshub/internal/upstream/doorloop"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the aggregation API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyViperOverrides(cfg)

	logging.Initialize(cfg.Debug)

	store := cache.NewStore(cfg.RedisURL)
	defer store.Close()

	registry := gateway.NewRegistry()
	orch := resilience.New(cfg.AllowFallback, cfg.CallTimeout)

	doorloopClient := doorloop.NewClient(cfg.DoorloopAPIKey, cfg.DoorloopAPIBase)
	connecteamClient := connecteam.NewClient(cfg.ConnecteamAPIKey, cfg.ConnecteamAPIBase, cfg.ConnecteamTaskboard)

	doorloopSvc := services.NewDoorloopService(cfg, store, registry, orch, doorloopClient)
	connecteamSvc := services.NewConnecteamService(cfg, store, registry, orch, connecteamClient)

	refresher := cache.NewRefresher(store)
	if store.Enabled() {
		if err := refresher.Add("tenants", cfg.TenantRefreshInterval, cache.TTLTenants, doorloopSvc.RefreshTenants); err != nil {
			return err
		}
		if err := refresher.Add("property", cfg.PropertyRefreshInterval, cache.TTLProperties, doorloopSvc.RefreshProperties); err != nil {
			return err
		}
		refresher.Start()
	} else {
		logging.Warn("Cache disabled - background refresh not started")
	}

	server := api.New(cfg, doorloopSvc, connecteamSvc, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logging.Info("Received %s, shutting down...", sig)
	}

	refresher.Stop()
	registry.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logging.Info("Server stopped")
	return nil
}

// applyViperOverrides lets config-file settings win over bare environment
// defaults for the most commonly tuned knobs.
func applyViperOverrides(cfg *config.Config) {
	if viper.IsSet("api_port") {
		cfg.APIPort = viper.GetInt("api_port")
	}
	if viper.IsSet("redis_url") {
		cfg.RedisURL = viper.GetString("redis_url")
	}
	if viper.IsSet("allow_fallback") {
		cfg.AllowFallback = viper.GetBool("allow_fallback")
	}
	if viper.IsSet("tool_server_bin") {
		cfg.ToolServerBin = viper.GetString("tool_server_bin")
	}
	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}
}
