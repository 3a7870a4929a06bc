package main

import (
	"context"
	"log"
	"os"

	"github.com/rawblock/dusting-engine/internal/api"
	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/internal/db"
	"github.com/rawblock/dusting-engine/internal/heuristics"
	"github.com/rawblock/dusting-engine/internal/scanner"
	"github.com/rawblock/dusting-engine/internal/sns"
	"github.com/rawblock/dusting-engine/internal/solana"
	"github.com/rawblock/dusting-engine/pkg/models"
)

func main() {
	log.Println("Starting RawBlock Dusting Detection Engine...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. Use a .env file for local
	// development: cp .env.example .env && edit .env
	// ────────────────────────────────────────────────────────────────────

	thresholds, err := config.LoadThresholds(os.Getenv("THRESHOLDS_FILE"))
	if err != nil {
		log.Fatalf("FATAL: Invalid thresholds configuration: %v", err)
	}

	var dbStore *db.PostgresStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		dbStore, err = db.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: Failed to connect to PostgreSQL, continuing without the audit store. Error: %v", err)
			dbStore = nil
		} else {
			defer dbStore.Close()
			if err := dbStore.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	} else {
		log.Println("DATABASE_URL not set, running without the audit store")
	}

	rpcURL := requireEnv("SOLANA_RPC_URL")
	rpcClient, err := solana.NewClient(solana.Config{RPCURL: rpcURL})
	if err != nil {
		log.Printf("Warning: Failed to connect to Solana RPC: %v", err)
	}

	snsClient := sns.NewClient(sns.Config{BaseURL: os.Getenv("SNS_API_URL")})

	// Setup WebSocket Hub
	wsHub := api.NewHub()
	go wsHub.Run()

	// Alert pipeline: HIGH/CRITICAL verdicts and watchlist hits fan out to
	// connected dashboards and any registered webhooks.
	alerts := heuristics.NewAlertManager(api.BroadcastDustingAlert(wsHub))
	if webhookURL := os.Getenv("ALERT_WEBHOOK_URL"); webhookURL != "" {
		alerts.RegisterWebhook("primary", webhookURL, "high", nil)
	}

	// Known-duster watchlist, warm-started from the store when available
	watchlist := heuristics.NewAddressWatchlist()
	if dbStore != nil {
		if err := dbStore.LoadWatchlist(context.Background(), watchlist); err != nil {
			log.Printf("Warning: Failed to load watchlist: %v", err)
		}
	}

	// Background batch scanner with real-time alert broadcasting
	var walletScanner *scanner.WalletScanner
	if rpcClient != nil {
		walletScanner = scanner.NewWalletScanner(rpcClient, snsClient, dbStore, thresholds,
			func(analysis models.WalletAnalysis) {
				alerts.EmitFromWalletAnalysis(analysis, nil)
			})
	}

	// Setup the Gin Router
	r := api.SetupRouter(dbStore, rpcClient, snsClient, wsHub, alerts, watchlist, walletScanner, thresholds)

	port := getEnvOrDefault("PORT", "5340")

	// Start the server
	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is not set.
// This prevents the binary from starting with missing critical configuration.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set. "+
			"Copy .env.example to .env and fill in your values: cp .env.example .env", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
