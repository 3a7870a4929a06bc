package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/internal/db"
	"github.com/rawblock/dusting-engine/internal/heuristics"
	"github.com/rawblock/dusting-engine/internal/scanner"
	"github.com/rawblock/dusting-engine/internal/sns"
	"github.com/rawblock/dusting-engine/internal/solana"
	"github.com/rawblock/dusting-engine/pkg/models"
)

type APIHandler struct {
	dbStore       *db.PostgresStore
	rpcClient     *solana.Client
	snsClient     *sns.Client
	wsHub         *Hub
	alerts        *heuristics.AlertManager
	watchlist     *heuristics.AddressWatchlist
	walletScanner *scanner.WalletScanner
	thresholds    config.Thresholds
}

func SetupRouter(dbStore *db.PostgresStore, rpcClient *solana.Client, snsClient *sns.Client,
	wsHub *Hub, alerts *heuristics.AlertManager, watchlist *heuristics.AddressWatchlist,
	walletScanner *scanner.WalletScanner, thresholds config.Thresholds) *gin.Engine {

	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://example.com,https://www.example.com
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	limiter := NewRateLimiter(30, 10)

	handler := &APIHandler{
		dbStore:       dbStore,
		rpcClient:     rpcClient,
		snsClient:     snsClient,
		wsHub:         wsHub,
		alerts:        alerts,
		watchlist:     watchlist,
		walletScanner: walletScanner,
		thresholds:    thresholds,
	}

	api := r.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		api.GET("/dusting/:address", handler.handleAnalyzeWallet)
		api.GET("/transaction/:signature", handler.handleAnalyzeTransaction)
		api.GET("/safe/:address", handler.handleSafeTransfers)
		api.GET("/flagged", handler.handleGetFlagged)
		api.GET("/alerts", handler.handleGetAlerts)
		api.GET("/health", handler.handleHealth)
		api.GET("/stream", wsHub.Subscribe)
		api.GET("/watchlist", handler.handleListWatchlist)

		// Mutating routes require the bearer token when configured
		protected := api.Group("")
		protected.Use(AuthMiddleware())
		{
			protected.POST("/watchlist", handler.handleAddWatchlist)
			protected.DELETE("/watchlist/:address", handler.handleRemoveWatchlist)
			protected.POST("/scan", handler.handleStartScan)
		}
		api.GET("/scan/progress", handler.handleScanProgress)
	}

	return r
}

// handleAnalyzeWallet runs the wallet-mode dusting analysis.
// GET /api/v1/dusting/:address
func (h *APIHandler) handleAnalyzeWallet(c *gin.Context) {
	address := c.Param("address")
	if err := solana.ValidateAddress(address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
		return
	}
	if h.rpcClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Solana RPC not configured"})
		return
	}

	ctx := c.Request.Context()

	// Domain lookup and transaction history are independent; issue them
	// concurrently and merge afterwards.
	type historyResult struct {
		records []models.TransactionRecord
		err     error
	}
	domainsCh := make(chan []string, 1)
	historyCh := make(chan historyResult, 1)

	go func() {
		domainsCh <- h.lookupDomains(ctx, address)
	}()
	go func() {
		sigs, err := h.rpcClient.GetSignaturesForAddress(ctx, address, h.thresholds.MinTransactionsChecked)
		if err != nil {
			historyCh <- historyResult{err: err}
			return
		}
		historyCh <- historyResult{records: h.rpcClient.FetchTransactions(ctx, sigs)}
	}()

	domains := <-domainsCh
	history := <-historyCh
	if history.err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch transaction history", "details": history.err.Error()})
		return
	}

	analysis := heuristics.AnalyzeWallet(address, domains, history.records, h.thresholds)
	hits := h.watchlist.CheckWallet(address)
	h.alerts.EmitFromWalletAnalysis(analysis, hits)

	if h.dbStore != nil {
		if err := h.dbStore.SaveWalletAnalysis(context.Background(), analysis); err != nil {
			log.Printf("Failed to save wallet analysis: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":      analysis,
		"watchlistHits": hits,
	})
}

// handleAnalyzeTransaction runs the transaction-mode dusting analysis.
// GET /api/v1/transaction/:signature
func (h *APIHandler) handleAnalyzeTransaction(c *gin.Context) {
	signature := c.Param("signature")
	if err := solana.ValidateSignature(signature); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction signature format"})
		return
	}
	if h.rpcClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Solana RPC not configured"})
		return
	}

	ctx := c.Request.Context()
	rec, err := h.rpcClient.GetTransaction(ctx, signature)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch transaction", "details": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	senderDomains := h.lookupDomains(ctx, rec.Sender())

	analysis := heuristics.AnalyzeTransaction(*rec, senderDomains, h.thresholds)
	hits := h.watchlist.CheckRecord(*rec)
	h.alerts.EmitFromTransactionAnalysis(analysis, hits)

	if h.dbStore != nil {
		if err := h.dbStore.SaveTransactionAnalysis(context.Background(), analysis, rec.TokenTransfer); err != nil {
			log.Printf("Failed to save transaction analysis: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":      analysis,
		"watchlistHits": hits,
	})
}

// handleSafeTransfers filters a wallet's window down to transfers that are
// neither dust nor address poisoning.
// GET /api/v1/safe/:address
func (h *APIHandler) handleSafeTransfers(c *gin.Context) {
	address := c.Param("address")
	if err := solana.ValidateAddress(address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
		return
	}
	if h.rpcClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Solana RPC not configured"})
		return
	}

	ctx := c.Request.Context()
	sigs, err := h.rpcClient.GetSignaturesForAddress(ctx, address, h.thresholds.MinTransactionsChecked)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch transaction history", "details": err.Error()})
		return
	}
	records := h.rpcClient.FetchTransactions(ctx, sigs)

	report := heuristics.FilterSafeTransfers(records, h.thresholds)
	c.JSON(http.StatusOK, report)
}

// handleGetFlagged lists wallets whose latest verdict flagged them.
// GET /api/v1/flagged?page=1&limit=50
func (h *APIHandler) handleGetFlagged(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	wallets, totalCount, err := h.dbStore.GetFlaggedWallets(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch flagged wallets", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       wallets,
		"totalCount": totalCount,
		"page":       page,
		"limit":      limit,
	})
}

// handleGetAlerts returns recent alerts, newest first.
// GET /api/v1/alerts?limit=50
func (h *APIHandler) handleGetAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	c.JSON(http.StatusOK, gin.H{"alerts": h.alerts.GetRecentAlerts(limit)})
}

// handleHealth returns engine status and capabilities for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "Dusting Detection Engine v1.0",
		"capabilities": gin.H{
			"wallet_analysis":      true,
			"transaction_analysis": true,
			"safe_filter":          true,
			"sns_reputation":       true,
			"address_watchlist":    true,
			"batch_scan":           true,
		},
		"rpcConnected": h.rpcClient != nil,
		"dbConnected":  h.dbStore != nil,
	})
}

// handleListWatchlist returns all watched addresses.
func (h *APIHandler) handleListWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"addresses": h.watchlist.ListAll(),
		"count":     h.watchlist.Size(),
	})
}

// handleAddWatchlist registers a known-duster address.
// POST /api/v1/watchlist { "address": "...", "category": "duster", "label": "...", "alertLevel": "high" }
func (h *APIHandler) handleAddWatchlist(c *gin.Context) {
	var req struct {
		Address    string `json:"address" binding:"required"`
		Category   string `json:"category" binding:"required"`
		Label      string `json:"label"`
		AlertLevel string `json:"alertLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {address, category, label, alertLevel}"})
		return
	}
	if err := solana.ValidateAddress(req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format"})
		return
	}
	if req.AlertLevel == "" {
		req.AlertLevel = "medium"
	}

	h.watchlist.Add(req.Address, req.Category, req.Label, req.AlertLevel)

	if h.dbStore != nil {
		entry, _ := h.watchlist.Get(req.Address)
		if err := h.dbStore.SaveWatchlistAddress(c.Request.Context(), entry); err != nil {
			log.Printf("Failed to persist watchlist entry: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "added", "address": req.Address})
}

// handleRemoveWatchlist stops monitoring an address.
// DELETE /api/v1/watchlist/:address
func (h *APIHandler) handleRemoveWatchlist(c *gin.Context) {
	address := c.Param("address")
	if !h.watchlist.Contains(address) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not on watchlist"})
		return
	}

	h.watchlist.Remove(address)
	if h.dbStore != nil {
		if err := h.dbStore.DeleteWatchlistAddress(c.Request.Context(), address); err != nil {
			log.Printf("Failed to delete watchlist entry: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed", "address": address})
}

// handleStartScan launches a background batch scan over a set of wallets.
// POST /api/v1/scan { "addresses": ["...", "..."] }
func (h *APIHandler) handleStartScan(c *gin.Context) {
	if h.walletScanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Wallet scanner not initialized"})
		return
	}

	var req struct {
		Addresses []string `json:"addresses" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {addresses: [..]}"})
		return
	}
	for _, addr := range req.Addresses {
		if err := solana.ValidateAddress(addr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address format", "address": addr})
			return
		}
	}

	scanID, err := h.walletScanner.ScanAddresses(context.Background(), req.Addresses)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "scan_started",
		"scanId":         scanID,
		"totalAddresses": len(req.Addresses),
	})
}

// handleScanProgress returns the current progress of the batch scanner.
func (h *APIHandler) handleScanProgress(c *gin.Context) {
	if h.walletScanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Wallet scanner not initialized"})
		return
	}
	c.JSON(http.StatusOK, h.walletScanner.GetProgress())
}

// lookupDomains resolves SNS names best-effort: on any failure the analysis
// proceeds with no reputation data.
func (h *APIHandler) lookupDomains(ctx context.Context, address string) []string {
	if h.snsClient == nil || address == "" {
		return nil
	}
	domains, err := h.snsClient.LookupDomains(ctx, address)
	if err != nil {
		log.Printf("[SNS] Lookup failed for %s (continuing without domains): %v", address, err)
		return nil
	}
	return domains
}

// BroadcastDustingAlert adapts the WebSocket hub into the AlertManager's
// broadcast callback.
func BroadcastDustingAlert(wsHub *Hub) func(heuristics.Alert) {
	return func(alert heuristics.Alert) {
		payload := gin.H{
			"type":  "dusting_alert",
			"alert": alert,
		}
		alertBytes, _ := json.Marshal(payload)
		wsHub.Broadcast(alertBytes)
		log.Printf("[ALERT] %s %s: %s (subject %s)",
			alert.Severity, alert.AlertType, alert.Title, alert.Subject)
	}
}
