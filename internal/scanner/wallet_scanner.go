package scanner

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rawblock/dusting-engine/internal/config"
	"github.com/rawblock/dusting-engine/internal/db"
	"github.com/rawblock/dusting-engine/internal/heuristics"
	"github.com/rawblock/dusting-engine/internal/sns"
	"github.com/rawblock/dusting-engine/internal/solana"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// WalletScanner sweeps a submitted batch of wallet addresses through the
// dusting analysis in the background, persisting verdicts and emitting
// alerts for the flagged ones. This gives incident responders retroactive
// coverage over a victim list without hammering the API endpoint.
//
// One scan at a time; a second submission while a scan runs is rejected.
// A wallet whose fetches fail is skipped, never aborts the batch.
type WalletScanner struct {
	rpcClient  *solana.Client
	snsClient  *sns.Client
	dbStore    *db.PostgresStore
	thresholds config.Thresholds
	alertFunc  func(models.WalletAnalysis) // Optional broadcast callback

	// Progress tracking (atomic for safe concurrent reads)
	scanID    atomic.Value // string
	total     atomic.Int64
	scanned   atomic.Int64
	flagged   atomic.Int64
	isRunning atomic.Bool
}

// ScanProgress represents the scanner's current state for the API.
type ScanProgress struct {
	ScanID    string `json:"scanId"`
	IsRunning bool   `json:"isRunning"`
	Total     int64  `json:"total"`
	Scanned   int64  `json:"scanned"`
	Flagged   int64  `json:"flagged"`
}

const scanParallelism = 4

func NewWalletScanner(rpcClient *solana.Client, snsClient *sns.Client, dbStore *db.PostgresStore,
	thresholds config.Thresholds, alertFunc func(models.WalletAnalysis)) *WalletScanner {
	ws := &WalletScanner{
		rpcClient:  rpcClient,
		snsClient:  snsClient,
		dbStore:    dbStore,
		thresholds: thresholds,
		alertFunc:  alertFunc,
	}
	ws.scanID.Store("")
	return ws
}

// ScanAddresses launches a background scan over the batch and returns its
// ID. Fails when a scan is already in flight.
func (ws *WalletScanner) ScanAddresses(ctx context.Context, addresses []string) (string, error) {
	if !ws.isRunning.CompareAndSwap(false, true) {
		return "", fmt.Errorf("a scan is already running")
	}

	id := uuid.NewString()
	ws.scanID.Store(id)
	ws.total.Store(int64(len(addresses)))
	ws.scanned.Store(0)
	ws.flagged.Store(0)

	go ws.run(ctx, addresses)

	log.Printf("[Scanner] Started scan %s over %d wallets", id, len(addresses))
	return id, nil
}

func (ws *WalletScanner) run(ctx context.Context, addresses []string) {
	defer ws.isRunning.Store(false)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanParallelism)
	for _, address := range addresses {
		g.Go(func() error {
			ws.scanOne(gctx, address)
			ws.scanned.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[Scanner] Scan complete: %d wallets, %d flagged",
		ws.scanned.Load(), ws.flagged.Load())
}

// scanOne runs the full wallet analysis for a single address. Failures
// are logged and swallowed; the batch keeps going.
func (ws *WalletScanner) scanOne(ctx context.Context, address string) {
	var domains []string
	if ws.snsClient != nil {
		if d, err := ws.snsClient.LookupDomains(ctx, address); err == nil {
			domains = d
		}
	}

	sigs, err := ws.rpcClient.GetSignaturesForAddress(ctx, address, ws.thresholds.MinTransactionsChecked)
	if err != nil {
		log.Printf("[Scanner] Skipping %s: %v", address, err)
		return
	}
	records := ws.rpcClient.FetchTransactions(ctx, sigs)

	analysis := heuristics.AnalyzeWallet(address, domains, records, ws.thresholds)

	if analysis.IsDustingWallet {
		ws.flagged.Add(1)
		if ws.alertFunc != nil {
			ws.alertFunc(analysis)
		}
	}

	if ws.dbStore != nil {
		if err := ws.dbStore.SaveWalletAnalysis(ctx, analysis); err != nil {
			log.Printf("[Scanner] Failed to persist %s: %v", address, err)
		}
	}
}

// GetProgress returns the scanner's current state.
func (ws *WalletScanner) GetProgress() ScanProgress {
	id, _ := ws.scanID.Load().(string)
	return ScanProgress{
		ScanID:    id,
		IsRunning: ws.isRunning.Load(),
		Total:     ws.total.Load(),
		Scanned:   ws.scanned.Load(),
		Flagged:   ws.flagged.Load(),
	}
}
