package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/sync/errgroup"

	"github.com/rawblock/dusting-engine/pkg/models"
)

// Solana JSON-RPC client.
//
// Speaks the standard JSON-RPC 2.0 HTTP interface exposed by mainnet RPC
// providers (Helius, Triton, public nodes). Only the two history methods
// the engine needs are wrapped: getSignaturesForAddress and getTransaction.
//
// The client is best-effort by contract: per-transaction detail fetches
// fan out concurrently and any subset may fail; failed fetches are dropped
// from the window, never escalated. Retries belong to the operator's RPC
// provider, not here.

const (
	addressByteLen   = 32 // ed25519 public key
	signatureByteLen = 64
	fetchParallelism = 8
)

type Config struct {
	RPCURL string
}

type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds the RPC client and verifies connectivity with a
// getVersion round trip.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("solana: RPC URL is empty")
	}

	c := &Client{
		url:        cfg.RPCURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var version struct {
		SolanaCore string `json:"solana-core"`
	}
	if err := c.call(ctx, "getVersion", nil, &version); err != nil {
		return nil, fmt.Errorf("solana: version probe failed: %w", err)
	}

	log.Printf("Connected to Solana RPC (solana-core %s)", version.SolanaCore)
	return c, nil
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC round trip and decodes result into out.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s returned HTTP %d: %s", method, resp.StatusCode, snippet)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

// SignatureInfo is one entry of a getSignaturesForAddress page.
type SignatureInfo struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	BlockTime *int64          `json:"blockTime"`
	Err       json.RawMessage `json:"err"`
}

// GetSignaturesForAddress returns up to limit recent signatures for the
// address, newest first.
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	var sigs []SignatureInfo
	params := []interface{}{address, map[string]interface{}{"limit": limit}}
	if err := c.call(ctx, "getSignaturesForAddress", params, &sigs); err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress %s: %w", address, err)
	}
	return sigs, nil
}

// rawTransaction mirrors the subset of the getTransaction json encoding
// the engine consumes.
type rawTransaction struct {
	Slot      uint64 `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		PreBalances  []int64  `json:"preBalances"`
		PostBalances []int64  `json:"postBalances"`
		LogMessages  []string `json:"logMessages"`
	} `json:"meta"`
	Transaction struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			AccountKeys  []string `json:"accountKeys"`
			Instructions []struct {
				ProgramIDIndex int `json:"programIdIndex"`
			} `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

// GetTransaction resolves one signature to a parsed TransactionRecord.
// Returns nil without error when the ledger does not know the signature.
func (c *Client) GetTransaction(ctx context.Context, signature string) (*models.TransactionRecord, error) {
	var raw *rawTransaction
	params := []interface{}{signature, map[string]interface{}{
		"encoding":                       "json",
		"maxSupportedTransactionVersion": 0,
	}}
	if err := c.call(ctx, "getTransaction", params, &raw); err != nil {
		return nil, fmt.Errorf("getTransaction %s: %w", signature, err)
	}
	if raw == nil {
		return nil, nil
	}

	rec := &models.TransactionRecord{
		Signature:   signature,
		Slot:        raw.Slot,
		AccountKeys: raw.Transaction.Message.AccountKeys,
	}
	if len(raw.Transaction.Signatures) > 0 {
		rec.Signature = raw.Transaction.Signatures[0]
	}
	if raw.BlockTime != nil {
		rec.BlockTime = *raw.BlockTime
	}

	// Fee-payer balances. Absent arrays leave the pointers nil so the
	// heuristics skip the record for amount-based signals.
	if raw.Meta != nil {
		if len(raw.Meta.PreBalances) > 0 {
			pre := raw.Meta.PreBalances[0]
			rec.PreBalance = &pre
		}
		if len(raw.Meta.PostBalances) > 0 {
			post := raw.Meta.PostBalances[0]
			rec.PostBalance = &post
		}
	}

	// Resolve the first instruction's program index to its account key.
	instructions := raw.Transaction.Message.Instructions
	if len(instructions) > 0 {
		idx := instructions[0].ProgramIDIndex
		if idx >= 0 && idx < len(rec.AccountKeys) {
			rec.FirstProgram = rec.AccountKeys[idx]
		}
	}

	rec.TokenTransfer = isTokenTransfer(raw)
	return rec, nil
}

// isTokenTransfer looks for SPL token program evidence in the account keys
// or the execution logs.
func isTokenTransfer(raw *rawTransaction) bool {
	for _, key := range raw.Transaction.Message.AccountKeys {
		if key == models.TokenProgramID {
			return true
		}
	}
	if raw.Meta != nil {
		for _, line := range raw.Meta.LogMessages {
			if strings.Contains(line, models.TokenProgramID) {
				return true
			}
		}
	}
	return false
}

// FetchTransactions resolves a signature page to records with a bounded
// parallel fan-out. Any signature that fails to resolve is dropped; the
// remaining records keep the input's newest-first order.
func (c *Client) FetchTransactions(ctx context.Context, sigs []SignatureInfo) []models.TransactionRecord {
	results := make([]*models.TransactionRecord, len(sigs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, sig := range sigs {
		g.Go(func() error {
			rec, err := c.GetTransaction(gctx, sig.Signature)
			if err != nil {
				log.Printf("[Solana] Skipping %s: %v", sig.Signature, err)
				return nil // best-effort: one failed fetch never aborts the window
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	records := make([]models.TransactionRecord, 0, len(sigs))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// ValidateAddress rejects strings that are not base58-encoded 32-byte
// public keys.
func ValidateAddress(address string) error {
	if decoded := base58.Decode(address); len(decoded) != addressByteLen {
		return fmt.Errorf("invalid Solana address: %q", address)
	}
	return nil
}

// ValidateSignature rejects strings that are not base58-encoded 64-byte
// transaction signatures.
func ValidateSignature(signature string) error {
	if decoded := base58.Decode(signature); len(decoded) != signatureByteLen {
		return fmt.Errorf("invalid transaction signature: %q", signature)
	}
	return nil
}
