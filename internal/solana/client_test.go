package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rawblock/dusting-engine/pkg/models"
)

// rpcServer fakes a Solana JSON-RPC endpoint. Results are keyed by method;
// getVersion is always answered so NewClient's probe succeeds.
func rpcServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, ok := results[req.Method]
		if req.Method == "getVersion" && !ok {
			result = `{"solana-core":"1.18.0"}`
		} else if !ok {
			t.Errorf("unexpected RPC method %q", req.Method)
			http.Error(w, "unexpected method", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
}

func TestNewClient_ProbeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(Config{RPCURL: srv.URL}); err == nil {
		t.Error("Expected an error when the version probe fails")
	}
	if _, err := NewClient(Config{}); err == nil {
		t.Error("Expected an error for an empty RPC URL")
	}
}

func TestGetSignaturesForAddress(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getSignaturesForAddress": `[
			{"signature":"sigNew","slot":200,"blockTime":1700000002},
			{"signature":"sigOld","slot":100,"blockTime":1700000000}
		]`,
	})
	defer srv.Close()

	c, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	sigs, err := c.GetSignaturesForAddress(context.Background(), "SomeWallet", 10)
	if err != nil {
		t.Fatalf("GetSignaturesForAddress: %v", err)
	}
	if len(sigs) != 2 || sigs[0].Signature != "sigNew" || sigs[1].Signature != "sigOld" {
		t.Errorf("Unexpected page: %+v", sigs)
	}
	if sigs[0].BlockTime == nil || *sigs[0].BlockTime != 1700000002 {
		t.Errorf("BlockTime not decoded: %+v", sigs[0])
	}
}

func TestGetTransaction_ParsesRecord(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getTransaction": `{
			"slot": 200,
			"blockTime": 1700000002,
			"meta": {
				"preBalances": [10000000000, 0],
				"postBalances": [9999995000, 5000],
				"logMessages": []
			},
			"transaction": {
				"signatures": ["sigNew"],
				"message": {
					"accountKeys": ["SenderWallet", "VictimWallet", "11111111111111111111111111111111"],
					"instructions": [{"programIdIndex": 2}]
				}
			}
		}`,
	})
	defer srv.Close()

	c, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	rec, err := c.GetTransaction(context.Background(), "sigNew")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record")
	}
	if rec.Signature != "sigNew" || rec.Slot != 200 || rec.BlockTime != 1700000002 {
		t.Errorf("Header fields wrong: %+v", rec)
	}
	if rec.PreBalance == nil || *rec.PreBalance != 10000000000 ||
		rec.PostBalance == nil || *rec.PostBalance != 9999995000 {
		t.Errorf("Fee-payer balances wrong: %+v", rec)
	}
	if rec.FirstProgram != models.SystemProgramID {
		t.Errorf("FirstProgram = %q, want the system program", rec.FirstProgram)
	}
	if !rec.IsSimpleTransfer() {
		t.Error("Expected a simple transfer")
	}
	if rec.TokenTransfer {
		t.Error("No SPL evidence, TokenTransfer must be false")
	}
}

func TestGetTransaction_TokenEvidence(t *testing.T) {
	srv := rpcServer(t, map[string]string{
		"getTransaction": `{
			"slot": 200,
			"meta": {
				"preBalances": [1, 1],
				"postBalances": [1, 1],
				"logMessages": ["Program ` + models.TokenProgramID + ` invoke [1]"]
			},
			"transaction": {
				"signatures": ["sigTok"],
				"message": {"accountKeys": ["A", "B"], "instructions": []}
			}
		}`,
	})
	defer srv.Close()

	c, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	rec, err := c.GetTransaction(context.Background(), "sigTok")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if !rec.TokenTransfer {
		t.Error("Expected TokenTransfer from the execution log evidence")
	}
}

func TestGetTransaction_UnknownSignature(t *testing.T) {
	srv := rpcServer(t, map[string]string{"getTransaction": `null`})
	defer srv.Close()

	c, err := NewClient(Config{RPCURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	rec, err := c.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Unknown signature must not be an error, got %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil record, got %+v", rec)
	}
}

func TestValidateAddress(t *testing.T) {
	// Well-known program IDs are valid 32-byte keys.
	for _, addr := range []string{models.SystemProgramID, models.TokenProgramID} {
		if err := ValidateAddress(addr); err != nil {
			t.Errorf("ValidateAddress(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{
		"",
		"tooshort",
		"0OIl-not-base58",
		strings.Repeat("1", 64), // decodes to 64 bytes, not 32
	}
	for _, addr := range invalid {
		if err := ValidateAddress(addr); err == nil {
			t.Errorf("ValidateAddress(%q) = nil, want an error", addr)
		}
	}
}

func TestValidateSignature(t *testing.T) {
	// 64 leading base58 "1" digits decode to 64 zero bytes.
	if err := ValidateSignature(strings.Repeat("1", 64)); err != nil {
		t.Errorf("Expected a 64-byte signature to validate, got %v", err)
	}
	if err := ValidateSignature(models.SystemProgramID); err == nil {
		t.Error("A 32-byte key must not validate as a signature")
	}
	if err := ValidateSignature(""); err == nil {
		t.Error("Empty string must not validate")
	}
}
