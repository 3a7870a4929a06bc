package db

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/dusting-engine/internal/heuristics"
	"github.com/rawblock/dusting-engine/pkg/models"
)

// schemaSQL is compiled into the binary at build time so schema init works
// inside the Docker runtime image, which does not carry the .sql file.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the write-behind audit store. The engine is fully
// functional without it; every method is a no-op opportunity for the
// caller to skip when the store is nil.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for dusting audit store")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Dusting audit schema initialized")
	return nil
}

// SaveWalletAnalysis upserts a wallet verdict.
func (s *PostgresStore) SaveWalletAnalysis(ctx context.Context, a models.WalletAnalysis) error {
	sql := `
		INSERT INTO wallet_assessments
			(address, is_dusting, confidence, risk_level, tps, dust_transactions,
			 total_checked, unique_recipients, avg_dust_amount, sns_name, patterns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (address) DO UPDATE SET
			is_dusting = EXCLUDED.is_dusting,
			confidence = EXCLUDED.confidence,
			risk_level = EXCLUDED.risk_level,
			tps = EXCLUDED.tps,
			dust_transactions = EXCLUDED.dust_transactions,
			total_checked = EXCLUDED.total_checked,
			unique_recipients = EXCLUDED.unique_recipients,
			avg_dust_amount = EXCLUDED.avg_dust_amount,
			sns_name = EXCLUDED.sns_name,
			patterns = EXCLUDED.patterns,
			analyzed_at = NOW();
	`
	var snsName *string
	if a.Metrics.SuspiciousSNS != nil {
		snsName = &a.Metrics.SuspiciousSNS.Name
	}
	_, err := s.pool.Exec(ctx, sql,
		a.Address, a.IsDustingWallet, a.Confidence, string(a.RiskLevel),
		a.Metrics.TPS, a.Metrics.DustTransactions, a.Metrics.TotalTransactionsChecked,
		a.Metrics.UniqueRecipients, a.Metrics.AverageDustAmount, snsName, a.SuspiciousPatterns)
	return err
}

// SaveTransactionAnalysis upserts a transaction verdict.
func (s *PostgresStore) SaveTransactionAnalysis(ctx context.Context, a models.TransactionAnalysis, tokenTransfer bool) error {
	sql := `
		INSERT INTO tx_assessments
			(signature, is_dusting, confidence, risk_level, amount_sol,
			 sender, receiver, direction, token_transfer, patterns)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (signature) DO UPDATE SET
			is_dusting = EXCLUDED.is_dusting,
			confidence = EXCLUDED.confidence,
			risk_level = EXCLUDED.risk_level,
			amount_sol = EXCLUDED.amount_sol,
			sender = EXCLUDED.sender,
			receiver = EXCLUDED.receiver,
			direction = EXCLUDED.direction,
			token_transfer = EXCLUDED.token_transfer,
			patterns = EXCLUDED.patterns,
			analyzed_at = NOW();
	`
	_, err := s.pool.Exec(ctx, sql,
		a.Transaction.Signature, a.IsDustingTransaction, a.Confidence, string(a.RiskLevel),
		a.Transaction.Amount, a.Transaction.Sender, a.Transaction.Receiver,
		a.Transaction.Type, tokenTransfer, a.SuspiciousPatterns)
	return err
}

// FlaggedWallet is one row of the flagged-wallet listing.
type FlaggedWallet struct {
	Address    string   `json:"address"`
	Confidence int      `json:"confidence"`
	RiskLevel  string   `json:"riskLevel"`
	TPS        float64  `json:"tps"`
	DustTxs    int      `json:"dustTransactions"`
	SNSName    *string  `json:"snsName,omitempty"`
	Patterns   []string `json:"patterns"`
}

// GetFlaggedWallets returns the wallets whose latest verdict flagged them,
// most recently analyzed first.
func (s *PostgresStore) GetFlaggedWallets(ctx context.Context, page, limit int) ([]FlaggedWallet, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var totalCount int
	countSQL := `SELECT COUNT(*) FROM wallet_assessments WHERE is_dusting`
	if err := s.pool.QueryRow(ctx, countSQL).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	dataSQL := `
		SELECT address, confidence, risk_level, tps, dust_transactions, sns_name, patterns
		FROM wallet_assessments
		WHERE is_dusting
		ORDER BY analyzed_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.pool.Query(ctx, dataSQL, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	wallets := []FlaggedWallet{}
	for rows.Next() {
		var w FlaggedWallet
		if err := rows.Scan(&w.Address, &w.Confidence, &w.RiskLevel, &w.TPS, &w.DustTxs, &w.SNSName, &w.Patterns); err != nil {
			return nil, 0, err
		}
		wallets = append(wallets, w)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return wallets, totalCount, nil
}

// SaveWatchlistAddress persists a watchlist entry for durable restarts.
func (s *PostgresStore) SaveWatchlistAddress(ctx context.Context, entry heuristics.WatchedAddress) error {
	sql := `
		INSERT INTO watchlist_addresses (address, category, label, alert_level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			category = EXCLUDED.category,
			label = EXCLUDED.label,
			alert_level = EXCLUDED.alert_level;
	`
	_, err := s.pool.Exec(ctx, sql, entry.Address, entry.Category, entry.Label, entry.AlertLevel)
	return err
}

// DeleteWatchlistAddress removes a watchlist entry.
func (s *PostgresStore) DeleteWatchlistAddress(ctx context.Context, address string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM watchlist_addresses WHERE address = $1`, address)
	return err
}

// LoadWatchlist warm-starts the in-memory watchlist on process boot.
func (s *PostgresStore) LoadWatchlist(ctx context.Context, wl *heuristics.AddressWatchlist) error {
	rows, err := s.pool.Query(ctx, `SELECT address, category, label, alert_level FROM watchlist_addresses`)
	if err != nil {
		return err
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var addr, category, label, alertLevel string
		if err := rows.Scan(&addr, &category, &label, &alertLevel); err != nil {
			return err
		}
		wl.Add(addr, category, label, alertLevel)
		loaded++
	}
	if rows.Err() != nil {
		return rows.Err()
	}
	log.Printf("Loaded %d watchlist addresses from store", loaded)
	return nil
}
