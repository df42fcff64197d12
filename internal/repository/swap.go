package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntlabs/vnt-swap-backend/internal/models"
)

type SwapRepo struct {
	pool *pgxpool.Pool
}

func NewSwapRepo(pool *pgxpool.Pool) *SwapRepo {
	return &SwapRepo{pool: pool}
}

func (r *SwapRepo) Record(ctx context.Context, rec *models.SwapRecord) (*models.SwapRecord, error) {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	td := TradingDay(ts)

	row := r.pool.QueryRow(ctx,
		`INSERT INTO swap_history
		 (timestamp, trading_day, kind, account, amount_vnt, amount_usdt,
		  tx_hash, gas_used, network)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING *`,
		ts, td, rec.Kind, rec.Account, rec.AmountVNT, rec.AmountUSDT,
		rec.TxHash, rec.GasUsed, rec.Network,
	)
	return scanSwap(row)
}

func (r *SwapRepo) GetByDay(ctx context.Context, tradingDay string) ([]models.SwapRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM swap_history WHERE trading_day = $1 ORDER BY timestamp ASC`,
		tradingDay,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSwaps(rows)
}

func (r *SwapRepo) GetAll(ctx context.Context, limit int) ([]models.SwapRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM swap_history ORDER BY timestamp DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSwaps(rows)
}

func (r *SwapRepo) CountToday(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM swap_history WHERE trading_day = $1`,
		TradingDayNow(),
	).Scan(&n)
	return n, err
}

func (r *SwapRepo) Stats(ctx context.Context) (*models.SwapStats, error) {
	var s models.SwapStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE kind = 'approve'),
			COUNT(*) FILTER (WHERE kind = 'sell'),
			SUM(CASE WHEN kind = 'sell' THEN amount_vnt::NUMERIC ELSE 0 END)::TEXT,
			MIN(timestamp),
			MAX(timestamp)
		 FROM swap_history`,
	).Scan(&s.TotalSwaps, &s.ApproveCount, &s.SellCount, &s.TotalVNTSold, &s.FirstSwap, &s.LastSwap)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// --- scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSwap(row rowScanner) (*models.SwapRecord, error) {
	var rec models.SwapRecord
	err := row.Scan(
		&rec.ID, &rec.Timestamp, &rec.TradingDay, &rec.Kind, &rec.Account,
		&rec.AmountVNT, &rec.AmountUSDT, &rec.TxHash, &rec.GasUsed,
		&rec.Network, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectSwaps(rows pgx.Rows) ([]models.SwapRecord, error) {
	var out []models.SwapRecord
	for rows.Next() {
		rec, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
