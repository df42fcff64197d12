package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntlabs/vnt-swap-backend/internal/models"
)

type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

func (r *PriceRepo) Record(ctx context.Context, priceUSDT, liquidityUSDT, minSellVNT string, ts time.Time) (*models.PricePoint, error) {
	td := TradingDay(ts)
	row := r.pool.QueryRow(ctx,
		`INSERT INTO price_history (timestamp, trading_day, price_usdt, liquidity_usdt, min_sell_vnt)
		 VALUES ($1, $2, $3, $4, $5) RETURNING *`,
		ts, td, priceUSDT, liquidityUSDT, minSellVNT,
	)
	return scanPrice(row)
}

func (r *PriceRepo) GetLatest(ctx context.Context) (*models.PricePoint, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT * FROM price_history ORDER BY timestamp DESC LIMIT 1`,
	)
	p, err := scanPrice(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PriceRepo) GetByDay(ctx context.Context, tradingDay string) ([]models.PricePoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT * FROM price_history WHERE trading_day = $1 ORDER BY timestamp ASC`,
		tradingDay,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPrices(rows)
}

// --- scanning ---

func scanPrice(row rowScanner) (*models.PricePoint, error) {
	var p models.PricePoint
	err := row.Scan(
		&p.ID, &p.Timestamp, &p.TradingDay, &p.PriceUSDT,
		&p.LiquidityUSDT, &p.MinSellVNT, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPrices(rows pgx.Rows) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
