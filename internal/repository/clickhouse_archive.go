package repository

import (
	"context"
	"database/sql"
	"fmt"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
)

// ClickHouseArchive stores emitted signals for offline analysis. The
// in-memory active list stays authoritative; this is history only.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

var _ drepo.SignalArchive = (*ClickHouseArchive)(nil)

func NewClickHouseArchive(db *sql.DB, table string) *ClickHouseArchive {
	if table == "" {
		table = "signals"
	}
	return &ClickHouseArchive{db: db, table: table}
}

func (a *ClickHouseArchive) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id String,
		pair String,
		direction String,
		entry Float64,
		stop_loss Float64,
		take_profit Float64,
		expected_profit_pct Float64,
		quality_score Float64,
		trend_strength Float64,
		forecast_confidence Float64,
		risk_score Float64,
		risk_level String,
		status String,
		created_at DateTime
	) ENGINE=MergeTree ORDER BY (pair, created_at)`, a.table)
	if _, err := a.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("archive init: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) Store(ctx context.Context, sig models.Signal) error {
	q := fmt.Sprintf(`INSERT INTO %s (id, pair, direction, entry, stop_loss, take_profit,
		expected_profit_pct, quality_score, trend_strength, forecast_confidence,
		risk_score, risk_level, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.table)
	_, err := a.db.ExecContext(ctx, q,
		sig.ID,
		sig.Pair,
		string(sig.Direction),
		sig.Entry,
		sig.StopLoss,
		sig.TakeProfit,
		sig.ExpectedProfitPct,
		sig.QualityScore,
		sig.TrendStrength,
		sig.ForecastConfidence,
		sig.RiskScore,
		sig.RiskLevel,
		string(sig.Status),
		sig.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("archive store %s: %w", sig.ID, err)
	}
	return nil
}

func (a *ClickHouseArchive) Close() error {
	return a.db.Close()
}
