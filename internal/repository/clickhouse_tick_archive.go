package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
)

// ClickHouseTickArchive implements TickArchive over a shared *sql.DB pool.
type ClickHouseTickArchive struct {
	db    *sql.DB
	table string
}

func NewClickHouseTickArchive(db *sql.DB, table string) domrepo.TickArchive {
	return &ClickHouseTickArchive{db: db, table: table}
}

func (s *ClickHouseTickArchive) Store(ctx context.Context, t *models.Tick) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, regime, mode) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.UnixMilli(t.Timestamp),
		t.Symbol,
		t.Price,
		t.Volume,
		string(t.Regime),
		t.Mode,
	)
	return err
}

func (s *ClickHouseTickArchive) StoreBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	// multi-row VALUES, chunked to bound statement size
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Timestamp <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.UnixMilli(t.Timestamp),
				t.Symbol,
				t.Price,
				t.Volume,
				string(t.Regime),
				t.Mode,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, regime, mode) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseTickArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTickArchive) Close() error {
	return nil // pool owned by pkg client
}
