package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type seedModule struct {
	code     string
	title    string
	credits  int
	maxSlots int
	status   string
}

var defaultModules = []seedModule{
	{"PRJ101", "Proyek Analisis Data", 4, 20, "Open"},
	{"PRJ205", "Riset Kecerdasan Buatan", 6, 15, "Open"},
	{"PRJ310", "Desain Infrastruktur Cloud", 3, 25, "Closed"},
	{"PRJ400", "Seminar Proposal Studi", 2, 40, "Open"},
}

// SeedModules inserts the starter catalogue when the modules table is empty.
// It reports how many modules were inserted.
func SeedModules(ctx context.Context, db *sqlx.DB) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM modules`); err != nil {
		return 0, fmt.Errorf("count modules: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed tx: %w", err)
	}
	now := time.Now().UTC()
	const query = `INSERT INTO modules (id, code, title, credits, max_slots, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7) ON CONFLICT (code) DO NOTHING`
	for _, m := range defaultModules {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), m.code, m.title, m.credits, m.maxSlots, m.status, now); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("seed module %s: %w", m.code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed tx: %w", err)
	}
	return len(defaultModules), nil
}
