package donations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/willmadison/donation-flow/donations/internal/sqlite"
	"github.com/willmadison/donation-flow/donations/internal/sqlite/donors"
)

// SQLStore keeps the donor log in a sqlite or libsql database. Each Prepend
// inserts and trims inside one transaction.
type SQLStore struct {
	db      *sql.DB
	queries *donors.Queries
	limit   int64
}

func newSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, sqlite.Schema); err != nil {
		return nil, fmt.Errorf("encountered an error migrating the donors table: %w", err)
	}

	return &SQLStore{db: db, queries: donors.New(db), limit: MaxDonors}, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Donor, error) {
	rows, err := s.queries.ListDonors(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	result := make([]Donor, 0, len(rows))

	for _, row := range rows {
		d, err := asDonor(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		result = append(result, d)
	}

	return result, nil
}

func (s *SQLStore) Prepend(ctx context.Context, d Donor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)

	err = q.InsertDonor(ctx, donors.InsertDonorParams{
		Name:      d.Name,
		Amount:    d.Amount,
		DonatedAt: d.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := q.TrimDonors(ctx, s.limit); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func asDonor(row donors.Donor) (Donor, error) {
	at, err := time.Parse(time.RFC3339Nano, row.DonatedAt)
	if err != nil {
		return Donor{}, fmt.Errorf("donor %d has an invalid timestamp %q: %w", row.ID, row.DonatedAt, err)
	}

	return Donor{
		Name:   row.Name,
		Amount: row.Amount,
		Time:   at,
	}, nil
}
