package donations

import (
	"context"
	"time"
)

// MaxDonors is how many of the most recent donors the log keeps.
const MaxDonors = 200

const anonymous = "Anonymous"

type Donor struct {
	Name   string    `json:"name"`
	Amount float64   `json:"amount"`
	Time   time.Time `json:"time"`
}

// NewDonor builds the record written to the donor log, falling back to
// "Anonymous" when no display name could be found.
func NewDonor(name string, amount float64, at time.Time) Donor {
	if name == "" {
		name = anonymous
	}

	if amount < 0 {
		amount = 0
	}

	return Donor{
		Name:   name,
		Amount: amount,
		Time:   at.UTC(),
	}
}

// Log is the donor log, newest first.
type Log []Donor

// Prepend returns a new log with d at the front, capped at limit entries.
func (l Log) Prepend(d Donor, limit int) Log {
	size := len(l) + 1
	if limit > 0 && size > limit {
		size = limit
	}

	next := make(Log, 0, size)
	next = append(next, d)

	for _, existing := range l {
		if len(next) == size {
			break
		}
		next = append(next, existing)
	}

	return next
}

// Store is the donor log capability handed to request handlers.
type Store interface {
	List(context.Context) ([]Donor, error)
	Prepend(context.Context, Donor) error
	Close() error
}
