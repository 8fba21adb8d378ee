// Package events defines the ledger events emitted when postings land.
package events

import (
	"context"
	"time"

	"github.com/simonvc/finreports/internal/ledger"
)

const TransactionPosted = "ledger.transaction.posted"

// TransactionPostedEvent announces a committed transaction. Consumers use it
// to invalidate anything derived from the ledger.
type TransactionPostedEvent struct {
	Type        string             `json:"type"`
	Transaction ledger.Transaction `json:"transaction"`
	PostedAt    time.Time          `json:"posted_at"`
}

func NewTransactionPosted(txn ledger.Transaction, at time.Time) TransactionPostedEvent {
	return TransactionPostedEvent{Type: TransactionPosted, Transaction: txn, PostedAt: at.UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error { return nil }
