package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// JournalEntry is a single posting against one account on one date.
// Amounts are raw: debits positive, credits negative.
type JournalEntry struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Date          Date            `json:"date"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// Transaction groups the postings of one journal entry. All postings share
// its date and must sum to zero.
type Transaction struct {
	ID          string         `json:"id"`
	Date        Date           `json:"date"`
	Description string         `json:"description"`
	Entries     []JournalEntry `json:"entries"`
}

// Validate checks transaction invariants: a description, at least 2 entries,
// amounts storable in minor units, and a zero sum. The debit side is bounded
// too, so no running total over the legs can leave int64 range.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ErrInvalidDate)
	}
	if len(t.Entries) < 2 {
		return ErrTooFewEntries
	}

	sum, debits := decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		if strings.TrimSpace(e.AccountID) == "" {
			return ErrInvalidAccountID
		}
		if !e.Amount.Equal(e.Amount.Truncate(AmountScale)) {
			return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, e.Amount, AmountScale)
		}
		if err := CheckMinor(e.Amount); err != nil {
			return fmt.Errorf("entry %s: %w", e.AccountID, err)
		}
		if e.Amount.IsPositive() {
			debits = debits.Add(e.Amount)
		}
		sum = sum.Add(e.Amount)
	}
	if err := CheckMinor(debits); err != nil {
		return fmt.Errorf("transaction debits: %w", err)
	}
	if !sum.IsZero() {
		return fmt.Errorf("%w: entries sum to %s", ErrUnbalancedTransaction, FormatAmount(sum))
	}
	return nil
}

// Postings returns the entries stamped with the transaction's id, date,
// and description where the entry leaves them empty.
func (t *Transaction) Postings() []JournalEntry {
	out := make([]JournalEntry, len(t.Entries))
	for i, e := range t.Entries {
		e.TransactionID = t.ID
		e.Date = t.Date
		if e.Description == "" {
			e.Description = t.Description
		}
		out[i] = e
	}
	return out
}

// Snapshot is a point-in-time read of the ledger. Watermark changes whenever
// a posting is added, so it can key anything derived from the entries.
type Snapshot struct {
	Entries   []JournalEntry
	Watermark string
}
