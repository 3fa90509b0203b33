package ledger

import (
	"context"
	"errors"
)

// RowState is the lifecycle of an imported statement row.
//
// Rows move Unmatched → RuleApplied → one of {Committed, Duplicate,
// Ignored}. A row with no matching rule skips RuleApplied and is
// committed raw. Duplicates are flagged, never silently dropped: the
// caller decides whether to force-commit or suppress them.
type RowState string

const (
	RowUnmatched   RowState = "unmatched"
	RowRuleApplied RowState = "rule-applied"
	RowCommitted   RowState = "committed"
	RowDuplicate   RowState = "duplicate"
	RowIgnored     RowState = "ignored"
)

// StatementRow is one externally-sourced row as parsed from a bank
// export, before any standardization.
type StatementRow struct {
	Date        Date   `json:"date"`
	Amount      Money  `json:"amount"`
	Description string `json:"description"`
}

// ImportedRow is a statement row plus the outcome of rule application
// and duplicate matching.
type ImportedRow struct {
	Index int          `json:"index"`
	Raw   StatementRow `json:"raw"`
	State RowState     `json:"state"`

	// Standardized fields, starting as the raw values.
	Description string    `json:"description"`
	Category    ID        `json:"category,omitempty"`
	Operation   Operation `json:"operation"`

	// Rule is the standardization rule that matched, if any.
	Rule ID `json:"rule,omitempty"`
	// DuplicateOf is the existing transaction this row collides with.
	DuplicateOf ID `json:"duplicateOf,omitempty"`
	// Transaction is the ledger transaction the row was promoted to.
	Transaction ID `json:"transaction,omitempty"`

	// Err records a per-row commit failure. It never aborts the batch.
	Err error `json:"-"`
}

// ImportedStatement is a batch of imported rows targeting one account.
type ImportedStatement struct {
	ID         ID             `json:"id"`
	Account    ID             `json:"account"`
	ImportedAt Date           `json:"importedAt"`
	Rows       []*ImportedRow `json:"rows"`
}

// ImportConfig carries the import tolerances; like the detector bands
// they are configuration, not hard-coded assumptions.
type ImportConfig struct {
	// DateToleranceDays widens duplicate matching: a row is a duplicate
	// candidate when an existing transaction on the same account has
	// the same amount and a date within this many days. Zero means
	// exact-date matching.
	DateToleranceDays int
}

// DefaultImportConfig matches duplicates on the exact date only.
func DefaultImportConfig() ImportConfig { return ImportConfig{} }

// ImportResult aggregates the outcome of a batch commit.
type ImportResult struct {
	Statement  *ImportedStatement
	Committed  int
	Duplicates int
	Ignored    int
	Failed     int
	// Errors holds one RowError per failed row.
	Errors []error
}

// Err joins the per-row errors, or returns nil if every row went through.
func (r *ImportResult) Err() error { return errors.Join(r.Errors...) }

// PrepareStatement runs the read-side half of the import state
// machine: it standardizes every row through the ordered rule list and
// flags duplicate candidates against the existing ledger. Nothing is
// committed; the statement is recorded so the caller can inspect,
// ignore rows, and then commit.
func (s *Store) PrepareStatement(rows []StatementRow, account ID, cfg ImportConfig) *ImportedStatement {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt := &ImportedStatement{
		ID:         NewID(),
		Account:    account,
		ImportedAt: Today(),
		Rows:       make([]*ImportedRow, 0, len(rows)),
	}
	for i, raw := range rows {
		row := &ImportedRow{
			Index:       i,
			Raw:         raw,
			State:       RowUnmatched,
			Description: raw.Description,
			Operation:   OperationForSign(raw.Amount),
		}
		if ruleID := s.applyRulesLocked(row, account); !ruleID.IsZero() {
			row.Rule = ruleID
			row.State = RowRuleApplied
		}
		if dup, ok := s.findDuplicateLocked(account, raw, cfg); ok {
			row.State = RowDuplicate
			row.DuplicateOf = dup
		}
		stmt.Rows = append(stmt.Rows, row)
	}
	s.statements[stmt.ID] = stmt
	return cloneStatement(stmt)
}

// findDuplicateLocked looks for an existing transaction on the same
// account with the same amount and a date within the tolerance window.
func (s *Store) findDuplicateLocked(account ID, raw StatementRow, cfg ImportConfig) (ID, bool) {
	for _, tx := range s.sortedTransactionsLocked(func(t Transaction) bool {
		return t.Account == account
	}) {
		if !tx.Amount.Equal(raw.Amount) {
			continue
		}
		gap := tx.Date.DaysUntil(raw.Date)
		if gap < 0 {
			gap = -gap
		}
		if gap <= cfg.DateToleranceDays {
			return tx.ID, true
		}
	}
	return "", false
}

// IgnoreRow suppresses a row so CommitStatement skips it.
func (s *Store) IgnoreRow(stmtID ID, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, ok := s.statements[stmtID]
	if !ok {
		return notFound("statement", stmtID)
	}
	if index < 0 || index >= len(stmt.Rows) {
		return constraint("statement has no row %d", index)
	}
	row := stmt.Rows[index]
	if row.State == RowCommitted {
		return constraint("row %d is already committed", index)
	}
	row.State = RowIgnored
	return nil
}

// CommitStatement promotes every pending row of the statement to a
// real transaction through the regular mutation path. Rows flagged as
// duplicates or ignored are skipped; per-row failures are collected
// and never abort the batch. The context is checked between rows, so
// a cancelled import leaves a partially committed but fully linked
// store.
func (s *Store) CommitStatement(ctx context.Context, stmtID ID) (*ImportResult, error) {
	events := s.queueEvents()
	defer events.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, ok := s.statements[stmtID]
	if !ok {
		return nil, notFound("statement", stmtID)
	}
	result := &ImportResult{}

	for _, row := range stmt.Rows {
		if err := ctx.Err(); err != nil {
			result.Statement = cloneStatement(stmt)
			return result, err
		}
		switch row.State {
		case RowDuplicate:
			result.Duplicates++
			continue
		case RowIgnored:
			result.Ignored++
			continue
		case RowCommitted:
			continue
		}

		tx, err := s.createTransactionLocked(Transaction{
			Account:     stmt.Account,
			Date:        row.Raw.Date,
			Amount:      row.Raw.Amount,
			Operation:   row.Operation,
			Category:    row.Category,
			Description: row.Description,
		})
		if err != nil {
			row.Err = &RowError{Index: row.Index, Raw: row.Raw.Description, Err: err}
			result.Failed++
			result.Errors = append(result.Errors, row.Err)
			continue
		}
		row.State = RowCommitted
		row.Transaction = tx.ID
		result.Committed++
		events.add(EventTransactionCreated, tx)
	}

	result.Statement = cloneStatement(stmt)
	events.add(EventStatementImported, *result.Statement)
	return result, nil
}

// ImportStatement is the one-shot path: prepare then commit. Because
// committed rows become ordinary transactions, re-importing the same
// batch re-detects every row as a duplicate and commits nothing.
func (s *Store) ImportStatement(ctx context.Context, rows []StatementRow, account ID, cfg ImportConfig) (*ImportResult, error) {
	stmt := s.PrepareStatement(rows, account, cfg)
	return s.CommitStatement(ctx, stmt.ID)
}
