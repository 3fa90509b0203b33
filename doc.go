// Package ledger is the domain engine behind a personal-finance
// dashboard: a typed ledger of accounts, transactions, transfers,
// loans, vehicles, insurance policies, financial goals and recurring
// bills.
//
// The Store is the single source of truth. Balances are never stored;
// they are always reconstructed by replaying transaction effects in
// chronological order up to the requested date. Read-side computations
// (replay, date-range analytics, recurrence detection) are pure
// functions of the store contents, so sampling the same date twice
// always yields the same answer.
//
// Imported bank statements go through a per-row state machine
// (unmatched, rule-applied, then committed, duplicate or ignored) and
// enter the store through the same mutation path as manual edits.
// Every successful mutation publishes a domain event on the
// constructor-injected EventBus.
package ledger
