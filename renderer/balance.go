package renderer

import (
	"github.com/dgpessoa/ledger"
)

// BalanceRow is one account line of the balances report.
type BalanceRow struct {
	Name    string
	Type    string
	Balance string
}

// BalanceReport lists every account balance replayed as of one date,
// plus the aggregated headline numbers.
type BalanceReport struct {
	AsOf        string
	Rows        []BalanceRow
	Investments string
	NetWorth    string
}

// NewBalanceReport replays every account as of the given date.
func NewBalanceReport(s *ledger.Store, asOf ledger.Date) *BalanceReport {
	r := &BalanceReport{AsOf: asOf.String()}
	for _, a := range s.Accounts() {
		balance, err := s.BalanceAt(a.ID, asOf)
		if err != nil {
			continue
		}
		r.Rows = append(r.Rows, BalanceRow{
			Name:    a.Name,
			Type:    string(a.Type),
			Balance: balance.String(),
		})
	}
	r.Investments = s.TotalInvestmentBalanceAt(asOf).String()
	r.NetWorth = s.NetWorthAt(asOf).String()
	return r
}

// RenderBalances renders the balances report to markdown.
func RenderBalances(r *BalanceReport) string {
	return renderTemplate("balances", "balances.md", r)
}
