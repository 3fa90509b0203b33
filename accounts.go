package ledger

import (
	"fmt"
	"strings"
)

// AccountType classifies an account for replay and aggregation.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountCredit     AccountType = "credit"
	AccountOther      AccountType = "other"
)

// ParseAccountType validates the wire form of an account type.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case AccountChecking, AccountSavings, AccountInvestment, AccountCredit, AccountOther:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Account is a cash account of the ledger.
//
// The current balance is never stored: it is always derived by
// replaying the account's transactions onto the opening balance.
type Account struct {
	ID             ID          `json:"id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	OpeningBalance Money       `json:"openingBalance"`
	Currency       string      `json:"currency"`
}

// Category names a transaction grouping and pins its flow direction.
//
// The direction must agree with the operation types that use it; the
// store validates the pairing against the fixed operation → flow table.
type Category struct {
	ID   ID            `json:"id"`
	Name string        `json:"name"`
	Flow FlowDirection `json:"flow"`
}
