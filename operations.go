package ledger

import (
	"fmt"
	"strings"
)

// Operation is the closed set of transaction operation types.
type Operation string

const (
	OpPurchase               Operation = "purchase"
	OpIncome                 Operation = "income"
	OpTransferIn             Operation = "transfer-in"
	OpTransferOut            Operation = "transfer-out"
	OpInvestmentContribution Operation = "investment-contribution"
	OpInvestmentWithdrawal   Operation = "investment-withdrawal"
	OpLoanPayment            Operation = "loan-payment"
	OpAdjustment             Operation = "adjustment"
)

// ParseOperation validates the wire form of an operation type.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpPurchase, OpIncome, OpTransferIn, OpTransferOut,
		OpInvestmentContribution, OpInvestmentWithdrawal,
		OpLoanPayment, OpAdjustment:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", s)
	}
}

// FlowDirection is whether money enters the ledger, leaves it, or
// merely moves inside it.
type FlowDirection int

const (
	FlowNeutral FlowDirection = iota
	FlowIncome
	FlowExpense
)

func (f FlowDirection) String() string {
	switch f {
	case FlowIncome:
		return "income"
	case FlowExpense:
		return "expense"
	default:
		return "neutral"
	}
}

// ParseFlowDirection validates the wire form of a flow direction.
func ParseFlowDirection(s string) (FlowDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return FlowIncome, nil
	case "expense":
		return FlowExpense, nil
	case "neutral", "":
		return FlowNeutral, nil
	default:
		return FlowNeutral, fmt.Errorf("unknown flow direction %q", s)
	}
}

// MarshalJSON encodes the direction by name, keeping the persisted
// form readable.
func (f FlowDirection) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON accepts anything ParseFlowDirection does.
func (f *FlowDirection) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseFlowDirection(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// operationFlows is the fixed operation → flow direction mapping.
// Transfers and investment movements shuffle money between owned
// accounts, so they are neutral for analytics.
var operationFlows = map[Operation]FlowDirection{
	OpPurchase:               FlowExpense,
	OpIncome:                 FlowIncome,
	OpTransferIn:             FlowNeutral,
	OpTransferOut:            FlowNeutral,
	OpInvestmentContribution: FlowNeutral,
	OpInvestmentWithdrawal:   FlowNeutral,
	OpLoanPayment:            FlowExpense,
	OpAdjustment:             FlowNeutral,
}

// FlowOf returns the flow direction of an operation type.
func FlowOf(op Operation) FlowDirection {
	return operationFlows[op]
}

// OperationForSign infers an operation type from the sign of an amount.
// Used by the import engine when no standardization rule matched.
func OperationForSign(amount Money) Operation {
	if amount.IsNegative() {
		return OpPurchase
	}
	return OpIncome
}
