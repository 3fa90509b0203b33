package ledger

// Goal is a savings target backed by one or more accounts. Progress is
// always derived from replayed balances of the linked accounts, never
// stored.
type Goal struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Target     Money  `json:"target"`
	TargetDate Date   `json:"targetDate"`
	Accounts   []ID   `json:"accounts"`
}

// GoalProgress is the derived state of a goal as of a date.
type GoalProgress struct {
	Goal      ID
	AsOf      Date
	Saved     Money
	Target    Money
	Achieved  bool
	Completed Percent
}
