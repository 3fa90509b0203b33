package ledger

// Vehicle is an owned asset. Its running costs (fuel, maintenance,
// taxes) flow through ordinary transactions; the vehicle itself is not
// replayed like a cash account, it only contributes its declared value
// to net worth.
type Vehicle struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Plate string `json:"plate,omitempty"`
	Year  int    `json:"year,omitempty"`
	Value Money  `json:"value"`
}

// InsurancePolicy covers a vehicle. Premium payments are ordinary
// expense transactions; the policy record ties them to the asset for
// expense analytics.
type InsurancePolicy struct {
	ID       ID     `json:"id"`
	Vehicle  ID     `json:"vehicle"`
	Insurer  string `json:"insurer"`
	Premium  Money  `json:"premium"`
	DueDay   int    `json:"dueDay"`
	ValidTo  Date   `json:"validTo"`
	Category ID     `json:"category,omitempty"`
}
