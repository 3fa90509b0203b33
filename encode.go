package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// This file persists a store as a JSONL stream, one entity per line,
// each line carrying a "kind" discriminator. The format stays human
// readable and git-friendly: referenced entities are written before the
// entities that point at them, and transactions are written in replay
// order so decoding restores the insertion sequence from file order.

const (
	kindCategory    = "category"
	kindAccount     = "account"
	kindVehicle     = "vehicle"
	kindInsurance   = "insurance"
	kindGoal        = "goal"
	kindRule        = "rule"
	kindLoan        = "loan"
	kindTransaction = "transaction"
	kindBill        = "bill"
	kindDismissed   = "dismissed"
	kindStatement   = "statement"
)

func encodeLine(w io.Writer, kind string, entity any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("cannot marshal %s: %w", kind, err)
	}
	// splice the discriminator in front of the entity's own fields
	if _, err := fmt.Fprintf(w, "{%q:%q,%s\n", "kind", kind, data[1:]); err != nil {
		return fmt.Errorf("cannot write %s line: %w", kind, err)
	}
	return nil
}

type jdismissed struct {
	Signature string `json:"signature"`
}

// EncodeStore writes the full store contents to w in JSONL format.
func EncodeStore(w io.Writer, s *Store) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categoriesLocked() {
		if err := encodeLine(w, kindCategory, c); err != nil {
			return err
		}
	}
	for _, a := range s.accountsLocked() {
		if err := encodeLine(w, kindAccount, a); err != nil {
			return err
		}
	}
	for _, v := range s.vehiclesLocked() {
		if err := encodeLine(w, kindVehicle, v); err != nil {
			return err
		}
	}
	for _, p := range s.policiesLocked() {
		if err := encodeLine(w, kindInsurance, p); err != nil {
			return err
		}
	}
	for _, g := range s.goalsLocked() {
		if err := encodeLine(w, kindGoal, g); err != nil {
			return err
		}
	}
	for _, r := range s.rules {
		if err := encodeLine(w, kindRule, r); err != nil {
			return err
		}
	}
	for _, l := range s.loansLocked() {
		if err := encodeLine(w, kindLoan, l); err != nil {
			return err
		}
	}
	for _, tx := range s.sortedTransactionsLocked(nil) {
		if err := encodeLine(w, kindTransaction, tx); err != nil {
			return err
		}
	}
	for _, b := range s.billsLocked() {
		if err := encodeLine(w, kindBill, b); err != nil {
			return err
		}
	}
	for _, sig := range sortedKeys(s.dismissed) {
		if err := encodeLine(w, kindDismissed, jdismissed{Signature: sig}); err != nil {
			return err
		}
	}
	for _, st := range s.statementsLocked() {
		if err := encodeLine(w, kindStatement, st); err != nil {
			return err
		}
	}
	return nil
}

// DecodeStore reads a JSONL stream produced by EncodeStore into a new
// store publishing on the given bus. Stored ids are kept, and the
// transaction insertion sequence is restored from file order.
func DecodeStore(r io.Reader, bus *EventBus) (*Store, error) {
	s := NewStore(bus)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	i := 0
	for scanner.Scan() {
		i++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var identifier struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: cannot identify kind: %w", i, err)
		}

		var err error
		switch identifier.Kind {
		case kindCategory:
			var c Category
			if err = json.Unmarshal(line, &c); err == nil {
				s.categories[c.ID] = c
			}
		case kindAccount:
			var a Account
			if err = json.Unmarshal(line, &a); err == nil {
				s.accounts[a.ID] = a
			}
		case kindVehicle:
			var v Vehicle
			if err = json.Unmarshal(line, &v); err == nil {
				s.vehicles[v.ID] = v
			}
		case kindInsurance:
			var p InsurancePolicy
			if err = json.Unmarshal(line, &p); err == nil {
				s.policies[p.ID] = p
			}
		case kindGoal:
			var g Goal
			if err = json.Unmarshal(line, &g); err == nil {
				s.goals[g.ID] = g
			}
		case kindRule:
			var rule Rule
			if err = json.Unmarshal(line, &rule); err == nil {
				s.rules = append(s.rules, rule)
			}
		case kindLoan:
			var l Loan
			if err = json.Unmarshal(line, &l); err == nil {
				s.loans[l.ID] = &l
			}
		case kindTransaction:
			var tx Transaction
			if err = json.Unmarshal(line, &tx); err == nil {
				s.txSeq++
				tx.seq = s.txSeq
				s.transactions[tx.ID] = tx
			}
		case kindBill:
			var b BillTracker
			if err = json.Unmarshal(line, &b); err == nil {
				s.bills[b.ID] = &b
			}
		case kindDismissed:
			var jd jdismissed
			if err = json.Unmarshal(line, &jd); err == nil {
				s.dismissed[jd.Signature] = true
			}
		case kindStatement:
			var st ImportedStatement
			if err = json.Unmarshal(line, &st); err == nil {
				s.statements[st.ID] = &st
			}
		default:
			err = fmt.Errorf("unknown kind %q", identifier.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read store data: %w", err)
	}
	return s, nil
}

// The locked accessors below reuse the public sort orders without
// re-acquiring the lock held by EncodeStore.

func (s *Store) categoriesLocked() []Category {
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sortByName(out, func(c Category) string { return c.Name })
	return out
}

func (s *Store) accountsLocked() []Account {
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sortByName(out, func(a Account) string { return a.Name })
	return out
}

func (s *Store) vehiclesLocked() []Vehicle {
	out := make([]Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sortByName(out, func(v Vehicle) string { return v.Name })
	return out
}

func (s *Store) policiesLocked() []InsurancePolicy {
	out := make([]InsurancePolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sortByName(out, func(p InsurancePolicy) string { return p.Insurer + "|" + string(p.ID) })
	return out
}

func (s *Store) goalsLocked() []Goal {
	out := make([]Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sortByName(out, func(g Goal) string { return g.Name })
	return out
}

func (s *Store) loansLocked() []Loan {
	out := make([]Loan, 0, len(s.loans))
	for _, l := range s.loans {
		out = append(out, cloneLoan(l))
	}
	sortByName(out, func(l Loan) string { return l.Name })
	return out
}

func (s *Store) billsLocked() []BillTracker {
	out := make([]BillTracker, 0, len(s.bills))
	for _, b := range s.bills {
		out = append(out, *b)
	}
	sortByName(out, func(b BillTracker) string { return b.Name + "|" + string(b.ID) })
	return out
}

func (s *Store) statementsLocked() []*ImportedStatement {
	out := make([]*ImportedStatement, 0, len(s.statements))
	for _, st := range s.statements {
		out = append(out, st)
	}
	sortByName(out, func(st *ImportedStatement) string { return string(st.ID) })
	return out
}

func sortByName[T any](items []T, key func(T) string) {
	slices.SortFunc(items, func(a, b T) int { return strings.Compare(key(a), key(b)) })
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
