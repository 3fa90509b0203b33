package ledger

import (
	"regexp"
	"strings"
)

// Rule is a user-defined standardization rule applied to imported
// statement rows. Rules are evaluated in creation order and the first
// match wins; unmatched rows keep their raw description and stay
// uncategorized.
type Rule struct {
	ID      ID     `json:"id"`
	Match   string `json:"match"`
	IsRegex bool   `json:"isRegex,omitempty"`
	// Account restricts the rule to rows imported into that account.
	// Zero means the rule applies everywhere.
	Account ID `json:"account,omitempty"`

	// Transformations applied on match. Empty fields leave the row as is.
	SetDescription string    `json:"setDescription,omitempty"`
	SetCategory    ID        `json:"setCategory,omitempty"`
	SetOperation   Operation `json:"setOperation,omitempty"`
}

// Matches reports whether the rule applies to the given raw
// description and target account. Substring matching is
// case-insensitive; regex patterns are matched as written.
func (r Rule) Matches(rawDescription string, account ID) bool {
	if !r.Account.IsZero() && r.Account != account {
		return false
	}
	if r.IsRegex {
		re, err := regexp.Compile(r.Match)
		if err != nil {
			// invalid patterns are rejected at creation; a rule decoded
			// from a corrupt file simply never matches
			return false
		}
		return re.MatchString(rawDescription)
	}
	return strings.Contains(strings.ToLower(rawDescription), strings.ToLower(r.Match))
}

// applyRulesLocked evaluates the ordered rule list against the row and
// applies the first matching rule's transformations. It returns the
// applied rule's id, or zero if nothing matched.
func (s *Store) applyRulesLocked(row *ImportedRow, account ID) ID {
	for _, r := range s.rules {
		if !r.Matches(row.Raw.Description, account) {
			continue
		}
		if r.SetDescription != "" {
			row.Description = r.SetDescription
		}
		if !r.SetCategory.IsZero() {
			row.Category = r.SetCategory
		}
		if r.SetOperation != "" {
			row.Operation = r.SetOperation
		}
		return r.ID
	}
	return ""
}

// ApplyRule runs a single rule against a raw description, returning
// the standardized description, category and operation it would
// produce. Used by the UI to preview a rule before saving it.
func (s *Store) ApplyRule(ruleID ID, rawDescription string, account ID) (description string, category ID, op Operation, matched bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rule *Rule
	for i := range s.rules {
		if s.rules[i].ID == ruleID {
			rule = &s.rules[i]
			break
		}
	}
	if rule == nil {
		return "", "", "", false, notFound("rule", ruleID)
	}
	if !rule.Matches(rawDescription, account) {
		return rawDescription, "", "", false, nil
	}
	description = rawDescription
	if rule.SetDescription != "" {
		description = rule.SetDescription
	}
	return description, rule.SetCategory, rule.SetOperation, true, nil
}
