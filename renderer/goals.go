package renderer

import (
	"fmt"

	"github.com/dgpessoa/ledger"
)

// GoalRow is one goal line of the goals report.
type GoalRow struct {
	Name      string
	Saved     string
	Target    string
	Completed string
	Achieved  bool
}

// GoalsReport lists every goal with its replayed progress.
type GoalsReport struct {
	AsOf string
	Rows []GoalRow
}

// NewGoalsReport derives progress for every goal as of the given date.
func NewGoalsReport(s *ledger.Store, asOf ledger.Date) *GoalsReport {
	r := &GoalsReport{AsOf: asOf.String()}
	for _, g := range s.Goals() {
		progress, err := s.GoalProgressAt(g.ID, asOf)
		if err != nil {
			continue
		}
		r.Rows = append(r.Rows, GoalRow{
			Name:      g.Name,
			Saved:     progress.Saved.String(),
			Target:    progress.Target.String(),
			Completed: fmt.Sprintf("%.1f%%", float64(progress.Completed)),
			Achieved:  progress.Achieved,
		})
	}
	return r
}

// RenderGoals renders the goals report to markdown.
func RenderGoals(r *GoalsReport) string {
	return renderTemplate("goals", "goals.md", r)
}
