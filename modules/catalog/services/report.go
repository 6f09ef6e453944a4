package services

import (
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// RowResult is the terminal state of one data row.
type RowResult struct {
	Row     int      `json:"row"`
	Line    int      `json:"line"`
	Outcome Outcome  `json:"outcome"`
	Slug    string   `json:"slug,omitempty"`
	Name    string   `json:"name,omitempty"`
	Field   string   `json:"field,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

type Counts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

func (c Counts) Total() int { return c.Created + c.Updated + c.Skipped + c.Failed }

// Of returns the count for a single outcome.
func (c Counts) Of(o Outcome) int {
	switch o {
	case OutcomeCreated:
		return c.Created
	case OutcomeUpdated:
		return c.Updated
	case OutcomeSkipped:
		return c.Skipped
	case OutcomeFailed:
		return c.Failed
	default:
		return 0
	}
}

type Report struct {
	RunID          uuid.UUID   `json:"run_id"`
	Source         string      `json:"source"`
	Sheet          string      `json:"sheet,omitempty"`
	DryRun         bool        `json:"dry_run"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     time.Time   `json:"finished_at"`
	Counts         Counts      `json:"counts"`
	Total          int         `json:"total"`
	UnknownColumns []string    `json:"unknown_columns,omitempty"`
	Results        []RowResult `json:"results"`
}

func (r *Report) add(res RowResult) {
	switch res.Outcome {
	case OutcomeCreated:
		r.Counts.Created++
	case OutcomeUpdated:
		r.Counts.Updated++
	case OutcomeSkipped:
		r.Counts.Skipped++
	case OutcomeFailed:
		r.Counts.Failed++
	}
	r.Total = r.Counts.Total()
	r.Results = append(r.Results, res)
}

func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Failures returns the failed rows in file order.
func (r *Report) Failures() []RowResult {
	return r.filter(func(res RowResult) bool { return res.Outcome == OutcomeFailed })
}

// Issues returns every row that was not created or updated, in file order.
func (r *Report) Issues() []RowResult {
	return r.filter(func(res RowResult) bool {
		return res.Outcome == OutcomeFailed || res.Outcome == OutcomeSkipped
	})
}

func (r *Report) filter(keep func(RowResult) bool) []RowResult {
	out := make([]RowResult, 0)
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}
