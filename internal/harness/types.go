package harness

import (
	"github.com/erdilatifi/User-Management-App/internal/query"
	"github.com/erdilatifi/User-Management-App/internal/record"
)

// Step outcomes recorded in the trace.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
)

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq     int            `json:"seq"`
	Op      string         `json:"op"`
	Args    map[string]any `json:"args,omitempty"`
	Outcome string         `json:"outcome"`
	Result  any            `json:"result,omitempty"`
}

// ItemSnapshot is the traced form of a record. CreatedAt is left out; the
// view order already reflects it.
type ItemSnapshot struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Origin       string `json:"origin"`
}

func itemSnapshot(r record.Record) ItemSnapshot {
	return ItemSnapshot{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Organization: r.Organization,
		Origin:       string(r.Origin),
	}
}

// ViewSnapshot is the traced form of a page.
type ViewSnapshot struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Count      int            `json:"count"`
	Empty      string         `json:"empty"`
	Items      []ItemSnapshot `json:"items"`
}

func viewSnapshot(p query.Page, empty string) ViewSnapshot {
	items := make([]ItemSnapshot, len(p.Items))
	for i, r := range p.Items {
		items[i] = itemSnapshot(r)
	}
	return ViewSnapshot{
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Count:      p.Count,
		Empty:      empty,
		Items:      items,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the page visible after the last step.
	Final ViewSnapshot `json:"final"`

	// StoreCount is the number of records left in the store.
	StoreCount int `json:"store_count"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace, numbering it from 1.
func (r *Result) AddTrace(op string, args map[string]any, outcome string, result any) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Op:      op,
		Args:    args,
		Outcome: outcome,
		Result:  result,
	})
}
