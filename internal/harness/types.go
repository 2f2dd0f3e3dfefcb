package harness

import "github.com/roach88/eav/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// LoadID is the load id the batch load ran under.
	LoadID string `json:"load_id"`

	// Entities holds the serialized entities in load order.
	Entities []ir.IRObject `json:"entities"`

	// Queries is the number of attribute set fetches the load issued.
	Queries int `json:"queries"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Entities: []ir.IRObject{},
		Errors:   []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
