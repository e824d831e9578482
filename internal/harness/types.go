package harness

import (
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/store"
)

// Summary is the golden-file view of a projection. Every list is sorted.
type Summary struct {
	Scenario       string                       `json:"scenario"`
	Audiences      []string                     `json:"audiences"`
	Types          []ir.TypeID                  `json:"types"`
	Errors         []ir.ErrorID                 `json:"errors"`
	Services       []ir.ServiceID               `json:"services"`
	Endpoints      []ir.EndpointID              `json:"endpoints"`
	Subpackages    []ir.SubpackageID            `json:"subpackages"`
	SharedTypes    []ir.TypeID                  `json:"shared_types"`
	ExclusiveTypes map[ir.ServiceID][]ir.TypeID `json:"exclusive_types"`
	SDKConfig      ir.SDKConfig                 `json:"sdk_config"`
	Warnings       []string                     `json:"warnings"`
	Error          string                       `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Errors contains assertion and consistency failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Summary describes what the projection shipped.
	Summary Summary `json:"summary"`

	// Run is the record written to the scenario's store. Zero when
	// compilation failed.
	Run store.Run `json:"run"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Summary: Summary{
			Scenario:       name,
			Audiences:      []string{},
			Types:          []ir.TypeID{},
			Errors:         []ir.ErrorID{},
			Services:       []ir.ServiceID{},
			Endpoints:      []ir.EndpointID{},
			Subpackages:    []ir.SubpackageID{},
			SharedTypes:    []ir.TypeID{},
			ExclusiveTypes: map[ir.ServiceID][]ir.TypeID{},
			Warnings:       []string{},
		},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
