package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string  // Assertion type for categorization
	Expected string  // Human-readable expected outcome
	Actual   string  // Human-readable actual outcome
	Summary  Summary // What the projection shipped
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	audiences := "all"
	if len(e.Summary.Audiences) > 0 {
		audiences = strings.Join(e.Summary.Audiences, ", ")
	}
	fmt.Fprintf(&buf, "\nProjection for %s:\n", audiences)
	fmt.Fprintf(&buf, "  %d types, %d errors, %d endpoints\n",
		len(e.Summary.Types), len(e.Summary.Errors), len(e.Summary.Endpoints))
	return buf.String()
}

// assertMembership checks that id is (or is not) in the sorted listing.
func assertMembership[T ~string](sum Summary, a Assertion, kind string, listing []T, want bool) error {
	if contains(listing, a.ID) == want {
		return nil
	}
	verb, actual := "shipped", "not shipped"
	if !want {
		verb, actual = "not shipped", "shipped"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s %s", kind, a.ID, verb),
		Actual:   actual,
		Summary:  sum,
	}
}

// assertSharedType checks that a type is used by more than one service.
func assertSharedType(sum Summary, a Assertion) error {
	if contains(sum.SharedTypes, a.ID) {
		return nil
	}
	actual := "not referenced by any service"
	for sid, ids := range sum.ExclusiveTypes {
		if slices.Contains(ids, ir.TypeID(a.ID)) {
			actual = fmt.Sprintf("exclusive to %s", sid)
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("type %s shared between services", a.ID),
		Actual:   actual,
		Summary:  sum,
	}
}

// assertExclusiveType checks that a type is used by one service only.
func assertExclusiveType(sum Summary, a Assertion) error {
	if exclusiveTo(sum, a.Service, a.ID) {
		return nil
	}
	actual := "not exclusive to it"
	if contains(sum.SharedTypes, a.ID) {
		actual = "shared"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("type %s used only by %s", a.ID, a.Service),
		Actual:   actual,
		Summary:  sum,
	}
}

// assertEndpointCount checks how many endpoints a shipped service keeps.
func assertEndpointCount(doc *ir.IntermediateRepresentation, sum Summary, a Assertion) error {
	count := len(doc.Services[ir.ServiceID(a.Service)].Endpoints)
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d endpoints in %s", *a.Count, a.Service),
		Actual:   fmt.Sprintf("%d endpoints", count),
		Summary:  sum,
	}
}

// EvaluateAssertions runs each assertion against the projected document
// and returns the failures.
func EvaluateAssertions(doc *ir.IntermediateRepresentation, sum Summary, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		if err := validateAssertion(i, &a); err != nil {
			errors = append(errors, err.Error())
			continue
		}

		var err error
		switch a.Type {
		case AssertIncludesType, AssertExcludesType:
			err = assertMembership(sum, a, "type", sum.Types, a.Type == AssertIncludesType)
		case AssertIncludesError, AssertExcludesError:
			err = assertMembership(sum, a, "error", sum.Errors, a.Type == AssertIncludesError)
		case AssertIncludesEndpoint, AssertExcludesEndpoint:
			err = assertMembership(sum, a, "endpoint", sum.Endpoints, a.Type == AssertIncludesEndpoint)
		case AssertIncludesService, AssertExcludesService:
			err = assertMembership(sum, a, "service", sum.Services, a.Type == AssertIncludesService)
		case AssertSharedType:
			err = assertSharedType(sum, a)
		case AssertExclusiveType:
			err = assertExclusiveType(sum, a)
		case AssertAuthMandatory:
			if got := sum.SDKConfig.IsAuthMandatory; got != *a.Value {
				err = &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("auth mandatory = %t", *a.Value),
					Actual:   fmt.Sprintf("auth mandatory = %t", got),
					Summary:  sum,
				}
			}
		case AssertEndpointCount:
			err = assertEndpointCount(doc, sum, a)
		case AssertWarningCount:
			if len(sum.Warnings) != *a.Count {
				err = &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("%d warnings", *a.Count),
					Actual:   fmt.Sprintf("%d warnings: %s", len(sum.Warnings), strings.Join(sum.Warnings, "; ")),
					Summary:  sum,
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
