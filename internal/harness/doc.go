// Package harness provides conformance testing for audience projections.
//
// A scenario names a definition, the audiences to compile it for and
// what the projected document must contain. Running it compiles the
// definition, validates the result, stores the build in an in-memory
// store, projects the stored build again and evaluates the assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	definition: definitions/pricing   # or an inline files: map
//	audiences: [external]
//	assertions:
//	  - type: includes_type
//	    id: type_a:Money
//	  - type: exclusive_type
//	    id: type_b:Quote
//	    service: service_b
//	  - type: auth_mandatory
//	    value: false
//
// A scenario with expect_error passes when compilation fails with an
// error containing that text.
//
// # Assertion Types
//
//   - includes_type, excludes_type: a type is (not) shipped
//   - includes_error, excludes_error: an error is (not) shipped
//   - includes_endpoint, excludes_endpoint: an endpoint is (not) shipped
//   - includes_service, excludes_service: a service is (not) shipped
//   - shared_type: a type is used by more than one service
//   - exclusive_type: a type is used by the named service only
//   - auth_mandatory: the SDK auth flag has the given value
//   - endpoint_count: a service ships exactly count endpoints
//   - warning_count: compilation produced exactly count warnings
//
// # Golden Files
//
// The summary of every run (sorted ids, analytics, SDK flags and
// warnings) can be compared against a golden file next to the scenario.
// Runs use a fixed run token so stored records are reproducible.
package harness
