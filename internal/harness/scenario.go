package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a definition, the
// audiences to project it for, and what the projection must contain.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is a directory holding api.yml and definition files.
	// Relative paths resolve against the scenario file.
	Definition string `yaml:"definition,omitempty"`

	// Files is an inline definition, path -> content. Exactly one of
	// Definition and Files is set.
	Files map[string]string `yaml:"files,omitempty"`

	// Audiences selects the projection. Empty means every declaration.
	Audiences []string `yaml:"audiences,omitempty"`

	// ExpectError, when set, must appear in the compile error. The
	// scenario fails if compilation succeeds.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the projected document.
	Assertions []Assertion `yaml:"assertions"`

	// RunToken is the token recorded for the run. If empty, defaults to
	// "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`
}

// Assertion validates one property of the projected document.
type Assertion struct {
	// Type specifies the assertion type, one of the Assert* constants.
	Type string `yaml:"type"`

	// ID is a type, error, endpoint or service id.
	ID string `yaml:"id,omitempty"`

	// Service scopes exclusive_type and endpoint_count.
	Service string `yaml:"service,omitempty"`

	// Value is the expected flag for auth_mandatory.
	Value *bool `yaml:"value,omitempty"`

	// Count is the expected number for endpoint_count and warning_count.
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertIncludesType     = "includes_type"
	AssertExcludesType     = "excludes_type"
	AssertIncludesError    = "includes_error"
	AssertExcludesError    = "excludes_error"
	AssertIncludesEndpoint = "includes_endpoint"
	AssertExcludesEndpoint = "excludes_endpoint"
	AssertIncludesService  = "includes_service"
	AssertExcludesService  = "excludes_service"
	AssertSharedType       = "shared_type"
	AssertExclusiveType    = "exclusive_type"
	AssertAuthMandatory    = "auth_mandatory"
	AssertEndpointCount    = "endpoint_count"
	AssertWarningCount     = "warning_count"
)

// needsID lists the assertion types that name a declaration.
var needsID = []string{
	AssertIncludesType, AssertExcludesType,
	AssertIncludesError, AssertExcludesError,
	AssertIncludesEndpoint, AssertExcludesEndpoint,
	AssertIncludesService, AssertExcludesService,
	AssertSharedType, AssertExclusiveType,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Definition != "" && !filepath.IsAbs(scenario.Definition) {
		scenario.Definition = filepath.Join(filepath.Dir(path), scenario.Definition)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Golden files and definitions live next to scenarios.
			if path != dir && (d.Name() == "golden" || d.Name() == "definitions") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	slices.Sort(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Definition == "" && len(s.Files) == 0:
		return fmt.Errorf("one of definition or files is required")
	case s.Definition != "" && len(s.Files) > 0:
		return fmt.Errorf("definition and files are mutually exclusive")
	}
	if s.Definition != "" {
		if info, err := os.Stat(s.Definition); err != nil || !info.IsDir() {
			return fmt.Errorf("definition directory not found: %s", s.Definition)
		}
	}

	for i, a := range s.Audiences {
		if a == "" {
			return fmt.Errorf("audiences[%d]: must not be empty", i)
		}
	}

	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch {
	case slices.Contains(needsID, a.Type):
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if a.Type == AssertExclusiveType && a.Service == "" {
			return fmt.Errorf("assertions[%d]: service is required for exclusive_type", index)
		}
	case a.Type == AssertAuthMandatory:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for auth_mandatory", index)
		}
	case a.Type == AssertEndpointCount:
		if a.Service == "" {
			return fmt.Errorf("assertions[%d]: service is required for endpoint_count", index)
		}
		fallthrough
	case a.Type == AssertWarningCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
