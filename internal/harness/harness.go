package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/compiler"
	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/store"
	"github.com/roach88/apigraph/internal/testutil"
	"github.com/roach88/apigraph/internal/workspace"
)

// DefaultRunToken is recorded when a scenario sets no run_token.
const DefaultRunToken = "test-run-default"

// Harness is the test execution engine.
// It compiles scenarios into an isolated store with a fixed run token.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the definition and compile it for the scenario's audiences
// 2. Check the compile error against expect_error
// 3. Validate the projected document
// 4. Store the build, project it again from the store and compare
// 5. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}
	st, err := store.Open(":memory:", store.WithTokens(store.NewFixedGenerator(token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, s *Scenario) (*Result, error) {
	result := NewResult(s.Name)
	result.Summary.Audiences = append(result.Summary.Audiences, graph.ForAudiences(s.Audiences...).Audiences()...)

	res, err := h.compile(ctx, s)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		result.Summary.Error = err.Error()
		switch {
		case s.ExpectError == "":
			result.AddError(fmt.Sprintf("compile failed: %v", err))
		case !strings.Contains(err.Error(), s.ExpectError):
			result.AddError(fmt.Sprintf("expected error containing %q, got: %v", s.ExpectError, err))
		}
		return result, nil
	}
	if s.ExpectError != "" {
		result.AddError(fmt.Sprintf("expected error containing %q, compilation succeeded", s.ExpectError))
	}

	summarize(&result.Summary, res)
	for _, v := range compiler.Validate(res.IR) {
		result.AddError(v.Error())
	}
	if err := h.record(ctx, s, res, result); err != nil {
		return nil, err
	}
	for _, msg := range EvaluateAssertions(res.IR, result.Summary, s.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) compile(ctx context.Context, s *Scenario) (*compiler.Result, error) {
	var (
		ws  *workspace.Workspace
		err error
	)
	if s.Definition != "" {
		ws, err = workspace.Load(s.Definition)
	} else {
		ws, err = workspace.LoadFS(testutil.FS(s.Files), s.Name)
	}
	if err != nil {
		return nil, err
	}
	return compiler.GenerateIR(ctx, ws, compiler.Options{Audiences: s.Audiences, Logger: h.logger})
}

// record stores the build and its run, then projects the stored build
// again. A stored build must project to the same document.
func (h *Harness) record(ctx context.Context, s *Scenario, res *compiler.Result, result *Result) error {
	id, _, err := h.store.WriteBuild(ctx, res.Unfiltered, res.Graph.Snapshot())
	if err != nil {
		return err
	}
	run, err := h.store.WriteRun(ctx, store.Run{
		BuildID:     id,
		Audiences:   s.Audiences,
		Fingerprint: res.Fingerprint,
		Warnings:    len(res.Warnings),
	})
	if err != nil {
		return err
	}
	result.Run = run

	b, err := h.store.ReadBuild(ctx, id)
	if err != nil {
		return err
	}
	again, err := compiler.Refilter(b.IR, b.Graph, graph.ForAudiences(s.Audiences...))
	if err != nil {
		return fmt.Errorf("refilter stored build: %w", err)
	}
	if again.Fingerprint != res.Fingerprint {
		result.AddError(fmt.Sprintf("stored build projects to %s, compiled to %s", again.Fingerprint, res.Fingerprint))
	}
	return nil
}

// summarize fills the sorted listings of sum from a compile result.
func summarize(sum *Summary, res *compiler.Result) {
	doc := res.IR
	sum.Types = append(sum.Types, slices.Sorted(maps.Keys(doc.Types))...)
	sum.Errors = append(sum.Errors, slices.Sorted(maps.Keys(doc.Errors))...)
	sum.Services = append(sum.Services, slices.Sorted(maps.Keys(doc.Services))...)
	sum.Subpackages = append(sum.Subpackages, slices.Sorted(maps.Keys(doc.Subpackages))...)
	for _, svc := range doc.Services {
		for _, ep := range svc.Endpoints {
			sum.Endpoints = append(sum.Endpoints, ep.ID)
		}
	}
	slices.Sort(sum.Endpoints)

	info := doc.ServiceTypeReferenceInfo
	sum.SharedTypes = append(sum.SharedTypes, info.SharedTypes...)
	for sid, ids := range info.TypesReferencedOnlyByService {
		if _, shipped := doc.Services[sid]; shipped {
			sum.ExclusiveTypes[sid] = slices.Clone(ids)
		}
	}
	sum.SDKConfig = doc.SDKConfig
	for _, w := range res.Warnings {
		sum.Warnings = append(sum.Warnings, w.String())
	}
}

func contains[T ~string](sorted []T, id string) bool {
	_, ok := slices.BinarySearch(sorted, T(id))
	return ok
}

func exclusiveTo(sum Summary, service, id string) bool {
	return slices.Contains(sum.ExclusiveTypes[ir.ServiceID(service)], ir.TypeID(id))
}
