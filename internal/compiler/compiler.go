// Package compiler turns a loaded workspace into an intermediate
// representation, optionally projected to a set of audiences.
package compiler

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/converter"
	"github.com/roach88/apigraph/internal/filecontext"
	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/packagetree"
	"github.com/roach88/apigraph/internal/resolver"
	"github.com/roach88/apigraph/internal/schema"
	"github.com/roach88/apigraph/internal/workspace"
)

// Header names SDKs send to identify themselves.
const (
	LanguageHeader   = "X-SDK-Language"
	SDKNameHeader    = "X-SDK-Name"
	SDKVersionHeader = "X-SDK-Version"
)

// ErrorInstanceIDKey is the property generators use for error instance
// ids.
const ErrorInstanceIDKey = "errorInstanceId"

// Result is the outcome of one build. IR is the document for the
// requested audiences; it is Unfiltered itself, and Filtered is nil,
// when no filtering applied.
type Result struct {
	IR          *ir.IntermediateRepresentation
	Unfiltered  *ir.IntermediateRepresentation
	Graph       *graph.Graph
	Filtered    *graph.FilteredIR
	Warnings    []converter.Warning
	Fingerprint string
}

// fileResult is everything converted from one definition file.
type fileResult struct {
	path    string
	context *filecontext.Context
	docs    string
	types   []converter.ConvertedType
	errors  []converter.ConvertedError
	service *converter.ConvertedService
}

// GenerateIR compiles ws. Files convert in parallel, bounded by
// opts.Concurrency, and merge in sorted path order, so the output does
// not depend on scheduling.
func GenerateIR(ctx context.Context, ws *workspace.Workspace, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	log := opts.Logger.With("api", ws.Name)

	gen := casing.New(opts.Language)
	r := resolver.New(ws, gen)
	rootCtx := r.Index.Root()
	rootFile := &ws.RootAPIFile

	doc, rootParts, err := convertRoot(ws, rootCtx, r)
	if err != nil {
		return nil, err
	}

	// Conversion errors are kept per file and the first in path order is
	// reported, so the error does not depend on scheduling either.
	paths := ws.DefinitionPaths()
	results := make([]fileResult, len(paths))
	errs := make([]error, len(paths))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			res, err := convertFile(p, ws, r, rootParts)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = res
			log.Debug("converted file",
				"file", p,
				"types", len(res.types),
				"errors", len(res.errors),
				"service", res.service != nil,
			)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files := make(map[string]string, len(paths))
	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		files[results[i].context.Filepath.Key()] = paths[i]
	}

	refs := graph.New(opts.Filter())
	tree := packagetree.New()
	var warnings []converter.Warning
	for _, res := range results {
		w, err := merge(res, doc, refs, tree)
		if err != nil {
			return nil, err
		}
		for _, warning := range w {
			log.Warn("dropped example",
				"file", warning.File,
				"declaration", warning.Declaration,
				"reason", warning.Message,
			)
		}
		warnings = append(warnings, w...)
	}

	if cycles := FindAliasCycles(doc.Types); len(cycles) > 0 {
		first := cycles[0]
		decl := doc.Types[first.Path[0]]
		return nil, structural(files[decl.Name.Filepath.Key()], decl.Name.Name.OriginalName, "alias cycle %s", first)
	}

	if err := applyPackageMarkers(ws, gen, tree); err != nil {
		return nil, err
	}
	for _, n := range tree.Nodes() {
		if err := refs.AddSubpackage(n); err != nil {
			return nil, err
		}
	}

	doc.RootPackage, doc.Subpackages = tree.Build(nil)
	doc.ServiceTypeReferenceInfo = ComputeServiceTypeReferenceInfo(refs)
	if err := refs.Validate(); err != nil {
		return nil, fmt.Errorf("reference graph: %w", err)
	}
	doc.SDKConfig = sdkConfig(doc, rootFile.Auth != nil)

	res, err := project(doc, refs)
	if err != nil {
		return nil, err
	}
	res.Warnings = warnings

	log.Info("built IR",
		"types", len(res.IR.Types),
		"errors", len(res.IR.Errors),
		"services", len(res.IR.Services),
		"filter", refs.Filter().String(),
		"fingerprint", res.Fingerprint,
	)
	return res, nil
}

// Refilter projects a stored unfiltered build for filter without
// reparsing. Analytics are carried over from unfiltered.
func Refilter(unfiltered *ir.IntermediateRepresentation, snapshot graph.Snapshot, filter graph.Filter) (*Result, error) {
	refs, err := graph.FromSnapshot(snapshot, filter)
	if err != nil {
		return nil, err
	}
	return project(unfiltered, refs)
}

func convertRoot(ws *workspace.Workspace, c *filecontext.Context, r *resolver.Resolvers) (*ir.IntermediateRepresentation, converter.RootParts, error) {
	root := &ws.RootAPIFile
	var parts converter.RootParts

	auth, err := converter.ConvertAPIAuth(root, c)
	if err != nil {
		return nil, parts, err
	}
	headers, err := converter.ConvertHeaders(root.Headers, c)
	if err != nil {
		return nil, parts, err
	}
	environments, err := converter.ConvertEnvironments(root, c)
	if err != nil {
		return nil, parts, err
	}
	strategy, err := converter.ConvertErrorDiscriminationStrategy(root, c)
	if err != nil {
		return nil, parts, err
	}
	pathParams, err := converter.ConvertPathParameters(root.PathParameters, ir.PathParameterRoot, c, r)
	if err != nil {
		return nil, parts, err
	}
	variables, err := converter.ConvertVariables(root, c)
	if err != nil {
		return nil, parts, err
	}
	globals, err := r.Errors.ResolveGlobalErrors()
	if err != nil {
		return nil, parts, err
	}

	var basePath *ir.HTTPPath
	if root.BasePath != "" {
		p, err := converter.ConstructHTTPPath(root.BasePath)
		if err != nil {
			return nil, parts, structural(c.String(), "base-path", "%v", err)
		}
		if err := converter.CheckPathParameters(c.String(), "base-path", p, pathParams); err != nil {
			return nil, parts, err
		}
		basePath = &p
	}

	parts = converter.RootParts{
		BasePath:       root.BasePath,
		PathParameters: pathParams,
		Headers:        headers,
		GlobalErrors:   globals,
	}
	doc := &ir.IntermediateRepresentation{
		APIName:        c.Casing.GenerateName(ws.Name),
		APIDisplayName: root.DisplayName,
		APIDocs:        root.Docs,
		Auth:           auth,
		Headers:        headers,
		Types:          make(map[ir.TypeID]ir.TypeDeclaration),
		Errors:         make(map[ir.ErrorID]ir.ErrorDeclaration),
		Services:       make(map[ir.ServiceID]ir.HTTPService),
		Constants: ir.Constants{
			ErrorInstanceIDKey: c.Casing.GenerateNameAndWireValue(ErrorInstanceIDKey, ErrorInstanceIDKey),
		},
		Environments:                environments,
		ErrorDiscriminationStrategy: strategy,
		BasePath:                    basePath,
		PathParameters:              pathParams,
		Variables:                   variables,
		Subpackages:                 map[ir.SubpackageID]ir.Subpackage{},
	}
	return doc, parts, nil
}

// convertFile converts one definition file. It only reads shared state.
func convertFile(p string, ws *workspace.Workspace, r *resolver.Resolvers, root converter.RootParts) (fileResult, error) {
	c, ok := r.Index.Context(p)
	if !ok {
		return fileResult{}, fmt.Errorf("%s: no file context", p)
	}
	def := ws.DefinitionFiles[p]
	res := fileResult{path: p, context: c, docs: def.Docs}

	for name, decl := range def.Types.All() {
		converted, err := converter.ConvertTypeDeclaration(name, decl, c, r)
		if err != nil {
			return fileResult{}, err
		}
		res.types = append(res.types, converted)
	}

	if def.Errors.Len() > 0 && ws.RootAPIFile.ErrorDiscrimination == nil {
		first := def.Errors.Keys()[0]
		return fileResult{}, structural(p, first, "error-discrimination is missing in %s but this file declares errors", ws.RootFile)
	}
	for name, decl := range def.Errors.All() {
		converted, err := converter.ConvertErrorDeclaration(name, decl, c, r)
		if err != nil {
			return fileResult{}, err
		}
		res.errors = append(res.errors, converted)
	}

	if def.Service != nil {
		svc, err := converter.ConvertHTTPService(*def.Service, c, r, root)
		if err != nil {
			return fileResult{}, err
		}
		res.service = &svc
	}
	return res, nil
}

// merge adds one file's declarations to the document, the reference
// graph and the package tree. It runs on one goroutine.
func merge(res fileResult, doc *ir.IntermediateRepresentation, refs *graph.Graph, tree *packagetree.Tree) ([]converter.Warning, error) {
	fp := res.context.Filepath
	tree.AddSubpackage(fp)
	if res.docs != "" {
		tree.AddDocs(fp, res.docs)
	}

	var warnings []converter.Warning
	for _, t := range res.types {
		id := t.Declaration.Name.TypeID
		doc.Types[id] = t.Declaration
		tree.AddType(id, fp)
		if err := refs.AddType(id, t.Declaration.ReferencedTypes); err != nil {
			return nil, err
		}
		if err := refs.MarkTypeForAudiences(id, t.Audiences); err != nil {
			return nil, err
		}
		warnings = append(warnings, t.Warnings...)
	}

	for _, e := range res.errors {
		id := e.Declaration.Name.ErrorID
		doc.Errors[id] = e.Declaration
		tree.AddError(id, fp)
		if err := refs.AddError(e.Declaration); err != nil {
			return nil, err
		}
		if err := refs.MarkErrorForAudiences(id, e.Audiences); err != nil {
			return nil, err
		}
	}

	if s := res.service; s != nil {
		id := s.Service.Name.ServiceID
		doc.Services[id] = s.Service
		tree.AddService(id, fp, len(s.Service.Endpoints) > 0)
		warnings = append(warnings, s.Warnings...)
		all := make([]ir.EndpointID, 0, len(s.Endpoints))
		for _, ep := range s.Endpoints {
			all = append(all, ep.ID)
			if err := refs.AddEndpoint(id, graph.Endpoint{
				ID:               ep.ID,
				ReferencedTypes:  ep.ReferencedTypes,
				ReferencedErrors: ep.ReferencedErrors,
			}); err != nil {
				return nil, err
			}
		}
		if len(s.Audiences) > 0 {
			if err := refs.MarkEndpointForAudience(id, all, s.Audiences); err != nil {
				return nil, err
			}
		}
		for _, ep := range s.Endpoints {
			if len(ep.Audiences) == 0 {
				continue
			}
			if err := refs.MarkEndpointForAudience(id, []ir.EndpointID{ep.ID}, ep.Audiences); err != nil {
				return nil, err
			}
		}
	}
	return warnings, nil
}

// applyPackageMarkers applies docs and navigation from __package__.yml
// files.
func applyPackageMarkers(ws *workspace.Workspace, gen *casing.Generator, tree *packagetree.Tree) error {
	for _, dir := range ws.MarkerDirs() {
		marker := ws.PackageMarkers[dir]
		file := path.Join(dir, workspace.MarkerFile)
		from := filecontext.DirFilepath(dir, gen)
		if marker.Docs != "" {
			tree.AddDocs(from, marker.Docs)
		}
		nav := marker.Navigation
		if nav == nil {
			continue
		}
		switch nav.Kind {
		case schema.NavigationRedirect:
			to := filecontext.ConvertFilepath(path.Join(dir, nav.PointsTo), gen)
			if err := tree.AddPackageRedirection(from, to); err != nil {
				return structural(file, "navigation", "%v", err)
			}
		case schema.NavigationOrder:
			order := make([]ir.SubpackageID, len(nav.Order))
			for i, child := range nav.Order {
				order[i] = ir.NewSubpackageID(filecontext.ConvertFilepath(path.Join(dir, child), gen))
			}
			var err error
			if dir == "" {
				err = tree.SortRootPackage(order)
			} else {
				err = tree.SortSubpackage(ir.NewSubpackageID(from), order)
			}
			if err != nil {
				return structural(file, "navigation", "%v", err)
			}
		}
	}
	return nil
}

// project builds the Result for refs' filter from an unfiltered document.
func project(unfiltered *ir.IntermediateRepresentation, refs *graph.Graph) (*Result, error) {
	res := &Result{Unfiltered: unfiltered, Graph: refs}
	if refs.Filter().IsAll() || refs.HasNoAudiences() {
		res.IR = unfiltered
	} else {
		f := refs.Build()
		res.Filtered = &f
		res.IR = prune(unfiltered, f)
	}
	fingerprint, err := ir.Fingerprint(res.IR)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	res.Fingerprint = fingerprint
	return res, nil
}

// prune copies doc keeping only what f contains. A pruned service takes
// its endpoints with it; a kept service keeps only kept endpoints.
func prune(doc *ir.IntermediateRepresentation, f graph.FilteredIR) *ir.IntermediateRepresentation {
	out := *doc
	out.Types = make(map[ir.TypeID]ir.TypeDeclaration)
	for id, t := range doc.Types {
		if f.HasType(id) {
			out.Types[id] = t
		}
	}
	out.Errors = make(map[ir.ErrorID]ir.ErrorDeclaration)
	for id, e := range doc.Errors {
		if f.HasError(id) {
			out.Errors[id] = e
		}
	}
	out.Services = make(map[ir.ServiceID]ir.HTTPService)
	for id, s := range doc.Services {
		if !f.HasService(id) {
			continue
		}
		kept := make([]ir.HTTPEndpoint, 0, len(s.Endpoints))
		for _, ep := range s.Endpoints {
			if f.HasEndpoint(ep.ID) {
				kept = append(kept, ep)
			}
		}
		s.Endpoints = kept
		out.Services[id] = s
	}

	tree := packagetree.FromPackages(doc.RootPackage, doc.Subpackages, func(id ir.ServiceID) bool {
		return len(doc.Services[id].Endpoints) > 0
	})
	out.RootPackage, out.Subpackages = tree.Build(f)
	out.SDKConfig = sdkConfig(&out, len(doc.Auth.Schemes) > 0)
	return &out
}

// sdkConfig derives capability flags from the endpoints doc ships. Auth
// is mandatory only when the API declares auth and every endpoint
// requires it.
func sdkConfig(doc *ir.IntermediateRepresentation, hasRootAuth bool) ir.SDKConfig {
	cfg := ir.SDKConfig{
		IsAuthMandatory: hasRootAuth,
		PlatformHeaders: ir.PlatformHeaders{
			Language:   LanguageHeader,
			SDKName:    SDKNameHeader,
			SDKVersion: SDKVersionHeader,
		},
	}
	for _, s := range doc.Services {
		for _, ep := range s.Endpoints {
			if !ep.Auth {
				cfg.IsAuthMandatory = false
			}
			if ep.Response == nil {
				continue
			}
			switch ep.Response.Kind {
			case ir.ResponseStreaming:
				cfg.HasStreamingEndpoints = true
			case ir.ResponseFileDownload:
				cfg.HasFileDownloadEndpoints = true
			}
		}
	}
	return cfg
}
