// Package filecontext provides the per-file view converters work through:
// the file's location, its import table and the parser for textual type
// expressions.
package filecontext

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/roach88/apigraph/internal/casing"
	"github.com/roach88/apigraph/internal/ir"
	"github.com/roach88/apigraph/internal/schema"
)

// ErrUnknownAlias means a qualified reference used an alias the file does
// not import.
var ErrUnknownAlias = errors.New("unknown import alias")

// Reference is a symbolic name resolved against a file's import table.
type Reference struct {
	// File is the definition path the name should be looked up in.
	File string
	Name string
	// Qualified is true for alias.Name references.
	Qualified bool
	Raw       string
}

// TypeNames resolves named references found in type expressions.
type TypeNames interface {
	ResolveTypeName(ref Reference, from *Context) (ir.DeclaredTypeName, error)
}

// Context is the view of one definition file. The root api file has a
// context too; its Path is empty.
type Context struct {
	Path     string
	Filepath ir.Filepath
	// Imports maps alias to definition path.
	Imports map[string]string
	Casing  *casing.Generator
	Root    *schema.RootAPIFile
	// Types is consulted by ParseTypeReference for named references. A nil
	// Types leaves named references unchecked.
	Types TypeNames
}

// New builds the context for the definition file at p.
func New(p string, def *schema.DefinitionFile, root *schema.RootAPIFile, gen *casing.Generator) *Context {
	imports := make(map[string]string, len(def.Imports))
	dir := path.Dir(p)
	for alias, target := range def.Imports {
		imports[alias] = path.Clean(path.Join(dir, target))
	}
	return &Context{
		Path:     p,
		Filepath: ConvertFilepath(p, gen),
		Imports:  imports,
		Casing:   gen,
		Root:     root,
	}
}

// NewRoot builds the context of the root api file. Qualified references
// there name root-level definition files by stem ("commons.Money" looks in
// commons.yml).
func NewRoot(root *schema.RootAPIFile, definitionPaths []string, gen *casing.Generator) *Context {
	imports := make(map[string]string)
	for _, p := range definitionPaths {
		if strings.Contains(p, "/") {
			continue
		}
		imports[stem(p)] = p
	}
	return &Context{
		Imports: imports,
		Casing:  gen,
		Root:    root,
	}
}

// IsRoot reports whether c is the root api file context.
func (c *Context) IsRoot() bool {
	return c.Path == ""
}

// String names the file for error messages.
func (c *Context) String() string {
	if c.IsRoot() {
		return "api.yml"
	}
	return c.Path
}

// ImportAliases returns the file's import aliases, sorted.
func (c *Context) ImportAliases() []string {
	return slices.Sorted(maps.Keys(c.Imports))
}

// Resolve splits raw into the file it points at and the local name.
func (c *Context) Resolve(raw string) (Reference, error) {
	alias, name, qualified := strings.Cut(raw, ".")
	if !qualified {
		return Reference{File: c.Path, Name: raw, Raw: raw}, nil
	}
	target, ok := c.Imports[alias]
	if !ok {
		return Reference{}, fmt.Errorf("%w %q in %s", ErrUnknownAlias, alias, c)
	}
	return Reference{File: target, Name: name, Qualified: true, Raw: raw}, nil
}

// ConvertFilepath derives the IR path of a definition file:
// "commons/money.yml" becomes parts [commons, money] with file money.
func ConvertFilepath(p string, gen *casing.Generator) ir.Filepath {
	if p == "" {
		return ir.Filepath{AllParts: []ir.Name{}, PackagePath: []ir.Name{}}
	}
	segments := strings.Split(stemPath(p), "/")
	fp := ir.Filepath{
		AllParts:    make([]ir.Name, 0, len(segments)),
		PackagePath: make([]ir.Name, 0, len(segments)-1),
	}
	for i, s := range segments {
		n := gen.GenerateName(s)
		fp.AllParts = append(fp.AllParts, n)
		if i < len(segments)-1 {
			fp.PackagePath = append(fp.PackagePath, n)
		} else {
			file := n
			fp.File = &file
		}
	}
	return fp
}

// DirFilepath derives the IR path of a directory ("commons").
func DirFilepath(dir string, gen *casing.Generator) ir.Filepath {
	fp := ir.Filepath{AllParts: []ir.Name{}, PackagePath: []ir.Name{}}
	if dir == "" {
		return fp
	}
	for _, s := range strings.Split(dir, "/") {
		n := gen.GenerateName(s)
		fp.AllParts = append(fp.AllParts, n)
		fp.PackagePath = append(fp.PackagePath, n)
	}
	return fp
}

func stemPath(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func stem(p string) string {
	return path.Base(stemPath(p))
}
