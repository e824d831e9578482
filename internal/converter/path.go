package converter

import (
	"fmt"
	"strings"

	"github.com/roach88/apigraph/internal/ir"
)

// ConstructHTTPPath splits a path template at its {parameters}.
func ConstructHTTPPath(template string) (ir.HTTPPath, error) {
	out := ir.HTTPPath{Parts: []ir.HTTPPathPart{}}
	rest := template
	open := strings.IndexByte(rest, '{')
	if open < 0 {
		if strings.ContainsRune(rest, '}') {
			return ir.HTTPPath{}, fmt.Errorf("path %q: unmatched }", template)
		}
		out.Head = rest
		return out, nil
	}
	out.Head = rest[:open]
	rest = rest[open:]
	for rest != "" {
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return ir.HTTPPath{}, fmt.Errorf("path %q: unterminated parameter", template)
		}
		param := rest[1:end]
		if param == "" || strings.ContainsAny(param, "{/") {
			return ir.HTTPPath{}, fmt.Errorf("path %q: invalid parameter %q", template, param)
		}
		rest = rest[end+1:]
		next := strings.IndexByte(rest, '{')
		tail := rest
		if next >= 0 {
			tail = rest[:next]
		}
		if strings.ContainsRune(tail, '}') {
			return ir.HTTPPath{}, fmt.Errorf("path %q: unmatched }", template)
		}
		out.Parts = append(out.Parts, ir.HTTPPathPart{PathParameter: param, Tail: tail})
		rest = rest[len(tail):]
	}
	return out, nil
}

// pathParameterNames lists the parameters of p in order.
func pathParameterNames(p ir.HTTPPath) []string {
	names := make([]string, len(p.Parts))
	for i, part := range p.Parts {
		names[i] = part.PathParameter
	}
	return names
}

// CheckPathParameters reports a template that names a parameter that is
// not declared, or a declared parameter the template never uses.
func CheckPathParameters(file, declaration string, p ir.HTTPPath, declared []ir.PathParameter) error {
	inTemplate := make(map[string]bool, len(p.Parts))
	for _, name := range pathParameterNames(p) {
		if inTemplate[name] {
			return structural(file, declaration, "path parameter %q appears twice", name)
		}
		inTemplate[name] = true
	}
	inDeclared := make(map[string]bool, len(declared))
	for _, d := range declared {
		inDeclared[d.Name.OriginalName] = true
		if !inTemplate[d.Name.OriginalName] {
			return structural(file, declaration, "path parameter %q is declared but not in the path", d.Name.OriginalName)
		}
	}
	for _, name := range pathParameterNames(p) {
		if !inDeclared[name] {
			return structural(file, declaration, "path parameter %q is not declared", name)
		}
	}
	return nil
}

func joinPaths(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && strings.HasSuffix(b.String(), "/") && strings.HasPrefix(p, "/") {
			p = p[1:]
		}
		b.WriteString(p)
	}
	return b.String()
}
