package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/apigraph/internal/schema"
)

// Load reads the definition rooted at dir.
func Load(dir string) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("definition directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	return LoadFS(os.DirFS(abs), filepath.Base(abs))
}

// LoadFS reads a definition from fsys. name is used when the root file
// does not set one.
func LoadFS(fsys fs.FS, name string) (*Workspace, error) {
	l := &loader{fsys: fsys, cue: cuecontext.New()}
	files, err := l.scan()
	if err != nil {
		return nil, err
	}

	ws := &Workspace{
		Name:            name,
		DefinitionFiles: make(map[string]schema.DefinitionFile),
		PackageMarkers:  make(map[string]schema.PackageMarkerFile),
	}
	for _, candidate := range RootFiles {
		if _, ok := files[candidate]; ok {
			ws.RootFile = candidate
			break
		}
	}
	if ws.RootFile == "" {
		return nil, fmt.Errorf("%w: expected one of %s", ErrNoRootFile, strings.Join(RootFiles, ", "))
	}

	for _, p := range sortedKeys(files) {
		switch {
		case p == ws.RootFile:
			if err := l.decode(p, rootSchema, &ws.RootAPIFile); err != nil {
				return nil, err
			}
		case path.Base(p) == MarkerFile:
			var marker schema.PackageMarkerFile
			if err := l.decode(p, packageSchema, &marker); err != nil {
				return nil, err
			}
			dir := path.Dir(p)
			if dir == "." {
				dir = ""
			}
			ws.PackageMarkers[dir] = marker
		case isRootCandidate(p):
			return nil, &LoadError{File: p, Message: fmt.Sprintf("duplicate root file, already loaded %s", ws.RootFile)}
		default:
			var def schema.DefinitionFile
			if err := l.decode(p, definitionSchema, &def); err != nil {
				return nil, err
			}
			ws.DefinitionFiles[p] = def
		}
	}
	if ws.RootAPIFile.Name != "" {
		ws.Name = ws.RootAPIFile.Name
	}
	return ws, nil
}

type loader struct {
	fsys fs.FS
	cue  *cue.Context
}

// scan collects every loadable file, skipping hidden entries.
func (l *loader) scan() (map[string]struct{}, error) {
	files := make(map[string]struct{})
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch path.Ext(p) {
		case ".yml", ".yaml", ".cue":
			files[p] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan definition: %w", err)
	}
	return files, nil
}

// decode reads p, checks it against the named schema and decodes it into out.
func (l *loader) decode(p, schemaName string, out any) error {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return &LoadError{File: p, Message: "read failed", Err: err}
	}
	if path.Ext(p) == ".cue" {
		if data, err = l.cueToYAML(p, data); err != nil {
			return err
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &LoadError{File: p, Message: err.Error(), Err: err}
	}
	if doc.Kind == 0 {
		// empty file
		return nil
	}
	if err := validate(schemaName, &doc); err != nil {
		return &LoadError{File: p, Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	if err := doc.Decode(out); err != nil {
		return &LoadError{File: p, Line: yamlErrorLine(err), Message: err.Error(), Err: err}
	}
	return nil
}

func (l *loader) cueToYAML(p string, data []byte) ([]byte, error) {
	v := l.cue.CompileBytes(data, cue.Filename(p))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(p, err)
	}
	out, err := cueyaml.Encode(v)
	if err != nil {
		return nil, cueLoadError(p, err)
	}
	return out, nil
}

func cueLoadError(p string, err error) *LoadError {
	le := &LoadError{File: p, Message: cueerrors.Details(err, nil), Err: err}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			le.Line = pos.Line()
			le.Message = e.Error()
			break
		}
	}
	return le
}

// yamlErrorLine pulls the first "line N:" out of a decode error.
func yamlErrorLine(err error) int {
	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return 0
	}
	n := 0
	for _, r := range msg[i+len("line "):] {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// toJSONValue converts a YAML document to the generic form the JSON
// Schema validator expects.
func toJSONValue(doc *yaml.Node) (any, error) {
	var raw any
	if err := doc.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isRootCandidate(p string) bool {
	return slices.Contains(RootFiles, p)
}

func sortedKeys(m map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(m))
}
