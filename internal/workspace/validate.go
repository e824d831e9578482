package workspace

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const (
	rootSchema       = "root.json"
	definitionSchema = "definition.json"
	packageSchema    = "package.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var compiledSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	names := []string{rootSchema, definitionSchema, packageSchema}
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		if err := c.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		s, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
})

// validate checks doc against the named embedded schema.
func validate(schemaName string, doc *yaml.Node) error {
	schemas, err := compiledSchemas()
	if err != nil {
		return err
	}
	v, err := toJSONValue(doc)
	if err != nil {
		return err
	}
	return schemas[schemaName].Validate(v)
}
