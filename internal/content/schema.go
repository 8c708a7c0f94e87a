package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		out := make(map[string]*jsonschema.Schema)
		for _, name := range []string{"site", "publications", "news"} {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				schemasErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			url := name + ".json"
			if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
				schemasErr = fmt.Errorf("load schema %s: %w", name, err)
				return
			}
			s, err := compiler.Compile(url)
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			out[name] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// decodeYAML validates raw against the named schema and then decodes it
// into out. YAML is converted through JSON so the validator sees plain
// JSON values.
func decodeYAML(schema, file string, raw []byte, out any) error {
	all, err := compileSchemas()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w: %s", file, ErrInvalid, err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", file, ErrInvalid, err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("%s: %w: %s", file, ErrInvalid, err)
	}
	if err := all[schema].Validate(v); err != nil {
		return fmt.Errorf("%s: %w: %s", file, ErrInvalid, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %s", file, ErrInvalid, err)
	}
	return nil
}
