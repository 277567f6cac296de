package dashboard

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaSet  map[string]*gojsonschema.Schema
	schemaErr  error
)

// schemaNamer is implemented by payload types that are validated on receipt.
type schemaNamer interface {
	schemaName() string
}

func compileSchemas() (map[string]*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemaErr = err
			return
		}
		set := make(map[string]*gojsonschema.Schema, len(entries))
		for _, e := range entries {
			raw, err := schemaFS.ReadFile("schemas/" + e.Name())
			if err != nil {
				schemaErr = err
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			name := e.Name()[:len(e.Name())-len(".json")]
			set[name] = s
		}
		schemaSet = set
	})
	return schemaSet, schemaErr
}

// validateDocument checks a decoded JSON document against the named schema
// and returns the list of violations, if any.
func validateDocument(name string, doc any) ([]string, error) {
	set, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	s, ok := set[name]
	if !ok {
		return nil, fmt.Errorf("unknown payload schema %q", name)
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems, nil
}
