// Where: internal/schema/schema.go
// What: Compiled payload schemas for webhook deliveries.
// Why: Reject malformed alert payloads before any trading logic sees them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	"github.com/tvwb/tradingview-webhooks-bot/assets"
)

// Schema names available for validation and dashboard display.
const (
	Order    = "order"
	Position = "position"
)

type compiled struct {
	schema *jsonschema.Schema
	json   string
}

var (
	loadOnce sync.Once
	loadErr  error
	schemas  map[string]compiled
)

// Validate checks a JSON payload against the named schema.
func Validate(name string, payload []byte) error {
	set, err := load()
	if err != nil {
		return err
	}
	entry, ok := set[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := entry.schema.Validate(document); err != nil {
		return fmt.Errorf("payload does not match %s schema: %w", name, err)
	}
	return nil
}

// JSON returns the indented JSON form of the named schema, as shown on
// the dashboard.
func JSON(name string) (string, error) {
	set, err := load()
	if err != nil {
		return "", err
	}
	entry, ok := set[name]
	if !ok {
		return "", fmt.Errorf("unknown schema %q", name)
	}
	return entry.json, nil
}

// Names lists the available schemas in sorted order.
func Names() ([]string, error) {
	set, err := load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// load compiles every embedded schema exactly once. Schemas are authored
// as YAML and converted before compilation.
func load() (map[string]compiled, error) {
	loadOnce.Do(func() {
		entries, err := fs.ReadDir(assets.SchemasFS, "schemas")
		if err != nil {
			loadErr = err
			return
		}

		set := map[string]compiled{}
		for _, entry := range entries {
			name := strings.TrimSuffix(entry.Name(), ".schema.yaml")
			if name == entry.Name() {
				continue
			}

			payload, err := fs.ReadFile(assets.SchemasFS, "schemas/"+entry.Name())
			if err != nil {
				loadErr = err
				return
			}
			jsonData, err := yaml.YAMLToJSON(payload)
			if err != nil {
				loadErr = fmt.Errorf("convert %s to json: %w", entry.Name(), err)
				return
			}

			url := fmt.Sprintf("tvwb:///%s.schema.json", name)
			compiler := jsonschema.NewCompiler()
			if err := compiler.AddResource(url, bytes.NewReader(jsonData)); err != nil {
				loadErr = fmt.Errorf("add schema %s: %w", entry.Name(), err)
				return
			}
			sch, err := compiler.Compile(url)
			if err != nil {
				loadErr = fmt.Errorf("compile schema %s: %w", entry.Name(), err)
				return
			}

			var indented bytes.Buffer
			if err := json.Indent(&indented, jsonData, "", "  "); err != nil {
				loadErr = err
				return
			}
			set[name] = compiled{schema: sch, json: indented.String()}
		}
		schemas = set
	})
	return schemas, loadErr
}
