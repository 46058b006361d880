package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Load reads, schema-checks and decodes a policy document. JSON and YAML
// files are accepted, chosen by extension.
func Load(file string) (*Document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	doc, issues, err := Parse(data, filepath.Ext(file))
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, fmt.Errorf("policy %s does not match the schema: %s", file, strings.Join(issues, "; "))
	}
	return doc, nil
}

// Lint reports the schema violations of a policy file without treating
// them as fatal. An error means the file could not be read or decoded.
func Lint(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	_, issues, err := Parse(data, filepath.Ext(file))
	return issues, err
}

// Parse decodes and schema-checks a raw policy document. ext selects the
// format: ".yaml" and ".yml" are YAML, anything else is JSON. The returned
// issues are schema violations; the error reports undecodable input.
func Parse(data []byte, ext string) (*Document, []string, error) {
	var doc Document
	var issues []string

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("parse policy yaml: %w", err)
		}
		var err error
		if issues, err = validateAgainstSchema(gojsonschema.NewGoLoader(raw)); err != nil {
			return nil, nil, err
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("parse policy yaml: %w", err)
		}
	default:
		var err error
		if issues, err = validateAgainstSchema(gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, nil, err
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("parse policy json: %w", err)
		}
	}
	return &doc, issues, nil
}
