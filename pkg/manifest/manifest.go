// Package manifest reads collection definitions from YAML or JSON files.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/schema"
)

// Collection is one collection as written in a manifest file.
type Collection struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Fields      interface{} `yaml:"fields" json:"fields"`
}

// File holds every collection found in a manifest.
type File struct {
	Collections []Collection `yaml:"collections"`
}

// Load reads filename. Accepted layouts: a bare field list, one collection
// mapping, or a mapping with a `collections` list. JSON parses as YAML.
func Load(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes.
func Parse(data []byte) (*File, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	switch doc := generic.(type) {
	case []interface{}:
		return &File{Collections: []Collection{{Fields: doc}}}, nil
	case map[string]interface{}:
		if _, ok := doc["collections"]; ok {
			var f File
			if err := yaml.Unmarshal(data, &f); err != nil {
				return nil, fmt.Errorf("unmarshalling YAML: %w", err)
			}
			return &f, nil
		}
		var c Collection
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshalling YAML: %w", err)
		}
		return &File{Collections: []Collection{c}}, nil
	case nil:
		return nil, fmt.Errorf("manifest is empty")
	default:
		return nil, fmt.Errorf("manifest must be a mapping or a field list, got %T", generic)
	}
}

// Label names the collection in CLI output.
func (c Collection) Label(i int) string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return fmt.Sprintf("collections[%d]", i)
}

// Validate runs the field list through the schema validator. A manifest
// without fields is valid.
func (c Collection) Validate() error {
	if c.Fields == nil {
		return nil
	}
	return schema.ValidateFieldDefinitions(c.Fields)
}

// Input converts the manifest entry into a create request.
func (c Collection) Input() (models.CreateCollectionInput, error) {
	in := models.CreateCollectionInput{Name: c.Name, Description: c.Description}
	if c.Fields != nil {
		raw, err := json.Marshal(c.Fields)
		if err != nil {
			return in, fmt.Errorf("encoding fields of %q: %w", c.Name, err)
		}
		in.Fields = raw
	}
	return in, nil
}

// Patch converts the manifest entry into an update that replaces every attribute.
func (c Collection) Patch() (models.CollectionPatch, error) {
	in, err := c.Input()
	if err != nil {
		return models.CollectionPatch{}, err
	}
	patch := models.CollectionPatch{
		Name:        models.Some(in.Name),
		Description: models.Some(in.Description),
	}
	if in.Fields != nil {
		patch.Fields = models.Some(in.Fields)
	}
	return patch, nil
}
