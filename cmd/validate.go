package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/manifest"
)

var (
	validateFile   string
	validateFormat string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate collection field definitions offline",
	Long: `Validate the field definitions in a YAML or JSON manifest without touching the database.

The manifest may be a bare field list, a single collection
(name, description, fields) or a mapping with a "collections" list.

Examples:
  cms validate -f blog.yaml
  cms validate -f blog.json --format json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := manifest.Load(validateFile)
		if err != nil {
			return err
		}

		results := validateManifest(f)
		if validateFormat == "json" {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(results); err != nil {
				return err
			}
		} else {
			printValidation(results)
		}

		for _, r := range results {
			if !r.Valid {
				return fmt.Errorf("schema validation failed")
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "collections.yaml", "Manifest file to validate")
	validateCmd.Flags().StringVar(&validateFormat, "format", "text", "Output format (text, json)")
}

// validationResult is the per-collection outcome of validate.
type validationResult struct {
	Collection string            `json:"collection"`
	Valid      bool              `json:"valid"`
	Message    string            `json:"message,omitempty"`
	Errors     []errs.FieldError `json:"errors,omitempty"`
}

func validateManifest(f *manifest.File) []validationResult {
	results := make([]validationResult, 0, len(f.Collections))
	for i, c := range f.Collections {
		r := validationResult{Collection: c.Label(i), Valid: true}
		if err := c.Validate(); err != nil {
			r.Valid = false
			r.Message = err.Error()
			var e *errs.Error
			if errors.As(err, &e) {
				r.Message = e.Message
				r.Errors = e.Details
			}
		}
		results = append(results, r)
	}
	return results
}

func printValidation(results []validationResult) {
	failed := 0
	for _, r := range results {
		if r.Valid {
			color.Green("✅ %s: field definitions are valid", r.Collection)
			continue
		}
		failed++
		color.Red("❌ %s: %s", r.Collection, r.Message)
		for i, e := range r.Errors {
			fmt.Printf("  %d. [%s] %s\n", i+1, e.Field, e.Message)
		}
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Collections: %d\n", len(results))
	fmt.Printf("  • Invalid: %d\n", failed)
}
