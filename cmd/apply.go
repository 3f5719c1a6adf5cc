package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/manifest"
	"headless-cms-backend/pkg/models"
	"headless-cms-backend/pkg/store"
	"headless-cms-backend/pkg/utils"
)

var (
	applyFile   string
	applyDryRun bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create or update collections from a manifest",
	Long: `Create or update collections from a YAML or JSON manifest.

A collection is matched by the slug derived from its name: missing collections
are created, existing ones have their description and fields replaced.
Stored entries are not re-validated.

Examples:
  cms apply -f blog.yaml
  cms apply -f collections.yaml --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := manifest.Load(applyFile)
		if err != nil {
			return err
		}

		// 先离线校验全部定义，避免只应用一部分
		results := validateManifest(f)
		invalid := 0
		for _, r := range results {
			if !r.Valid {
				invalid++
			}
		}
		if invalid > 0 {
			printValidation(results)
			return fmt.Errorf("%d collection(s) have invalid field definitions", invalid)
		}
		if applyDryRun {
			color.Green("✅ %d collection(s) valid, nothing applied (dry run)", len(f.Collections))
			return nil
		}

		ctx := context.Background()
		cfg := loadConfig()
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := openDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		collections := store.NewCollectionStore(db)
		for i, c := range f.Collections {
			saved, created, err := applyCollection(ctx, collections, c)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Label(i), err)
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			color.Green("✅ %s %s (/api/collections/%s, %d fields)", verb, saved.Name, saved.Slug, len(saved.Fields))
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "collections.yaml", "Manifest file to apply")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Validate only, do not write")
}

// applyCollection creates c, or replaces it when its slug already exists.
func applyCollection(ctx context.Context, collections *store.CollectionStore, c manifest.Collection) (*models.Collection, bool, error) {
	existing, err := collections.GetBySlug(ctx, utils.Slugify(c.Name))
	switch {
	case errs.IsNotFound(err):
		in, err := c.Input()
		if err != nil {
			return nil, false, err
		}
		saved, err := collections.Create(ctx, in)
		return saved, true, err
	case err != nil:
		return nil, false, err
	}

	patch, err := c.Patch()
	if err != nil {
		return nil, false, err
	}
	saved, err := collections.Update(ctx, existing.Slug, patch)
	return saved, false, err
}
