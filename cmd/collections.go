package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"headless-cms-backend/pkg/store"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List collections with their entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		list, err := store.NewCollectionStore(db).List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			color.Yellow("No collections yet. Create one with `cms apply -f <manifest>`.")
			return nil
		}

		bold := color.New(color.Bold)
		cyan := color.New(color.FgCyan)
		bold.Printf("%-24s %-24s %7s %8s  %s\n", "SLUG", "NAME", "FIELDS", "ENTRIES", "UPDATED")
		for _, c := range list {
			entries := 0
			if c.EntryCount != nil {
				entries = *c.EntryCount
			}
			cyan.Printf("%-24s ", c.Slug)
			fmt.Printf("%-24s %7d %8d  %s\n", c.Name, len(c.Fields), entries, c.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}
