package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"chronicle/internal/config"
	"chronicle/internal/logstore"
)

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show persisted log volume per service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if cfg.Store.Path == "" {
				fmt.Fprintln(out, "No persistent store configured; logging runs console/file only.")
				return nil
			}
			if _, err := os.Stat(cfg.Store.Path); os.IsNotExist(err) {
				fmt.Fprintf(out, "Store %s does not exist yet; nothing persisted.\n", cfg.Store.Path)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			store, err := logstore.Open(ctx, cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("open log store: %w", err)
			}
			defer store.Close()

			counts, err := store.CountByService(ctx)
			if err != nil {
				return fmt.Errorf("count records: %w", err)
			}
			if len(counts) == 0 {
				fmt.Fprintln(out, "Store is empty.")
				return nil
			}

			rows := make([][]string, 0, len(counts))
			for _, sc := range counts {
				rows = append(rows, []string{sc.Service, strconv.FormatInt(sc.Count, 10)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Service", "Records"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
