package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/platform/config"
)

func newMigrateCmd(cfg func() *config.Config, open backendOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer b.close()

			if b.db == nil {
				return errors.New("migrate requires a PostgreSQL backend")
			}
			if err := b.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
			return nil
		},
	}
}

func newSeedCmd(cfg func() *config.Config, open backendOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed empty catalog tables from YAML files or the built-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				path = cfg().SeedPath
			}
			seed, err := catalog.LoadSeed(path)
			if err != nil {
				return err
			}

			b, err := open(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer b.close()

			res, err := catalog.Seed(cmd.Context(), b.svc.Store(), seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d resources, %d weightages\n", res.Resources, res.Weightages)
			return nil
		},
	}
	cmd.Flags().String("path", "", "Directory of seed YAML files (overrides LEARN_SEED_PATH)")
	return cmd
}

func newImportCmd(cfg func() *config.Config, open backendOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import resources and weightages from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			wb, err := catalog.ReadWorkbook(f)
			if err != nil {
				return err
			}
			resources, weightages := wb.Resources, wb.Weightages

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if dryRun {
				bad := len(wb.Rejected)
				for _, rerr := range wb.Rejected {
					fmt.Fprintln(cmd.OutOrStdout(), rerr)
				}
				for _, r := range resources {
					if err := catalog.ValidateResource(r); err != nil {
						fmt.Fprintln(cmd.OutOrStdout(), err)
						bad++
					}
				}
				for _, w := range weightages {
					if err := catalog.ValidateWeightage(w); err != nil {
						fmt.Fprintln(cmd.OutOrStdout(), err)
						bad++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d resources, %d weightages, %d invalid\n", len(resources), len(weightages), bad)
				return nil
			}

			b, err := open(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer b.close()

			skipped := len(wb.Rejected)
			for _, rerr := range wb.Rejected {
				slog.Warn("skipping unreadable row", "sheet", rerr.Sheet, "row", rerr.Row, "error", rerr.Err)
			}
			var added int
			for i, r := range resources {
				if _, err := b.svc.CreateResource(cmd.Context(), r); err != nil {
					var verr *catalog.ValidationError
					if !errors.As(err, &verr) {
						return fmt.Errorf("import resource row %d: %w", i+2, err)
					}
					slog.Warn("skipping invalid resource row", "row", i+2, "error", err)
					skipped++
					continue
				}
				added++
			}
			var addedW int
			for i, w := range weightages {
				if _, err := b.svc.CreateWeightage(cmd.Context(), w); err != nil {
					var verr *catalog.ValidationError
					if !errors.As(err, &verr) {
						return fmt.Errorf("import weightage row %d: %w", i+2, err)
					}
					slog.Warn("skipping invalid weightage row", "row", i+2, "error", err)
					skipped++
					continue
				}
				addedW++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d resources, %d weightages, skipped %d\n", added, addedW, skipped)
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Validate the spreadsheet without writing")
	return cmd
}

func newExportCmd(cfg func() *config.Config, open backendOpener) *cobra.Command {
	var f catalog.Filter

	cmd := &cobra.Command{
		Use:   "export <file.xlsx|->",
		Short: "Export resources and weightages to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := open(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer b.close()

			resources, err := b.svc.Resources(cmd.Context(), f)
			if err != nil {
				return err
			}
			weightages, err := b.svc.Weightages(cmd.Context(), f)
			if err != nil {
				return err
			}

			if args[0] == "-" {
				w := bufio.NewWriter(cmd.OutOrStdout())
				if err := catalog.WriteWorkbook(w, resources, weightages); err != nil {
					return err
				}
				return w.Flush()
			}
			return writeFile(args[0], func(w io.Writer) error {
				return catalog.WriteWorkbook(w, resources, weightages)
			})
		},
	}
	cmd.Flags().StringVar(&f.Grade, "grade", "", "Only export this grade")
	cmd.Flags().StringVar(&f.Exam, "exam", "", "Only export this exam")
	cmd.Flags().StringVar(&f.Subject, "subject", "", "Only export this subject")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
