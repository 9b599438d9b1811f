package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the academy catalog",
	}

	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a catalog YAML file, or the embedded one when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				err error
			)
			source := "embedded catalog"
			if len(args) == 1 {
				source = args[0]
				data, rerr := os.ReadFile(args[0])
				if rerr != nil {
					return fmt.Errorf("read %s: %w", args[0], rerr)
				}
				cat, err = catalog.Parse(data)
			} else {
				cat, err = catalog.Default()
			}
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", source)
			fmt.Fprintf(out, "  pages:           %d\n", len(cat.Pages))
			fmt.Fprintf(out, "  learning panels: %d\n", len(cat.LearningPanels))
			fmt.Fprintf(out, "  quizzes:         %d\n", len(cat.Quizzes))
			fmt.Fprintf(out, "  final exam:      %d of %d questions shown\n", cat.FinalExam.QuestionsShown, len(cat.FinalExam.Questions))
			return nil
		},
	}

	cmd.AddCommand(validate)
	return cmd
}
