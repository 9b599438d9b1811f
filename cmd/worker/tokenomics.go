package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/domain"
)

type tokenomicsFlags struct {
	lockup     int
	price      float64
	tokens     float64
	value      float64
	assetClass string
	raise      float64
	allocation []float64
}

func newTokenomicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenomics",
		Short: "Tokenomics helpers",
	}

	var f tokenomicsFlags
	calc := &cobra.Command{
		Use:   "calc",
		Short: "Print the derived tokenomics of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := domain.Property{
				TokenPrice:   f.price,
				TotalTokens:  f.tokens,
				TotalValue:   f.value,
				LockupMonths: f.lockup,
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "suggested yield: %.2f%%\n", domain.DynamicYield(f.lockup))
			fmt.Fprintf(out, "total raise:     %.2f\n", domain.TotalRaise(p))
			fmt.Fprintf(out, "coverage ratio:  %.2f%%\n", domain.CoverageRatio(p))
			fmt.Fprintf(out, "complexity:      %s\n", domain.ComplexityScore(f.assetClass, f.raise))

			if len(f.allocation) == 0 {
				return nil
			}
			if len(f.allocation) != 4 {
				return fmt.Errorf("--allocation needs founders,investors,treasury,advisors")
			}
			alloc := domain.TokenAllocation{
				Founders:  f.allocation[0],
				Investors: f.allocation[1],
				Treasury:  f.allocation[2],
				Advisors:  f.allocation[3],
			}
			fmt.Fprintf(out, "allocation left: %.2f\n", alloc.Remaining())
			return alloc.Validate()
		},
	}

	calc.Flags().IntVar(&f.lockup, "lockup", 0, "lock-up period in months")
	calc.Flags().Float64Var(&f.price, "price", 0, "token price")
	calc.Flags().Float64Var(&f.tokens, "tokens", 0, "total token supply")
	calc.Flags().Float64Var(&f.value, "value", 0, "asset valuation")
	calc.Flags().StringVar(&f.assetClass, "asset-class", domain.DefaultAssetClass, "asset class")
	calc.Flags().Float64Var(&f.raise, "raise", 0, "target raise amount")
	calc.Flags().Float64SliceVar(&f.allocation, "allocation", nil, "founders,investors,treasury,advisors percentages")

	cmd.AddCommand(calc)
	return cmd
}
