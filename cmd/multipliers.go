package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MJE43/stake-mines-go/internal/games"
)

var multiplierBoard = games.Config{Rows: 5, Cols: 5, Mines: 3}

var multipliersCmd = &cobra.Command{
	Use:   "multipliers",
	Short: "Print fair and engine multipliers for every pick count",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := multiplierBoard.Validate(); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "picks\tfair\tengine\twin %\t")
		for _, step := range games.MultiplierTable(multiplierBoard) {
			fmt.Fprintf(tw, "%d\t%.4fx\t%.4fx\t%.4f\t\n", step.Picks, step.Fair, step.Engine, step.WinPercent)
		}
		return tw.Flush()
	},
}

func init() {
	multipliersCmd.Flags().IntVar(&multiplierBoard.Rows, "rows", 5, "Board rows")
	multipliersCmd.Flags().IntVar(&multiplierBoard.Cols, "cols", 5, "Board columns")
	multipliersCmd.Flags().IntVarP(&multiplierBoard.Mines, "mines", "m", 3, "Number of mines")
	rootCmd.AddCommand(multipliersCmd)
}
