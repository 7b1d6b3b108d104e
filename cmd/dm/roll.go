package main

import (
	"fmt"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/dice"
	"github.com/spf13/cobra"
)

func rollCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "roll <expression>",
		Short: "Roll a dice expression such as 2d6+3",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			result, err := dice.Roll(args[0], seed)
			if err != nil {
				return err
			}
			fmt.Printf("%d %v", result.Total, result.Rolls)
			if result.Modifier != 0 {
				fmt.Printf(" %+d", result.Modifier)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "deterministic roll seed")
	return cmd
}
