package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enetx/wizard"
	"github.com/enetx/wizard/advisor"
	"github.com/enetx/wizard/intake"
)

func dotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "dot advisor|onboarding",
		Short:     "Print a wizard as a Graphviz digraph",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"advisor", "onboarding"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				flow wizard.Flow
				err  error
			)

			switch args[0] {
			case "advisor":
				flow, err = advisor.NewEngine(advisor.NewRecommender())
			default:
				flow, err = intake.NewEngine(a.intake())
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), flow.ToDOT())

			return err
		},
	}
}
