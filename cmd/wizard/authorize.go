package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enetx/g"
	"github.com/enetx/wizard/nav"
)

func authorizeCmd(a *app) *cobra.Command {
	var (
		path      string
		role      string
		anonymous bool
	)

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Show the navigation decision for a path and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := a.pages()
			if err != nil {
				return err
			}

			ctx := nav.Context{Authenticated: !anonymous, Path: g.String(path)}
			if !anonymous {
				if ctx.Role, err = nav.ParseRole(role); err != nil {
					return err
				}
			}

			d := table.Authorize(ctx)

			pairs := []pair{
				{"outcome", outcome(d.Outcome)},
				{"path", string(d.Path)},
			}

			if loc := table.Location(d); loc != "" {
				pairs = append(pairs, pair{"location", string(loc)})
			}

			if m := table.Match(d.Path); m.IsSome() {
				pairs = append(pairs, pair{"route", string(m.Some().Route.Pattern)}, pair{"requires", m.Some().Route.Require.String()})
			}

			if len(d.Params) > 0 {
				params := make([]string, 0, len(d.Params))
				for k, v := range d.Params {
					params = append(params, fmt.Sprintf("%s=%s", k, v))
				}
				pairs = append(pairs, pair{"params", strings.Join(params, " ")})
			}

			fmt.Fprint(cmd.OutOrStdout(), keyValues("", pairs...))

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Requested path")
	cmd.Flags().StringVar(&role, "role", "customer", "Role of the signed-in session")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "Authorize a signed-out session")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func outcome(o nav.Outcome) string {
	switch o {
	case nav.Allow:
		return successStyle.Render(o.String())
	case nav.NotFound:
		return mutedStyle.Render(o.String())
	default:
		return warnStyle.Render(o.String())
	}
}
