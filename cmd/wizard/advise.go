package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enetx/wizard"
	"github.com/enetx/wizard/advisor"
)

func adviseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Answer the appliance advisor questionnaire in the terminal",
		Long:  "Answer each question with the number of an option. Enter b to go back, r to start over, q to quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := a.recommender()
			if err != nil {
				return err
			}

			e, err := advisor.NewEngine(rec, wizard.WithContext(cmd.Context()))
			if err != nil {
				return err
			}

			return advise(cmd.Context(), e, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// advise drives e from line input until recommendations are shown or the user quits.
func advise(ctx context.Context, e *wizard.Engine[[]advisor.Recommendation], in io.Reader, out io.Writer) error {
	lines := bufio.NewScanner(in)

	read := func() (string, error) {
		fmt.Fprint(out, accentStyle.Render("› "))
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(lines.Text()), nil
	}

	for {
		switch e.Phase() {
		case wizard.PhaseCollecting:
			step, err := e.CurrentStep()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%s %s\n%s\n",
				progressBar(e.Progress(), 20),
				muted(fmt.Sprintf("step %d of %d", e.Index(), e.Len())),
				bold(string(step.Prompt)),
			)

			for i, option := range step.Options {
				fmt.Fprintf(out, "  %s %s\n", muted(strconv.Itoa(i+1)+"."), option)
			}

			line, err := read()
			if err != nil {
				return quit(err)
			}

			switch line {
			case "q":
				return nil
			case "r":
				e.Reset()
				continue
			case "b":
				if err := e.GoBack(); err != nil {
					fmt.Fprintln(out, warnMsg("already at the first question"))
				}
				continue
			}

			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > int(step.Options.Len()) {
				fmt.Fprintln(out, warnMsg("enter a number between 1 and %d", step.Options.Len()))
				continue
			}

			if err := e.RecordAnswer(step.ID, step.Options[n-1]); err != nil {
				return err
			}

		case wizard.PhaseProcessing:
			fmt.Fprintln(out, infoMsg("analyzing your preferences..."))

			if _, err := e.Wait(ctx); err != nil {
				return err
			}

		case wizard.PhaseComplete:
			recs := e.Result().Some()

			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, []string{
					string(r.Brand + " " + r.Model),
					string(r.Price),
					string(r.Features.Join(", ")),
					string(r.Installation),
				})
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, successMsg("recommendations for %s", e.Answers().Label(advisor.StepApplianceType)))
			fmt.Fprintln(out, renderTable([]string{"Model", "Price", "Features", "Installation"}, rows))

			return nil

		case wizard.PhaseFailed:
			fmt.Fprintln(out, errorMsg("%v", e.Err()))
			fmt.Fprintln(out, muted("t to try again, r to start over, anything else quits"))

			line, err := read()
			if err != nil {
				return quit(err)
			}

			switch line {
			case "t":
				if err := e.Retry(); err != nil {
					return err
				}
			case "r":
				e.Reset()
			default:
				return e.Err()
			}
		}
	}
}

func quit(err error) error {
	if err == io.EOF {
		return nil
	}

	return err
}
