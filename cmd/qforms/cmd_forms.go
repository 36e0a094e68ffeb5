package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/qforms"
)

// =============================================================================
// FACTOR / CLASSNUM / SEARCH - class number engine commands
// =============================================================================

func (a *app) factorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factor N",
		Short: "Print the divisor pairs of N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid N %q: %w", args[0], err)
			}
			pairs, err := qforms.FactorPairs(n)
			if err != nil {
				return err
			}
			parts := make([]string, len(pairs))
			for i, p := range pairs {
				parts[i] = fmt.Sprintf("(%d, %d)", p.Small, p.Large)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, " "))
			return nil
		},
	}
}

func (a *app) classnumCmd() *cobra.Command {
	var showForms bool
	cmd := &cobra.Command{
		Use:   "classnum D [D...]",
		Short: "Print the class number of discriminant -D",
		Long: `Counts the reduced forms (a, b, c), |b| <= a <= c, with b^2 - 4ac = -D.

The default parity mode counts only b >= 0 (classnum 47 prints 3).
--proper prints the true class number h(-D).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := a.mode()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, arg := range args {
				d, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid D %q: %w", arg, err)
				}
				forms, err := qforms.ReducedForms(d, qforms.WithMode(mode), qforms.WithLogger(a.logger))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "h(-%d) = %d\n", d, len(forms))
				if showForms {
					for _, f := range forms {
						fmt.Fprintf(out, "  %s\n", f)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showForms, "forms", false, "Also print the counted forms")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var from, to int64
	var h int
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Class numbers for D in [from, to)",
		Long: `Without --h prints "D h" for every D in the range. With --h prints the
D whose class number is h, one per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.table()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if h >= 0 {
				ds, err := table.WithClassNumber(cmd.Context(), from, to, h)
				if err != nil {
					return err
				}
				for _, d := range ds {
					fmt.Fprintln(out, d)
				}
				return nil
			}
			entries, err := table.Range(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%d %d\n", e.D, e.H)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&from, "from", 1, "First D")
	cmd.Flags().Int64Var(&to, "to", 170, "End of range (exclusive)")
	cmd.Flags().IntVar(&h, "h", -1, "Only print D with this class number")
	return cmd
}
