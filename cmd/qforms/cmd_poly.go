package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/njchilds90/qforms"
)

// =============================================================================
// POLY - polynomial engine commands
// =============================================================================

// Polynomials are passed as JSON: {"var":"x","terms":{"-1":-3,"0":2,"1":-1}}.
func parsePoly(arg string) (*qforms.Poly, error) {
	p := new(qforms.Poly)
	if err := json.Unmarshal([]byte(arg), p); err != nil {
		return nil, fmt.Errorf("invalid polynomial %q: %w", arg, err)
	}
	return p, nil
}

func printPoly(cmd *cobra.Command, p *qforms.Poly) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.String())
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func (a *app) polyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poly",
		Short: "Laurent polynomial arithmetic",
		Long: `Polynomials are JSON objects mapping exponents to coefficients, e.g.
'{"var":"x","terms":{"-1":-3,"0":2,"1":-1}}' for -3/x + 2 - x.
Exponent keys may be rational ("1/2" or "0.5"). Coefficients may be
numbers or rational strings such as "1/3".`,
	}
	cmd.AddCommand(
		a.polyShowCmd(),
		a.polyBinaryCmd("add", "Print A + B", (*qforms.Poly).Add),
		a.polyBinaryCmd("sub", "Print A - B", (*qforms.Poly).Sub),
		a.polyBinaryCmd("mul", "Print A * B", func(x, y *qforms.Poly) (*qforms.Poly, error) { return x.Mul(y) }),
		a.polyPowCmd(),
		a.polyEvalCmd(),
		a.polyQEvalCmd(),
	)
	return cmd
}

func (a *app) polyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show P",
		Short: "Render P and print its degree range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoly(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.String())
			if hi, err := p.Degree(); err == nil {
				lo, _ := p.LowDegree()
				fmt.Fprintf(cmd.OutOrStdout(), "degree %s, low degree %s\n", hi, lo)
			}
			return nil
		},
	}
}

func (a *app) polyBinaryCmd(use, short string, op func(x, y *qforms.Poly) (*qforms.Poly, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " A B",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parsePoly(args[0])
			if err != nil {
				return err
			}
			y, err := parsePoly(args[1])
			if err != nil {
				return err
			}
			r, err := op(x, y)
			if err != nil {
				return err
			}
			return printPoly(cmd, r)
		},
	}
}

func (a *app) polyPowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pow P N",
		Short: "Print P^N for N >= 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoly(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: power %q", qforms.ErrUnsupportedOperation, args[1])
			}
			r, err := p.Pow(n)
			if err != nil {
				return err
			}
			return printPoly(cmd, r)
		},
	}
}

func (a *app) polyEvalCmd() *cobra.Command {
	var x, im float64
	cmd := &cobra.Command{
		Use:   "eval P",
		Short: "Evaluate P at x (or x + i*im)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoly(args[0])
			if err != nil {
				return err
			}
			if im == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(p.EvalFloat(x), 'g', -1, 64))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatComplex(p.Eval(complex(x, im)), 'g', -1, 128))
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Real part of the evaluation point")
	cmd.Flags().Float64Var(&im, "im", 0, "Imaginary part of the evaluation point")
	return cmd
}

func (a *app) polyQEvalCmd() *cobra.Command {
	var t float64
	cmd := &cobra.Command{
		Use:   "qeval P",
		Short: "Evaluate P at q = exp(i*pi*t)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoly(args[0])
			if err != nil {
				return err
			}
			v := p.QEval(t, qforms.WithLogger(a.logger))
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}
	cmd.Flags().Float64Var(&t, "t", 0, "Modular parameter t")
	return cmd
}
