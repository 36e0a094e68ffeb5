// Command qforms computes class numbers of binary quadratic forms and
// manipulates Laurent polynomials from the command line, and serves both
// engines over HTTP.
//
// Usage:
//
//	qforms factor 36
//	qforms classnum 47 --forms --verbose
//	qforms search --from 1 --to 170 --h 1 --proper
//	qforms poly qeval '{"terms":{"0":2,"1":-1,"3":1}}' --t 1
//	qforms serve --config qforms.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/njchilds90/qforms"
	"github.com/njchilds90/qforms/internal/config"
)

// app carries the state shared by every command.
type app struct {
	verbose    bool
	configPath string
	proper     bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "qforms",
		Short: "Class numbers of binary quadratic forms and Laurent polynomials",
		Long: `qforms counts reduced binary quadratic forms of discriminant -D and
provides exact polynomial arithmetic with evaluation at q = exp(i*pi*t).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			a.cfg = cfg

			logger, err := a.buildLogger()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log the search trace at debug level")
	root.PersistentFlags().StringVar(&a.configPath, "config", "qforms.yaml", "Path to the YAML config file")
	root.PersistentFlags().BoolVar(&a.proper, "proper", false, "Count primitive reduced forms with mirrors (true class number)")

	root.AddCommand(
		a.factorCmd(),
		a.classnumCmd(),
		a.searchCmd(),
		a.polyCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) buildLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if a.cfg.Logging.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if a.verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// mode resolves the counting mode: --proper wins over the config file.
func (a *app) mode() (qforms.CountMode, error) {
	if a.proper {
		return qforms.CountProper, nil
	}
	return a.cfg.CountMode()
}

func (a *app) table() (*qforms.Table, error) {
	opts, err := a.cfg.TableOptions()
	if err != nil {
		return nil, err
	}
	mode, err := a.mode()
	if err != nil {
		return nil, err
	}
	opts = append(opts, qforms.WithMode(mode), qforms.WithLogger(a.logger))
	return qforms.NewTable(opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
