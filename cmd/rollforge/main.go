// Package main provides the rollforge CLI: parse, inspect, roll and simulate
// dice macros, and search for combinations that fit a target range.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rollforge/internal/combo"
	"github.com/cory-johannsen/rollforge/internal/config"
	"github.com/cory-johannsen/rollforge/internal/dice"
	"github.com/cory-johannsen/rollforge/internal/enrich"
	"github.com/cory-johannsen/rollforge/internal/report"
)

// rootOptions holds the persistent flags and the App built from them.
type rootOptions struct {
	configPath string
	seed       uint64
	lang       string
	logLevel   string

	app     *App
	cleanup func()
}

func main() {
	// SIGINT or SIGTERM cancels in-flight model requests.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cmd, opts := newRootCmd()
	err := execute(ctx, cmd, opts)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and releases the App afterwards, including when the
// command fails and cobra skips its post-run hooks.
func execute(ctx context.Context, cmd *cobra.Command, opts *rootOptions) error {
	defer opts.close()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "rollforge",
		Short:        "Dice macro engine and combination finder",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to configuration file (optional)")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for a deterministic random source; 0 uses crypto randomness")
	flags.StringVar(&opts.lang, "lang", "", "BCP 47 language for labels and analyses (en, es, fr, zh, ja, ru)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newRollCmd(opts))
	rootCmd.AddCommand(newSimulateCmd(opts))
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newAnalyzeCmd(opts))
	return rootCmd, opts
}

// init loads configuration, applies flag overrides and wires the App.
func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Engine.Seed = o.seed
	}
	if flags.Changed("lang") {
		cfg.Labels.Locale = o.lang
		cfg.AI.Language = o.lang
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, cleanup, err := initializeApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	o.app, o.cleanup = app, cleanup
	app.Logger.Debug("rollforge starting",
		zap.String("command", cmd.Name()),
		zap.Uint64("seed", cfg.Engine.Seed),
		zap.String("locale", app.Locale()),
		zap.Bool("ai", app.Service.Enabled()),
	)
	return nil
}

func (o *rootOptions) close() {
	if o.cleanup != nil {
		o.cleanup()
		o.cleanup = nil
	}
}

func macroArg(args []string) string {
	return strings.Join(args, " ")
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <macro>",
		Short: "Show how a macro is understood",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := dice.Parse(macroArg(args))
			return writeParse(cmd.OutOrStdout(), p)
		},
	}
}

func writeParse(w io.Writer, p dice.ParsedMacro) error {
	var b strings.Builder
	fmt.Fprintf(&b, "canonical: %s\n", p.String())
	for _, t := range p.Terms {
		fmt.Fprintf(&b, "term:      %s%s\n", t.Sign, t)
	}
	fmt.Fprintf(&b, "modifier:  %+d\n", p.Modifier)
	for _, u := range p.Unparsed {
		fmt.Fprintf(&b, "unparsed:  %s\n", u)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <macro>",
		Short: "Print the exact minimum, maximum and average of a macro",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := dice.Parse(macroArg(args))
			return report.Stats(cmd.OutOrStdout(), p, dice.ComputeStats(p), opts.app.Catalog, opts.app.Locale())
		},
	}
}

func newRollCmd(opts *rootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "roll <macro>",
		Short: "Roll a macro and show every die",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be greater than 0")
			}
			p := dice.Parse(macroArg(args))
			for i := 0; i < count; i++ {
				if err := report.Outcome(cmd.OutOrStdout(), opts.app.Roller.Roll(p)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of rolls")
	return cmd
}

func newSimulateCmd(opts *rootOptions) *cobra.Command {
	var trials, width int
	cmd := &cobra.Command{
		Use:   "simulate <macro>",
		Short: "Plot the distribution of a macro",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if !cmd.Flags().Changed("trials") {
				trials = app.Config.Engine.Trials
			}
			if trials < 1 || trials > config.MaxTrials {
				return fmt.Errorf("--trials must be 1-%d", config.MaxTrials)
			}
			if width <= 0 {
				width = report.TerminalWidth()
			}
			macro := macroArg(args)
			h := app.Roller.Distribution(macro, trials)
			return report.Histogram(cmd.OutOrStdout(), app.DistributionTitle(dice.Parse(macro), trials), h, width)
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 0, "number of simulated rolls (default from config)")
	cmd.Flags().IntVar(&width, "width", 0, "plot width in columns (default: terminal width)")
	return cmd
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		lo, hi int
		faces  []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Find dice combinations that fit a target range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, v := range []int{lo, hi} {
				if v < -dice.MaxModifier || v > dice.MaxModifier {
					return fmt.Errorf("--min and --max must be within ±%d", dice.MaxModifier)
				}
			}
			app := opts.app
			ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.AI.Timeout+5*time.Second)
			defer cancel()

			got := app.Service.Generate(ctx, combo.Request{TargetMin: lo, TargetMax: hi, Faces: faces})
			w := cmd.OutOrStdout()
			if got.Fallback != nil && !errors.Is(got.Fallback, enrich.ErrDisabled) {
				if _, err := fmt.Fprintln(w, app.Text("generate.fallbackNotice", nil)); err != nil {
					return err
				}
			}
			return report.Candidates(w, got.Candidates, app.Catalog, app.Locale())
		},
	}
	cmd.Flags().IntVar(&lo, "min", 0, "target minimum")
	cmd.Flags().IntVar(&hi, "max", 0, "target maximum")
	cmd.Flags().StringSliceVar(&faces, "dice", []string{"d4", "d6", "d8", "d10", "d12", "d20"}, "available dice, e.g. d6,d8,d2,dF")
	_ = cmd.MarkFlagRequired("min")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		lo, hi int
		width  int
	)
	cmd := &cobra.Command{
		Use:   "analyze <macro>",
		Short: "Describe a macro's statistics and distribution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			req := enrich.AnalysisRequest{Macro: macroArg(args), Language: app.Config.AI.Language}
			if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
				if !cmd.Flags().Changed("min") || !cmd.Flags().Changed("max") {
					return fmt.Errorf("--min and --max must be given together")
				}
				req.Target = &combo.Request{TargetMin: lo, TargetMax: hi}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.AI.Timeout+5*time.Second)
			defer cancel()

			a := app.Service.Analyze(ctx, req)
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(w, "%s\n\n", a.Text); err != nil {
				return err
			}
			if width <= 0 {
				width = report.TerminalWidth()
			}
			return report.Histogram(w, app.DistributionTitle(dice.Parse(req.Macro), a.Trials), a.Histogram, width)
		},
	}
	cmd.Flags().IntVar(&lo, "min", 0, "optional target minimum")
	cmd.Flags().IntVar(&hi, "max", 0, "optional target maximum")
	cmd.Flags().IntVar(&width, "width", 0, "plot width in columns (default: terminal width)")
	return cmd
}
