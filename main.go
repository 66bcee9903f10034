package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/waozixyz/menugen/internal/compiler"
)

// --- Main Function ---
func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	config         string
	verbose        bool
	logFormat      string
	embedMenus     bool
	embedDialogues bool
	dialogues      string
	stackDepth     int
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "menugen <source> <output>",
		Short: "Compile menu templates into RISC OS Wimp menu files",
		Long: `menugen reads a menu template and writes a menu file that a RISC OS
application can load to build its Wimp menus at run time.

Settings may also come from a config file: --config, $MENUGEN_CONFIG or
./menugen.toml (TOML, or YAML when the name ends in .yaml or .yml).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f.config)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			opts, err := cfg.layoutOptions()
			if err != nil {
				return err
			}

			var report io.Writer
			if cfg.Verbose {
				report = stdout
			}
			res, err := compiler.Compile(compiler.Options{
				Source:    args[0],
				Output:    args[1],
				Layout:    opts,
				StackSize: cfg.StackDepth,
				Logger:    newLogger(stderr, cfg.LogFormat, cfg.Verbose),
				Report:    report,
			})
			if err != nil {
				return err
			}
			return res.WriteSummary(stdout)
		},
	}
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default: $MENUGEN_CONFIG or ./menugen.toml)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "print the structure report and debug logging")
	pf.StringVar(&f.logFormat, "log-format", "", "log format: text or json")

	flags := root.Flags()
	flags.BoolVarP(&f.embedMenus, "embed-menus", "m", false, "embed menu names in the file (extended format)")
	flags.BoolVarP(&f.embedDialogues, "embed-dialogues", "d", false, "embed dialogue box tags in the file")
	flags.StringVar(&f.dialogues, "dialogues", "", "dialogue encoding: legacy or tagged")
	flags.IntVar(&f.stackDepth, "stack-depth", 0, "maximum block nesting depth")

	root.AddCommand(newDumpCommand(stdout))
	return root
}

// apply copies the flags the user actually set over the config file values.
func (f *rootFlags) apply(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if flags.Changed("embed-menus") {
		cfg.EmbedMenus = f.embedMenus
	}
	if flags.Changed("embed-dialogues") {
		cfg.EmbedDialogues = f.embedDialogues
	}
	if flags.Changed("dialogues") {
		cfg.Dialogues = f.dialogues
	}
	if flags.Changed("stack-depth") {
		cfg.StackDepth = f.stackDepth
	}
	cfg.applyDefaults()
	return cfg.validate()
}

// newLogger builds the stderr logger. Records carry no timestamp so that
// compiler output is stable between runs.
func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := new(slog.LevelVar)
	if verbose {
		level.Set(slog.LevelDebug)
	}
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
