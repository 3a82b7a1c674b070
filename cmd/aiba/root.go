package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/aiba/internal/config"
)

// cliFlags holds the values of the root command's flags.
type cliFlags struct {
	configPath    string
	summarizer    string
	speech        string
	screenBackend string
	output        string
	listen        string
	verbose       bool
}

func newRootCmd() (*cobra.Command, *cliFlags) {
	f := &cliFlags{}
	cmd := &cobra.Command{
		Use:   "aiba",
		Short: "AIBA - Artificial Intelligence Behavioural Analysis",
		Long: `AIBA is an interactive console that summarizes text you feed it,
transcribes what it hears through the microphone and records the screen.

Choose a module from the menu; type 5 or press Ctrl+D to quit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "config file (default ~/.config/aiba/config.yaml)")
	fs.StringVar(&f.summarizer, "summarizer", "", "summarizer backend: huggingface, ollama, openai, anthropic, none")
	fs.StringVar(&f.speech, "speech", "", "speech backend: google, openai, local, none")
	fs.StringVar(&f.screenBackend, "screen-backend", "", "screenshot backend: native, command")
	fs.StringVar(&f.output, "output", "", "screen recording output file")
	fs.StringVar(&f.listen, "listen", "", "serve the event feed on this address, e.g. :8080")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	return cmd, f
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, _ := newRootCmd()
	return cmd.ExecuteContext(ctx)
}

func runRoot(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := loadConfig(cmd, *f)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel, f.verbose)

	return run(cmd.Context(), cfg, os.Stdin, os.Stdout)
}

// loadConfig layers flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command, f cliFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("summarizer") {
		cfg.Summarizer.Backend = f.summarizer
	}
	if changed("speech") {
		cfg.Speech.Backend = f.speech
	}
	if changed("screen-backend") {
		cfg.Screen.Backend = f.screenBackend
	}
	if changed("output") {
		cfg.Screen.Output = f.output
	}
	if changed("listen") {
		cfg.Server.Listen = f.listen
	}

	cfg.ResolveKeys()
	cfg.ExpandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs a text handler on stderr so log lines never mix with
// the console on stdout.
func setupLogging(level string, verbose bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
