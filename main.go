package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qyinm/prodtui/config"
	"github.com/qyinm/prodtui/dummyjson"
	"github.com/qyinm/prodtui/logger"
	"github.com/qyinm/prodtui/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		query    string
		baseURL  string
		timeout  time.Duration
		logLevel string
		logFile  string
	)

	cmd := &cobra.Command{
		Use:   "prodtui [location]",
		Short: "Browse dummyjson products in the terminal",
		Long: "Browse dummyjson products with search, category filter and paging.\n" +
			"The view state lives in a location query string such as\n" +
			"?category=beauty&search=red&page=2, printed on exit so it can be reopened.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if flags.Changed("timeout") {
				cfg.Timeout = timeout
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("log-file") {
				cfg.LogFile = logFile
			}
			location := query
			if len(args) == 1 {
				location = args[0]
			}
			return run(cfg, location)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "initial location, e.g. \"?category=beauty&page=2\"")
	cmd.Flags().StringVar(&baseURL, "base-url", dummyjson.DefaultBaseURL, "product API base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", dummyjson.DefaultTimeout, "per-request timeout")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFile, "log-file", config.DefaultLogFile(), "log file path")
	return cmd
}

func run(cfg config.Config, location string) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	source := dummyjson.New(dummyjson.WithBaseURL(cfg.BaseURL), dummyjson.WithTimeout(cfg.Timeout))
	model := ui.NewModel(source, location, ui.WithLogger(log.With(zap.String("component", "ui"))))
	log.Info("start", zap.String("location", model.Location()), zap.String("upstream", source.BaseURL()))

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	printLocation(os.Stdout, final)
	return nil
}

// printLocation writes the location the program ended on, so it can be passed
// back as the next run's argument.
func printLocation(w io.Writer, final tea.Model) {
	m, ok := final.(interface{ Location() string })
	if !ok || m.Location() == "" {
		return
	}
	fmt.Fprintln(w, m.Location())
}
