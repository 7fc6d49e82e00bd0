// Package cli implements the stockmcp commands.
package cli

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/alphavantage"
	"github.com/effective-security/stockmcp/callbacks"
	"github.com/effective-security/stockmcp/config"
	"github.com/effective-security/stockmcp/server"
	"github.com/effective-security/stockmcp/tools"
	"github.com/effective-security/stockmcp/tools/stockdata"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp", "cli")

var logLevels = map[string]xlog.LogLevel{
	"TRACE":    xlog.TRACE,
	"DEBUG":    xlog.DEBUG,
	"INFO":     xlog.INFO,
	"NOTICE":   xlog.NOTICE,
	"WARNING":  xlog.WARNING,
	"ERROR":    xlog.ERROR,
	"CRITICAL": xlog.CRITICAL,
}

// app holds the global flags shared by the commands
type app struct {
	configFile string
	logLevel   string
	logFormat  string
	trace      bool
	// dir is where the .env file is looked up
	dir string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{dir: "."}

	rootCmd := &cobra.Command{
		Use:          "stockmcp",
		Short:        "Stock market data MCP server",
		Long:         "stockmcp serves daily stock prices from Alpha Vantage to MCP clients over stdio.",
		Version:      server.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), a.logLevel, a.logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Configuration file path")
	flags.StringVar(&a.logLevel, "log-level", "INFO", "Log level: TRACE, DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL")
	flags.StringVar(&a.logFormat, "log-format", config.LogFormatText, "Log format: text or json")
	flags.BoolVar(&a.trace, "trace", false, "Print tool calls to stderr")

	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newQuoteCmd())
	rootCmd.AddCommand(a.newCallCmd())
	rootCmd.AddCommand(a.newToolsCmd())

	return rootCmd
}

// loadConfig loads and validates the configuration.
// Logging options from the file apply unless set by flags.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.configFile, a.dir)
	if err != nil {
		logger.KV(xlog.ERROR, "reason", "config", "err", err.Error())
		return nil, err
	}

	flags := cmd.Flags()
	level, format := a.logLevel, a.logFormat
	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if !flags.Changed("log-format") && cfg.LogFormat != "" {
		format = cfg.LogFormat
	}
	if err = setupLogging(cmd.ErrOrStderr(), level, format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// tools returns the tools served by the process
func (a *app) tools(cfg *config.Config, errOut io.Writer) ([]tools.IMCPTool, error) {
	tool, err := stockdata.New(alphavantage.NewClient(cfg, nil))
	if err != nil {
		return nil, err
	}
	if a.trace {
		tool.WithCallback(callbacks.NewFanout(
			callbacks.NewPackageLogger(logger),
			callbacks.NewPrinter(errOut, callbacks.ModeVerbose),
		))
	}
	return []tools.IMCPTool{tool}, nil
}

func setupLogging(w io.Writer, level, format string) error {
	l, ok := logLevels[strings.ToUpper(level)]
	if !ok {
		return errors.Newf("invalid log level: %s", level)
	}

	switch format {
	case config.LogFormatJSON:
		xlog.SetFormatter(xlog.NewJSONFormatter(w))
	case config.LogFormatText, "":
		xlog.SetFormatter(xlog.NewStringFormatter(w))
	default:
		return errors.Newf("invalid log format: %s", format)
	}
	xlog.SetGlobalLogLevel(l)
	return nil
}
