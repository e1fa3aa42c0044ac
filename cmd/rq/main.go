package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/requery/internal/config"
	"github.com/vango-dev/requery/internal/demo"
	"github.com/vango-dev/requery/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┌─┐ ┬ ┬┌─┐┬─┐┬ ┬
  ├┬┘├┤ │─┼┐│ │├┤ ├┬┘└┬┘
  ┴└─└─┘└─┘└└─┘└─┘┴└─ ┴
`

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags override values from the configuration file.
type globalFlags struct {
	configPath string
	host       string
	port       int
	app        string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "rq",
		Short: "Reactive DOM bindings served live from Go",
		Long: `rq serves requery apps: HTML templates whose elements are bound to
reactive state through rq attributes and kept live in the browser
over a WebSocket.

Configuration is read from rq.yaml, rq.yml or rq.json in the
project root. Command-line flags override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file (default: rq.yaml in the project root)")
	pf.StringVarP(&flags.host, "host", "H", "", "Host to bind to")
	pf.IntVarP(&flags.port, "port", "p", -1, "Port to listen on")
	pf.StringVarP(&flags.app, "app", "a", "", "Demo app to serve")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		serveCmd(flags),
		renderCmd(flags),
		appsCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration, applies flag overrides and validates
// the result.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if flags.host != "" {
		cfg.Host = flags.host
	}
	if flags.port >= 0 {
		cfg.Port = flags.port
	}
	if flags.app != "" {
		cfg.App = flags.app
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	if err := cfg.Validate(demo.Names()...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
