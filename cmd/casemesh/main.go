// Command casemesh runs the case and informant MCP tool servers and the
// case agent served over A2A.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/casemesh/internal/config"
	"github.com/hupe1980/casemesh/logging"
)

const version = "1.0.0"

// app carries state shared by the subcommands.
type app struct {
	settings *config.Settings
	logger   logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "casemesh",
		Short:         "Case and informant management tools for investigation agents",
		Long:          `Mock case-management and informant-management MCP tool servers, and a case agent that uses them over A2A.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				settings.LogLevel, _ = cmd.Flags().GetString("log-level")
			}

			a.settings = settings

			a.logger, err = newLogger(settings, cmd.Name())

			return err
		},
	}

	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newMCPCmd(a), newAgentCmd(a), newToolsCmd(a))

	return root
}

// newLogger picks the backend from settings. zerolog is the default.
func newLogger(s *config.Settings, component string) (logging.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}

	switch s.LogBackend {
	case "slog":
		return logging.NewSlogLogger(logging.SlogConfig{
			Level:     level,
			Format:    s.LogFormat,
			Output:    os.Stderr,
			Component: component,
		}), nil
	case "", "zerolog":
		return logging.NewZerologLogger(logging.ZerologConfig{
			Level:     level,
			Pretty:    s.LogPretty || s.LogFormat == "text",
			Output:    os.Stderr,
			Component: component,
		}), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", s.LogBackend)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
