package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/casemesh/internal/casestore"
	"github.com/hupe1980/casemesh/internal/informantstore"
	"github.com/hupe1980/casemesh/internal/mcpserver"
	"github.com/hupe1980/casemesh/internal/toolset"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/tool"
)

// toolServer describes one of the two MCP servers.
type toolServer struct {
	key          string
	name         string
	instructions string
	tools        func(logger logging.Logger) []tool.Tool
}

var toolServers = []toolServer{
	{
		key:          "case",
		name:         toolset.CaseServerName,
		instructions: toolset.CaseInstructions,
		tools: func(logger logging.Logger) []tool.Tool {
			return toolset.CaseTools(casestore.New(func(o *casestore.Options) { o.Logger = logger }))
		},
	},
	{
		key:          "informant",
		name:         toolset.InformantServerName,
		instructions: toolset.InformantInstructions,
		tools: func(logger logging.Logger) []tool.Tool {
			return toolset.InformantTools(informantstore.New(func(o *informantstore.Options) { o.Logger = logger }))
		},
	},
}

func lookupServer(key string) (toolServer, error) {
	for _, s := range toolServers {
		if s.key == key {
			return s, nil
		}
	}

	return toolServer{}, fmt.Errorf("unknown tool server %q (want case or informant)", key)
}

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run an MCP tool server",
	}

	for _, s := range toolServers {
		cmd.AddCommand(newServeToolsCmd(a, s))
	}

	return cmd
}

func newServeToolsCmd(a *app, s toolServer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   s.key,
		Short: "Serve the " + s.name + " over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, port, path := a.settings.Host, a.settings.Port, a.settings.MCPPath

			if cmd.Flags().Changed("host") {
				host, _ = cmd.Flags().GetString("host")
			}

			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetInt("port")
			}

			if cmd.Flags().Changed("path") {
				path, _ = cmd.Flags().GetString("path")
			}

			srv, err := mcpserver.New(s.name, toolset.Version, s.tools(a.logger), func(o *mcpserver.Options) {
				o.Host = host
				o.Port = port
				o.Path = path
				o.Instructions = s.instructions
				o.Logger = a.logger
			})
			if err != nil {
				a.logger.Error("mcp.server.init_failed", "server", s.name, "error", err.Error())
				return err
			}

			printBanner(cmd.OutOrStdout(), s.name, []string{"addr " + srv.Addr(), "path " + path})

			if err := srv.ListenAndServe(cmd.Context()); err != nil {
				a.logger.Error("mcp.server.failed", "server", s.name, "error", err.Error())
				return err
			}

			return nil
		},
	}

	cmd.Flags().String("host", mcpserver.DefaultHost, "bind host")
	cmd.Flags().Int("port", mcpserver.DefaultPort, "bind port")
	cmd.Flags().String("path", mcpserver.DefaultPath, "MCP endpoint path")

	return cmd
}
