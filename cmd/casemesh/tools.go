package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hupe1980/casemesh/tool"
	"github.com/hupe1980/casemesh/tool/mcptool"
)

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		Long:  `Print the tools of the local servers, or of a running MCP server when --url is given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, _ := cmd.Flags().GetString("server")
			url, _ := cmd.Flags().GetString("url")

			if url != "" {
				return printRemoteCatalog(cmd.Context(), cmd.OutOrStdout(), a, url)
			}

			servers := toolServers
			if server != "" {
				s, err := lookupServer(server)
				if err != nil {
					return err
				}

				servers = []toolServer{s}
			}

			for _, s := range servers {
				printCatalog(cmd.OutOrStdout(), s.name, s.tools(a.logger))
			}

			return nil
		},
	}

	cmd.Flags().String("server", "", "only list this server (case or informant)")
	cmd.Flags().String("url", "", "list the tools of a running MCP server")

	return cmd
}

func printRemoteCatalog(ctx context.Context, w io.Writer, a *app, url string) error {
	c, err := mcptool.Connect(ctx, "remote", url, func(o *mcptool.Options) { o.Logger = a.logger })
	if err != nil {
		return err
	}

	defer func() { _ = c.Close() }()

	tools, err := c.Tools(ctx)
	if err != nil {
		return err
	}

	printCatalog(w, c.ServerInfo().Name, tools)

	return nil
}

// printCatalog writes name, description and parameters of every tool.
func printCatalog(w io.Writer, title string, tools []tool.Tool) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Fprintf(w, "%s (%d tools)\n", title, len(tools))

	for _, t := range tools {
		_, _ = green.Fprint(w, "  ▶ ")
		_, _ = fmt.Fprintln(w, t.Name())
		_, _ = gray.Fprintf(w, "      %s\n", t.Description())

		if params := parameterList(t.Parameters()); params != "" {
			_, _ = yellow.Fprintf(w, "      (%s)\n", params)
		}
	}

	_, _ = fmt.Fprintln(w)
}

// parameterList renders schema properties, required ones first, the rest
// suffixed with "?".
func parameterList(schema map[string]any) string {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return ""
	}

	required := map[string]bool{}

	switch req := schema["required"].(type) {
	case []string:
		for _, r := range req {
			required[r] = true
		}
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}

		return names[i] < names[j]
	})

	for i, name := range names {
		if !required[name] {
			names[i] = name + "?"
		}
	}

	return strings.Join(names, ", ")
}

// printBanner writes the startup header.
func printBanner(w io.Writer, title string, lines []string) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	_, _ = cyan.Fprintf(w, "\n  %s\n", title)
	_, _ = gray.Fprintf(w, "    version: %s\n\n", version)

	for _, l := range lines {
		_, _ = green.Fprint(w, "    ▶ ")
		_, _ = fmt.Fprintln(w, l)
	}

	_, _ = fmt.Fprintln(w)
}
