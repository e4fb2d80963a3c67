package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/hupe1980/casemesh/a2a"
	"github.com/hupe1980/casemesh/agent"
	"github.com/hupe1980/casemesh/internal/config"
	"github.com/hupe1980/casemesh/internal/httpserver"
	"github.com/hupe1980/casemesh/logging"
	"github.com/hupe1980/casemesh/model"
	"github.com/hupe1980/casemesh/model/anthropic"
	"github.com/hupe1980/casemesh/model/openai"
	"github.com/hupe1980/casemesh/runner"
	"github.com/hupe1980/casemesh/tool/mcptool"
)

func newAgentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Serve the case agent over A2A",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.settings.AgentConfig
			if cmd.Flags().Changed("config") {
				path, _ = cmd.Flags().GetString("config")
			}

			if err := runAgent(cmd, a, path); err != nil {
				a.logger.Error("agent.startup.failed", "config", path, "error", err.Error())
				return err
			}

			return nil
		},
	}

	cmd.Flags().String("config", "configs/agent_config.yaml", "agent config file")

	return cmd
}

func runAgent(cmd *cobra.Command, a *app, path string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadAgentConfig(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ma, closeTools, err := buildAgent(ctx, cfg, a.logger)
	if err != nil {
		return err
	}

	defer closeTools()

	r := runner.New(ma, func(o *runner.Options) {
		o.MaxModelCalls = cfg.Agent.MaxModelCalls
		o.Logger = a.logger
	})

	executor := a2a.NewAgentExecutor(r, func(o *a2a.ExecutorOptions) { o.Logger = a.logger })
	handler := a2a.NewHandler(a2a.NewAgentCard(cfg), executor, a.logger)

	addr := net.JoinHostPort(cfg.Service.Host, strconv.Itoa(cfg.Service.Port))

	printBanner(cmd.OutOrStdout(), cfg.Metadata.Name, []string{
		"config " + path,
		"addr   " + addr,
		"url    " + cfg.Service.URL,
		"model  " + cfg.Model.Provider + "/" + cfg.Model.Name,
		fmt.Sprintf("tools  %d", len(ma.ListTools())),
	})

	a.logger.Info("agent.start", "agent", cfg.Metadata.Name, "addr", addr, "tools", len(ma.ListTools()))

	return httpserver.Serve(ctx, addr, handler, func(o *httpserver.Options) { o.Logger = a.logger })
}

// buildAgent creates the model agent and registers local and remote tools.
// The returned func closes the MCP sessions.
func buildAgent(ctx context.Context, cfg *config.AgentConfig, logger logging.Logger) (*agent.ModelAgent, func(), error) {
	llm, err := newModel(cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	ma := agent.NewModelAgent(cfg.Metadata.Name, llm, func(o *agent.ModelAgentOptions) {
		o.Description = cfg.Metadata.Description
		o.EnableStreaming = cfg.Capabilities.Streaming
		o.MaxHistoryMessages = cfg.Agent.MaxHistoryMessages

		if cfg.Agent.Instruction != "" {
			o.Instruction = agent.NewInstructionFromText(cfg.Agent.Instruction).WithCurrentDate(time.Now)
		}
	})

	for _, key := range cfg.Tools.Local {
		s, err := lookupServer(key)
		if err != nil {
			return nil, nil, err
		}

		if err := ma.RegisterTools(s.tools(logger)...); err != nil {
			return nil, nil, fmt.Errorf("registering %s tools: %w", key, err)
		}
	}

	var clients []*mcptool.Client

	closeAll := func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}

	for _, s := range cfg.Tools.MCPServers {
		c, err := mcptool.Connect(ctx, s.Name, s.URL, func(o *mcptool.Options) {
			o.ClientName = cfg.Metadata.Name
			o.ClientVersion = cfg.Metadata.Version
			o.CallTimeout = cfg.Agent.ToolTimeoutDuration()
			o.Logger = logger
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		clients = append(clients, c)

		tools, err := c.Tools(ctx)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		if err := ma.RegisterTools(tools...); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("registering tools of %s: %w", s.Name, err)
		}
	}

	logger.Info("agent.tools.registered", "agent", cfg.Metadata.Name, "count", len(ma.ListTools()), "tools", ma.ListTools())

	return ma, closeAll, nil
}

// newModel builds the configured language model.
func newModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.Model = cfg.Name
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL

			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}

			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.MaxTokens)
			}
		}), nil
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Name)
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL

			if cfg.Temperature != nil {
				o.Temperature = *cfg.Temperature
			}

			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
		}), nil
	case config.ProviderMock:
		name := cfg.Name
		if name == "" {
			name = "mock"
		}

		return model.NewMockModel(name, config.ProviderMock), nil
	default:
		return nil, fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
}
