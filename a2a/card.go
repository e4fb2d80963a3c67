package a2a

import (
	protocol "github.com/a2aproject/a2a-go/a2a"

	"github.com/hupe1980/casemesh/internal/config"
)

// NewAgentCard builds the capability card advertised at the well-known path.
func NewAgentCard(cfg *config.AgentConfig) *protocol.AgentCard {
	skills := make([]protocol.AgentSkill, 0, len(cfg.Skills))
	for _, s := range cfg.Skills {
		skills = append(skills, protocol.AgentSkill{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Tags:        s.Tags,
			Examples:    s.Examples,
		})
	}

	return &protocol.AgentCard{
		Name:               cfg.Metadata.Name,
		Description:        cfg.Metadata.Description,
		URL:                cfg.Service.URL,
		Version:            cfg.Metadata.Version,
		PreferredTransport: protocol.TransportProtocolJSONRPC,
		DefaultInputModes:  cfg.Interface.DefaultInputModes,
		DefaultOutputModes: cfg.Interface.DefaultOutputModes,
		Capabilities:       protocol.AgentCapabilities{Streaming: cfg.Capabilities.Streaming},
		Skills:             skills,
	}
}
