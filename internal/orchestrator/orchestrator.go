// Package orchestrator composes agent prompts and executes agent actions
// through the provider gateway.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArtCenter1/storymaster/internal/agentdef"
	"github.com/ArtCenter1/storymaster/internal/provider"
	"github.com/ArtCenter1/storymaster/internal/session"
)

// Sentinel values used when the caller omits identity inputs.
const (
	DefaultUserID    = "anonymous"
	DefaultProjectID = "default"
	DefaultStoryFile = "default"
)

// Service executes agent actions. It owns no global state; all collaborators
// are injected by the composition root.
type Service struct {
	registry  *agentdef.Registry
	resources *agentdef.Resources
	gateway   *provider.Gateway
}

// New creates an orchestration service.
func New(registry *agentdef.Registry, resources *agentdef.Resources, gateway *provider.Gateway) *Service {
	return &Service{
		registry:  registry,
		resources: resources,
		gateway:   gateway,
	}
}

// ExecuteAgentAction resolves the agent, composes the instruction prompt,
// invokes the provider gateway, and returns the resulting session record.
// Missing dependency resources are warned about, never fatal.
func (s *Service) ExecuteAgentAction(ctx context.Context, agentID, action string, inputs map[string]string, documentContent string, opts provider.Options) (*session.AgentSession, error) {
	def, err := s.registry.Get(agentID)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", agentID, err)
	}

	if s.resources != nil {
		for _, ref := range s.resources.Missing(def) {
			slog.Warn("Agent dependency resource missing", "agent", agentID, "resource", ref)
		}
	}

	prompt := BuildPrompt(def, action, documentContent, inputs)

	start := time.Now()
	result, err := s.gateway.GenerateText(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start).Milliseconds()

	if inputs == nil {
		inputs = map[string]string{}
	}
	now := time.Now()
	sess := &session.AgentSession{
		ID:          uuid.NewString(),
		AgentID:     agentID,
		UserID:      valueOr(inputs, "userId", DefaultUserID),
		ProjectID:   valueOr(inputs, "projectId", DefaultProjectID),
		StoryFileID: valueOr(inputs, "storyFileId", DefaultStoryFile),
		Action:      action,
		Inputs:      inputs,
		Outputs:     map[string]string{"response": result.Text},
		Usage: session.UsageMetadata{
			Provider:  result.Provider,
			Model:     result.Model,
			Tokens:    result.TokensUsed,
			Cost:      result.Cost,
			LatencyMS: latency,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return sess, nil
}

// BuildPrompt composes the natural-language instruction for an agent action.
// It is a pure function of its arguments: same agent, action, document, and
// inputs always yield the same prompt text.
func BuildPrompt(def *agentdef.AgentDefinition, action, documentContent string, inputs map[string]string) string {
	var b strings.Builder

	name := def.Name
	if name == "" {
		name = def.ID
	}
	b.WriteString("You are " + name)
	if def.Title != "" {
		b.WriteString(", " + def.Title)
	}
	b.WriteString(".\n")

	if def.Persona.Role != "" {
		b.WriteString("Role: " + def.Persona.Role + "\n")
	}
	if def.Persona.Style != "" {
		b.WriteString("Style: " + def.Persona.Style + "\n")
	}
	if len(def.Persona.CorePrinciples) > 0 {
		b.WriteString("Core principles:\n")
		for _, p := range def.Persona.CorePrinciples {
			b.WriteString("- " + p + "\n")
		}
	}

	b.WriteString("\nTask: " + action + "\n")

	if documentContent != "" {
		b.WriteString("\nCurrent document:\n---\n" + documentContent + "\n---\n")
	}

	if extra := flattenInputs(inputs); extra != "" {
		b.WriteString("\nAdditional inputs:\n" + extra)
	}

	b.WriteString("\nRespond with the drafted text only.")
	return b.String()
}

// flattenInputs renders inputs as sorted "- key: value" lines, skipping the
// identity keys that only route the session.
func flattenInputs(inputs map[string]string) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		switch k {
		case "userId", "projectId", "storyFileId":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("- " + k + ": " + inputs[k] + "\n")
	}
	return b.String()
}

func valueOr(inputs map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(inputs[key]); v != "" {
		return v
	}
	return fallback
}
