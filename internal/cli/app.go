package cli

import (
	"fmt"
	"os"

	"github.com/ArtCenter1/storymaster/internal/agentdef"
	"github.com/ArtCenter1/storymaster/internal/config"
	"github.com/ArtCenter1/storymaster/internal/events"
	"github.com/ArtCenter1/storymaster/internal/notify"
	"github.com/ArtCenter1/storymaster/internal/orchestrator"
	"github.com/ArtCenter1/storymaster/internal/provider"
	"github.com/ArtCenter1/storymaster/internal/session"
	"github.com/ArtCenter1/storymaster/internal/store"
	"github.com/ArtCenter1/storymaster/internal/usage"
)

// app wires the configured components behind each CLI command.
type app struct {
	cfg       *config.Config
	registry  *agentdef.Registry
	resources *agentdef.Resources
	gateway   *provider.Gateway
	orch      *orchestrator.Service
	docs      *store.Store
	sessions  *session.Store
	monitor   *usage.Monitor
	publisher events.Publisher
	notifier  *notify.SlackNotifier
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Paths.AgentsDir, 0o700); err != nil {
		return nil, fmt.Errorf("create agents dir: %w", err)
	}
	registry, err := agentdef.Load(cfg.Paths.AgentsDir)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	resources := agentdef.NewResources(cfg.Paths.ResourcesDir)

	gateway := provider.NewGateway(cfg.Model.CallTimeout)
	for _, name := range cfg.Model.FallbackOrder {
		p, err := buildProvider(cfg, name)
		if err != nil {
			return nil, err
		}
		gateway.Register(p)
	}

	docs, err := store.New(cfg.Paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	sessions, err := session.NewStore(cfg.Paths.SessionsDir)
	if err != nil {
		docs.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		registry:  registry,
		resources: resources,
		gateway:   gateway,
		orch:      orchestrator.New(registry, resources, gateway),
		docs:      docs,
		sessions:  sessions,
		monitor:   usage.NewMonitor(),
	}
	if cfg.Events.Enabled {
		a.publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	}
	if cfg.Notify.Enabled {
		a.notifier = notify.NewSlackNotifier(cfg.Notify.SlackToken, cfg.Notify.SlackChannel, "")
	}
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	a.docs.Close()
}

// buildProvider constructs a named LLM provider from configuration.
func buildProvider(cfg *config.Config, name string) (provider.LLMProvider, error) {
	switch name {
	case "openai":
		return provider.NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase), nil
	case "anthropic":
		return provider.NewAnthropicProvider(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.APIBase), nil
	case "gemini":
		return provider.NewGeminiProvider(cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.APIBase), nil
	default:
		return nil, fmt.Errorf("unknown provider in fallback order: %q", name)
	}
}

// loadHistory replays persisted sessions into the usage monitor so status
// reflects past runs, not just the current process.
func (a *app) loadHistory() error {
	list, err := a.sessions.List()
	if err != nil {
		return err
	}
	// List is newest first, replay oldest first to preserve FIFO order.
	for i := len(list) - 1; i >= 0; i-- {
		a.monitor.Record(list[i])
	}
	return nil
}
