package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ArtCenter1/storymaster/internal/agentdef"
	"github.com/ArtCenter1/storymaster/internal/provider"
)

// staticProvider returns a fixed response for orchestration tests.
type staticProvider struct {
	text string
}

func (p *staticProvider) Name() string                { return "static" }
func (p *staticProvider) DefaultModel() string        { return "static-1" }
func (p *staticProvider) EstimateTokens(s string) int { return provider.EstimateTokens(s) }

func (p *staticProvider) GenerateText(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResult, error) {
	return &provider.GenerateResult{
		Text:       p.text,
		Provider:   "static",
		Model:      "static-1",
		TokensUsed: 42,
		Cost:       0.001,
	}, nil
}

func testDefinition() *agentdef.AgentDefinition {
	return &agentdef.AgentDefinition{
		ID:    "plot-architect",
		Name:  "Plot Architect",
		Title: "Story Structure Consultant",
		Persona: agentdef.Persona{
			Role:           "Story structure specialist",
			Style:          "Analytical",
			CorePrinciples: []string{"Structure serves story"},
		},
	}
}

func newTestService(t *testing.T, defs ...*agentdef.AgentDefinition) *Service {
	t.Helper()
	reg := agentdef.NewRegistry(defs...)
	gw := provider.NewGateway(0)
	gw.Register(&staticProvider{text: "A twist in act two."})
	return New(reg, agentdef.NewResources(t.TempDir()), gw)
}

func TestExecuteAgentAction(t *testing.T) {
	svc := newTestService(t, testDefinition())

	sess, err := svc.ExecuteAgentAction(context.Background(), "plot-architect", "outline chapter 2",
		map[string]string{"tone": "tense"}, "line1\nline2", provider.Options{})
	if err != nil {
		t.Fatalf("ExecuteAgentAction() error: %v", err)
	}

	if sess.ID == "" {
		t.Errorf("expected generated session id")
	}
	if sess.Response() != "A twist in act two." {
		t.Errorf("unexpected response: %q", sess.Response())
	}
	if sess.Usage.Provider != "static" || sess.Usage.Tokens != 42 {
		t.Errorf("unexpected usage metadata: %+v", sess.Usage)
	}
	if !sess.CreatedAt.Equal(sess.UpdatedAt) {
		t.Errorf("expected creation and update timestamps equal")
	}
	if sess.UserID != DefaultUserID || sess.ProjectID != DefaultProjectID || sess.StoryFileID != DefaultStoryFile {
		t.Errorf("expected sentinel defaults, got %s/%s/%s", sess.UserID, sess.ProjectID, sess.StoryFileID)
	}
}

func TestExecuteAgentActionWithIdentityInputs(t *testing.T) {
	svc := newTestService(t, testDefinition())

	sess, err := svc.ExecuteAgentAction(context.Background(), "plot-architect", "outline",
		map[string]string{"userId": "u1", "projectId": "p1", "storyFileId": "f1"}, "", provider.Options{})
	if err != nil {
		t.Fatalf("ExecuteAgentAction() error: %v", err)
	}
	if sess.UserID != "u1" || sess.ProjectID != "p1" || sess.StoryFileID != "f1" {
		t.Errorf("identity inputs not carried: %s/%s/%s", sess.UserID, sess.ProjectID, sess.StoryFileID)
	}
}

func TestExecuteAgentActionUnknownAgent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ExecuteAgentAction(context.Background(), "ghost", "anything", nil, "", provider.Options{})
	if !errors.Is(err, agentdef.ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	def := testDefinition()
	inputs := map[string]string{"b": "2", "a": "1", "userId": "u"}

	p1 := BuildPrompt(def, "outline", "doc text", inputs)
	p2 := BuildPrompt(def, "outline", "doc text", map[string]string{"a": "1", "userId": "u", "b": "2"})
	if p1 != p2 {
		t.Errorf("prompt not deterministic across input orderings")
	}
	if p1 == BuildPrompt(def, "revise", "doc text", inputs) {
		t.Errorf("different actions should yield different prompts")
	}
}

func TestBuildPromptContents(t *testing.T) {
	def := testDefinition()
	prompt := BuildPrompt(def, "outline chapter 2", "the draft", map[string]string{"tone": "tense", "userId": "u"})

	for _, want := range []string{
		"You are Plot Architect, Story Structure Consultant.",
		"Role: Story structure specialist",
		"- Structure serves story",
		"Task: outline chapter 2",
		"the draft",
		"- tone: tense",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "userId") {
		t.Errorf("identity keys should not leak into the prompt")
	}
}
