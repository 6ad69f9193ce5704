package agentdef

import (
	"os"
	"path/filepath"
	"testing"
)

const wellFormedDoc = "# Plot Architect\n" +
	"\n" +
	"```yaml\n" +
	"agent:\n" +
	"  id: plot-architect\n" +
	"  name: Plot Architect\n" +
	"  title: Senior Story Structure Consultant\n" +
	"persona:\n" +
	"  role: Story structure specialist\n" +
	"  style: Analytical, direct\n" +
	"  core_principles:\n" +
	"    - Structure serves story\n" +
	"    - Every scene must earn its place\n" +
	"commands:\n" +
	"  outline: Create a chapter-by-chapter outline\n" +
	"  review: Review structure of the current draft\n" +
	"dependencies:\n" +
	"  templates:\n" +
	"    - chapter-outline\n" +
	"  data:\n" +
	"    - story-beats\n" +
	"```\n"

func writeAgentFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write agent file: %v", err)
	}
}

func TestLoadWellFormedDefinition(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "plot-architect.md", wellFormedDoc)

	reg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 agent, got %d", reg.Len())
	}

	def, err := reg.Get("plot-architect")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if def.Name != "Plot Architect" {
		t.Errorf("expected name 'Plot Architect', got %q", def.Name)
	}
	if def.Persona.Role != "Story structure specialist" {
		t.Errorf("unexpected persona role: %q", def.Persona.Role)
	}
	if len(def.Persona.CorePrinciples) != 2 {
		t.Errorf("expected 2 core principles, got %d", len(def.Persona.CorePrinciples))
	}
	if def.Commands["outline"] == "" {
		t.Errorf("expected outline command")
	}
	if len(def.Dependencies["templates"]) != 1 {
		t.Errorf("expected 1 template dependency, got %d", len(def.Dependencies["templates"]))
	}
}

func TestLoadSkipsMalformedDefinition(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "good.md", wellFormedDoc)
	writeAgentFile(t, dir, "broken.md", "# Broken\n\n```yaml\nagent: [unclosed\n```\n")

	reg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected only the well-formed agent, got %d entries", reg.Len())
	}
	if _, err := reg.Get("plot-architect"); err != nil {
		t.Errorf("expected well-formed agent to survive: %v", err)
	}
}

func TestLoadFallsBackToFilenameID(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "muse.md", "```yaml\nagent:\n  name: The Muse\n```\n")

	reg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	def, err := reg.Get("muse")
	if err != nil {
		t.Fatalf("expected id fallback to file base name: %v", err)
	}
	if def.Name != "The Muse" {
		t.Errorf("unexpected name: %q", def.Name)
	}
	if def.Commands == nil || def.Dependencies == nil {
		t.Errorf("expected empty defaults for missing sections")
	}
}

func TestLoadIgnoresFileWithoutBlock(t *testing.T) {
	dir := t.TempDir()
	writeAgentFile(t, dir, "readme.md", "# Just prose, no definition block\n")

	reg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d entries", reg.Len())
	}
}

func TestGetUnknownAgent(t *testing.T) {
	reg := &Registry{agents: map[string]*AgentDefinition{}}
	if _, err := reg.Get("nope"); err != ErrAgentNotFound {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}
}

func TestResourcesMissing(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "templates"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "templates", "chapter-outline.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write resource: %v", err)
	}

	res := NewResources(base)
	def := &AgentDefinition{
		Dependencies: map[string][]string{
			"templates": {"chapter-outline"},
			"data":      {"story-beats"},
		},
	}
	missing := res.Missing(def)
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing resource, got %d: %v", len(missing), missing)
	}
	if missing[0] != "data/story-beats" {
		t.Errorf("unexpected missing entry: %q", missing[0])
	}
}
