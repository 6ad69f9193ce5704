package agentdef

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawDefinition mirrors the fenced YAML block inside a definition document.
type rawDefinition struct {
	Agent struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Title string `yaml:"title"`
	} `yaml:"agent"`
	Persona struct {
		Role           string   `yaml:"role"`
		Style          string   `yaml:"style"`
		CorePrinciples []string `yaml:"core_principles"`
	} `yaml:"persona"`
	Commands     map[string]string   `yaml:"commands"`
	Dependencies map[string][]string `yaml:"dependencies"`
}

// Load scans dir for *.md definition documents and parses each into the
// registry. A malformed file is logged and skipped; it never aborts the load.
func Load(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read agents dir: %w", err)
	}

	reg := &Registry{agents: map[string]*AgentDefinition{}}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("Skipping unreadable agent definition", "path", path, "error", err)
			continue
		}
		def, err := parseDocument(string(data))
		if err != nil {
			slog.Warn("Skipping malformed agent definition", "path", path, "error", err)
			continue
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(name, ".md")
		}
		reg.add(def)
	}
	return reg, nil
}

// parseDocument extracts the first fenced YAML block from a definition
// document and decodes it. Missing optional sections degrade to empty
// defaults rather than failing.
func parseDocument(doc string) (*AgentDefinition, error) {
	block, err := extractFencedBlock(doc)
	if err != nil {
		return nil, err
	}

	var raw rawDefinition
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("parse definition block: %w", err)
	}

	def := &AgentDefinition{
		ID:    strings.TrimSpace(raw.Agent.ID),
		Name:  strings.TrimSpace(raw.Agent.Name),
		Title: strings.TrimSpace(raw.Agent.Title),
		Persona: Persona{
			Role:           strings.TrimSpace(raw.Persona.Role),
			Style:          strings.TrimSpace(raw.Persona.Style),
			CorePrinciples: raw.Persona.CorePrinciples,
		},
		Commands:     raw.Commands,
		Dependencies: raw.Dependencies,
	}
	if def.Commands == nil {
		def.Commands = map[string]string{}
	}
	if def.Dependencies == nil {
		def.Dependencies = map[string][]string{}
	}
	return def, nil
}

// extractFencedBlock returns the contents of the first ```yaml fence.
func extractFencedBlock(doc string) (string, error) {
	lines := strings.Split(doc, "\n")
	var block []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if trimmed == "```yaml" || trimmed == "```yml" {
				inBlock = true
			}
			continue
		}
		if trimmed == "```" {
			return strings.Join(block, "\n"), nil
		}
		block = append(block, line)
	}
	if inBlock {
		return "", fmt.Errorf("unterminated definition block")
	}
	return "", fmt.Errorf("no fenced definition block found")
}
