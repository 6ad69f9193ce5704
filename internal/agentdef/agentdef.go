// Package agentdef loads and indexes agent persona definitions.
package agentdef

import "errors"

// ErrAgentNotFound is returned when no definition exists for an agent id.
var ErrAgentNotFound = errors.New("agent not found")

// Dependency categories recognized in definition documents.
const (
	CategoryData      = "data"
	CategoryTasks     = "tasks"
	CategoryTemplates = "templates"
	CategoryUtils     = "utils"
)

// AgentDefinition describes one scripted writing persona. Definitions are
// immutable once loaded.
type AgentDefinition struct {
	ID           string
	Name         string
	Title        string
	Persona      Persona
	Commands     map[string]string
	Dependencies map[string][]string
}

// Persona holds the fields that drive prompt composition.
type Persona struct {
	Role           string
	Style          string
	CorePrinciples []string
}

// Registry is the process-wide index of loaded agent definitions.
// It is populated once at startup and never mutated afterwards.
type Registry struct {
	order  []string
	agents map[string]*AgentDefinition
}

// NewRegistry builds a registry from definitions in the given order.
func NewRegistry(defs ...*AgentDefinition) *Registry {
	r := &Registry{agents: map[string]*AgentDefinition{}}
	for _, def := range defs {
		r.add(def)
	}
	return r
}

// Agents returns all definitions in load order.
func (r *Registry) Agents() []*AgentDefinition {
	out := make([]*AgentDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.agents[id])
	}
	return out
}

// Get returns the definition for the given id.
func (r *Registry) Get(id string) (*AgentDefinition, error) {
	def, ok := r.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return def, nil
}

// Len returns the number of loaded definitions.
func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) add(def *AgentDefinition) {
	if _, exists := r.agents[def.ID]; !exists {
		r.order = append(r.order, def.ID)
	}
	r.agents[def.ID] = def
}
