package agentdef

import (
	"os"
	"path/filepath"
)

// Resources checks dependency references against a base directory organized
// by category subdirectory (data/, tasks/, templates/, utils/).
type Resources struct {
	baseDir string
}

// NewResources creates a resource backend rooted at baseDir.
func NewResources(baseDir string) *Resources {
	return &Resources{baseDir: baseDir}
}

// Exists reports whether the named resource is present in its category.
// The name may carry its own extension; otherwise .md is assumed.
func (r *Resources) Exists(category, name string) bool {
	if r.baseDir == "" || category == "" || name == "" {
		return false
	}
	path := filepath.Join(r.baseDir, category, name)
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return true
	}
	if filepath.Ext(name) == "" {
		if fi, err := os.Stat(path + ".md"); err == nil && !fi.IsDir() {
			return true
		}
	}
	return false
}

// Missing returns the dependency references of def that cannot be found,
// as "category/name" strings in category order.
func (r *Resources) Missing(def *AgentDefinition) []string {
	var missing []string
	for _, category := range []string{CategoryData, CategoryTasks, CategoryTemplates, CategoryUtils} {
		for _, name := range def.Dependencies[category] {
			if !r.Exists(category, name) {
				missing = append(missing, category+"/"+name)
			}
		}
	}
	return missing
}
