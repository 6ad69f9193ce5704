package store

import "strings"

// Change types reported by DiffLines.
const (
	ChangeAdd    = "add"
	ChangeDelete = "delete"
	ChangeModify = "modify"
)

// LineChange describes one changed line position.
type LineChange struct {
	Type       string `json:"type"`
	Line       int    `json:"line"` // 1-based line number
	Content    string `json:"content,omitempty"`
	OldContent string `json:"old_content,omitempty"`
}

// DiffResult summarises a line diff between two versions.
type DiffResult struct {
	Additions int          `json:"additions"`
	Deletions int          `json:"deletions"`
	Changes   []LineChange `json:"changes"`
}

// DiffLines performs a positional line comparison. Lines are compared by
// index only: a modified line counts as one addition and one deletion, and
// there is no realignment after an insert or delete, so a single inserted
// line marks every following line as modified.
func DiffLines(oldText, newText string) *DiffResult {
	if oldText == newText {
		return &DiffResult{Changes: []LineChange{}}
	}

	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	result := &DiffResult{Changes: []LineChange{}}
	max := len(oldLines)
	if len(newLines) > max {
		max = len(newLines)
	}

	for i := 0; i < max; i++ {
		switch {
		case i >= len(oldLines):
			result.Additions++
			result.Changes = append(result.Changes, LineChange{
				Type:    ChangeAdd,
				Line:    i + 1,
				Content: newLines[i],
			})
		case i >= len(newLines):
			result.Deletions++
			result.Changes = append(result.Changes, LineChange{
				Type:       ChangeDelete,
				Line:       i + 1,
				OldContent: oldLines[i],
			})
		case oldLines[i] != newLines[i]:
			result.Additions++
			result.Deletions++
			result.Changes = append(result.Changes, LineChange{
				Type:       ChangeModify,
				Line:       i + 1,
				Content:    newLines[i],
				OldContent: oldLines[i],
			})
		}
	}
	return result
}
