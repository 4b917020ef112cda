package task

import (
	"strings"
	"time"
)

// Task is an agency work item on a board. Status is an opaque operator-defined
// value, not a closed set. StatusHistory is append-only; entries are never
// rewritten or removed.
type Task struct {
	ID            string         `yaml:"id" json:"id"`
	BoardID       string         `yaml:"board_id" json:"board_id"`
	Type          string         `yaml:"type" json:"type"`
	Title         string         `yaml:"title" json:"title"`
	Description   string         `yaml:"description" json:"description"`
	Status        string         `yaml:"status" json:"status"`
	AssigneeIDs   []string       `yaml:"assignee_ids" json:"assignee_ids"`
	StatusHistory []HistoryEntry `yaml:"status_history" json:"status_history"`
	CreatedAt     time.Time      `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `yaml:"updated_at" json:"updated_at"`
}

type HistoryEntry struct {
	Status      string    `yaml:"status" json:"status"`
	AssigneeIDs []string  `yaml:"assignee_ids" json:"assignee_ids"`
	ChangedAt   time.Time `yaml:"changed_at" json:"changed_at"`
	Automated   bool      `yaml:"automated" json:"automated"`
}

// Handler returns the user responsible for the entry: the first assignee of
// its snapshot. ok is false when the entry carries no assignees.
func (e HistoryEntry) Handler() (string, bool) {
	if len(e.AssigneeIDs) == 0 {
		return "", false
	}
	return e.AssigneeIDs[0], true
}

// NormalizeAssignees drops blank ids and duplicates, preserving first-seen
// order. The assignee field must never carry either.
func NormalizeAssignees(ids []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Update is a partial write against a task. Nil fields are left untouched.
// History, when present, is appended by the repository, so callers never
// read-modify-write the whole log.
type Update struct {
	Status      *string
	AssigneeIDs *[]string
	BoardID     *string
	Title       *string
	Description *string
	History     *HistoryEntry
}

func (u Update) Empty() bool {
	return u.Status == nil && u.AssigneeIDs == nil && u.BoardID == nil &&
		u.Title == nil && u.Description == nil && u.History == nil
}
