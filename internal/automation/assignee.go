package automation

import (
	"github.com/jbapex/planeje/internal/task"
)

// Instruction is one step of an assignee-set reduction. Instructions are
// applied strictly in list order.
type Instruction interface {
	instruction()
}

// AddAssignees unions the ids into the set.
type AddAssignees struct {
	IDs []string
}

// RemoveAssignees subtracts the ids from the set. An empty id list is an
// unconditional clear of the whole set.
type RemoveAssignees struct {
	IDs []string
}

// ReassignFromHistory replaces the set with the user who most recently
// handled the task in FromStatus. The replacement is suppressed when that
// user was explicitly removed, or any unconditional clear occurred, earlier
// in the same run.
type ReassignFromHistory struct {
	FromStatus string
	History    []task.HistoryEntry
}

func (AddAssignees) instruction()        {}
func (RemoveAssignees) instruction()     {}
func (ReassignFromHistory) instruction() {}

// ReduceResult is the outcome of a reduction. Touched is true whenever an
// add or remove instruction appeared, even one that changed nothing;
// callers must persist the assignee field in that case so the write (and
// its history entry) still happens.
type ReduceResult struct {
	IDs     []string
	Changed bool
	Touched bool
}

// ReduceAssignees computes the assignee set that results from applying the
// instructions to current. The output is normalized: no duplicates, no
// blank ids, insertion order preserved.
func ReduceAssignees(current []string, instrs []Instruction) ReduceResult {
	working := normalizeIDs(current)
	removed := make(map[string]struct{})
	cleared := false
	touched := false

	for _, instr := range instrs {
		switch instr := instr.(type) {
		case AddAssignees:
			touched = true
			for _, id := range normalizeIDs(instr.IDs) {
				if !containsID(working, id) {
					working = append(working, id)
				}
			}
		case RemoveAssignees:
			touched = true
			ids := normalizeIDs(instr.IDs)
			if len(ids) == 0 {
				cleared = true
				working = nil
				continue
			}
			for _, id := range ids {
				removed[id] = struct{}{}
			}
			kept := working[:0]
			for _, id := range working {
				if _, gone := removed[id]; !gone {
					kept = append(kept, id)
				}
			}
			working = kept
		case ReassignFromHistory:
			uid, ok := lastHandler(instr.History, instr.FromStatus)
			if !ok || cleared {
				continue
			}
			if _, gone := removed[uid]; gone {
				continue
			}
			working = []string{uid}
		}
	}

	return ReduceResult{
		IDs:     working,
		Changed: !sameMembers(normalizeIDs(current), working),
		Touched: touched,
	}
}

// lastHandler scans the history newest-first for the most recent entry in
// fromStatus that carries a responsible user.
func lastHandler(history []task.HistoryEntry, fromStatus string) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Status != fromStatus {
			continue
		}
		if uid, ok := history[i].Handler(); ok {
			return uid, true
		}
	}
	return "", false
}

func normalizeIDs(ids []string) []string {
	return task.NormalizeAssignees(ids)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// sameMembers compares by value, ignoring order.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
