package automation

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/pkg/cerr"
)

// Action is a closed union: ChangeStatus, SetAssignee, RemoveAssignee,
// ReassignPrevious or MoveTask. The wire form is a flat record tagged by
// "type"; decoding anything else is a validation error.
type Action interface {
	actionType() string
}

// ChangeStatus sets the working status. When several occur in one action
// list the last one wins.
type ChangeStatus struct {
	Status string
}

// SetAssignee adds the listed users to the assignee set.
type SetAssignee struct {
	AssigneeIDs []string
}

// RemoveAssignee removes the listed users. An empty list clears the whole
// set.
type RemoveAssignee struct {
	AssigneeIDs []string
}

// ReassignPrevious replaces the assignee set with the user who last handled
// the task while it was in FromStatus, per the status history.
type ReassignPrevious struct {
	FromStatus string
}

// MoveTask moves the task to another board via the external mover.
type MoveTask struct {
	Destination string
}

func (ChangeStatus) actionType() string     { return "change_status" }
func (SetAssignee) actionType() string      { return "set_assignee" }
func (RemoveAssignee) actionType() string   { return "remove_assignee" }
func (ReassignPrevious) actionType() string { return "reassign_previous" }
func (MoveTask) actionType() string         { return "move_task" }

// Actions carries the ordered action list and owns the tagged-record wire
// encoding for both YAML (at rest) and JSON (over HTTP).
type Actions []Action

// actionDoc is the flat wire record all action kinds share.
type actionDoc struct {
	Type        string   `yaml:"type" json:"type"`
	Status      string   `yaml:"status,omitempty" json:"status,omitempty"`
	AssigneeIDs []string `yaml:"assignee_ids,omitempty" json:"assignee_ids,omitempty"`
	FromStatus  string   `yaml:"from_status,omitempty" json:"from_status,omitempty"`
	Destination string   `yaml:"destination,omitempty" json:"destination,omitempty"`
}

func newValidationError(format string, args ...any) error {
	return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf(format, args...), nil)
}

func decodeAction(doc actionDoc) (Action, error) {
	switch doc.Type {
	case "change_status":
		return ChangeStatus{Status: doc.Status}, nil
	case "set_assignee":
		return SetAssignee{AssigneeIDs: doc.AssigneeIDs}, nil
	case "remove_assignee":
		return RemoveAssignee{AssigneeIDs: doc.AssigneeIDs}, nil
	case "reassign_previous":
		return ReassignPrevious{FromStatus: doc.FromStatus}, nil
	case "move_task":
		return MoveTask{Destination: doc.Destination}, nil
	default:
		return nil, newValidationError("unknown action type %q", doc.Type)
	}
}

func encodeAction(a Action) actionDoc {
	doc := actionDoc{Type: a.actionType()}
	switch a := a.(type) {
	case ChangeStatus:
		doc.Status = a.Status
	case SetAssignee:
		doc.AssigneeIDs = a.AssigneeIDs
	case RemoveAssignee:
		doc.AssigneeIDs = a.AssigneeIDs
	case ReassignPrevious:
		doc.FromStatus = a.FromStatus
	case MoveTask:
		doc.Destination = a.Destination
	}
	return doc
}

func validateAction(a Action) error {
	switch a := a.(type) {
	case ChangeStatus:
		if a.Status == "" {
			return fmt.Errorf("change_status requires a status")
		}
	case SetAssignee:
		if len(a.AssigneeIDs) == 0 {
			return fmt.Errorf("set_assignee requires assignee ids")
		}
	case RemoveAssignee:
		// empty assignee_ids means "clear all"
	case ReassignPrevious:
		if a.FromStatus == "" {
			return fmt.Errorf("reassign_previous requires a from_status")
		}
	case MoveTask:
		if a.Destination == "" {
			return fmt.Errorf("move_task requires a destination")
		}
	default:
		return fmt.Errorf("unknown action %T", a)
	}
	return nil
}

func (a *Actions) UnmarshalYAML(value *yaml.Node) error {
	var docs []actionDoc
	if err := value.Decode(&docs); err != nil {
		return newValidationError("actions must be a list of tagged records: %v", err)
	}
	decoded := make(Actions, 0, len(docs))
	for _, doc := range docs {
		action, err := decodeAction(doc)
		if err != nil {
			return err
		}
		decoded = append(decoded, action)
	}
	*a = decoded
	return nil
}

func (a Actions) MarshalYAML() (any, error) {
	docs := make([]actionDoc, 0, len(a))
	for _, action := range a {
		docs = append(docs, encodeAction(action))
	}
	return docs, nil
}

func (a *Actions) UnmarshalJSON(b []byte) error {
	var docs []actionDoc
	if err := json.Unmarshal(b, &docs); err != nil {
		return newValidationError("actions must be a list of tagged records: %v", err)
	}
	decoded := make(Actions, 0, len(docs))
	for _, doc := range docs {
		action, err := decodeAction(doc)
		if err != nil {
			return err
		}
		decoded = append(decoded, action)
	}
	*a = decoded
	return nil
}

func (a Actions) MarshalJSON() ([]byte, error) {
	docs := make([]actionDoc, 0, len(a))
	for _, action := range a {
		docs = append(docs, encodeAction(action))
	}
	return json.Marshal(docs)
}
