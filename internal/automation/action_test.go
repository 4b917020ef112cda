package automation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jbapex/planeje/pkg/cerr"
)

const rulesYAML = `
actions:
  - type: change_status
    status: revisao
  - type: set_assignee
    assignee_ids: [u1, u2]
  - type: remove_assignee
  - type: reassign_previous
    from_status: edicao
  - type: move_task
    destination: board-2
`

func TestActionsUnmarshalYAML(t *testing.T) {
	var doc struct {
		Actions Actions `yaml:"actions"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(rulesYAML), &doc))
	require.Len(t, doc.Actions, 5)

	assert.Equal(t, ChangeStatus{Status: "revisao"}, doc.Actions[0])
	assert.Equal(t, SetAssignee{AssigneeIDs: []string{"u1", "u2"}}, doc.Actions[1])
	assert.Equal(t, RemoveAssignee{}, doc.Actions[2])
	assert.Equal(t, ReassignPrevious{FromStatus: "edicao"}, doc.Actions[3])
	assert.Equal(t, MoveTask{Destination: "board-2"}, doc.Actions[4])
}

func TestActionsUnmarshalYAML_UnknownType(t *testing.T) {
	var actions Actions
	err := yaml.Unmarshal([]byte("- type: explode\n"), &actions)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestActionsJSONRoundTrip(t *testing.T) {
	in := Actions{
		ChangeStatus{Status: "done"},
		RemoveAssignee{AssigneeIDs: []string{"u1"}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Actions
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestRuleValidate(t *testing.T) {
	valid := &Rule{
		ID:          "r1",
		TriggerType: TriggerStatusChange,
		Actions:     Actions{ChangeStatus{Status: "done"}},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		rule *Rule
	}{
		{
			name: "unknown trigger type",
			rule: &Rule{TriggerType: "cron", Actions: Actions{ChangeStatus{Status: "x"}}},
		},
		{
			name: "no actions",
			rule: &Rule{TriggerType: TriggerTaskCreated},
		},
		{
			name: "change_status without status",
			rule: &Rule{TriggerType: TriggerTaskCreated, Actions: Actions{ChangeStatus{}}},
		},
		{
			name: "set_assignee without ids",
			rule: &Rule{TriggerType: TriggerTaskCreated, Actions: Actions{SetAssignee{}}},
		},
		{
			name: "reassign_previous without from_status",
			rule: &Rule{TriggerType: TriggerTaskCreated, Actions: Actions{ReassignPrevious{}}},
		},
		{
			name: "move_task without destination",
			rule: &Rule{TriggerType: TriggerTaskCreated, Actions: Actions{MoveTask{}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			require.Error(t, err)
			assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
		})
	}
}

func TestRuleValidate_RemoveAssigneeEmptyIsClearAll(t *testing.T) {
	rule := &Rule{
		TriggerType: TriggerTaskCreated,
		Actions:     Actions{RemoveAssignee{}},
	}
	assert.NoError(t, rule.Validate())
}
