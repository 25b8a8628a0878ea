package models

// ActionType names a category of follow-up work item.
type ActionType string

const (
	ActionMissingInfo       ActionType = "MISSING_INFO"
	ActionEligibilityVerify ActionType = "ELIGIBILITY_VERIFY"
	ActionSubmitAuth        ActionType = "SUBMIT_AUTH"
	ActionSchedulingBlocker ActionType = "SCHEDULING_BLOCKER"
)

// Action is a follow-up work item proposed by a stage agent for a human or
// downstream system to resolve.
type Action struct {
	Type    ActionType `json:"type"`
	Owner   string     `json:"owner"`
	Detail  string     `json:"detail,omitempty"`
	Missing []string   `json:"missing,omitempty"`
}

// Equal reports full content equality, used to suppress duplicate actions
// when an agent result is replayed.
func (a Action) Equal(other Action) bool {
	if a.Type != other.Type || a.Owner != other.Owner || a.Detail != other.Detail {
		return false
	}

	if len(a.Missing) != len(other.Missing) {
		return false
	}

	for i, m := range a.Missing {
		if m != other.Missing[i] {
			return false
		}
	}

	return true
}

// Context is the shared evaluation state passed between stage agents within
// one orchestration run. Agents read it; only the merge engine writes it.
type Context struct {
	State PipelineState `json:"state"`

	// Decisions maps a decision name to its outcome. A key, once set, is only
	// ever overwritten by a later agent, never removed.
	Decisions map[string]bool `json:"decisions"`

	// Actions is the ordered list of proposed follow-up work items.
	Actions []Action `json:"actions"`

	// Case is the working copy of the normalized referral.
	Case Case `json:"case"`
}

// NewContext builds an evaluation context seeded from a case record. A case
// with no recorded state starts at the beginning of the pipeline.
func NewContext(c Case) *Context {
	state := c.State
	if !state.Valid() {
		state = StateReferralReceived
	}

	return &Context{
		State:     state,
		Decisions: make(map[string]bool),
		Actions:   make([]Action, 0),
		Case:      c,
	}
}
