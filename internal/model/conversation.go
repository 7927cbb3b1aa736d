package model

// ConversationState enumerates the states of the per-session conversation flow.
type ConversationState string

const (
	StateInitial        ConversationState = "initial"         // conversation starts or resets
	StateCollectingInfo ConversationState = "collecting_info" // gathering missing information
	StateReadyToSearch  ConversationState = "ready_to_search" // enough info to search
	StateEnded          ConversationState = "ended"           // conversation has ended
)

// Valid reports whether s is one of the four known states.
func (s ConversationState) Valid() bool {
	switch s {
	case StateInitial, StateCollectingInfo, StateReadyToSearch, StateEnded:
		return true
	}
	return false
}

// ClearsHistory reports whether entering this state resets the session history.
func (s ConversationState) ClearsHistory() bool {
	return s == StateInitial || s == StateEnded
}

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a session's chronological history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StateClassification is the state classifier's verdict for one turn.
type StateClassification struct {
	State    ConversationState `json:"state"`
	Response string            `json:"response"`
}

// AnalysisResult merges the outcomes of the two per-turn classification
// sub-tasks. Both fields are always populated; a failed sub-task is
// replaced by its fallback value, never left missing.
type AnalysisResult struct {
	Classification StateClassification
	Params         *SearchParameters
}
