package service

import (
	"shopmate/internal/model"
)

// Transition describes what one turn does to a session: the next state,
// whether a catalog search fires, whether history resets, and the reply
// drafted by the state classifier.
type Transition struct {
	From         model.ConversationState
	State        model.ConversationState
	Search       bool
	ClearHistory bool
	Reply        string
}

// Advance applies the merged analysis result to the current session state.
//
// The classifier's verdict is the sole authority on the next state; state
// is never re-derived from the extracted parameters, so the two can
// disagree (e.g. a base query alongside collecting_info). A search fires
// only when the new state is ready_to_search AND a non-empty base query
// was extracted - that conjunction is the single gate protecting the
// catalog provider from unusable queries.
func Advance(current model.ConversationState, result model.AnalysisResult) Transition {
	// A turn arriving after "ended" restarts the flow.
	if current == model.StateEnded {
		current = model.StateInitial
	}

	next := result.Classification.State
	if !next.Valid() {
		next = model.StateCollectingInfo
	}

	return Transition{
		From:         current,
		State:        next,
		Search:       next == model.StateReadyToSearch && result.Params.HasQuery(),
		ClearHistory: next.ClearsHistory(),
		Reply:        result.Classification.Response,
	}
}
