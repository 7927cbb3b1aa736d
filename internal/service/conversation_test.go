package service

import (
	"testing"

	"shopmate/internal/model"
)

func analysis(state model.ConversationState, reply string, params *model.SearchParameters) model.AnalysisResult {
	if params == nil {
		params = model.EmptySearchParameters()
	}
	return model.AnalysisResult{
		Classification: model.StateClassification{State: state, Response: reply},
		Params:         params,
	}
}

func TestAdvance_ClassifierIsStateAuthority(t *testing.T) {
	// Even with a usable base query, collecting_info stands: state is
	// never re-derived from the extracted parameters.
	result := analysis(model.StateCollectingInfo, "Tell me more",
		&model.SearchParameters{BaseQuery: strPtr("pink-dress-shoes")})

	tr := Advance(model.StateInitial, result)
	if tr.State != model.StateCollectingInfo {
		t.Errorf("Expected collecting_info, got %s", tr.State)
	}
	if tr.Search {
		t.Error("Search must not fire outside ready_to_search")
	}
}

func TestAdvance_SearchTriggerPredicate(t *testing.T) {
	tests := []struct {
		name   string
		state  model.ConversationState
		params *model.SearchParameters
		want   bool
	}{
		{
			name:   "ready with query",
			state:  model.StateReadyToSearch,
			params: &model.SearchParameters{BaseQuery: strPtr("running-shoes")},
			want:   true,
		},
		{
			name:   "ready without query",
			state:  model.StateReadyToSearch,
			params: model.EmptySearchParameters(),
			want:   false,
		},
		{
			name:   "ready with empty query",
			state:  model.StateReadyToSearch,
			params: &model.SearchParameters{BaseQuery: strPtr("")},
			want:   false,
		},
		{
			name:   "collecting with query",
			state:  model.StateCollectingInfo,
			params: &model.SearchParameters{BaseQuery: strPtr("running-shoes")},
			want:   false,
		},
		{
			name:   "ended with query",
			state:  model.StateEnded,
			params: &model.SearchParameters{BaseQuery: strPtr("running-shoes")},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Advance(model.StateCollectingInfo, analysis(tt.state, "reply", tt.params))
			if tr.Search != tt.want {
				t.Errorf("Search = %v, want %v", tr.Search, tt.want)
			}
		})
	}
}

func TestAdvance_ClearingStates(t *testing.T) {
	tests := []struct {
		state model.ConversationState
		clear bool
	}{
		{model.StateInitial, true},
		{model.StateEnded, true},
		{model.StateCollectingInfo, false},
		{model.StateReadyToSearch, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			tr := Advance(model.StateCollectingInfo, analysis(tt.state, "reply", nil))
			if tr.ClearHistory != tt.clear {
				t.Errorf("ClearHistory = %v, want %v", tr.ClearHistory, tt.clear)
			}
		})
	}
}

func TestAdvance_EndedRestartsAsInitial(t *testing.T) {
	tr := Advance(model.StateEnded, analysis(model.StateCollectingInfo, "Welcome back", nil))
	if tr.From != model.StateInitial {
		t.Errorf("A turn after ended should restart from initial, got %s", tr.From)
	}
	if tr.State != model.StateCollectingInfo {
		t.Errorf("Expected collecting_info, got %s", tr.State)
	}
}

func TestAdvance_InvalidStateNormalized(t *testing.T) {
	tr := Advance(model.StateInitial, analysis(model.ConversationState("bogus"), "hm", nil))
	if tr.State != model.StateCollectingInfo {
		t.Errorf("Unknown states should normalize to collecting_info, got %s", tr.State)
	}
}

func TestAdvance_CarriesClassifierReply(t *testing.T) {
	tr := Advance(model.StateInitial, analysis(model.StateCollectingInfo, "What are you looking for today?", nil))
	if tr.Reply != "What are you looking for today?" {
		t.Errorf("Reply not carried through: %q", tr.Reply)
	}
}
