package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopmate/internal/config"
	"shopmate/internal/model"
)

// newFakeAIServer serves OpenAI-format chat completions that always answer
// with the given content string.
func newFakeAIServer(t *testing.T, content string) (*httptest.Server, *OpenAIClient) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))

	client := NewOpenAIClient(&config.OpenAIConfig{
		APIKey:    "test-key",
		APIBase:   server.URL,
		ChatModel: "gpt-4o-mini",
		Timeout:   5,
		Enabled:   true,
	})
	return server, client
}

func TestClassifyState_ParsesResponse(t *testing.T) {
	server, client := newFakeAIServer(t, `{"state": "ready_to_search", "response": "Let me find those for you!"}`)
	defer server.Close()

	classifier := NewConversationClassifier(client)
	result, err := classifier.ClassifyState(context.Background(), "show me laptops", nil)
	if err != nil {
		t.Fatalf("ClassifyState failed: %v", err)
	}
	if result.State != model.StateReadyToSearch {
		t.Errorf("Wrong state: %s", result.State)
	}
	if result.Response != "Let me find those for you!" {
		t.Errorf("Wrong response: %q", result.Response)
	}
}

func TestClassifyState_MarkdownWrappedJSON(t *testing.T) {
	server, client := newFakeAIServer(t, "```json\n{\"state\": \"collecting_info\", \"response\": \"What are you looking for?\"}\n```")
	defer server.Close()

	classifier := NewConversationClassifier(client)
	result, err := classifier.ClassifyState(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("ClassifyState failed: %v", err)
	}
	if result.State != model.StateCollectingInfo {
		t.Errorf("Wrong state: %s", result.State)
	}
}

func TestClassifyState_UnknownStateIsError(t *testing.T) {
	server, client := newFakeAIServer(t, `{"state": "pondering", "response": "hmm"}`)
	defer server.Close()

	classifier := NewConversationClassifier(client)
	if _, err := classifier.ClassifyState(context.Background(), "hi", nil); err == nil {
		t.Fatal("Expected an error for an unknown state")
	}
}

func TestClassifyState_UpstreamFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{
		APIKey: "test-key", APIBase: server.URL, Timeout: 5, Enabled: true,
	})
	classifier := NewConversationClassifier(client)
	if _, err := classifier.ClassifyState(context.Background(), "hi", nil); err == nil {
		t.Fatal("Expected an error when the model endpoint fails")
	}
}

func TestExtractParameters_ParsesResponse(t *testing.T) {
	server, client := newFakeAIServer(t, `{
		"base_query": "black-leather-laptop-bag",
		"filters": {"price_range": {"max": 100}, "min_rating": 4.0, "free_shipping": true},
		"sort_by": "rating_weighted"
	}`)
	defer server.Close()

	extractor := NewParamExtractor(client)
	params, err := extractor.ExtractParameters(context.Background(), "best laptop bag under $100", nil)
	if err != nil {
		t.Fatalf("ExtractParameters failed: %v", err)
	}
	if params.Query() != "black-leather-laptop-bag" {
		t.Errorf("Wrong query: %q", params.Query())
	}
	if params.Filters == nil || params.Filters.PriceRange == nil || *params.Filters.PriceRange.Max != 100 {
		t.Error("Price range not extracted")
	}
	if params.Filters.MinRating == nil || *params.Filters.MinRating != 4.0 {
		t.Error("Min rating not extracted")
	}
	if params.Sort() != model.SortRatingWeighted {
		t.Errorf("Wrong sort: %s", params.Sort())
	}
}

func TestExtractParameters_SanitizesBadValues(t *testing.T) {
	server, client := newFakeAIServer(t, `{
		"base_query": "",
		"filters": {"min_rating": 9.5},
		"sort_by": "coolness"
	}`)
	defer server.Close()

	extractor := NewParamExtractor(client)
	params, err := extractor.ExtractParameters(context.Background(), "hmm", nil)
	if err != nil {
		t.Fatalf("ExtractParameters failed: %v", err)
	}
	if params.HasQuery() {
		t.Error("Empty base query must be dropped")
	}
	if params.SortBy != nil {
		t.Error("Unknown sort option must be dropped")
	}
	if params.Filters.MinRating != nil {
		t.Error("Out-of-range rating must be dropped")
	}
	if params.Sort() != model.SortRelevance {
		t.Errorf("Sort must default to relevance, got %s", params.Sort())
	}
}

func TestExtractParameters_NullQuery(t *testing.T) {
	server, client := newFakeAIServer(t, `{"base_query": null}`)
	defer server.Close()

	extractor := NewParamExtractor(client)
	params, err := extractor.ExtractParameters(context.Background(), "hello there", nil)
	if err != nil {
		t.Fatalf("ExtractParameters failed: %v", err)
	}
	if params.HasQuery() {
		t.Error("Null base query must yield no query")
	}
}
