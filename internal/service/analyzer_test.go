package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopmate/internal/model"
)

// Fake collaborators shared across the package tests

type fakeClassifier struct {
	result model.StateClassification
	err    error
	delay  time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeClassifier) ClassifyState(ctx context.Context, message string, history []model.Turn) (model.StateClassification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result, f.err
}

type fakeExtractor struct {
	result *model.SearchParameters
	err    error
	delay  time.Duration
}

func (f *fakeExtractor) ExtractParameters(ctx context.Context, message string, history []model.Turn) (*model.SearchParameters, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result, f.err
}

func newTestAnalyzer(t *testing.T, classifier StateClassifier, extractor ParameterExtractor) *Analyzer {
	t.Helper()
	analyzer, err := NewAnalyzer(classifier, extractor)
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return analyzer
}

func TestNewAnalyzer_RequiresCollaborators(t *testing.T) {
	if _, err := NewAnalyzer(nil, &fakeExtractor{}); err == nil {
		t.Error("Expected error for missing classifier")
	}
	if _, err := NewAnalyzer(&fakeClassifier{}, nil); err == nil {
		t.Error("Expected error for missing extractor")
	}
}

func TestAnalyze_BothSucceed(t *testing.T) {
	classifier := &fakeClassifier{result: model.StateClassification{
		State:    model.StateReadyToSearch,
		Response: "Let me find those for you!",
	}}
	extractor := &fakeExtractor{result: &model.SearchParameters{BaseQuery: strPtr("running-shoes")}}

	analyzer := newTestAnalyzer(t, classifier, extractor)
	result := analyzer.Analyze(context.Background(), "show me running shoes", nil)

	if result.Classification.State != model.StateReadyToSearch {
		t.Errorf("Expected ready_to_search, got %s", result.Classification.State)
	}
	if result.Params.Query() != "running-shoes" {
		t.Errorf("Expected extracted query, got %q", result.Params.Query())
	}
}

func TestAnalyze_ClassifierFailureIsIsolated(t *testing.T) {
	// The extractor's result must survive a classifier timeout.
	classifier := &fakeClassifier{err: errors.New("request timed out")}
	extractor := &fakeExtractor{result: &model.SearchParameters{BaseQuery: strPtr("laptop-bag")}}

	analyzer := newTestAnalyzer(t, classifier, extractor)
	result := analyzer.Analyze(context.Background(), "a leather laptop bag", nil)

	if result.Classification.State != model.StateCollectingInfo {
		t.Errorf("Expected collecting_info fallback, got %s", result.Classification.State)
	}
	if result.Classification.Response != FallbackClarification {
		t.Errorf("Expected clarification fallback, got %q", result.Classification.Response)
	}
	if result.Params.Query() != "laptop-bag" {
		t.Errorf("Extractor result should be preserved, got %q", result.Params.Query())
	}
}

func TestAnalyze_ExtractorFailureIsIsolated(t *testing.T) {
	classifier := &fakeClassifier{result: model.StateClassification{
		State:    model.StateCollectingInfo,
		Response: "What are you shopping for?",
	}}
	extractor := &fakeExtractor{err: errors.New("bad JSON")}

	analyzer := newTestAnalyzer(t, classifier, extractor)
	result := analyzer.Analyze(context.Background(), "hello", nil)

	if result.Classification.Response != "What are you shopping for?" {
		t.Errorf("Classifier result should be preserved, got %q", result.Classification.Response)
	}
	if result.Params == nil {
		t.Fatal("Params must never be nil")
	}
	if result.Params.HasQuery() {
		t.Errorf("Expected empty fallback parameters, got %q", result.Params.Query())
	}
}

func TestAnalyze_BothFail(t *testing.T) {
	analyzer := newTestAnalyzer(t,
		&fakeClassifier{err: errors.New("down")},
		&fakeExtractor{err: errors.New("down")},
	)

	result := analyzer.Analyze(context.Background(), "anything", nil)

	if result.Classification.State != model.StateCollectingInfo {
		t.Errorf("Expected collecting_info fallback, got %s", result.Classification.State)
	}
	if result.Params == nil || result.Params.HasQuery() {
		t.Error("Expected empty fallback parameters")
	}
}

func TestAnalyze_NilParamsReplaced(t *testing.T) {
	analyzer := newTestAnalyzer(t,
		&fakeClassifier{result: model.StateClassification{State: model.StateCollectingInfo}},
		&fakeExtractor{result: nil},
	)

	result := analyzer.Analyze(context.Background(), "hi", nil)
	if result.Params == nil {
		t.Fatal("Params must never be nil")
	}
}

func TestAnalyze_SubTasksRunConcurrently(t *testing.T) {
	// Two 100ms sub-tasks joined concurrently should take well under
	// their 200ms sum.
	delay := 100 * time.Millisecond
	analyzer := newTestAnalyzer(t,
		&fakeClassifier{result: model.StateClassification{State: model.StateCollectingInfo}, delay: delay},
		&fakeExtractor{result: model.EmptySearchParameters(), delay: delay},
	)

	start := time.Now()
	analyzer.Analyze(context.Background(), "hello", nil)
	elapsed := time.Since(start)

	if elapsed >= 2*delay {
		t.Errorf("Sub-tasks appear to run sequentially: took %v", elapsed)
	}
}
