package service

import (
	"context"
	"fmt"
	"log"

	"shopmate/internal/model"
)

// FallbackClarification is the reply substituted when state classification fails.
const FallbackClarification = "I'm having trouble understanding that. Could you please rephrase?"

// Analyzer runs the two per-turn classification sub-tasks concurrently and
// merges their outcomes. Each sub-task's failure is isolated: a failing
// state classification becomes a collecting_info fallback, a failing
// extraction becomes empty search parameters. Analyze never returns an
// error; only missing collaborators fail, at construction time.
type Analyzer struct {
	classifier StateClassifier
	extractor  ParameterExtractor
}

// NewAnalyzer creates the coordinator. Both collaborators are required.
func NewAnalyzer(classifier StateClassifier, extractor ParameterExtractor) (*Analyzer, error) {
	if classifier == nil {
		return nil, fmt.Errorf("analyzer requires a state classifier")
	}
	if extractor == nil {
		return nil, fmt.Errorf("analyzer requires a parameter extractor")
	}
	return &Analyzer{classifier: classifier, extractor: extractor}, nil
}

// Analyze fans out the state classification and parameter extraction for
// one turn and waits for both. The result is always fully populated.
func (a *Analyzer) Analyze(ctx context.Context, message string, history []model.Turn) model.AnalysisResult {
	type stateOut struct {
		classification model.StateClassification
		err            error
	}
	type paramsOut struct {
		params *model.SearchParameters
		err    error
	}

	stateCh := make(chan stateOut, 1)
	paramsCh := make(chan paramsOut, 1)

	go func() {
		classification, err := a.classifier.ClassifyState(ctx, message, history)
		stateCh <- stateOut{classification, err}
	}()
	go func() {
		params, err := a.extractor.ExtractParameters(ctx, message, history)
		paramsCh <- paramsOut{params, err}
	}()

	state := <-stateCh
	params := <-paramsCh

	result := model.AnalysisResult{
		Classification: state.classification,
		Params:         params.params,
	}

	if state.err != nil {
		log.Printf("Error in state analysis: %v", state.err)
		result.Classification = model.StateClassification{
			State:    model.StateCollectingInfo,
			Response: FallbackClarification,
		}
	}

	if params.err != nil {
		log.Printf("Error in parameter extraction: %v", params.err)
		result.Params = model.EmptySearchParameters()
	}
	if result.Params == nil {
		result.Params = model.EmptySearchParameters()
	}

	return result
}
