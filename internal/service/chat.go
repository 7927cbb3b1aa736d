package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shopmate/internal/model"
	"shopmate/internal/repository"
	"shopmate/internal/session"

	"github.com/google/uuid"
)

// ErrorRecoveryResponse is returned whenever turn processing fails
// unrecoverably. The session history is reset to a known-good state
// rather than exposing partial state.
const ErrorRecoveryResponse = "I apologize, but I encountered an error while processing your request. Let's start over. What are you looking for?"

// ImageErrorResponse is the image-flow equivalent of ErrorRecoveryResponse.
const ImageErrorResponse = "I apologize, but I encountered an error while analyzing the image. Could you please try uploading it again or describe what you're looking for?"

// Embedder generates embedding vectors for texts. Satisfied by OpenAIClient.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatService wires the per-turn pipeline together: session lookup,
// parallel analysis, state transition, catalog search, ranking, and
// response composition. It always returns a well-formed response.
type ChatService struct {
	sessions    *session.Store
	analyzer    *Analyzer
	searcher    CatalogSearcher
	composer    ResponseComposer
	images      ImageDescriber
	embedder    Embedder               // optional, feeds the product store
	repo        *repository.Repository // optional analytics/product store
	returnLimit int
}

// NewChatService creates the orchestrator. embedder and repo may be nil;
// search logging and semantic recall are skipped without them.
func NewChatService(
	sessions *session.Store,
	analyzer *Analyzer,
	searcher CatalogSearcher,
	composer ResponseComposer,
	images ImageDescriber,
	embedder Embedder,
	repo *repository.Repository,
	returnLimit int,
) *ChatService {
	if returnLimit <= 0 {
		returnLimit = 3
	}
	return &ChatService{
		sessions:    sessions,
		analyzer:    analyzer,
		searcher:    searcher,
		composer:    composer,
		images:      images,
		embedder:    embedder,
		repo:        repo,
		returnLimit: returnLimit,
	}
}

// HandleMessage processes one text turn for a session. Turns for the same
// session are serialized; different sessions proceed in parallel.
func (s *ChatService) HandleMessage(ctx context.Context, sessionID, message string) *model.ChatResponse {
	sess := s.sessions.GetOrCreate(sessionID)
	sess.LockTurn()
	defer sess.UnlockTurn()

	resp, err := s.processTurn(ctx, sess, message)
	if err != nil {
		log.Printf("Error handling message for session %s: %v", sessionID, err)
		sess.Clear()
		return &model.ChatResponse{
			Text:      ErrorRecoveryResponse,
			Timestamp: time.Now().Format(time.RFC3339),
			Products:  []model.Product{},
		}
	}
	return resp
}

// processTurn runs the turn pipeline inside the error boundary.
func (s *ChatService) processTurn(ctx context.Context, sess *session.Session, message string) (resp *model.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during turn processing: %v", r)
		}
	}()

	history := sess.History()

	// Run both classification sub-tasks concurrently; the result is
	// always fully populated, with fallbacks where a sub-task failed.
	result := s.analyzer.Analyze(ctx, message, history)

	tr := Advance(sess.State(), result)
	sess.SetState(tr.State)

	// Entering initial/ended resets the history; the current turn is
	// still recorded below so the next turn has minimal context.
	if tr.ClearHistory {
		sess.Clear()
	}
	sess.Append(model.RoleUser, message)

	resp = &model.ChatResponse{
		Text:      tr.Reply,
		Timestamp: time.Now().Format(time.RFC3339),
		Products:  []model.Product{},
	}

	if tr.Search {
		started := time.Now()
		searchID := uuid.NewString()

		products, searchErr := s.searcher.SearchProducts(ctx, result.Params)
		if searchErr != nil {
			log.Printf("Error searching products: %v", searchErr)
			products = nil
		}
		if len(products) == 0 {
			products = s.semanticRecall(ctx, result.Params)
		}

		ranked := Rank(products, result.Params.Sort(), s.returnLimit)

		text, composeErr := s.composer.ComposeProductResponse(ctx, ranked, result.Params, tr.Reply)
		if composeErr != nil {
			log.Printf("Error generating product response: %v", composeErr)
			text = FailoverResponse(ranked)
		}

		resp.Text = text
		resp.Products = ranked
		resp.SearchParams = result.Params
		resp.SearchID = searchID

		if s.repo != nil {
			took := time.Since(started)
			go s.recordSearch(searchID, sess.ID, result.Params, ranked, took)
		}
	}

	sess.Append(model.RoleAssistant, resp.Text)
	return resp, nil
}

// semanticRecall serves previously stored products by embedding
// similarity when the provider returned nothing. Best effort only.
func (s *ChatService) semanticRecall(ctx context.Context, params *model.SearchParameters) []model.Product {
	if s.repo == nil || s.embedder == nil {
		return nil
	}

	embeddings, err := s.embedder.CreateEmbeddings(ctx, []string{params.Query()})
	if err != nil || len(embeddings) == 0 {
		if err != nil {
			log.Printf("Error embedding query for semantic recall: %v", err)
		}
		return nil
	}

	products, err := s.repo.SimilarProducts(ctx, embeddings[0], s.returnLimit)
	if err != nil {
		log.Printf("Error in semantic recall: %v", err)
		return nil
	}
	return products
}

// recordSearch logs the search and stores the returned products with
// embeddings. Runs off the request path; failures are logged only.
func (s *ChatService) recordSearch(searchID, sessionID string, params *model.SearchParameters, products []model.Product, took time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	if err := s.repo.LogSearch(ctx, repository.SearchLog{
		SearchID:       searchID,
		SessionID:      sessionID,
		Query:          params.Query(),
		SortBy:         string(params.Sort()),
		ResultCount:    len(products),
		ProductIDs:     ids,
		ResponseTimeMs: int(took.Milliseconds()),
	}); err != nil {
		log.Printf("Error logging search %s: %v", searchID, err)
	}

	if s.embedder == nil || len(products) == 0 {
		return
	}

	docs := make([]string, len(products))
	for i, p := range products {
		docs[i] = productDocument(p)
	}
	embeddings, err := s.embedder.CreateEmbeddings(ctx, docs)
	if err != nil {
		log.Printf("Error embedding products for search %s: %v", searchID, err)
		return
	}

	saved, errs := s.repo.SaveProducts(ctx, searchID, products, embeddings)
	for _, e := range errs {
		log.Printf("Error saving products for search %s: %s", searchID, e)
	}
	if saved > 0 {
		log.Printf("Stored %d products for search %s", saved, searchID)
	}
}

// productDocument renders a product as the text that gets embedded.
func productDocument(p model.Product) string {
	rating := "N/A"
	if p.Rating != nil {
		rating = fmt.Sprintf("%.1f", *p.Rating)
	}
	delivery := ""
	if p.Delivery != nil {
		delivery = *p.Delivery
	}
	return fmt.Sprintf(
		"Product: %s\nPrice: %s\nSource: %s\nRating: %s (%d reviews)\nDelivery: %s\nURL: %s",
		p.Title, p.DisplayPrice, p.Source, rating, p.RatingCount, delivery, p.Link,
	)
}

// HandleImage processes an image upload turn: the image classifier turns
// the photo into a hyphenated description, and the session gets a
// conversational confirmation the next text turn can build on.
func (s *ChatService) HandleImage(ctx context.Context, sessionID string, imageData []byte, imageURL string) *model.ImageChatResponse {
	sess := s.sessions.GetOrCreate(sessionID)
	sess.LockTurn()
	defer sess.UnlockTurn()

	description, err := s.images.DescribeImage(ctx, imageData)
	if err != nil {
		log.Printf("Error in image analysis for session %s: %v", sessionID, err)
		sess.Clear()
		msg := err.Error()
		return &model.ImageChatResponse{
			Success:   false,
			Text:      ImageErrorResponse,
			Error:     &msg,
			Timestamp: time.Now().Format(time.RFC3339),
		}
	}

	text := fmt.Sprintf("I found %s in the image. Would you like me to search for similar products?",
		strings.ReplaceAll(description, "-", " "))
	sess.Append(model.RoleAssistant, text)

	return &model.ImageChatResponse{
		Success:     true,
		Text:        text,
		UserMessage: &model.ImageMessage{Type: "image", Content: imageURL},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// LogFeedback records a user action against a previous search.
func (s *ChatService) LogFeedback(ctx context.Context, searchID, productID, action string) error {
	if s.repo == nil {
		return fmt.Errorf("feedback logging is not configured")
	}
	return s.repo.LogFeedback(ctx, searchID, productID, action)
}
