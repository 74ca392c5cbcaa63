package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
)

const ragSystemPrompt = `You are a helpful assistant that answers questions based on the provided document context.
Answer only from the provided context. Always cite your sources by mentioning which parts of the document support your answer.
If the answer cannot be found in the provided context, say so clearly.
Be concise but thorough in your responses.`

const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 5

	// historyWindow limits how many prior turns enter the prompt.
	historyWindow = 5
)

// Event types emitted on an answer stream.
const (
	EventContent = "content"
	EventSources = "sources"
	EventError   = "error"
)

// Event is one element of the ordered answer stream. Content events arrive
// in backend order; exactly one sources event follows the last content
// event; an error event terminates the stream in place of the remainder.
type Event struct {
	Type    string
	Content string
	Sources []domain.RetrievedChunk
	Kind    string
	Message string
}

// ChatService synthesizes grounded answers: it retrieves the most relevant
// chunks for a question, builds a context-bound prompt and invokes the
// generation backend. It never mutates the caller-held history.
type ChatService struct {
	embeddings *EmbeddingService
	factory    BackendFactory
	store      SessionStore
	topK       int
}

// NewChatService creates a new ChatService instance.
func NewChatService(embeddings *EmbeddingService, factory BackendFactory, store SessionStore, topK int) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		embeddings: embeddings,
		factory:    factory,
		store:      store,
		topK:       topK,
	}
}

// QuestionInput carries one question against one document session.
type QuestionInput struct {
	APIKey  string
	Session SessionSource
	Message string
	History []domain.ConversationTurn
}

// AnswerOutput is the synchronous answer form.
type AnswerOutput struct {
	Answer  string
	Sources []domain.RetrievedChunk
}

// Answer produces a complete grounded answer in one call.
func (s *ChatService) Answer(ctx context.Context, input QuestionInput) (*AnswerOutput, error) {
	retrieved, turns, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	answer, err := s.factory.Generation(input.APIKey).Complete(ctx, turns)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationBackend, "failed to generate answer", err)
	}

	return &AnswerOutput{
		Answer:  answer,
		Sources: retrieved,
	}, nil
}

// Stream produces the answer as an ordered event sequence on the returned
// channel: content events in backend-arrival order, then one sources event,
// then channel close. On failure a single error event replaces the
// remainder. Cancellation is cooperative: the context is checked at every
// send and the channel closes without further events once cancellation is
// observed. The channel is always closed.
func (s *ChatService) Stream(ctx context.Context, input QuestionInput) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		retrieved, turns, err := s.prepare(ctx, input)
		if err != nil {
			s.emitError(ctx, events, err)
			return
		}

		stream, err := s.factory.Generation(input.APIKey).StreamComplete(ctx, turns)
		if err != nil {
			s.emitError(ctx, events, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationBackend, "failed to start generation", err))
			return
		}
		defer stream.Close()

		for {
			token, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.emitError(ctx, events, domain.NewDomainErrorWithCause(domain.ErrCodeGenerationBackend, "generation stream failed", err))
				return
			}
			if token == "" {
				continue
			}
			if !s.emit(ctx, events, Event{Type: EventContent, Content: token}) {
				return
			}
		}

		s.emit(ctx, events, Event{Type: EventSources, Sources: retrieved})
	}()

	return events
}

// prepare resolves the session, embeds the question and retrieves context,
// returning the retrieved chunks and the full prompt.
func (s *ChatService) prepare(ctx context.Context, input QuestionInput) ([]domain.RetrievedChunk, []domain.ConversationTurn, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.prepare", telemetry.SpanAttributes{
		DocumentID: input.Session.DocumentID,
		Operation:  "retrieve",
	})
	defer span.End()

	session, err := s.store.Resolve(ctx, input.Session)
	if err != nil {
		return nil, nil, err
	}

	queryVector, err := s.embeddings.EmbedQuery(ctx, input.APIKey, input.Message)
	if err != nil {
		span.SetError(err)
		return nil, nil, err
	}

	retrieved := RetrieveFromSession(session, queryVector, s.topK)
	turns := buildPrompt(input.Message, retrieved, input.History)
	return retrieved, turns, nil
}

func (s *ChatService) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *ChatService) emitError(ctx context.Context, events chan<- Event, err error) {
	s.emit(ctx, events, Event{
		Type:    EventError,
		Kind:    domain.CodeOf(err),
		Message: err.Error(),
	})
}

// buildPrompt assembles the grounded prompt: the fixed instruction, the
// retrieved chunk texts labeled with page numbers, the trailing window of
// prior conversation turns, then the new question.
func buildPrompt(message string, retrieved []domain.RetrievedChunk, history []domain.ConversationTurn) []domain.ConversationTurn {
	var b strings.Builder
	for i, rc := range retrieved {
		fmt.Fprintf(&b, "[Source %d] (Page %d) %s\n\n", i+1, rc.Chunk.Page, rc.Chunk.Text)
	}

	turns := make([]domain.ConversationTurn, 0, len(history)+3)
	turns = append(turns,
		domain.ConversationTurn{Role: domain.RoleSystem, Content: ragSystemPrompt},
		domain.ConversationTurn{Role: domain.RoleUser, Content: "Context from document:\n" + strings.TrimRight(b.String(), "\n")},
	)

	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		turns = append(turns, domain.ConversationTurn{Role: turn.Role, Content: turn.Content})
	}

	turns = append(turns, domain.ConversationTurn{Role: domain.RoleUser, Content: message})
	return turns
}
