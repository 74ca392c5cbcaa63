package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/api/middleware"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
)

// excerptMaxChars bounds the chunk text shipped in citation cards.
const excerptMaxChars = 200

// AnswerService synthesizes grounded answers from an indexed document.
type AnswerService interface {
	Answer(ctx context.Context, input service.QuestionInput) (*service.AnswerOutput, error)
	Stream(ctx context.Context, input service.QuestionInput) <-chan service.Event
}

type ChatHandler struct {
	svc AnswerService
}

func NewChatHandler(svc AnswerService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ChatTurn is one history entry as sent by the caller. History is owned by
// the caller; the server only reads it to build the prompt.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks one question against one document. Server mode
// identifies the session by FileID; stateless mode replays the full
// Session payload instead.
type ChatRequest struct {
	FileID  string                  `json:"file_id,omitempty"`
	Message string                  `json:"message"`
	History []ChatTurn              `json:"history,omitempty"`
	Session *service.SessionPayload `json:"session,omitempty"`
}

// SourceResponse is one citation card.
type SourceResponse struct {
	Page           int     `json:"page"`
	ChunkID        string  `json:"chunk_id"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float32 `json:"relevance_score"`
}

// ChatResponse is the synchronous answer form.
type ChatResponse struct {
	Message string           `json:"message"`
	Sources []SourceResponse `json:"sources"`
}

func (req *ChatRequest) toInput(ctx context.Context) service.QuestionInput {
	history := make([]domain.ConversationTurn, len(req.History))
	for i, turn := range req.History {
		history[i] = domain.ConversationTurn{Role: turn.Role, Content: turn.Content}
	}
	return service.QuestionInput{
		APIKey: middleware.GetCredential(ctx),
		Session: service.SessionSource{
			DocumentID: req.FileID,
			Payload:    req.Session,
		},
		Message: req.Message,
		History: history,
	}
}

func toSourceResponses(retrieved []domain.RetrievedChunk) []SourceResponse {
	sources := make([]SourceResponse, len(retrieved))
	for i, rc := range retrieved {
		sources[i] = SourceResponse{
			Page:           rc.Chunk.Page,
			ChunkID:        rc.Chunk.ID,
			Excerpt:        rc.Chunk.Excerpt(excerptMaxChars),
			RelevanceScore: rc.Score,
		}
	}
	return sources
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (*ChatRequest, bool) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return nil, false
	}
	return &req, true
}

// Message answers a question synchronously.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	output, err := h.svc.Answer(r.Context(), req.toInput(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{
		Message: output.Answer,
		Sources: toSourceResponses(output.Sources),
	})
}

// sseFrame is the wire form of one streamed event.
type sseFrame struct {
	Type    string           `json:"type"`
	Content string           `json:"content,omitempty"`
	Sources []SourceResponse `json:"sources,omitempty"`
	Kind    string           `json:"kind,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Stream answers a question as Server-Sent Events: content frames in token
// order, one sources frame after the last token, then "[DONE]". On failure
// a single error frame replaces the remainder; [DONE] still terminates the
// stream as transport framing.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range h.svc.Stream(r.Context(), req.toInput(r.Context())) {
		frame := sseFrame{Type: event.Type}
		switch event.Type {
		case service.EventContent:
			frame.Content = event.Content
		case service.EventSources:
			frame.Sources = toSourceResponses(event.Sources)
		case service.EventError:
			frame.Kind = event.Kind
			frame.Message = event.Message
		}
		writeSSE(w, flusher, frame)
	}

	if r.Context().Err() == nil {
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, frame sseFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}
