package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/paperchat-ai/paperchat/internal/api"
	"github.com/paperchat-ai/paperchat/internal/api/middleware"
	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/ingest"
	"github.com/paperchat-ai/paperchat/internal/service"
)

// IngestPipeline runs the document ingestion pipeline.
type IngestPipeline interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestOutput, error)
}

// SessionResolver loads sessions for the status endpoint.
type SessionResolver interface {
	Resolve(ctx context.Context, src service.SessionSource) (*domain.DocumentSession, error)
}

type UploadHandler struct {
	svc      IngestPipeline
	sessions SessionResolver
	maxBytes int64
}

func NewUploadHandler(svc IngestPipeline, sessions SessionResolver, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		svc:      svc,
		sessions: sessions,
		maxBytes: maxBytes,
	}
}

// UploadResponse is the server-mode ingestion result.
type UploadResponse struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	SizeBytes  int64  `json:"size_bytes"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Message    string `json:"message"`
}

// StatelessUploadResponse additionally carries the full session payload the
// caller must retain and replay on every question.
type StatelessUploadResponse struct {
	UploadResponse
	Chunks        []string                `json:"chunks"`
	Embeddings    [][]float32             `json:"embeddings"`
	ChunkMetadata []service.ChunkMetadata `json:"chunk_metadata"`
}

// Upload accepts a multipart PDF, decodes it to per-page text and runs the
// ingestion pipeline. The response shape depends on the deployment's
// session mode: stateless mode returns the serialized session.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	filename := ingest.SanitizeFilename(header.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		api.Error(w, http.StatusBadRequest, "only PDF files are allowed")
		return
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if int64(len(contents)) > h.maxBytes {
		api.Error(w, http.StatusRequestEntityTooLarge, "file exceeds maximum upload size")
		return
	}

	pages, err := ingest.ExtractPDFPages(contents)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to parse PDF")
		return
	}

	output, err := h.svc.Ingest(r.Context(), service.IngestInput{
		APIKey:   middleware.GetCredential(r.Context()),
		Filename: filename,
		Pages:    pages,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := UploadResponse{
		FileID:     output.Ticket.DocumentID,
		Filename:   filename,
		SizeBytes:  int64(len(contents)),
		PageCount:  output.PageCount,
		ChunkCount: output.ChunkCount,
		Message:    "document uploaded and indexed successfully",
	}

	if payload := output.Ticket.Payload; payload != nil {
		api.Success(w, http.StatusCreated, StatelessUploadResponse{
			UploadResponse: resp,
			Chunks:         payload.Chunks,
			Embeddings:     payload.Embeddings,
			ChunkMetadata:  payload.ChunkMetadata,
		})
		return
	}

	api.Success(w, http.StatusCreated, resp)
}

// StatusResponse reports an indexed document's metadata.
type StatusResponse struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	Status     string `json:"status"`
}

// Status returns session metadata for an uploaded document (server mode).
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	session, err := h.sessions.Resolve(r.Context(), service.SessionSource{DocumentID: id})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, StatusResponse{
		FileID:     session.DocumentID,
		Filename:   session.Filename,
		PageCount:  session.PageCount,
		ChunkCount: session.ChunkCount(),
		Status:     "indexed",
	})
}
