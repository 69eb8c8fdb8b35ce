package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apsscout/pagetree/internal/aps"
	"github.com/apsscout/pagetree/internal/persistence"
	"github.com/apsscout/pagetree/internal/retrieval"
	"github.com/apsscout/pagetree/internal/tree"
)

type ingestRequest struct {
	DocID   string   `json:"doc_id"`
	DocName string   `json:"doc_name"`
	Pages   []string `json:"pages"`
	Force   bool     `json:"force"`
}

type ingestResponse struct {
	DocID        string `json:"doc_id"`
	TotalPages   int    `json:"total_pages"`
	NodeCount    int    `json:"node_count"`
	Skipped      bool   `json:"skipped"`
	DurationMS   int64  `json:"duration_ms"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

type retrieveRequest struct {
	DocID string `json:"doc_id"`
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type batchRequest struct {
	DocID     string `json:"doc_id"`
	Questions []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Category string `json:"category"`
	} `json:"questions"`
}

type documentSummary struct {
	DocID      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	TotalPages int    `json:"total_pages"`
	NodeCount  int    `json:"node_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, "pages is required")
		return
	}
	if req.DocID == "" {
		req.DocID = uuid.NewString()
	}

	pages := make([]tree.PageContent, len(req.Pages))
	for i, text := range req.Pages {
		pages[i] = tree.PageContent{PageNumber: i + 1, Text: text}
	}

	result, err := s.ingester.Ingest(r.Context(), pages, req.DocID, req.DocName, req.Force)
	if err != nil {
		s.logger.Error("ingest failed", zap.String("doc_id", req.DocID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		DocID:        result.Index.DocID,
		TotalPages:   result.Index.TotalPages,
		NodeCount:    result.Index.NodeCount(),
		Skipped:      result.Skipped,
		DurationMS:   result.Duration.Milliseconds(),
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DocID == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "doc_id and query are required")
		return
	}

	index, ok := s.loadIndex(w, r, req.DocID)
	if !ok {
		return
	}

	result, err := s.searcher.Retrieve(r.Context(), index, req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, retrieval.ErrCircuitOpen) {
			writeError(w, http.StatusServiceUnavailable, "retrieval temporarily unavailable")
			return
		}
		s.logger.Error("retrieve failed", zap.String("doc_id", req.DocID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "retrieval failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatchRetrieve(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DocID == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "doc_id and questions are required")
		return
	}

	index, ok := s.loadIndex(w, r, req.DocID)
	if !ok {
		return
	}

	questions := make([]retrieval.Question, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = retrieval.Question{
			ID:       q.ID,
			Text:     q.Text,
			Category: aps.Category(q.Category),
		}
	}

	results, err := s.searcher.BatchRetrieve(r.Context(), index, questions)
	if err != nil {
		s.logger.Error("batch retrieve failed", zap.String("doc_id", req.DocID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "batch retrieval failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docIDs, err := s.store.ListDocIDs(r.Context())
	if err != nil {
		s.logger.Error("listing documents failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}

	summaries := make([]documentSummary, 0, len(docIDs))
	for _, id := range docIDs {
		index, err := s.store.LoadIndex(r.Context(), id)
		if err != nil {
			s.logger.Warn("skipping unreadable index", zap.String("doc_id", id), zap.Error(err))
			continue
		}
		summaries = append(summaries, documentSummary{
			DocID:      index.DocID,
			DocName:    index.DocName,
			TotalPages: index.TotalPages,
			NodeCount:  index.NodeCount(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": summaries})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	index, ok := s.loadIndex(w, r, docID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, index)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(r.Context(), docID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("delete failed", zap.String("doc_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadIndex(w http.ResponseWriter, r *http.Request, docID string) (*tree.DocumentIndex, bool) {
	index, err := s.store.LoadIndex(r.Context(), docID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return nil, false
		}
		s.logger.Error("loading index failed", zap.String("doc_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "loading index failed")
		return nil, false
	}
	return index, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
