package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/store"
)

// defaultHistoryLimit caps GET /api/history when no limit is given.
const defaultHistoryLimit = 20

// HistoryHandler serves finished quiz sessions.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// Routes mounts the handler on r.
func (h *HistoryHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

type answerResponse struct {
	QuestionIndex int    `json:"question_index"`
	Prompt        string `json:"prompt"`
	Chosen        string `json:"chosen"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}

type historyResponse struct {
	ID          string           `json:"id"`
	Correct     int              `json:"correct"`
	Total       int              `json:"total"`
	Message     string           `json:"message"`
	StartedAt   string           `json:"started_at"`
	CompletedAt string           `json:"completed_at"`
	Answers     []answerResponse `json:"answers,omitempty"`
}

type listHistoryResponse struct {
	Sessions []historyResponse `json:"sessions"`
}

func toHistoryResponse(s *store.Session) historyResponse {
	resp := historyResponse{
		ID:          s.ID,
		Correct:     s.Correct,
		Total:       s.Total,
		Message:     quiz.Summary{Correct: s.Correct, Total: s.Total}.String(),
		StartedAt:   formatTime(s.StartedAt),
		CompletedAt: formatTime(s.CompletedAt),
	}
	for _, a := range s.Answers {
		resp.Answers = append(resp.Answers, answerResponse(a))
	}
	return resp
}

// list handles GET /api/history?limit=N, newest first.
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	response := listHistoryResponse{Sessions: make([]historyResponse, 0, len(sessions))}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toHistoryResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/history/{id}.
func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Sessions().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(s))
}
