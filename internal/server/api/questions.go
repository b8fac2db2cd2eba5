package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/store"
)

// QuestionHandler serves the question bank.
type QuestionHandler struct {
	store *store.Store
}

// NewQuestionHandler creates a new QuestionHandler with the given store.
func NewQuestionHandler(s *store.Store) *QuestionHandler {
	return &QuestionHandler{store: s}
}

// Routes mounts the handler on r.
func (h *QuestionHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type questionRequest struct {
	Prompt    string                  `json:"prompt"`
	Choices   [quiz.NumChoices]string `json:"choices"`
	Correct   int                     `json:"correct"`
	SortOrder *int                    `json:"sort_order"`
}

type questionResponse struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Choices   []string `json:"choices"`
	Correct   int      `json:"correct"`
	SortOrder int      `json:"sort_order"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type listQuestionsResponse struct {
	Questions []questionResponse `json:"questions"`
}

func toQuestionResponse(q *store.Question) questionResponse {
	choices := q.Choices
	if choices == nil {
		choices = []string{}
	}
	return questionResponse{
		ID:        q.ID,
		Prompt:    q.Prompt,
		Choices:   choices,
		Correct:   q.Correct,
		SortOrder: q.SortOrder,
		CreatedAt: formatTime(q.CreatedAt),
		UpdatedAt: formatTime(q.UpdatedAt),
	}
}

// validate reports the first problem with the request as a quiz question.
func (req *questionRequest) validate() error {
	q := quiz.Question{Prompt: req.Prompt, Choices: req.Choices, Correct: req.Correct}
	return q.Validate()
}

// list handles GET /api/questions.
func (h *QuestionHandler) list(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.Questions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list questions")
		return
	}

	response := listQuestionsResponse{
		Questions: make([]questionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		response.Questions = append(response.Questions, toQuestionResponse(q))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/questions/{id}.
func (h *QuestionHandler) get(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.Questions().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get question")
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// create handles POST /api/questions. Without a sort order the question is
// appended to the end of the bank.
func (h *QuestionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		n, err := h.store.Questions().Count()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to create question")
			return
		}
		sortOrder = n
	}

	q := store.FromQuiz(quiz.Question{Prompt: req.Prompt, Choices: req.Choices, Correct: req.Correct}, sortOrder)
	if err := h.store.Questions().Create(q); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	writeJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// update handles PUT /api/questions/{id}. The prompt, choices and correct
// index are replaced; the sort order is kept unless given.
func (h *QuestionHandler) update(w http.ResponseWriter, r *http.Request) {
	q, err := h.store.Questions().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get question")
		return
	}

	var req questionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q.Prompt = req.Prompt
	q.Choices = req.Choices[:]
	q.Correct = req.Correct
	if req.SortOrder != nil {
		q.SortOrder = *req.SortOrder
	}

	if err := h.store.Questions().Update(q); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update question")
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// delete handles DELETE /api/questions/{id}.
func (h *QuestionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Questions().Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
