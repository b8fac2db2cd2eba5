package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handquiz/internal/app"
	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/quiz"
)

// SessionHandler serves live quiz sessions.
type SessionHandler struct {
	app    *app.App
	socket http.Handler
}

// NewSessionHandler creates a new SessionHandler for the given app. socket,
// when non-nil, is mounted at /api/sessions/{id}/ws.
func NewSessionHandler(a *app.App, socket http.Handler) *SessionHandler {
	return &SessionHandler{app: a, socket: socket}
}

// Routes mounts the handler on r.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Post("/frames", h.frame)
		r.Post("/next", h.next)
		r.Post("/restart", h.restart)
		r.Get("/summary", h.summary)
		r.Post("/camera", h.attach)
		r.Delete("/camera", h.detach)
		if h.socket != nil {
			r.Get("/ws", h.socket.ServeHTTP)
		}
	})
}

// HandRequest is one hand as sent by a client.
type HandRequest struct {
	Points     []detector.Point3D `json:"points"`
	Handedness string             `json:"handedness"`
	Score      float64            `json:"score"`
}

// FrameRequest is a client-side detection result: every hand seen in one
// video frame. Timestamp is in Unix milliseconds; zero means now.
type FrameRequest struct {
	Hands     []HandRequest `json:"hands"`
	Timestamp int64         `json:"timestamp"`
}

// Frame validates the hands and converts the request into a game frame.
func (req *FrameRequest) Frame() (game.Frame, error) {
	f := game.Frame{Hands: make([]detector.HandLandmarks, 0, len(req.Hands))}
	for _, hr := range req.Hands {
		hand, err := detector.NewHandLandmarks(hr.Points, hr.Handedness, hr.Score)
		if err != nil {
			return game.Frame{}, err
		}
		f.Hands = append(f.Hands, hand)
	}
	if req.Timestamp > 0 {
		f.Timestamp = time.UnixMilli(req.Timestamp)
	}
	return f, nil
}

type listSessionsResponse struct {
	Sessions []game.View `json:"sessions"`
}

type eventsResponse struct {
	Events []game.Event `json:"events"`
	View   game.View    `json:"view"`
}

type cameraResponse struct {
	Attached string `json:"attached"`
}

// lookup resolves the {id} parameter, writing a 404 when it is unknown.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := h.app.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return g, true
}

func writeEvents(w http.ResponseWriter, g *game.Game, events []game.Event) {
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, View: g.View()})
}

// list handles GET /api/sessions.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	games := h.app.Registry().List()
	response := listSessionsResponse{Sessions: make([]game.View, 0, len(games))}
	for _, g := range games {
		response.Sessions = append(response.Sessions, g.View())
	}
	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/sessions and starts a quiz over the question bank.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	g, err := h.app.NewSession()
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrNoQuestions):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, quiz.ErrEmptyPrompt),
			errors.Is(err, quiz.ErrEmptyChoice),
			errors.Is(err, quiz.ErrCorrectOutOfRange):
			writeError(w, http.StatusConflict, "Question bank is invalid: "+err.Error())
		default:
			log.Printf("failed to start session: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to start session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, g.View())
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// delete handles DELETE /api/sessions/{id} and abandons the quiz.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.app.Attached() == id {
		h.app.Detach()
	}
	if err := h.app.Registry().Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// frame handles POST /api/sessions/{id}/frames.
func (h *SessionHandler) frame(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req FrameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := req.Frame()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeEvents(w, g, g.HandleFrame(f))
}

// next handles POST /api/sessions/{id}/next.
func (h *SessionHandler) next(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	events, err := g.Next()
	if err != nil {
		if errors.Is(err, quiz.ErrCompleted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to advance session")
		return
	}

	writeEvents(w, g, events)
}

// restart handles POST /api/sessions/{id}/restart.
func (h *SessionHandler) restart(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	events, err := g.Restart()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to restart session")
		return
	}

	writeEvents(w, g, events)
}

// summary handles GET /api/sessions/{id}/summary.
func (h *SessionHandler) summary(w http.ResponseWriter, r *http.Request) {
	g, ok := h.lookup(w, r)
	if !ok {
		return
	}

	summary, err := g.Summary()
	if err != nil {
		if errors.Is(err, quiz.ErrNotCompleted) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// attach handles POST /api/sessions/{id}/camera and feeds the local camera
// into the session.
func (h *SessionHandler) attach(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Attach(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		log.Printf("failed to attach camera: %v", err)
		writeError(w, http.StatusServiceUnavailable, "Camera unavailable")
		return
	}

	writeJSON(w, http.StatusOK, cameraResponse{Attached: h.app.Attached()})
}

// detach handles DELETE /api/sessions/{id}/camera.
func (h *SessionHandler) detach(w http.ResponseWriter, r *http.Request) {
	if h.app.Attached() == chi.URLParam(r, "id") {
		h.app.Detach()
	}
	writeJSON(w, http.StatusOK, cameraResponse{Attached: h.app.Attached()})
}
