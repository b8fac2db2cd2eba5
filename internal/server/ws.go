package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ayusman/handquiz/internal/app"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/server/api"
)

// outboxSize bounds the events queued for a slow client. Live finger counts
// are dropped first when it fills up.
const outboxSize = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientMessage is sent by the browser. Type is "frame", "next" or "restart";
// frames carry the hands seen by client-side detection.
type clientMessage struct {
	Type string `json:"type"`
	api.FrameRequest
}

// serverMessage wraps everything that is not a game event: the initial
// state and errors.
type serverMessage struct {
	Type    string     `json:"type"`
	View    *game.View `json:"view,omitempty"`
	Message string     `json:"message,omitempty"`
}

// SessionSocket streams one session's events over a WebSocket and accepts
// frame, next and restart commands from the client.
type SessionSocket struct {
	app *app.App
}

// NewSessionSocket creates a new SessionSocket for the given app.
func NewSessionSocket(a *app.App) *SessionSocket {
	return &SessionSocket{app: a}
}

// ServeHTTP handles WebSocket upgrade requests on /api/sessions/{id}/ws.
func (h *SessionSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g, err := h.app.Registry().Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	outbox := make(chan any, outboxSize)
	done := make(chan struct{})
	defer close(done)

	view := g.View()
	outbox <- serverMessage{Type: "state", View: &view}

	unsubscribe := g.Subscribe(func(e game.Event) {
		select {
		case outbox <- e:
		case <-done:
		default:
			if e.Type != game.EventFingerCount {
				log.Printf("websocket client for session %s is too slow, dropped %s", g.ID(), e.Type)
			}
		}
	})
	defer unsubscribe()

	go writeLoop(conn, outbox, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(outbox, "Invalid JSON")
			continue
		}

		switch msg.Type {
		case "frame":
			f, err := msg.Frame()
			if err != nil {
				h.reply(outbox, err.Error())
				continue
			}
			g.HandleFrame(f)
		case "next":
			if _, err := g.Next(); err != nil {
				h.reply(outbox, err.Error())
			}
		case "restart":
			if _, err := g.Restart(); err != nil {
				h.reply(outbox, err.Error())
			}
		default:
			h.reply(outbox, "Unknown message type: "+msg.Type)
		}
	}
}

func (h *SessionSocket) reply(outbox chan<- any, message string) {
	select {
	case outbox <- serverMessage{Type: "error", Message: message}:
	default:
	}
}

// writeLoop is the connection's only writer.
func writeLoop(conn *websocket.Conn, outbox <-chan any, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-outbox:
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				return
			}
		}
	}
}
