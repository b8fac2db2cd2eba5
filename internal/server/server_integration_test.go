package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/testdata"
)

// wsMessage decodes both game events and the socket's own messages.
type wsMessage struct {
	Type    string             `json:"type"`
	View    *game.View         `json:"view"`
	Message string             `json:"message"`
	Result  *quiz.AnswerResult `json:"result"`
	Summary *quiz.Summary      `json:"summary"`
}

// readUntil reads messages until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) wsMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg
		}
	}
}

func TestSessionSocket_QuizFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := newTestApp(t)
	ts := httptest.NewServer(New(Config{App: a, Quiet: true}))
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/sessions error = %v", err)
	}
	var view game.View
	json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + view.SessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	state := readUntil(t, conn, "state")
	if state.View == nil || state.View.SessionID != view.SessionID {
		t.Fatalf("unexpected initial state %+v", state)
	}

	three, err := testdata.RawHand("three")
	if err != nil {
		t.Fatalf("RawHand() error = %v", err)
	}
	t0 := time.Now()
	for _, at := range []time.Time{t0, t0.Add(1500 * time.Millisecond), t0.Add(3200 * time.Millisecond)} {
		frame := fmt.Sprintf(`{"type":"frame","hands":[%s],"timestamp":%d}`, three, at.UnixMilli())
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
	}

	committed := readUntil(t, conn, string(game.EventAnswerCommitted))
	if committed.Result == nil || committed.Result.Chosen != 2 {
		t.Fatalf("unexpected commit %+v", committed)
	}

	for i := 0; i < view.Total; i++ {
		if err := conn.WriteJSON(map[string]string{"type": "next"}); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}
	completed := readUntil(t, conn, string(game.EventCompleted))
	if completed.Summary == nil || completed.Summary.Total != view.Total {
		t.Fatalf("unexpected completion %+v", completed)
	}

	if err := conn.WriteJSON(map[string]string{"type": "next"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if msg := readUntil(t, conn, "error"); !strings.Contains(msg.Message, "completed") {
		t.Errorf("unexpected error message %q", msg.Message)
	}
}

func TestSessionSocket_UnknownSession(t *testing.T) {
	ts := httptest.NewServer(New(Config{App: newTestApp(t), Quiet: true}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %v", resp)
	}
}

func TestSessionSocket_BadMessages(t *testing.T) {
	a := newTestApp(t)
	g, err := a.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{App: a, Quiet: true}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/sessions/"+g.ID()+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	readUntil(t, conn, "state")

	for _, raw := range []string{"not json", `{"type":"dance"}`, `{"type":"frame","hands":[{"points":[]}]}`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
		if msg := readUntil(t, conn, "error"); msg.Message == "" {
			t.Errorf("%s: expected an error message", raw)
		}
	}
}
