package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/testdata"
)

// frameBody builds a frame request holding the named fixtures.
func frameBody(t *testing.T, ts time.Time, hands ...string) string {
	t.Helper()

	raw := make([]string, 0, len(hands))
	for _, name := range hands {
		data, err := testdata.RawHand(name)
		if err != nil {
			t.Fatalf("RawHand() error = %v", err)
		}
		raw = append(raw, string(data))
	}
	return fmt.Sprintf(`{"hands":[%s],"timestamp":%d}`, strings.Join(raw, ","), ts.UnixMilli())
}

func TestSessionHandler_Flow(t *testing.T) {
	a := newTestApp(t)
	h := mount("/api/sessions", NewSessionHandler(a, nil).Routes)
	total := len(quiz.DefaultQuestions())

	rec := do(t, h, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body)
	}
	var view game.View
	decode(t, rec, &view)
	if view.State != quiz.StateInProgress || view.Total != total || view.Question == nil {
		t.Fatalf("unexpected initial view %+v", view)
	}
	base := "/api/sessions/" + view.SessionID

	// Hold two fingers past the dwell threshold
	t0 := time.Now()
	rec = do(t, h, http.MethodPost, base+"/frames", frameBody(t, t0, "two"))
	if rec.Code != http.StatusOK {
		t.Fatalf("frame status = %d, body %s", rec.Code, rec.Body)
	}
	rec = do(t, h, http.MethodPost, base+"/frames", frameBody(t, t0.Add(3100*time.Millisecond), "two"))
	var resp eventsResponse
	decode(t, rec, &resp)

	var committed *game.Event
	for i := range resp.Events {
		if resp.Events[i].Type == game.EventAnswerCommitted {
			committed = &resp.Events[i]
		}
	}
	if committed == nil {
		t.Fatalf("expected answer_committed, got %+v", resp.Events)
	}
	if committed.Result.Chosen != 1 || committed.Result.QuestionIndex != 0 {
		t.Errorf("unexpected result %+v", committed.Result)
	}
	if committed.Message == "" {
		t.Error("expected result message")
	}
	if len(resp.View.Results) != 1 {
		t.Errorf("view has %d results, want 1", len(resp.View.Results))
	}

	rec = do(t, h, http.MethodGet, base+"/summary", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("summary before completion status = %d, want 409", rec.Code)
	}

	// Advance past every question
	for i := 0; i < total; i++ {
		rec = do(t, h, http.MethodPost, base+"/next", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("next %d status = %d", i, rec.Code)
		}
	}
	decode(t, rec, &resp)
	if len(resp.Events) != 1 || resp.Events[0].Type != game.EventCompleted {
		t.Fatalf("expected completed event, got %+v", resp.Events)
	}

	rec = do(t, h, http.MethodPost, base+"/next", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("next after completion status = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodGet, base+"/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary quiz.Summary
	decode(t, rec, &summary)
	if summary.Total != total || len(summary.Rows) != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}

	if _, err := a.Store().Sessions().GetByID(view.SessionID); err != nil {
		t.Errorf("completed session was not saved: %v", err)
	}

	// Restart puts the same session back on the first question
	rec = do(t, h, http.MethodPost, base+"/restart", nil)
	decode(t, rec, &resp)
	if resp.View.State != quiz.StateInProgress || resp.View.CurrentIndex != 0 || len(resp.View.Results) != 0 {
		t.Errorf("unexpected view after restart %+v", resp.View)
	}
}

func TestSessionHandler_FrameValidation(t *testing.T) {
	a := newTestApp(t)
	h := mount("/api/sessions", NewSessionHandler(a, nil).Routes)

	g, err := a.NewSession()
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	path := "/api/sessions/" + g.ID() + "/frames"

	t.Run("malformed hand", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, path, `{"hands":[{"points":[{"x":0,"y":0,"z":0}]}]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "malformed") {
			t.Errorf("unexpected body %s", rec.Body)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, path, "nope")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no hands", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, path, `{"hands":[]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp eventsResponse
		decode(t, rec, &resp)
		if len(resp.Events) != 1 || resp.Events[0].FingerCount != 0 {
			t.Errorf("unexpected events %+v", resp.Events)
		}
	})
}

func TestSessionHandler_NotFound(t *testing.T) {
	h := mount("/api/sessions", NewSessionHandler(newTestApp(t), nil).Routes)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/sessions/missing"},
		{http.MethodDelete, "/api/sessions/missing"},
		{http.MethodPost, "/api/sessions/missing/next"},
		{http.MethodPost, "/api/sessions/missing/restart"},
		{http.MethodGet, "/api/sessions/missing/summary"},
		{http.MethodPost, "/api/sessions/missing/camera"},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", tt.method, tt.path, rec.Code)
		}
	}
}

func TestSessionHandler_ListAndDelete(t *testing.T) {
	a := newTestApp(t)
	h := mount("/api/sessions", NewSessionHandler(a, nil).Routes)

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodPost, "/api/sessions", nil); rec.Code != http.StatusCreated {
			t.Fatalf("POST status = %d", rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/sessions", nil)
	var listed listSessionsResponse
	decode(t, rec, &listed)
	if len(listed.Sessions) != 2 {
		t.Fatalf("listed %d sessions, want 2", len(listed.Sessions))
	}

	rec = do(t, h, http.MethodDelete, "/api/sessions/"+listed.Sessions[0].SessionID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if n := len(a.Registry().List()); n != 1 {
		t.Errorf("registry holds %d games, want 1", n)
	}
}

func TestSessionHandler_InvalidBank(t *testing.T) {
	a := newTestApp(t)
	bad := map[string]any{"prompt": "Broken", "choices": []string{"a", "b", "c", "d"}, "correct": 0}
	qh := mount("/api/questions", NewQuestionHandler(a.Store()).Routes)
	rec := do(t, qh, http.MethodPost, "/api/questions", bad)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST question status = %d", rec.Code)
	}

	// Corrupt the stored row behind the API's back
	if _, err := a.Store().DB().Exec(`DELETE FROM question_choices`); err != nil {
		t.Fatalf("failed to clear choices: %v", err)
	}

	h := mount("/api/sessions", NewSessionHandler(a, nil).Routes)
	rec = do(t, h, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestFrameRequest_Frame(t *testing.T) {
	open := detector.OpenPalmLandmarks()
	req := FrameRequest{
		Hands:     []HandRequest{{Points: open.Points[:], Handedness: "Right", Score: 0.9}},
		Timestamp: 1700000000000,
	}

	f, err := req.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if len(f.Hands) != 1 || f.Hands[0].Points != open.Points {
		t.Errorf("unexpected hands %+v", f.Hands)
	}
	if !f.Timestamp.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("Timestamp = %v", f.Timestamp)
	}

	empty := FrameRequest{}
	f, err = empty.Frame()
	if err != nil || !f.Timestamp.IsZero() || len(f.Hands) != 0 {
		t.Errorf("empty frame = %+v, %v", f, err)
	}
}
