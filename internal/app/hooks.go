package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ayusman/handquiz/internal/game"
	"github.com/ayusman/handquiz/internal/plugin"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/store"
)

// hookEvents are the event types hooks may bind to. Live finger counts
// arrive at frame rate and are never handed to plugins.
var hookEvents = map[game.EventType]bool{
	game.EventAnswerCommitted: true,
	game.EventQuestion:        true,
	game.EventCompleted:       true,
}

// IsHookEvent reports whether hooks may bind to event.
func IsHookEvent(event string) bool {
	return hookEvents[game.EventType(event)]
}

// HandleEvent is registered on the game registry. Completed sessions are
// saved to the store and every enabled hook bound to the event runs in the
// background.
func (a *App) HandleEvent(e game.Event) {
	if e.Type == game.EventCompleted && e.Summary != nil {
		a.recordSummary(e)
	}

	if hookEvents[e.Type] {
		a.runHooks(e)
	}
}

func (a *App) recordSummary(e game.Event) {
	summary := *e.Summary

	a.mu.Lock()
	a.lastSummary = &summary
	callbacks := append(([]func(quiz.Summary))(nil), a.onSummary...)
	a.mu.Unlock()

	log.Printf("Session %s finished: %s", e.SessionID, summary.String())

	for _, fn := range callbacks {
		fn(summary)
	}

	if a.config.Store == nil {
		return
	}

	runID := e.RunID
	if runID == "" {
		runID = e.SessionID
	}

	sess := &store.Session{
		ID:          runID,
		Correct:     summary.Correct,
		Total:       summary.Total,
		StartedAt:   e.Time,
		CompletedAt: e.Time,
	}
	if a.config.Registry != nil {
		if g, err := a.config.Registry.Get(e.SessionID); err == nil && g.RunID() == runID {
			sess.StartedAt = g.StartedAt()
		}
	}
	for _, row := range summary.Rows {
		sess.Answers = append(sess.Answers, store.Answer{
			QuestionIndex: row.QuestionIndex,
			Prompt:        row.Prompt,
			Chosen:        row.Chosen,
			Answer:        row.Answer,
			Correct:       row.Correct,
		})
	}

	if err := a.config.Store.Sessions().Create(sess); err != nil {
		log.Printf("Failed to save session %s run %s: %v", e.SessionID, runID, err)
	}
}

func (a *App) runHooks(e game.Event) {
	if a.config.Store == nil {
		return
	}

	hooks, err := a.config.Store.Hooks().ListByEvent(string(e.Type))
	if err != nil {
		log.Printf("Failed to load hooks for %s: %v", e.Type, err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", e.Type, err)
		return
	}

	for _, h := range hooks {
		p, err := a.pluginMgr.Get(h.PluginName)
		if err != nil {
			log.Printf("Hook %s: plugin %s: %v", h.ID, h.PluginName, err)
			continue
		}
		if !p.Handles(string(e.Type)) {
			log.Printf("Hook %s: plugin %s does not handle %s", h.ID, h.PluginName, e.Type)
			continue
		}

		req := &plugin.Request{
			Event:   string(e.Type),
			Session: e.SessionID,
			Config:  h.Config,
			Payload: payload,
		}

		a.hooks.Add(1)
		go func(hookID string) {
			defer a.hooks.Done()

			resp, err := a.pluginExec.Execute(context.Background(), p, req)
			if err != nil {
				log.Printf("Hook %s failed: %v", hookID, err)
				return
			}
			if !resp.Success {
				log.Printf("Hook %s: plugin %s reported: %s", hookID, p.Manifest.Name, resp.Error)
			}
		}(h.ID)
	}
}

// WaitHooks blocks until every started hook run has finished.
func (a *App) WaitHooks() {
	a.hooks.Wait()
}
