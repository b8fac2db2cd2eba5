// Package game wires the finger counter, the selection debouncer and the quiz
// session together and turns frame and next events into game events.
package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handquiz/internal/detector"
	"github.com/ayusman/handquiz/internal/quiz"
	"github.com/ayusman/handquiz/internal/selection"
)

// Config holds settings shared by every game.
type Config struct {
	// Questions is the bank a new game is built from. Defaults to quiz.DefaultQuestions.
	Questions []quiz.Question

	// Selection configures the dwell debouncer.
	Selection selection.Config

	// Seed fixes the shuffle order when non-zero.
	Seed int64

	// Now overrides the clock used for frames without a timestamp.
	Now func() time.Time
}

// Game is one player's quiz: a session plus the debouncer feeding it.
// Frame and next events may arrive from several goroutines; they are
// applied one at a time.
type Game struct {
	id        string
	runID     string
	config    Config
	questions []quiz.Question
	rng       *rand.Rand
	session   *quiz.Session
	debouncer *selection.Debouncer
	lastCount int
	startedAt time.Time
	mu        sync.Mutex

	subscribers map[int]func(Event)
	nextSub     int
	subMu       sync.RWMutex
}

// New creates a game with a freshly shuffled session.
func New(id string, config Config) (*Game, error) {
	if config.Now == nil {
		config.Now = time.Now
	}
	questions := config.Questions
	if len(questions) == 0 {
		questions = quiz.DefaultQuestions()
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		id:          id,
		runID:       id,
		config:      config,
		questions:   questions,
		rng:         rand.New(rand.NewSource(seed)),
		debouncer:   selection.New(config.Selection),
		subscribers: make(map[int]func(Event)),
	}

	session, err := quiz.NewSession(questions, g.rng)
	if err != nil {
		return nil, err
	}
	g.session = session
	g.startedAt = config.Now()

	return g, nil
}

// ID returns the session identifier.
func (g *Game) ID() string {
	return g.id
}

// RunID identifies the current play-through. It equals ID for the first run
// and changes on every Restart, so each finished run is recorded separately.
func (g *Game) RunID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runID
}

// Subscribe registers fn for every event this game emits and returns a
// function that removes it.
func (g *Game) Subscribe(fn func(Event)) func() {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = fn

	return func() {
		g.subMu.Lock()
		defer g.subMu.Unlock()
		delete(g.subscribers, id)
	}
}

// HandleFrame applies one FrameObserved event. Each hand is counted and fed
// to the debouncer in order; a frame without hands cancels a pending
// selection. Frames arriving after completion are ignored.
func (g *Game) HandleFrame(f Frame) []Event {
	g.mu.Lock()

	if g.session.State() != quiz.StateInProgress {
		g.mu.Unlock()
		return nil
	}

	now := f.Timestamp
	if now.IsZero() {
		now = g.config.Now()
	}

	var events []Event
	if len(f.Hands) == 0 {
		g.lastCount = 0
		g.debouncer.Observe(0, now)
		events = append(events, Event{Type: EventFingerCount})
	}

	for i := range f.Hands {
		count := detector.CountExtendedFingers(&f.Hands[i])
		g.lastCount = count

		committed, ok := g.debouncer.Observe(count, now)
		events = append(events, Event{
			Type:          EventFingerCount,
			FingerCount:   count,
			DwellProgress: g.debouncer.Progress(now),
		})
		if !ok {
			continue
		}

		result, err := g.session.RecordSelection(committed)
		if err != nil {
			continue
		}
		q, _ := g.session.Current()
		events = append(events, Event{
			Type:        EventAnswerCommitted,
			FingerCount: committed,
			Result:      &result,
			Message:     result.Message(q.CorrectText()),
			CorrectText: q.CorrectText(),
		})
	}

	events = g.stamp(events, now)
	g.mu.Unlock()

	g.publish(events)
	return events
}

// Next applies one NextRequested event: it advances to the next question or
// completes the quiz. It returns quiz.ErrCompleted once the quiz is over.
func (g *Game) Next() ([]Event, error) {
	g.mu.Lock()

	if err := g.session.Advance(); err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.debouncer.Reset()
	g.lastCount = 0

	events := g.stamp([]Event{g.stateEvent()}, g.config.Now())
	g.mu.Unlock()

	g.publish(events)
	return events, nil
}

// Restart discards the current session and starts again with a new shuffle.
func (g *Game) Restart() ([]Event, error) {
	g.mu.Lock()

	session, err := quiz.NewSession(g.questions, g.rng)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	g.session = session
	g.runID = uuid.New().String()
	g.debouncer.Reset()
	g.lastCount = 0
	g.startedAt = g.config.Now()

	events := g.stamp([]Event{g.stateEvent()}, g.startedAt)
	g.mu.Unlock()

	g.publish(events)
	return events, nil
}

// State returns the quiz state.
func (g *Game) State() quiz.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.State()
}

// Summary returns the final score, or quiz.ErrNotCompleted.
func (g *Game) Summary() (quiz.Summary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.Summary()
}

// Questions returns the shuffled questions of the current session.
func (g *Game) Questions() []quiz.Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.Questions()
}

// StartedAt returns when the current session began.
func (g *Game) StartedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.startedAt
}

// View returns the current read model.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		SessionID:     g.id,
		RunID:         g.runID,
		State:         g.session.State(),
		CurrentIndex:  g.session.CurrentIndex(),
		Total:         g.session.Len(),
		Progress:      g.session.Progress(),
		Question:      g.questionView(),
		FingerCount:   g.lastCount,
		DwellProgress: g.debouncer.Progress(g.config.Now()),
		Results:       g.session.Results(),
		StartedAt:     g.startedAt,
	}
	if summary, err := g.session.Summary(); err == nil {
		v.Summary = &summary
		v.Score = summary.Fraction()
	}
	return v
}

// stateEvent describes the position after an advance or restart.
// Caller must hold g.mu.
func (g *Game) stateEvent() Event {
	if summary, err := g.session.Summary(); err == nil {
		return Event{Type: EventCompleted, Summary: &summary, Score: summary.Fraction(), Message: summary.Message()}
	}
	return Event{Type: EventQuestion, Question: g.questionView()}
}

// questionView returns the current question, or nil once completed.
// Caller must hold g.mu.
func (g *Game) questionView() *QuestionView {
	q, ok := g.session.Current()
	if !ok {
		return nil
	}
	return &QuestionView{
		Index:   g.session.CurrentIndex(),
		Prompt:  q.Prompt,
		Choices: q.Choices,
	}
}

func (g *Game) stamp(events []Event, now time.Time) []Event {
	for i := range events {
		events[i].SessionID = g.id
		events[i].RunID = g.runID
		events[i].Time = now
	}
	return events
}

// publish delivers events outside g.mu so subscribers may call back into the game.
func (g *Game) publish(events []Event) {
	if len(events) == 0 {
		return
	}

	g.subMu.RLock()
	subs := make([]func(Event), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		subs = append(subs, fn)
	}
	g.subMu.RUnlock()

	for _, e := range events {
		for _, fn := range subs {
			fn(e)
		}
	}
}
