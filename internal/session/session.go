// Package session drives one student's timed attempt at a quiz.
//
// A Session is a small state machine: NotStarted -> InProgress -> Submitted,
// with Submitted terminal. Transitions that are invalid for the current state
// are silent no-ops so redundant UI calls never error. The countdown is the
// only asynchronous input: Start arms a repeating timer whose firings call
// Tick, and the mutex serializes timer ticks against caller transitions.
// A user submit and a timeout submit race only for the lock; whichever
// arrives second finds the state Submitted and does nothing.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/grading"
	"github.com/quizforge/quizforge/internal/quiz"
)

type State int

const (
	NotStarted State = iota
	InProgress
	Submitted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

var ErrNoQuestions = errors.New("quiz has no questions")

type Option func(*Session)

// WithTickInterval overrides the one-second countdown interval. Tests use
// this to run the real timer quickly; the decrement is still one second per
// tick.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickEvery = d }
}

func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithOnSubmit registers a callback invoked once with the final result,
// whether submission was explicit or a timeout. It runs on its own goroutine
// so it may safely call back into the session.
func WithOnSubmit(fn func(quiz.Result)) Option {
	return func(s *Session) { s.onSubmit = fn }
}

type Session struct {
	mu sync.Mutex

	quiz    quiz.Quiz
	student string

	state     State
	current   int
	answers   map[string]string
	remaining int // seconds

	result *quiz.Result

	tickEvery time.Duration
	now       func() time.Time
	onSubmit  func(quiz.Result)

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New builds a session over a takeable quiz. The session holds the full quiz,
// answer key included; serving layers redact before rendering.
func New(z quiz.Quiz, student string, opts ...Option) (*Session, error) {
	if len(z.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{
		quiz:      z,
		student:   student,
		tickEvery: time.Second,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start moves NotStarted -> InProgress and arms the countdown timer.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != NotStarted {
		return
	}
	s.state = InProgress
	s.current = 0
	s.answers = map[string]string{}
	s.remaining = s.quiz.TimeLimitMinutes * 60

	ticker := time.NewTicker(s.tickEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// SetAnswer records the answer for the current question. Position and the
// countdown are untouched; re-answering overwrites.
func (s *Session) SetAnswer(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return
	}
	s.answers[s.quiz.Questions[s.current].ID] = value
}

func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress || s.current >= len(s.quiz.Questions)-1 {
		return
	}
	s.current++
}

func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress || s.current == 0 {
		return
	}
	s.current--
}

// Tick consumes one second of the countdown. Hitting zero submits: timeout
// and manual submission are the same terminal transition.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return
	}
	if s.remaining <= 1 {
		s.remaining = 0
		s.submitLocked()
		return
	}
	s.remaining--
}

// Submit grades the answers and terminates the session. Calling it again
// returns the existing result without recomputing.
func (s *Session) Submit() *quiz.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InProgress {
		s.submitLocked()
	}
	return s.result
}

func (s *Session) submitLocked() {
	sum := grading.Score(s.quiz, s.answers)
	res := quiz.Result{
		ID:          uuid.NewString(),
		QuizID:      s.quiz.ID,
		Student:     s.student,
		Score:       sum.Score,
		TotalPoints: sum.TotalPoints,
		CompletedAt: s.now(),
		Answers:     copyAnswers(s.answers),
	}
	s.result = &res
	s.state = Submitted
	s.stopOnce.Do(func() { close(s.stop) })
	close(s.done)
	if s.onSubmit != nil {
		go s.onSubmit(res)
	}
}

// Close disarms the timer without submitting, for session teardown. Safe to
// call in any state, any number of times.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed when the session reaches Submitted.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Quiz() quiz.Quiz { return s.quiz }

func (s *Session) Student() string { return s.student }

func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) CurrentQuestion() quiz.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz.Questions[s.current]
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) ProgressPercent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.current+1) / float64(len(s.quiz.Questions)) * 100
}

// AnsweredCount counts questions with a non-empty recorded answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.quiz.Questions {
		if s.answers[q.ID] != "" {
			n++
		}
	}
	return n
}

func (s *Session) IsAnswered(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers[questionID] != ""
}

// Answers returns a snapshot of the answer map.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyAnswers(s.answers)
}

// Result returns the final result once Submitted, or ok=false before then.
func (s *Session) Result() (quiz.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return quiz.Result{}, false
	}
	return *s.result, true
}

func copyAnswers(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
