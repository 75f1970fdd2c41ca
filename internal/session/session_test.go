package session

import (
	"testing"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

func testQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:               "quiz-1",
		Title:            "Geography",
		TimeLimitMinutes: 1,
		Questions: []quiz.Question{
			{ID: "q1", Type: quiz.MultipleChoice, Prompt: "Capital of France?", Options: []string{"London", "Paris"}, CorrectAnswer: "Paris", Points: 10},
			{ID: "q2", Type: quiz.TrueFalse, Prompt: "The Earth is flat.", CorrectAnswer: "false", Points: 5},
			{ID: "q3", Type: quiz.ShortAnswer, Prompt: "Go mascot?", CorrectAnswer: "gopher", Points: 15},
		},
	}
}

// newIdle returns a started session whose armed timer will not fire during
// the test, so ticks are driven manually and deterministically.
func newIdle(t *testing.T) *Session {
	t.Helper()
	s, err := New(testQuiz(), "alice", WithTickInterval(time.Hour))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	s.Start()
	return s
}

func TestNewRejectsEmptyQuiz(t *testing.T) {
	_, err := New(quiz.Quiz{ID: "empty", TimeLimitMinutes: 5}, "alice")
	if err == nil {
		t.Fatal("expected error for quiz without questions")
	}
}

func TestStartInitializesSession(t *testing.T) {
	s := newIdle(t)
	if s.State() != InProgress {
		t.Fatalf("state = %v, want InProgress", s.State())
	}
	if s.CurrentIndex() != 0 {
		t.Errorf("current index = %d, want 0", s.CurrentIndex())
	}
	if s.Remaining() != 60 {
		t.Errorf("remaining = %d, want 60", s.Remaining())
	}
	if got := s.AnsweredCount(); got != 0 {
		t.Errorf("answered count = %d, want 0", got)
	}
}

func TestTransitionsBeforeStartAreNoOps(t *testing.T) {
	s, err := New(testQuiz(), "alice")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	s.SetAnswer("Paris")
	s.Next()
	s.Tick()
	if res := s.Submit(); res != nil {
		t.Fatalf("Submit before Start returned %+v", res)
	}
	if s.State() != NotStarted {
		t.Fatalf("state = %v, want NotStarted", s.State())
	}
}

func TestNavigationBounds(t *testing.T) {
	s := newIdle(t)

	s.Previous()
	if s.CurrentIndex() != 0 {
		t.Errorf("Previous at first question moved to %d", s.CurrentIndex())
	}

	s.Next()
	s.Next()
	if s.CurrentIndex() != 2 {
		t.Fatalf("current index = %d, want 2", s.CurrentIndex())
	}
	s.Next()
	if s.CurrentIndex() != 2 {
		t.Errorf("Next at last question moved to %d", s.CurrentIndex())
	}
}

func TestSetAnswerTracksCurrentQuestion(t *testing.T) {
	s := newIdle(t)

	s.SetAnswer("Paris")
	s.Next()
	s.SetAnswer("false")

	if !s.IsAnswered("q1") || !s.IsAnswered("q2") || s.IsAnswered("q3") {
		t.Errorf("answered flags wrong: %v", s.Answers())
	}
	if got := s.AnsweredCount(); got != 2 {
		t.Errorf("answered count = %d, want 2", got)
	}

	// Overwrite without advancing.
	s.SetAnswer("true")
	if s.Answers()["q2"] != "true" {
		t.Errorf("answer not overwritten: %v", s.Answers())
	}
	if s.CurrentIndex() != 1 {
		t.Errorf("SetAnswer moved position to %d", s.CurrentIndex())
	}

	// Empty answers do not count as answered.
	s.SetAnswer("")
	if s.AnsweredCount() != 1 {
		t.Errorf("answered count = %d after clearing, want 1", s.AnsweredCount())
	}
}

func TestProgressPercent(t *testing.T) {
	s := newIdle(t)
	if got := s.ProgressPercent(); got < 33.3 || got > 33.4 {
		t.Errorf("progress = %f, want ~33.33", got)
	}
	s.Next()
	s.Next()
	if got := s.ProgressPercent(); got != 100 {
		t.Errorf("progress = %f, want 100", got)
	}
}

func TestTickMonotonicAndNeverNegative(t *testing.T) {
	s := newIdle(t)
	prev := s.Remaining()
	for i := 0; i < 70; i++ {
		s.Tick()
		cur := s.Remaining()
		if cur > prev {
			t.Fatalf("remaining increased: %d -> %d", prev, cur)
		}
		if cur < 0 {
			t.Fatalf("remaining went negative: %d", cur)
		}
		prev = cur
	}
}

func TestAutoSubmitOnTimeout(t *testing.T) {
	s := newIdle(t)
	s.SetAnswer("Paris")

	for i := 0; i < 59; i++ {
		s.Tick()
	}
	if s.State() != InProgress {
		t.Fatalf("submitted early at 59 ticks, remaining=%d", s.Remaining())
	}
	s.Tick()
	if s.State() != Submitted {
		t.Fatalf("state after 60 ticks = %v, want Submitted", s.State())
	}
	if s.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", s.Remaining())
	}

	res, ok := s.Result()
	if !ok {
		t.Fatal("expected a result after timeout")
	}
	if res.Score != 10 || res.TotalPoints != 30 {
		t.Errorf("result = %d/%d, want 10/30", res.Score, res.TotalPoints)
	}
	if res.Answers["q1"] != "Paris" || len(res.Answers) != 1 {
		t.Errorf("result answers = %v", res.Answers)
	}
}

func TestNoEffectsAfterSubmitted(t *testing.T) {
	s := newIdle(t)
	s.SetAnswer("Paris")
	first := s.Submit()
	if first == nil || s.State() != Submitted {
		t.Fatal("submit failed")
	}

	// A stray tick or any other transition must change nothing observable.
	s.Tick()
	s.Next()
	s.SetAnswer("London")

	second := s.Submit()
	if second != first {
		t.Errorf("second Submit recomputed the result")
	}
	res, _ := s.Result()
	if res.ID != first.ID || res.Answers["q1"] != "Paris" {
		t.Errorf("result mutated after submit: %+v", res)
	}
	if s.Remaining() != 60 {
		t.Errorf("remaining changed after submit: %d", s.Remaining())
	}
}

func TestSubmitScoresSnapshot(t *testing.T) {
	s := newIdle(t)
	s.SetAnswer("paris") // case-insensitive
	s.Next()
	s.SetAnswer("FALSE")
	s.Next()
	s.SetAnswer("wrong")

	res := s.Submit()
	if res == nil {
		t.Fatal("no result")
	}
	if res.Score != 15 {
		t.Errorf("score = %d, want 15", res.Score)
	}
	if res.QuizID != "quiz-1" || res.Student != "alice" {
		t.Errorf("result identity wrong: %+v", res)
	}
	if res.CompletedAt.IsZero() {
		t.Error("completed at not set")
	}
	if res.ID == "" {
		t.Error("result id not set")
	}
}

func TestTimerDrivesTicks(t *testing.T) {
	done := make(chan quiz.Result, 1)
	s, err := New(testQuiz(), "alice",
		WithTickInterval(time.Millisecond),
		WithOnSubmit(func(r quiz.Result) { done <- r }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	s.Start()
	s.SetAnswer("Paris")

	select {
	case res := <-done:
		if res.Score != 10 {
			t.Errorf("score = %d, want 10", res.Score)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timer never drove the session to submission")
	}
	if s.State() != Submitted {
		t.Fatalf("state = %v, want Submitted", s.State())
	}

	// The timer is disarmed now; Done stays closed and remaining stays 0.
	select {
	case <-s.Done():
	default:
		t.Error("Done channel not closed after submission")
	}
	time.Sleep(5 * time.Millisecond)
	if s.Remaining() != 0 {
		t.Errorf("remaining = %d after disarm, want 0", s.Remaining())
	}
}
