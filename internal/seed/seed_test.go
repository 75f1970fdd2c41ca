package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/store"
)

const fixture = `quizzes:
  - title: Geography basics
    description: Capitals and oceans
    category: Geography
    difficulty: Easy
    time_limit_minutes: 15
    questions:
      - type: multiple-choice
        prompt: What is the capital of France?
        options: [London, Berlin, Paris, Madrid]
        correct_answer: Paris
      - type: true-false
        prompt: The Earth is flat.
        correct_answer: "false"
        points: 5
`

func TestParseFixture(t *testing.T) {
	quizzes, err := Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("got %d quizzes, want 1", len(quizzes))
	}
	z := quizzes[0]
	if z.ID == "" || z.CreatedAt.IsZero() {
		t.Errorf("identity not assigned: %+v", z)
	}
	if len(z.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(z.Questions))
	}
	if z.Questions[0].Points != quiz.DefaultPoints {
		t.Errorf("unset points = %d, want default %d", z.Questions[0].Points, quiz.DefaultPoints)
	}
	if z.Questions[1].Points != 5 {
		t.Errorf("explicit points = %d, want 5", z.Questions[1].Points)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("quizzes:\n  - title: x\n    bogus_field: y\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsInvalidQuiz(t *testing.T) {
	// Missing description fails the same authoring validation as the API.
	bad := `quizzes:
  - title: Broken
    category: Misc
    difficulty: Easy
    time_limit_minutes: 10
    questions:
      - type: short-answer
        prompt: Go mascot?
        correct_answer: gopher
`
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.yaml")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}

	st := store.NewInMemory()
	n, err := LoadFile(context.Background(), st, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n != 1 {
		t.Errorf("seeded %d quizzes, want 1", n)
	}
	list, err := st.ListQuizzes(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("store has %d quizzes (%v), want 1", len(list), err)
	}
}
