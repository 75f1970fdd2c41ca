package quiz

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validQuiz() Quiz {
	return Quiz{
		ID:               "quiz-1",
		Title:            "Geography",
		Description:      "Capitals and such",
		Category:         "Geography",
		Difficulty:       Easy,
		TimeLimitMinutes: 30,
		CreatedAt:        time.Now(),
		Questions: []Question{
			{ID: "q1", Type: MultipleChoice, Prompt: "Capital of France?", Options: []string{"London", "Paris"}, CorrectAnswer: "Paris", Points: 10},
			{ID: "q2", Type: TrueFalse, Prompt: "The Earth is flat.", CorrectAnswer: "false", Points: 5},
			{ID: "q3", Type: ShortAnswer, Prompt: "Go mascot?", CorrectAnswer: "gopher", Points: 15},
		},
	}
}

func TestQuizValidateOK(t *testing.T) {
	if err := validQuiz().Validate(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}
}

func TestQuizValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Quiz)
	}{
		{"missing title", func(z *Quiz) { z.Title = "  " }},
		{"missing description", func(z *Quiz) { z.Description = "" }},
		{"missing category", func(z *Quiz) { z.Category = "" }},
		{"bad difficulty", func(z *Quiz) { z.Difficulty = "Impossible" }},
		{"zero time limit", func(z *Quiz) { z.TimeLimitMinutes = 0 }},
		{"no questions", func(z *Quiz) { z.Questions = nil }},
		{"question missing prompt", func(z *Quiz) { z.Questions[0].Prompt = "" }},
		{"question missing answer", func(z *Quiz) { z.Questions[2].CorrectAnswer = "" }},
		{"question zero points", func(z *Quiz) { z.Questions[1].Points = 0 }},
		{"mc single option", func(z *Quiz) { z.Questions[0].Options = []string{"Paris"} }},
		{"mc blank options do not count", func(z *Quiz) { z.Questions[0].Options = []string{"Paris", "  "} }},
		{"mc answer not among options", func(z *Quiz) { z.Questions[0].CorrectAnswer = "Rome" }},
		{"true-false bad answer", func(z *Quiz) { z.Questions[1].CorrectAnswer = "maybe" }},
		{"true-false with options", func(z *Quiz) { z.Questions[1].Options = []string{"true", "false"} }},
		{"short-answer with options", func(z *Quiz) { z.Questions[2].Options = []string{"gopher"} }},
		{"unknown question type", func(z *Quiz) { z.Questions[2].Type = "essay" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := validQuiz()
			tt.mutate(&z)
			err := z.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidQuiz) {
				t.Errorf("error %v does not wrap ErrInvalidQuiz", err)
			}
		})
	}
}

func TestTrueFalseAnswerCaseInsensitive(t *testing.T) {
	z := validQuiz()
	z.Questions[1].CorrectAnswer = "TRUE"
	if err := z.Validate(); err != nil {
		t.Fatalf("uppercase TRUE rejected: %v", err)
	}
}

func TestTotalPoints(t *testing.T) {
	if got := validQuiz().TotalPoints(); got != 30 {
		t.Errorf("total points = %d, want 30", got)
	}
}

func TestRedactedStripsAnswers(t *testing.T) {
	z := validQuiz()
	red := z.Redacted()
	for i, q := range red.Questions {
		if q.CorrectAnswer != "" {
			t.Errorf("question %d still carries an answer", i)
		}
		if q.Prompt == "" || strings.TrimSpace(q.Prompt) == "" {
			t.Errorf("question %d lost its prompt", i)
		}
	}
	// The original is untouched.
	if z.Questions[0].CorrectAnswer != "Paris" {
		t.Error("Redacted mutated the source quiz")
	}
	if len(red.Questions[0].Options) != 2 {
		t.Error("Redacted dropped options")
	}
}
