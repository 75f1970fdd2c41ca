// Package grading scores a finished attempt against a quiz's answer key.
package grading

import (
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

type Summary struct {
	Score       int `json:"score"`
	TotalPoints int `json:"total_points"`
}

// Correct reports whether answer earns the question's points: the comparison
// is case-insensitive equality, nothing looser. Interior whitespace matters.
func Correct(q quiz.Question, answer string) bool {
	return strings.EqualFold(answer, q.CorrectAnswer)
}

// Score grades every question in the quiz against the submitted answers.
// Unanswered questions earn nothing. Pure: identical inputs give identical
// summaries.
func Score(z quiz.Quiz, answers map[string]string) Summary {
	s := Summary{TotalPoints: z.TotalPoints()}
	for _, q := range z.Questions {
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		if Correct(q, answer) {
			s.Score += q.Points
		}
	}
	return s
}
