// Package store persists quizzes and attempt results. Live attempt state is
// not stored here; it belongs to the session registry until submission.
package store

import (
	"context"
	"errors"

	"github.com/quizforge/quizforge/internal/quiz"
)

var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrResultNotFound = errors.New("result not found")
)

type ListResultsOpts struct {
	QuizID  string // filter by quiz
	Student string // filter by student
	Limit   int
	Offset  int
}

type Store interface {
	PutQuiz(ctx context.Context, z quiz.Quiz) error
	// GetQuiz is student-safe: correct answers are stripped.
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
	// GetQuizAdmin returns the full quiz, answer key included.
	GetQuizAdmin(ctx context.Context, id string) (quiz.Quiz, error)
	ListQuizzes(ctx context.Context) ([]quiz.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	SaveResult(ctx context.Context, r quiz.Result) error
	GetResult(ctx context.Context, id string) (quiz.Result, error)
	ListResults(ctx context.Context, opts ListResultsOpts) ([]quiz.Result, error)
}
