package store

import (
	"context"
	"sort"
	"sync"

	"github.com/quizforge/quizforge/internal/quiz"
)

type memoryStore struct {
	mu      sync.RWMutex
	quizzes map[string]quiz.Quiz
	results map[string]quiz.Result
}

// NewInMemory returns a Store backed by maps, for tests and dev runs.
func NewInMemory() Store {
	return &memoryStore{
		quizzes: map[string]quiz.Quiz{},
		results: map[string]quiz.Result{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, z quiz.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[z.ID] = z
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	z, err := m.GetQuizAdmin(ctx, id)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return z.Redacted(), nil
}

func (m *memoryStore) GetQuizAdmin(_ context.Context, id string) (quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.quizzes[id]
	if !ok {
		return quiz.Quiz{}, ErrQuizNotFound
	}
	return z, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	m.mu.RLock()
	out := make([]quiz.Quiz, 0, len(m.quizzes))
	for _, z := range m.quizzes {
		out = append(out, z.Redacted())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	for rid, r := range m.results {
		if r.QuizID == id {
			delete(m.results, rid)
		}
	}
	return nil
}

func (m *memoryStore) SaveResult(_ context.Context, r quiz.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[r.QuizID]; !ok {
		return ErrQuizNotFound
	}
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (quiz.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return quiz.Result{}, ErrResultNotFound
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context, opts ListResultsOpts) ([]quiz.Result, error) {
	m.mu.RLock()
	out := make([]quiz.Result, 0, len(m.results))
	for _, r := range m.results {
		if opts.QuizID != "" && r.QuizID != opts.QuizID {
			continue
		}
		if opts.Student != "" && r.Student != opts.Student {
			continue
		}
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []quiz.Result{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}
