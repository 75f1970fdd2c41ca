// Package seed loads quiz fixtures from a YAML file at startup so a fresh
// deployment has something to take.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/store"
)

type file struct {
	Quizzes []quizSpec `yaml:"quizzes"`
}

type quizSpec struct {
	Title            string         `yaml:"title"`
	Description      string         `yaml:"description"`
	Category         string         `yaml:"category"`
	Difficulty       string         `yaml:"difficulty"`
	TimeLimitMinutes int            `yaml:"time_limit_minutes"`
	Questions        []questionSpec `yaml:"questions"`
}

type questionSpec struct {
	Type          string   `yaml:"type"`
	Prompt        string   `yaml:"prompt"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Points        int      `yaml:"points"`
}

// Parse decodes a fixture document. Unknown fields are errors so typos in
// fixtures fail loudly rather than silently seeding the wrong thing.
func Parse(data []byte) ([]quiz.Quiz, error) {
	var f file
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse seed file: multiple YAML documents are not supported")
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	now := time.Now().UTC()
	quizzes := make([]quiz.Quiz, 0, len(f.Quizzes))
	for i, zs := range f.Quizzes {
		z := quiz.Quiz{
			ID:               uuid.NewString(),
			Title:            zs.Title,
			Description:      zs.Description,
			Category:         zs.Category,
			Difficulty:       quiz.Difficulty(zs.Difficulty),
			TimeLimitMinutes: zs.TimeLimitMinutes,
			CreatedAt:        now,
		}
		for _, qs := range zs.Questions {
			q := quiz.Question{
				ID:            uuid.NewString(),
				Type:          quiz.QuestionType(qs.Type),
				Prompt:        qs.Prompt,
				Options:       qs.Options,
				CorrectAnswer: qs.CorrectAnswer,
				Points:        qs.Points,
			}
			if q.Points == 0 {
				q.Points = quiz.DefaultPoints
			}
			z.Questions = append(z.Questions, q)
		}
		if err := z.Validate(); err != nil {
			return nil, fmt.Errorf("seed quiz %d (%q): %w", i+1, zs.Title, err)
		}
		quizzes = append(quizzes, z)
	}
	return quizzes, nil
}

// LoadFile parses path and saves every quiz. Seeded quizzes pass the same
// authoring validation as quizzes created over the API.
func LoadFile(ctx context.Context, st store.Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	quizzes, err := Parse(data)
	if err != nil {
		return 0, err
	}
	for _, z := range quizzes {
		if err := st.PutQuiz(ctx, z); err != nil {
			return 0, err
		}
	}
	return len(quizzes), nil
}
