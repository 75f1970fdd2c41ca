package quiz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
)

// DefaultPoints is assigned when authoring leaves points unspecified.
const DefaultPoints = 10

type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Options       []string     `json:"options,omitempty"` // multiple-choice only
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
}

type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	Questions        []Question `json:"questions"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Result records one completed attempt. Answers maps question ID to the raw
// string the student entered; a question absent from the map was unanswered.
type Result struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quiz_id"`
	Student     string            `json:"student"`
	Score       int               `json:"score"`
	TotalPoints int               `json:"total_points"`
	CompletedAt time.Time         `json:"completed_at"`
	Answers     map[string]string `json:"answers"`
}

var ErrInvalidQuiz = errors.New("invalid quiz")

func (q Question) Validate() error {
	if strings.TrimSpace(q.Prompt) == "" {
		return errors.New("question prompt is required")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return errors.New("question correct answer is required")
	}
	if q.Points <= 0 {
		return errors.New("question points must be positive")
	}
	switch q.Type {
	case MultipleChoice:
		nonEmpty := 0
		found := false
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				continue
			}
			nonEmpty++
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if nonEmpty < 2 {
			return errors.New("multiple-choice question needs at least 2 non-empty options")
		}
		if !found {
			return errors.New("correct answer must be one of the options")
		}
	case TrueFalse:
		if len(q.Options) > 0 {
			return errors.New("true-false question must not carry options")
		}
		v := strings.ToLower(q.CorrectAnswer)
		if v != "true" && v != "false" {
			return errors.New(`true-false answer must be "true" or "false"`)
		}
	case ShortAnswer:
		if len(q.Options) > 0 {
			return errors.New("short-answer question must not carry options")
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

// Validate checks a quiz for authoring; a quiz that fails here is never saved.
func (z Quiz) Validate() error {
	if strings.TrimSpace(z.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if strings.TrimSpace(z.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidQuiz)
	}
	if strings.TrimSpace(z.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidQuiz)
	}
	switch z.Difficulty {
	case Easy, Medium, Hard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuiz, z.Difficulty)
	}
	if z.TimeLimitMinutes <= 0 {
		return fmt.Errorf("%w: time limit must be positive", ErrInvalidQuiz)
	}
	if len(z.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}
	for i, q := range z.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidQuiz, i+1, err)
		}
	}
	return nil
}

func (z Quiz) TotalPoints() int {
	total := 0
	for _, q := range z.Questions {
		total += q.Points
	}
	return total
}

// Redacted returns a copy safe to serve to students: correct answers stripped.
func (z Quiz) Redacted() Quiz {
	out := z
	out.Questions = make([]Question, len(z.Questions))
	for i, q := range z.Questions {
		q.CorrectAnswer = ""
		out.Questions[i] = q
	}
	return out
}
