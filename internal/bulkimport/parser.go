// Package bulkimport converts freeform pasted text into question records.
//
// The grammar is line-oriented and deliberately forgiving: authors paste
// question banks copied out of documents, so unrecognized lines are skipped
// and a question missing its prompt or answer is dropped rather than
// reported. Only the "nothing parsed at all" case surfaces as a Diagnostic.
package bulkimport

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/quiz"
)

// Diagnostic is a structured parse failure, distinct from a programming error.
// Its message is meant to be shown to the author verbatim.
type Diagnostic struct {
	Reason string
}

func (d *Diagnostic) Error() string { return d.Reason }

// pending accumulates one question while its lines are being read. It is not
// a quiz.Question: fields may be missing until commit, and commit is the only
// place defaults are applied.
type pending struct {
	prompt  string
	typ     quiz.QuestionType
	options []string
	answer  string
	points  int // 0 = unset, defaults at commit
}

func (p *pending) complete() bool { return p.prompt != "" && p.answer != "" }

func (p *pending) commit() quiz.Question {
	q := quiz.Question{
		ID:            uuid.NewString(),
		Type:          p.typ,
		Prompt:        p.prompt,
		CorrectAnswer: p.answer,
		Points:        p.points,
	}
	if q.Type == "" {
		q.Type = quiz.MultipleChoice
	}
	if q.Points == 0 {
		q.Points = quiz.DefaultPoints
	}
	if q.Type == quiz.MultipleChoice {
		q.Options = p.options
	}
	return q
}

// Parse reads the bulk-import grammar and returns the committed questions in
// input order. Directive keywords are matched case-insensitively; blank lines
// are ignored. When no complete question is found the error is a *Diagnostic.
func Parse(text string) ([]quiz.Question, error) {
	var questions []quiz.Question
	var cur pending

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case hasDirective(line, "Q:", "Question:"):
			// A new question commits the previous one; an incomplete
			// accumulator is dropped without complaint.
			if cur.complete() {
				questions = append(questions, cur.commit())
			}
			cur = pending{
				typ:     quiz.MultipleChoice,
				prompt:  directiveRest(line, "Q:", "Question:"),
				options: []string{},
				points:  quiz.DefaultPoints,
			}

		case hasDirective(line, "A)", "B)", "C)", "D)"):
			// Options keep read order; the letter itself is ignored.
			cur.options = append(cur.options, strings.TrimSpace(line[2:]))

		case hasDirective(line, "Answer:", "Correct:"):
			cur.answer = directiveRest(line, "Answer:", "Correct:")

		case hasDirective(line, "Points:"):
			if n, err := strconv.Atoi(directiveRest(line, "Points:")); err == nil {
				cur.points = n
			}

		case hasDirective(line, "Type:"):
			cur.typ = inferType(directiveRest(line, "Type:"))
		}
	}

	if cur.complete() {
		questions = append(questions, cur.commit())
	}

	if len(questions) == 0 {
		return nil, &Diagnostic{Reason: "no valid questions found"}
	}
	return questions, nil
}

func inferType(s string) quiz.QuestionType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "true") || strings.Contains(s, "false"):
		return quiz.TrueFalse
	case strings.Contains(s, "short") || strings.Contains(s, "text"):
		return quiz.ShortAnswer
	default:
		return quiz.MultipleChoice
	}
}

func hasDirective(line string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(line) >= len(p) && strings.EqualFold(line[:len(p)], p) {
			return true
		}
	}
	return false
}

func directiveRest(line string, prefixes ...string) string {
	for _, p := range prefixes {
		if len(line) >= len(p) && strings.EqualFold(line[:len(p)], p) {
			return strings.TrimSpace(line[len(p):])
		}
	}
	return ""
}
