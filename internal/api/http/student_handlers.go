package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/rbac"
	"github.com/quizforge/quizforge/internal/session"
	"github.com/quizforge/quizforge/internal/store"
)

func ListQuizzesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := st.ListQuizzes(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, quizzes)
	}
}

func GetQuizHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		var (
			z   quiz.Quiz
			err error
		)
		// Admins see the answer key; students get the redacted quiz.
		if rbac.NewChecker(nil).Has(rbac.RoleFromContext(r.Context()), "quiz:edit") {
			z, err = st.GetQuizAdmin(r.Context(), id)
		} else {
			z, err = st.GetQuiz(r.Context(), id)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, z)
	}
}

// attemptSnapshot is what the quiz-taking client renders between transitions.
type attemptSnapshot struct {
	AttemptID        string        `json:"attempt_id"`
	QuizID           string        `json:"quiz_id"`
	State            string        `json:"state"`
	CurrentIndex     int           `json:"current_index"`
	TotalQuestions   int           `json:"total_questions"`
	CurrentQuestion  quiz.Question `json:"current_question"`
	RemainingSeconds int           `json:"remaining_seconds"`
	ProgressPercent  float64       `json:"progress_percent"`
	AnsweredCount    int           `json:"answered_count"`
	Result           *quiz.Result  `json:"result,omitempty"`
}

func snapshot(id string, s *session.Session) attemptSnapshot {
	q := s.CurrentQuestion()
	q.CorrectAnswer = ""
	snap := attemptSnapshot{
		AttemptID:        id,
		QuizID:           s.Quiz().ID,
		State:            s.State().String(),
		CurrentIndex:     s.CurrentIndex(),
		TotalQuestions:   len(s.Quiz().Questions),
		CurrentQuestion:  q,
		RemainingSeconds: s.Remaining(),
		ProgressPercent:  s.ProgressPercent(),
		AnsweredCount:    s.AnsweredCount(),
	}
	if res, ok := s.Result(); ok {
		snap.Result = &res
	}
	return snap
}

// StartAttemptHandler creates a live session for the caller and arms its
// countdown. The result is persisted when the session submits, whether by
// user action or by timeout.
func StartAttemptHandler(st store.Store, reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		student := auth.SubjectFromContext(r.Context())

		z, err := st.GetQuizAdmin(r.Context(), quizID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		// The callback can fire well after this request returns (timeout
		// submit), so it must not borrow the request context.
		s, err := session.New(z, student, session.WithOnSubmit(func(res quiz.Result) {
			if err := st.SaveResult(context.Background(), res); err != nil {
				log.Printf("save result %s: %v", res.ID, err)
			}
		}))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		id := reg.Add(s)
		s.Start()
		writeJSON(w, http.StatusCreated, snapshot(id, s))
	}
}

// ownAttempt routes an attempt transition to the caller's session; drives are
// owner-only.
func ownAttempt(reg *session.Registry, w http.ResponseWriter, r *http.Request) (string, *session.Session, bool) {
	id := chi.URLParam(r, "attemptID")
	s, ok := reg.Get(id)
	if !ok {
		http.Error(w, "attempt not found", http.StatusNotFound)
		return "", nil, false
	}
	if s.Student() != auth.SubjectFromContext(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", nil, false
	}
	return id, s, true
}

func GetAttemptHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, snapshot(id, s))
	}
}

func AnswerHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		s.SetAnswer(req.Value)
		writeJSON(w, http.StatusOK, snapshot(id, s))
	}
}

func NextHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		s.Next()
		writeJSON(w, http.StatusOK, snapshot(id, s))
	}
}

func PreviousHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		s.Previous()
		writeJSON(w, http.StatusOK, snapshot(id, s))
	}
}

func SubmitAttemptHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, s, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		res := s.Submit()
		if res == nil {
			// Session was never started; nothing to grade.
			http.Error(w, "attempt not started", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, snapshot(id, s))
	}
}

// CloseAttemptHandler tears a finished session down and evicts it.
func CloseAttemptHandler(reg *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _, ok := ownAttempt(reg, w, r)
		if !ok {
			return
		}
		reg.Remove(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListResultsHandler(st store.Store) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		opts := store.ListResultsOpts{
			QuizID:  r.URL.Query().Get("quiz_id"),
			Student: r.URL.Query().Get("student"),
		}
		// Students only ever see their own results.
		if !checker.Has(rbac.RoleFromContext(r.Context()), "result:view-all") {
			opts.Student = auth.SubjectFromContext(r.Context())
		}
		results, err := st.ListResults(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func GetResultHandler(st store.Store) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "resultID")
		res, err := st.GetResult(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrResultNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		ctx := r.Context()
		if res.Student != auth.SubjectFromContext(ctx) &&
			!checker.Has(rbac.RoleFromContext(ctx), "result:view-all") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
