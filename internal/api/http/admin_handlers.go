package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/bulkimport"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/store"
)

// CreateQuizHandler validates and saves a quiz. Validation failures reject
// the whole save; nothing partial is persisted.
func CreateQuizHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var z quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&z); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if z.ID == "" {
			z.ID = uuid.NewString()
		}
		for i := range z.Questions {
			if z.Questions[i].ID == "" {
				z.Questions[i].ID = uuid.NewString()
			}
			if z.Questions[i].Points == 0 {
				z.Questions[i].Points = quiz.DefaultPoints
			}
		}
		z.CreatedAt = time.Now().UTC()
		if err := z.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := st.PutQuiz(r.Context(), z); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "id": z.ID})
	}
}

func DeleteQuizHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		if err := st.DeleteQuiz(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrQuizNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	}
}

// BulkParseHandler runs the bulk-import grammar over pasted text and returns
// the parsed questions for the authoring client to merge into its draft.
// A parse diagnostic comes back as 422 with the message verbatim.
func BulkParseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		questions, err := bulkimport.Parse(string(body))
		if err != nil {
			var diag *bulkimport.Diagnostic
			if errors.As(err, &diag) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": diag.Reason})
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions, "count": len(questions)})
	}
}
