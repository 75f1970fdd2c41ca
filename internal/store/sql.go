package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizforge/quizforge/internal/quiz"
)

// SQLStore keeps quizzes and results in SQL (sqlite or postgres), with the
// question list and answer map as JSON columns.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutQuiz(ctx context.Context, z quiz.Quiz) error {
	qj, err := json.Marshal(z.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,description,category,difficulty,time_limit_minutes,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description, category=EXCLUDED.category,
			difficulty=EXCLUDED.difficulty, time_limit_minutes=EXCLUDED.time_limit_minutes, questions_json=EXCLUDED.questions_json`,
		z.ID, z.Title, z.Description, z.Category, string(z.Difficulty), z.TimeLimitMinutes, string(qj), z.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	z, err := s.GetQuizAdmin(ctx, id)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return z.Redacted(), nil
}

func (s *SQLStore) GetQuizAdmin(ctx context.Context, id string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,category,difficulty,time_limit_minutes,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,description,category,difficulty,time_limit_minutes,questions_json,created_at
		FROM quizzes ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []quiz.Quiz{}
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z.Redacted())
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) SaveResult(ctx context.Context, r quiz.Result) error {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO results (id,quiz_id,student,score,total_points,answers_json,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.QuizID, r.Student, r.Score, r.TotalPoints, string(aj), r.CompletedAt.Unix())
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (quiz.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,student,score,total_points,answers_json,completed_at
		FROM results WHERE id=$1`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Result{}, ErrResultNotFound
	}
	return r, err
}

func (s *SQLStore) ListResults(ctx context.Context, opts ListResultsOpts) ([]quiz.Result, error) {
	q := `SELECT id,quiz_id,student,score,total_points,answers_json,completed_at FROM results`
	args := []any{}
	where := ""
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		where = fmt.Sprintf(" WHERE quiz_id=$%d", len(args))
	}
	if opts.Student != "" {
		args = append(args, opts.Student)
		if where == "" {
			where = fmt.Sprintf(" WHERE student=$%d", len(args))
		} else {
			where += fmt.Sprintf(" AND student=$%d", len(args))
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, opts.Offset)
	q += where + fmt.Sprintf(" ORDER BY completed_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []quiz.Result{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (quiz.Quiz, error) {
	var z quiz.Quiz
	var difficulty, qjson string
	var createdAt int64
	err := row.Scan(&z.ID, &z.Title, &z.Description, &z.Category, &difficulty, &z.TimeLimitMinutes, &qjson, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return quiz.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return quiz.Quiz{}, err
	}
	z.Difficulty = quiz.Difficulty(difficulty)
	z.CreatedAt = time.Unix(createdAt, 0).UTC()
	if err := json.Unmarshal([]byte(qjson), &z.Questions); err != nil {
		return quiz.Quiz{}, err
	}
	return z, nil
}

func scanResult(row rowScanner) (quiz.Result, error) {
	var r quiz.Result
	var ajson string
	var completedAt int64
	err := row.Scan(&r.ID, &r.QuizID, &r.Student, &r.Score, &r.TotalPoints, &ajson, &completedAt)
	if err != nil {
		return quiz.Result{}, err
	}
	r.CompletedAt = time.Unix(completedAt, 0).UTC()
	if err := json.Unmarshal([]byte(ajson), &r.Answers); err != nil {
		r.Answers = map[string]string{}
	}
	return r, nil
}
