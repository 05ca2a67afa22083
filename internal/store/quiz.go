package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playperu/eventmap/internal/eventmap"
)

func putQuestion(ctx context.Context, q querier, qq eventmap.QuizQuestion) error {
	data, err := json.Marshal(qq)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO quiz_questions (id, active, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET active = excluded.active, data = excluded.data`,
		qq.ID, boolInt(qq.Active), string(data),
	)
	return err
}

func sortQuestions(qs []eventmap.QuizQuestion) {
	slices.SortStableFunc(qs, func(a, b eventmap.QuizQuestion) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func validateQuestion(q eventmap.QuizQuestion) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text required", eventmap.ErrValidation)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: a question needs at least two options", eventmap.ErrValidation)
	}
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("%w: correct answer must be one of the options", eventmap.ErrValidation)
	}
	return nil
}

// ListQuestions returns every question, active or not, for the admin.
func (s *DocStore) ListQuestions(ctx context.Context) (_ []eventmap.QuizQuestion, err error) {
	defer observe("list", "quiz_questions", time.Now(), &err)
	qs, err := all[eventmap.QuizQuestion](ctx, s.db, `SELECT json(data) FROM quiz_questions`)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	sortQuestions(qs)
	return qs, nil
}

func (s *DocStore) ActiveQuestions(ctx context.Context) (_ []eventmap.QuizQuestion, err error) {
	defer observe("list", "quiz_questions", time.Now(), &err)
	qs, err := all[eventmap.QuizQuestion](ctx, s.db, `SELECT json(data) FROM quiz_questions WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("listing active questions: %w", err)
	}
	sortQuestions(qs)
	return qs, nil
}

// QuestionsByID returns the questions matching ids. Unknown ids are
// skipped.
func (s *DocStore) QuestionsByID(ctx context.Context, ids []string) (_ []eventmap.QuizQuestion, err error) {
	defer observe("get", "quiz_questions", time.Now(), &err)
	if len(ids) == 0 {
		return []eventmap.QuizQuestion{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	qs, err := all[eventmap.QuizQuestion](ctx, s.db,
		`SELECT json(data) FROM quiz_questions WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	sortQuestions(qs)
	return qs, nil
}

// CreateQuestion stores a new, active question.
func (s *DocStore) CreateQuestion(ctx context.Context, q eventmap.QuizQuestion) (_ eventmap.QuizQuestion, err error) {
	defer observe("insert", "quiz_questions", time.Now(), &err)
	if err := validateQuestion(q); err != nil {
		return eventmap.QuizQuestion{}, err
	}
	if q.ID == "" {
		q.ID = newID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now()
	}
	q.Active = true
	if err := putQuestion(ctx, s.db, q); err != nil {
		return eventmap.QuizQuestion{}, fmt.Errorf("creating question: %w", err)
	}
	return q, nil
}

// SetQuestionActive retires or revives a question without deleting the
// submissions that reference it.
func (s *DocStore) SetQuestionActive(ctx context.Context, id string, active bool) (out eventmap.QuizQuestion, err error) {
	defer observe("update", "quiz_questions", time.Now(), &err)
	err = s.inTx(ctx, func(q querier) error {
		if err := get(ctx, q, "quiz_questions", id, &out); err != nil {
			return err
		}
		out.Active = active
		return putQuestion(ctx, q, out)
	})
	return out, err
}

func (s *DocStore) DeleteQuestion(ctx context.Context, id string) (err error) {
	defer observe("delete", "quiz_questions", time.Now(), &err)
	return del(ctx, s.db, "quiz_questions", id)
}

func (s *DocStore) SaveSubmission(ctx context.Context, sub eventmap.QuizSubmission) (err error) {
	defer observe("insert", "quiz_submissions", time.Now(), &err)
	if sub.ID == "" {
		sub.ID = newID()
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_submissions (id, session_id, user_email, data) VALUES (?, ?, ?, jsonb(?))`,
		sub.ID, sub.SessionID, sub.Identity.Key(), string(data),
	)
	if err != nil {
		return fmt.Errorf("saving submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the submissions of a quiz session, oldest first.
func (s *DocStore) ListSubmissions(ctx context.Context, sessionID string) (_ []eventmap.QuizSubmission, err error) {
	defer observe("list", "quiz_submissions", time.Now(), &err)
	subs, err := all[eventmap.QuizSubmission](ctx, s.db,
		`SELECT json(data) FROM quiz_submissions WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	slices.SortStableFunc(subs, func(a, b eventmap.QuizSubmission) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})
	return subs, nil
}
