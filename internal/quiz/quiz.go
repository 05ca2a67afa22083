// Package quiz serves the post-journey quiz and grades submissions against
// the stored answer key.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/metrics"
)

const (
	DefaultLimit = 5
	MaxLimit     = 50
)

type Store interface {
	ActiveQuestions(ctx context.Context) ([]eventmap.QuizQuestion, error)
	QuestionsByID(ctx context.Context, ids []string) ([]eventmap.QuizQuestion, error)
	SaveSubmission(ctx context.Context, sub eventmap.QuizSubmission) error
}

type Submission struct {
	Identity  eventmap.Identity     `json:"identity"`
	SessionID string                `json:"sessionId" validate:"required"`
	Answers   []eventmap.QuizAnswer `json:"answers" validate:"required,min=1,dive"`
}

type Engine struct {
	store Store
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Questions returns up to limit active questions in random order with the
// answer key removed.
func (e *Engine) Questions(ctx context.Context, limit int) ([]eventmap.PublicQuestion, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	all, err := e.store.ActiveQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}

	e.mu.Lock()
	// Partial Fisher-Yates: only the first n slots need shuffling.
	n := min(limit, len(all))
	for i := 0; i < n; i++ {
		j := i + e.rng.IntN(len(all)-i)
		all[i], all[j] = all[j], all[i]
	}
	e.mu.Unlock()

	out := make([]eventmap.PublicQuestion, n)
	for i := range n {
		out[i] = all[i].Public()
	}
	return out, nil
}

// Grade scores answers against the authoritative questions. Answers that
// reference unknown questions are left out of both score and total.
func Grade(questions []eventmap.QuizQuestion, answers []eventmap.QuizAnswer) (eventmap.QuizResult, []eventmap.GradedAnswer) {
	byID := make(map[string]eventmap.QuizQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var res eventmap.QuizResult
	graded := make([]eventmap.GradedAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		correct := q.CorrectAnswer == a.SelectedOption
		if correct {
			res.Score++
		}
		graded = append(graded, eventmap.GradedAnswer{
			QuestionID:     q.ID,
			QuestionText:   q.Text,
			SelectedOption: a.SelectedOption,
			IsCorrect:      correct,
		})
	}
	res.Total = len(graded)
	if res.Total > 0 {
		res.Percentage = float64(res.Score) / float64(res.Total) * 100
	}
	return res, graded
}

// Submit grades and stores a submission. A storage failure comes back
// wrapped in eventmap.ErrPersistence so the caller can offer a retry.
func (e *Engine) Submit(ctx context.Context, sub Submission) (eventmap.QuizResult, error) {
	if len(sub.Answers) == 0 {
		return eventmap.QuizResult{}, fmt.Errorf("%w: no answers submitted", eventmap.ErrValidation)
	}
	if sub.SessionID == "" {
		return eventmap.QuizResult{}, fmt.Errorf("%w: session id required", eventmap.ErrValidation)
	}

	ids := make([]string, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := e.store.QuestionsByID(ctx, ids)
	if err != nil {
		return eventmap.QuizResult{}, errors.Join(eventmap.ErrPersistence, fmt.Errorf("loading questions: %w", err))
	}

	res, graded := Grade(questions, sub.Answers)
	rec := eventmap.QuizSubmission{
		ID:             uuid.NewString(),
		SessionID:      sub.SessionID,
		Identity:       sub.Identity,
		Score:          res.Score,
		TotalQuestions: res.Total,
		Percentage:     res.Percentage,
		Answers:        graded,
		SubmittedAt:    e.now().UTC(),
	}
	if err := e.store.SaveSubmission(ctx, rec); err != nil {
		return eventmap.QuizResult{}, errors.Join(eventmap.ErrPersistence, fmt.Errorf("saving submission: %w", err))
	}
	metrics.RecordQuizSubmission(res.Percentage)
	return res, nil
}
