package eventmap

import "time"

type QuizQuestion struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correctAnswer"`
	Category      string    `json:"category,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public strips the answer key.
func (q QuizQuestion) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: append([]string(nil), q.Options...)}
}

// PublicQuestion is the only question shape ever sent to a visitor.
type PublicQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuizAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

type GradedAnswer struct {
	QuestionID     string `json:"questionId"`
	QuestionText   string `json:"questionText"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

type QuizSubmission struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"sessionId"`
	Identity       Identity       `json:"identity"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     float64        `json:"percentage"`
	Answers        []GradedAnswer `json:"answers"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}

type QuizResult struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}
