package quiz

import "fmt"

// Summary is the final score of a completed session.
type Summary struct {
	Correct int          `json:"correct"`
	Total   int          `json:"total"`
	Rows    []SummaryRow `json:"rows"`
}

// SummaryRow pairs one recorded answer with the question it answered.
type SummaryRow struct {
	QuestionIndex int    `json:"question_index"`
	Prompt        string `json:"prompt"`
	Chosen        string `json:"chosen"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
}

// String returns the score as "N out of M correct.".
func (s Summary) String() string {
	return fmt.Sprintf("%d out of %d correct.", s.Correct, s.Total)
}

// Message returns the results banner shown at the end of the quiz.
func (s Summary) Message() string {
	return fmt.Sprintf("You answered %d out of %d questions correctly.", s.Correct, s.Total)
}

// Fraction returns Correct/Total.
func (s Summary) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

func (s *Session) buildSummary() Summary {
	summary := Summary{
		Total: len(s.questions),
		Rows:  make([]SummaryRow, 0, len(s.results)),
	}

	for _, r := range s.results {
		q := s.questions[r.QuestionIndex]
		if r.Correct {
			summary.Correct++
		}
		summary.Rows = append(summary.Rows, SummaryRow{
			QuestionIndex: r.QuestionIndex,
			Prompt:        q.Prompt,
			Chosen:        q.Choices[r.Chosen],
			Answer:        q.CorrectText(),
			Correct:       r.Correct,
		})
	}

	return summary
}
