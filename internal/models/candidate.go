package models

import "time"

// Status tracks a candidate session through its lifecycle.
type Status string

const (
	StatusNew         Status = "new"
	StatusWaitingInfo Status = "waitingInfo"
	StatusInProgress  Status = "in-progress"
	StatusCompleted   Status = "completed"
)

// Resumable reports whether a client may reattach to a session in this status.
func (s Status) Resumable() bool {
	return s == StatusWaitingInfo || s == StatusInProgress
}

// Message senders recorded in the transcript.
const (
	MessageFromBot  = "bot"
	MessageFromUser = "user"
)

// Question difficulty levels produced by the question provider.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Profile holds the required candidate fields. An empty string means unknown.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Merge overlays non-empty fields of other onto the profile.
func (p Profile) Merge(other Profile) Profile {
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.Email != "" {
		p.Email = other.Email
	}
	if other.Phone != "" {
		p.Phone = other.Phone
	}
	return p
}

// ChatMessage is a single transcript entry. Immutable once appended;
// slice order is display and audit order.
type ChatMessage struct {
	From string `json:"from" validate:"oneof=bot user"`
	Text string `json:"text"`
}

// Question is one timed interview question. IDs are opaque to the engine
// but must be unique within a session's question set.
type Question struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	Timer      int    `json:"timer"`
	Difficulty string `json:"difficulty"`
}

// Answer is the write-once record for a submitted question.
type Answer struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

// Candidate is one interview session and its accumulated data.
// The record store exclusively owns instances; everything else works
// on copies and mutates through store operations.
type Candidate struct {
	ID         string         `json:"id"`
	Profile    Profile        `json:"profile"`
	Chats      []ChatMessage  `json:"chats"`
	Questions  []Question     `json:"questions"`
	Answers    map[int]Answer `json:"answers"`
	Status     Status         `json:"status"`
	FinalScore *int           `json:"finalScore"`
	Summary    *string        `json:"summary"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy so callers never hold a reference into the store.
func (c Candidate) Clone() Candidate {
	out := c
	out.Chats = append([]ChatMessage(nil), c.Chats...)
	out.Questions = append([]Question(nil), c.Questions...)
	out.Answers = make(map[int]Answer, len(c.Answers))
	for id, answer := range c.Answers {
		out.Answers[id] = answer
	}
	if c.FinalScore != nil {
		score := *c.FinalScore
		out.FinalScore = &score
	}
	if c.Summary != nil {
		summary := *c.Summary
		out.Summary = &summary
	}
	return out
}

// QuestionByID looks a question up in the installed set.
func (c Candidate) QuestionByID(id int) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// RunningScore sums every persisted answer score.
func (c Candidate) RunningScore() int {
	total := 0
	for _, answer := range c.Answers {
		total += answer.Score
	}
	return total
}

// FirstUnansweredIndex returns the index of the first question without a
// persisted answer, or len(Questions) when every question is answered.
func (c Candidate) FirstUnansweredIndex() int {
	for i, q := range c.Questions {
		if _, ok := c.Answers[q.ID]; !ok {
			return i
		}
	}
	return len(c.Questions)
}
