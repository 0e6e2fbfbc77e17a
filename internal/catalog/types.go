// Package catalog stores study resources and exam weightages and answers the
// filtered, topic-grouped queries the API serves.
package catalog

import "errors"

// ErrNotFound is returned when a resource or weightage does not exist.
var ErrNotFound = errors.New("not found")

// Resource types.
const (
	TypeYouTube       = "YouTube"
	TypePDF           = "PDF"
	TypeQuestionPaper = "QuestionPaper"
)

// Difficulty levels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Resource is one study material tagged by grade, exam, subject, topic and difficulty.
type Resource struct {
	ID           int64   `json:"id" yaml:"-"`
	Type         string  `json:"type" yaml:"type"`
	Grade        string  `json:"grade" yaml:"grade"`
	Exam         string  `json:"exam" yaml:"exam"` // School, JEE, NEET, etc.
	Subject      string  `json:"subject" yaml:"subject"`
	Topic        string  `json:"topic" yaml:"topic"`
	Difficulty   string  `json:"difficulty" yaml:"difficulty"`
	URL          string  `json:"url" yaml:"url"`
	SolutionsURL *string `json:"solutions_url" yaml:"solutions_url,omitempty"`
	Description  *string `json:"description" yaml:"description,omitempty"`
}

// Weightage is the share of an exam, in percent, that a topic represents.
type Weightage struct {
	ID        int64   `json:"-" yaml:"-"`
	Grade     string  `json:"grade" yaml:"grade"`
	Exam      string  `json:"exam" yaml:"exam"`
	Subject   string  `json:"subject" yaml:"subject"`
	Topic     string  `json:"topic" yaml:"topic"`
	Weightage float64 `json:"weightage" yaml:"weightage"` // 10.0 means 10%
}

// Filter narrows catalog queries. Empty fields match everything.
// Grade and Topic compare exactly. Exam and Subject are case-insensitive LIKE
// patterns: % matches any run of characters, _ matches one, \ escapes.
type Filter struct {
	Grade   string
	Exam    string
	Subject string
	Topic   string
}

// CacheKey returns a stable key for f, prefixed with the query name.
func (f Filter) CacheKey(query string) string {
	return query + "|" + f.Grade + "|" + lower(f.Exam) + "|" + lower(f.Subject) + "|" + f.Topic
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
