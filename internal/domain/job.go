package domain

import (
	"strings"
	"time"
)

// Job is a posting from the upstream job pool. The engine never mutates it.
type Job struct {
	JobHash          string    `json:"job_hash"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	Description      string    `json:"description,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
	OriginalPostedAt time.Time `json:"original_posted_date,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// PostedAt returns the original posting date, falling back to the ingestion time.
// The zero time means the job carries neither.
func (j *Job) PostedAt() time.Time {
	if !j.OriginalPostedAt.IsZero() {
		return j.OriginalPostedAt
	}
	return j.CreatedAt
}

// Text is the lower-cased title and description used by keyword heuristics.
func (j *Job) Text() string {
	return strings.ToLower(strings.TrimSpace(j.Title + " " + j.Description))
}

// Leading returns at most n jobs from the head of the pool.
func Leading(jobs []Job, n int) []Job {
	if n < 0 || n >= len(jobs) {
		return jobs
	}
	return jobs[:n]
}
