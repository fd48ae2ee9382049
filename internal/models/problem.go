package models

import "strings"

type ProblemListItem struct {
	ID         int      `db:"id" json:"id"`
	Title      string   `db:"title" json:"title"`
	Difficulty string   `db:"difficulty" json:"difficulty"`
	Tags       string   `db:"tags" json:"-"`
	TagList    []string `db:"-" json:"tags"`
}

type ProblemDetail struct {
	ID                  int      `db:"id" json:"id"`
	Title               string   `db:"title" json:"title"`
	Description         string   `db:"description" json:"description"`
	Difficulty          string   `db:"difficulty" json:"difficulty"`
	Tags                string   `db:"tags" json:"-"`
	TagList             []string `db:"-" json:"tags"`
	ProblemType         string   `db:"problem_type" json:"problem_type"`
	TimeLimitMs         int64    `db:"time_limit_ms" json:"time_limit_ms"`
	MemoryLimitBytes    int64    `db:"memory_limit_bytes" json:"memory_limit_bytes"`
	TotalSubmissions    int      `json:"total_submissions"`
	AcceptedSubmissions int      `json:"accepted_submissions"`
	AcceptanceRate      float64  `json:"acceptance_rate"`
}

// SplitTags turns the comma-joined DB column into a slice, dropping empties.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return []string{}
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type TestCase struct {
	ID             int    `db:"id" json:"id"`
	ProblemID      int    `db:"problem_id" json:"problem_id"`
	Input          string `db:"input" json:"input"`
	ExpectedOutput string `db:"expected_output" json:"expected_output"`
	IsSample       bool   `db:"is_sample" json:"is_sample"`
}
