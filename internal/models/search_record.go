package models

import "time"

// SearchOutcome summarizes how a match request ended.
type SearchOutcome string

const (
	OutcomeOK                  SearchOutcome = "ok"
	OutcomeNoJobs              SearchOutcome = "no_jobs"
	OutcomeUpstreamUnavailable SearchOutcome = "upstream_unavailable"
)

// SearchRecord is one entry in the search history log.
type SearchRecord struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	FileName  string        `json:"fileName"`
	Format    string        `json:"format"`
	Skills    string        `json:"skills"`
	Location  string        `json:"location"`
	JobCount  int           `json:"jobCount"`
	Outcome   SearchOutcome `json:"outcome"`
}
