package api

import (
	"strings"
	"time"
)

// Scores are heuristic report quality scores in the range [20, 100].
type Scores struct {
	Overall    float64 `json:"overall" yaml:"overall"`
	Confidence int     `json:"confidence" yaml:"confidence"`
	Novelty    int     `json:"novelty" yaml:"novelty"`
	Evidence   int     `json:"evidence" yaml:"evidence"`
}

// Attempt is the summary returned by the attempt listing.
type Attempt struct {
	ID                   string   `json:"id" yaml:"id"`
	Name                 string   `json:"name" yaml:"name"`
	Gene                 string   `json:"gene" yaml:"gene"`
	ReportPath           *string  `json:"reportPath" yaml:"reportPath"`
	ComprehensiveFigures []string `json:"comprehensiveFigures" yaml:"comprehensiveFigures"`
	AttemptNumber        string   `json:"attemptNumber" yaml:"attemptNumber"`
	ResearchHypothesis   *string  `json:"researchHypothesis" yaml:"researchHypothesis"`
	Scores               Scores   `json:"scores" yaml:"scores"`
}

// AttemptDetails is the detail view of one attempt.
type AttemptDetails struct {
	ID                   string   `json:"id" yaml:"id"`
	Gene                 string   `json:"gene" yaml:"gene"`
	ReportPath           *string  `json:"reportPath" yaml:"reportPath"`
	ComprehensiveFigures []string `json:"comprehensiveFigures" yaml:"comprehensiveFigures"`
	Summary              *string  `json:"summary" yaml:"summary"`
	Files                []string `json:"files" yaml:"files"`
}

// FileStat describes one file of an attempt bundle.
type FileStat struct {
	Name    string    `json:"name" yaml:"name"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
}

// LabelRecord is a free-form label document as posted by the visualizer.
type LabelRecord map[string]interface{}

// Label record fields that identify a record rather than label it.
const (
	FieldAttemptID = "attemptId"
	FieldGeneName  = "geneName"
	FieldTimestamp = "timestamp"
)

// AttemptID returns the record's attemptId, or "" when absent or not a string.
func (r LabelRecord) AttemptID() string {
	id, _ := r[FieldAttemptID].(string)
	return strings.TrimSpace(id)
}

// Timestamp parses the record's timestamp field if it is RFC 3339.
func (r LabelRecord) Timestamp() (time.Time, bool) {
	s, ok := r[FieldTimestamp].(string)
	if !ok {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// ValidID reports whether id is usable as a single path component.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..") && !strings.ContainsRune(id, 0)
}
