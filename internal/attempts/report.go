package attempts

import (
	"strings"
	"unicode/utf8"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

var (
	hypothesisMarkers = []string{"research hypothesis", "hypothesis:", "research question"}
	metadataMarkers   = []string{"date:", "author:", "version:"}
)

// researchHypothesis extracts a one-line hypothesis to use as the attempt
// title. It prefers the first substantial line under a hypothesis header and
// falls back to the first substantial non-heading line of the report.
func researchHypothesis(content string) *string {
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		if !containsAny(strings.ToLower(line), hypothesisMarkers) {
			continue
		}
		for j := i + 1; j < len(lines) && j < i+10; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || strings.HasPrefix(next, "#") || strings.HasPrefix(next, "*") {
				continue
			}
			hypothesis := strings.TrimSpace(stripEmphasis(next))
			if utf8.RuneCountInString(hypothesis) > 20 {
				return &hypothesis
			}
			break
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if containsAny(strings.ToLower(line), metadataMarkers) {
			continue
		}
		cleaned := stripEmphasis(strings.TrimSpace(line))
		if utf8.RuneCountInString(cleaned) > 30 && !strings.HasPrefix(cleaned, "Investigation") {
			return &cleaned
		}
	}

	return nil
}

// reportSummary returns up to three lines following an "## Executive
// Summary" or "## Summary" header, joined by spaces.
func reportSummary(content string) *string {
	var summary []string
	inSummary := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "## Executive Summary") || strings.Contains(line, "## Summary") {
			inSummary = true
			continue
		}
		if !inSummary {
			continue
		}
		if strings.HasPrefix(line, "##") {
			break
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			summary = append(summary, trimmed)
			if len(summary) >= 3 {
				break
			}
		}
	}

	if len(summary) == 0 {
		return nil
	}
	joined := strings.Join(summary, " ")
	return &joined
}

type keywordScore struct {
	keywords []string
	points   int
}

var (
	confidenceRules = []keywordScore{
		{[]string{"p <", "p<"}, 20},
		{[]string{"significant"}, 15},
		{[]string{"p < 0.05", "p<0.05"}, 10},
		{[]string{"p < 0.01", "p<0.01"}, 15},
		{[]string{"comprehensive"}, 10},
	}
	noveltyRules = []keywordScore{
		{[]string{"novel"}, 20},
		{[]string{"unprecedented", "first time"}, 15},
		{[]string{"discovery"}, 10},
		{[]string{"mechanism"}, 10},
		{[]string{"pathway"}, 5},
	}
	evidenceRules = []keywordScore{
		{[]string{"figure"}, 10},
		{[]string{"morphological"}, 15},
		{[]string{"validation"}, 10},
		{[]string{"comprehensive"}, 15},
		{[]string{"statistical"}, 10},
		{[]string{"correlation"}, 5},
	}
)

// qualityScores scores a report by the presence of statistical, novelty
// and evidence keywords.
func qualityScores(content string) api.Scores {
	lower := strings.ToLower(content)
	confidence := score(lower, 30, confidenceRules)
	novelty := score(lower, 40, noveltyRules)
	evidence := score(lower, 35, evidenceRules)
	overall := float64(confidence)*0.4 + float64(novelty)*0.3 + float64(evidence)*0.3

	return api.Scores{
		Overall:    clampFloat(overall),
		Confidence: clamp(confidence),
		Novelty:    clamp(novelty),
		Evidence:   clamp(evidence),
	}
}

func defaultScores() api.Scores {
	return api.Scores{Overall: 50, Confidence: 50, Novelty: 50, Evidence: 50}
}

func score(content string, base int, rules []keywordScore) int {
	total := base
	for _, rule := range rules {
		if containsAny(content, rule.keywords) {
			total += rule.points
		}
	}
	return total
}

func clamp(v int) int {
	return min(100, max(20, v))
}

func clampFloat(v float64) float64 {
	return min(100, max(20, v))
}

func stripEmphasis(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "**", ""), "*", "")
}
