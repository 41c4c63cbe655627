package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prismwriting/prism/internal/pkg/persistence"
)

const (
	wordsPerMinute = 200
	maxTopics      = 6
)

// Local makes a content analysis from the transcription and frames without any external service
type Local struct{}

// NewLocal creates local analyzer
func NewLocal() *Local {
	return &Local{}
}

// Analyze implements the content analysis
func (l *Local) Analyze(ctx context.Context, tr *persistence.Transcription, frames []persistence.Frame) (*persistence.Analysis, error) {
	if tr == nil {
		return nil, fmt.Errorf("no transcription")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &persistence.Analysis{DocumentType: "technical-documentation", Complexity: "intermediate"}
	res.Topics = topics(frames)
	words := 0
	for i, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		words += len(strings.Fields(text))
		res.KeyPoints = append(res.KeyPoints, text)
		res.Outline = append(res.Outline, persistence.Section{Title: sectionTitle(i, len(tr.Segments)),
			Content: text, StartTime: s.StartTime, EndTime: s.EndTime, Order: i + 1})
	}
	res.Summary = summary(tr.Segments)
	res.ReadMinutes = max(1, (words+wordsPerMinute-1)/wordsPerMinute)
	res.TargetAudience = audience(res.Topics)
	return res, nil
}

func topics(frames []persistence.Frame) []string {
	sorted := append([]persistence.Frame{}, frames...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Importance > sorted[j].Importance })
	seen := map[string]bool{}
	res := []string{}
	for _, f := range sorted {
		for _, t := range f.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			res = append(res, t)
			if len(res) == maxTopics {
				return res
			}
		}
	}
	return res
}

func sectionTitle(i, count int) string {
	switch {
	case i == 0:
		return "Introduction"
	case i == count-1 && count > 2:
		return "Implementation Guide"
	default:
		return fmt.Sprintf("Key Concepts %d", i)
	}
}

func summary(segments []persistence.Segment) string {
	var parts []string
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " ")
}

func audience(topics []string) []string {
	for _, t := range topics {
		if t == "code" || t == "architecture" || t == "technical" {
			return []string{"developers", "technical staff", "engineers"}
		}
	}
	return []string{"general audience"}
}
