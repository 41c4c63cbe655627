package worker

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
)

const defaultDuration = 15

var (
	segmentTexts = []string{
		"Welcome to our comprehensive tutorial on implementing advanced features.",
		"Today we'll be covering the key concepts and best practices.",
		"Let's start with the foundational principles that will guide our implementation.",
	}
	segmentConfidence = []float64{0.95, 0.92, 0.89}
	frameSamples = []struct {
		at          float64
		description string
		importance  int
		tags        []string
	}{
		{at: 2.0 / 15, description: "Opening slide with title and presenter introduction", importance: 8,
			tags: []string{"title", "introduction", "slide"}},
		{at: 8.0 / 15, description: "Diagram showing system architecture overview", importance: 9,
			tags: []string{"diagram", "architecture", "technical"}},
		{at: 14.0 / 15, description: "Code example demonstrating implementation details", importance: 7,
			tags: []string{"code", "example", "implementation"}},
	}
)

// transcribe makes a placeholder transcription spread over the video duration
func transcribe(job *persistence.Job) *persistence.Transcription {
	d := duration(job)
	step := d / float64(len(segmentTexts))
	res := &persistence.Transcription{ID: uuid.New().String(), Language: "en", Duration: d}
	sum := 0.0
	for i, t := range segmentTexts {
		conf := segmentConfidence[i]
		sum += conf
		res.Segments = append(res.Segments, persistence.Segment{Text: t, StartTime: round(step * float64(i)),
			EndTime: round(step * float64(i+1)), Confidence: conf, Speaker: "Speaker 1"})
	}
	res.Confidence = round(sum / float64(len(res.Segments)))
	return res
}

// extractFrames makes placeholder key frames at fixed points of the video
func extractFrames(job *persistence.Job) []persistence.Frame {
	d := duration(job)
	res := make([]persistence.Frame, 0, len(frameSamples))
	for i, f := range frameSamples {
		res = append(res, persistence.Frame{ID: uuid.New().String(), Timestamp: round(d * f.at),
			Name: fmt.Sprintf("frame%d.jpg", i+1), Description: f.description, Importance: f.importance,
			Tags: append([]string{}, f.tags...)})
	}
	return res
}

func generateDocument(job *persistence.Job, now time.Time) *persistence.Document {
	res := &persistence.Document{ID: uuid.New().String(), Title: title(job), Author: "Prism Writing Enterprise",
		Version: "1.0", Created: now, FileName: utils.MakeFileName(job.ID, DocumentName)}
	if a := job.Analysis; a != nil {
		res.Sections = append([]persistence.Section{}, a.Outline...)
		res.Tags = append([]string{}, a.Topics...)
		res.Category = a.DocumentType
	}
	words := len(strings.Fields(res.Title))
	for _, s := range res.Sections {
		words += len(strings.Fields(s.Title)) + len(strings.Fields(s.Content))
	}
	res.WordCount = words
	return res
}

func renderMarkdown(doc *persistence.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "_%s, version %s, %s_\n\n", doc.Author, doc.Version, doc.Created.UTC().Format("2006-01-02"))
	if len(doc.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(doc.Tags, ", "))
	}
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "## %d. %s\n\n", s.Order, s.Title)
		if s.EndTime > 0 {
			fmt.Fprintf(&b, "_%s - %s_\n\n", clock(s.StartTime), clock(s.EndTime))
		}
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(s.Content))
	}
	return b.String()
}

func title(job *persistence.Job) string {
	name := filepath.Base(job.Video.FileName)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	if name == "" || name == "." {
		return "Video Documentation"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func duration(job *persistence.Job) float64 {
	if job.Video.Duration > 0 {
		return float64(job.Video.Duration)
	}
	return defaultDuration
}

func clock(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
