package worker

import (
	"testing"

	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_transcribe(t *testing.T) {
	res := transcribe(&persistence.Job{})
	require.Len(t, res.Segments, 3)
	assert.Equal(t, "en", res.Language)
	assert.Equal(t, 15.0, res.Duration)
	assert.Equal(t, 5.0, res.Segments[0].EndTime)
	assert.Equal(t, 0.92, res.Confidence)
}

func Test_extractFrames(t *testing.T) {
	res := extractFrames(&persistence.Job{Video: persistence.VideoFile{Duration: 15}})
	require.Len(t, res, 3)
	assert.Equal(t, 2.0, res[0].Timestamp)
	assert.Equal(t, 8.0, res[1].Timestamp)
	assert.Equal(t, "frame3.jpg", res[2].Name)
	res[0].Tags[0] = "olia"
	assert.Equal(t, "title", frameSamples[0].tags[0])
}

func Test_title(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "1/my_talk.mp4", want: "My talk"},
		{in: "1/demo-video-2.webm", want: "Demo video 2"},
		{in: "", want: "Video Documentation"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, title(&persistence.Job{Video: persistence.VideoFile{FileName: tt.in}}))
		})
	}
}

func Test_generateDocument(t *testing.T) {
	job := &persistence.Job{ID: "1", Video: persistence.VideoFile{FileName: "1/a.mp4"},
		Analysis: &persistence.Analysis{DocumentType: "tutorial", Topics: []string{"go"},
			Outline: []persistence.Section{{Title: "Intro", Content: "one two", Order: 1}}}}
	res := generateDocument(job, tNow)
	assert.Equal(t, "1/document.md", res.FileName)
	assert.Equal(t, "tutorial", res.Category)
	assert.Equal(t, []string{"go"}, res.Tags)
	assert.Equal(t, 4, res.WordCount)
	assert.Equal(t, tNow, res.Created)
}

func Test_renderMarkdown(t *testing.T) {
	res := renderMarkdown(&persistence.Document{Title: "T", Author: "A", Version: "1.0", Created: tNow,
		Tags: []string{"go", "api"}, Sections: []persistence.Section{{Title: "S", Content: " c ", Order: 1, EndTime: 65}}})
	assert.Equal(t, "# T\n\n_A, version 1.0, 2024-05-01_\n\nTags: go, api\n\n## 1. S\n\n_00:00 - 01:05_\n\nc\n\n", res)
}
