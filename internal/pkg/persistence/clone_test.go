package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJob_Clone(t *testing.T) {
	now := time.Now()
	j := &Job{ID: "1", Status: "analyzing", Progress: 70, Started: &now,
		Transcription: &Transcription{ID: "t", Segments: []Segment{{Text: "olia"}}},
		Frames:        []Frame{{ID: "f", Tags: []string{"a"}}},
		Analysis:      &Analysis{Topics: []string{"t1"}},
		Document:      &Document{Title: "doc", Sections: []Section{{Title: "s"}}}}
	c := j.Clone()
	assert.Equal(t, j, c)

	c.Transcription.Segments[0].Text = "changed"
	c.Frames[0].Tags[0] = "changed"
	c.Analysis.Topics[0] = "changed"
	c.Document.Sections[0].Title = "changed"
	*c.Started = now.Add(time.Hour)

	assert.Equal(t, "olia", j.Transcription.Segments[0].Text)
	assert.Equal(t, "a", j.Frames[0].Tags[0])
	assert.Equal(t, "t1", j.Analysis.Topics[0])
	assert.Equal(t, "s", j.Document.Sections[0].Title)
	assert.Equal(t, now, *j.Started)
}

func TestJob_Clone_Nil(t *testing.T) {
	var j *Job
	assert.Nil(t, j.Clone())
	assert.Equal(t, &Job{ID: "1"}, (&Job{ID: "1"}).Clone())
}
