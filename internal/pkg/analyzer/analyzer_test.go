package analyzer

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tTr = &persistence.Transcription{Segments: []persistence.Segment{
	{Text: "Welcome to the tutorial.", StartTime: 0, EndTime: 5},
	{Text: "Key concepts follow.", StartTime: 5, EndTime: 10},
	{Text: "Now we implement it.", StartTime: 10, EndTime: 15},
}}

var tFrames = []persistence.Frame{
	{Description: "Title", Importance: 5, Tags: []string{"title", "Introduction"}},
	{Description: "Diagram", Importance: 9, Tags: []string{"diagram", "architecture"}},
}

func TestLocal_Analyze(t *testing.T) {
	res, err := NewLocal().Analyze(test.Ctx(t), tTr, tFrames)
	require.Nil(t, err)
	assert.Equal(t, []string{"diagram", "architecture", "title", "introduction"}, res.Topics)
	require.Len(t, res.Outline, 3)
	assert.Equal(t, "Introduction", res.Outline[0].Title)
	assert.Equal(t, "Implementation Guide", res.Outline[2].Title)
	assert.Equal(t, 3, res.Outline[2].Order)
	assert.Equal(t, "Welcome to the tutorial. Key concepts follow.", res.Summary)
	assert.Equal(t, 1, res.ReadMinutes)
	assert.Equal(t, []string{"developers", "technical staff", "engineers"}, res.TargetAudience)
}

func TestLocal_Analyze_Fail(t *testing.T) {
	_, err := NewLocal().Analyze(test.Ctx(t), nil, nil)
	assert.NotNil(t, err)
	ctx, cf := context.WithCancel(context.Background())
	cf()
	_, err = NewLocal().Analyze(ctx, tTr, nil)
	assert.NotNil(t, err)
}

func TestLocal_Deterministic(t *testing.T) {
	r1, _ := NewLocal().Analyze(test.Ctx(t), tTr, tFrames)
	r2, _ := NewLocal().Analyze(test.Ctx(t), tTr, tFrames)
	assert.Equal(t, r1, r2)
}

func Test_buildPrompt(t *testing.T) {
	p := buildPrompt(tTr, tFrames)
	assert.Contains(t, p, "Transcript: Welcome to the tutorial. Key concepts follow. Now we implement it.")
	assert.Contains(t, p, "Frame descriptions: Title, Diagram")
}

func Test_parseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		want    string
	}{
		{name: "plain", in: `{"summary":"s","documentType":"sop"}`, want: "sop"},
		{name: "fenced", in: "```json\n{\"summary\":\"s\"}\n```", want: "technical-documentation"},
		{name: "text around", in: "Here: {\"summary\":\"s\"} done", want: "technical-documentation"},
		{name: "empty", in: `{}`, wantErr: true},
		{name: "broken", in: `{"summary":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnalysis(tt.in)
			if tt.wantErr {
				assert.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got.DocumentType)
			assert.Equal(t, 1, got.ReadMinutes)
		})
	}
}

func Test_extractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}}},
		{},
	}}
	assert.Equal(t, `{"a":1}`, extractText(resp))
	assert.Equal(t, "", extractText(nil))
}

func TestNewGemini_NoKey(t *testing.T) {
	_, err := NewGemini(test.Ctx(t), "", "")
	assert.NotNil(t, err)
}
