package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/generative-ai-go/genai"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-1.5-flash"

// Gemini analyzes content with Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates Gemini client
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no gemini key")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.SetTemperature(0.3)
	m.SetTopP(0.95)
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = genai.NewUserContent(genai.Text("You are an expert technical writer and content analyzer. " +
		"Provide structured analysis of video content for documentation generation."))
	goapp.Log.Info().Str("model", model).Msg("gemini analyzer")
	return &Gemini{client: client, model: m}, nil
}

// Close releases the client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Analyze implements the content analysis
func (g *Gemini) Analyze(ctx context.Context, tr *persistence.Transcription, frames []persistence.Frame) (*persistence.Analysis, error) {
	if tr == nil {
		return nil, fmt.Errorf("no transcription")
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(tr, frames)))
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			goapp.Log.Warn().Int("candidate", i).Str("reason", cand.FinishReason.String()).Msg("gemini stopped")
		}
	}
	res, err := parseAnalysis(extractText(resp))
	if err != nil {
		return nil, utils.NewErrNonRetryable(err)
	}
	return res, nil
}

func buildPrompt(tr *persistence.Transcription, frames []persistence.Frame) string {
	var b strings.Builder
	b.WriteString("Analyze the following video content and provide a structured analysis.\n\n")
	b.WriteString("Transcript: ")
	for i, s := range tr.Segments {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(s.Text))
	}
	b.WriteString("\n\nFrame descriptions: ")
	for i, f := range frames {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Description)
	}
	b.WriteString("\n\nRespond with one JSON object with fields: documentType (technical-documentation, " +
		"training-material, sop or user-guide), topics (string array), keyPoints (string array), summary, " +
		"outline (array of {title, content, startTime, endTime, order}), complexity (basic, intermediate, " +
		"advanced or expert), targetAudience (string array), estimatedReadTime (minutes).")
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func parseAnalysis(raw string) (*persistence.Analysis, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var res persistence.Analysis
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("can't parse analysis: %w", err)
	}
	if res.Summary == "" && len(res.Outline) == 0 {
		return nil, fmt.Errorf("empty analysis")
	}
	if res.DocumentType == "" {
		res.DocumentType = "technical-documentation"
	}
	if res.Complexity == "" {
		res.Complexity = "intermediate"
	}
	for i := range res.Outline {
		if res.Outline[i].Order == 0 {
			res.Outline[i].Order = i + 1
		}
	}
	res.ReadMinutes = max(1, res.ReadMinutes)
	return &res, nil
}
