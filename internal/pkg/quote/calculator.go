package quote

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/prismwriting/prism/internal/pkg/persistence"
)

const (
	// TierStandard is a default tier
	TierStandard = "standard"
	// TierPremium tier
	TierPremium = "premium"
	// TierExpress tier
	TierExpress = "express"

	// DefaultLanguageMultiplier is used for unknown target language
	DefaultLanguageMultiplier = 1.5
	// DefaultComplexityMultiplier is used for unknown complexity
	DefaultComplexityMultiplier = 1.2
	// DefaultTypeMultiplier is used for unknown document type
	DefaultTypeMultiplier = 1.0

	// Currency of all prices
	Currency = "USD"
	// ValidFor is a quote validity period
	ValidFor = 30 * 24 * time.Hour
	// MaxWordCount is the biggest word count a quote is made for
	MaxWordCount = 10_000_000
)

var (
	languageMultipliers = map[string]float64{
		"es": 1.0, "fr": 1.0, "de": 1.0, "it": 1.0, "pt": 1.0,
		"zh": 1.3, "ja": 1.4, "ko": 1.3, "ar": 1.3, "hi": 1.2,
		"ru": 1.2, "pl": 1.2, "nl": 1.1, "sv": 1.2, "no": 1.2,
		"fi": 1.5, "hu": 1.4, "he": 1.3, "th": 1.4, "vi": 1.3,
		"mt": 2.0, "is": 1.8, "eu": 1.7, "ka": 1.8, "hy": 1.6,
	}
	complexityMultipliers = map[string]float64{
		"basic": 1.0, "intermediate": 1.2, "advanced": 1.5, "expert": 2.0,
	}
	typeMultipliers = map[string]float64{
		"business": 1.0, "legal": 1.8, "medical": 2.0, "technical": 1.6, "marketing": 1.2, "academic": 1.4,
	}
)

// Input is a quote request
type Input struct {
	WordCount      int    `json:"wordCount"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	DocumentType   string `json:"documentType"`
	Complexity     string `json:"complexity"`
	Tier           string `json:"tier"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Company        string `json:"company"`
	Requirements   string `json:"requirements"`
}

// Missing returns names of required fields without value,
// a word count above MaxWordCount is reported too
func Missing(in *Input) []string {
	var res []string
	if in.WordCount <= 0 || in.WordCount > MaxWordCount {
		res = append(res, "wordCount")
	}
	if strings.TrimSpace(in.TargetLanguage) == "" {
		res = append(res, "targetLanguage")
	}
	if strings.TrimSpace(in.Email) == "" {
		res = append(res, "email")
	}
	if strings.TrimSpace(in.Name) == "" {
		res = append(res, "name")
	}
	return res
}

// BaseRate returns price per word for the tier
func BaseRate(tier string) float64 {
	switch tier {
	case TierExpress:
		return 0.25
	case TierPremium:
		return 0.18
	}
	return 0.12
}

// LanguageMultiplier returns multiplier by target language code
func LanguageMultiplier(lang string) float64 {
	return valueOr(languageMultipliers, lang, DefaultLanguageMultiplier)
}

// ComplexityMultiplier returns multiplier by complexity
func ComplexityMultiplier(complexity string) float64 {
	return valueOr(complexityMultipliers, complexity, DefaultComplexityMultiplier)
}

// TypeMultiplier returns multiplier by document type
func TypeMultiplier(docType string) float64 {
	return valueOr(typeMultipliers, docType, DefaultTypeMultiplier)
}

// TurnaroundDays returns delivery days by word count bucket and tier
func TurnaroundDays(wordCount int, tier string) int {
	days := [3]int{3, 5, 7}
	switch tier {
	case TierExpress:
		days = [3]int{1, 2, 3}
	case TierPremium:
		days = [3]int{2, 3, 5}
	}
	if wordCount <= 1000 {
		return days[0]
	}
	if wordCount <= 3000 {
		return days[1]
	}
	return days[2]
}

// Price calculates rounded total price, word count is clamped to [0, MaxWordCount]
func Price(in *Input) int64 {
	wc := math.Min(math.Max(float64(in.WordCount), 0), MaxWordCount)
	return int64(math.Round(BaseRate(in.Tier) * wc * LanguageMultiplier(in.TargetLanguage) *
		ComplexityMultiplier(in.Complexity) * TypeMultiplier(in.DocumentType)))
}

// Calculate makes a quote, input must be validated with Missing before
func Calculate(in *Input, now time.Time) *persistence.Quote {
	return &persistence.Quote{
		ID:             NewID(now),
		WordCount:      in.WordCount,
		SourceLanguage: in.SourceLanguage,
		TargetLanguage: in.TargetLanguage,
		DocumentType:   in.DocumentType,
		Complexity:     in.Complexity,
		Tier:           in.Tier,
		BaseRate:       BaseRate(in.Tier),
		LanguageMult:   LanguageMultiplier(in.TargetLanguage),
		ComplexityMult: ComplexityMultiplier(in.Complexity),
		TypeMult:       TypeMultiplier(in.DocumentType),
		TotalPrice:     Price(in),
		Currency:       Currency,
		TurnaroundDays: TurnaroundDays(in.WordCount, in.Tier),
		Name:           in.Name,
		Email:          in.Email,
		Company:        in.Company,
		Requirements:   in.Requirements,
		Status:         "pending",
		Created:        now,
		ValidUntil:     now.Add(ValidFor),
	}
}

const idLetters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID generates quote ID: TRANS-<unix ms>-<9 random chars>
func NewID(now time.Time) string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = idLetters[rand.Intn(len(idLetters))]
	}
	return fmt.Sprintf("TRANS-%d-%s", now.UnixMilli(), string(b))
}

func valueOr(m map[string]float64, k string, def float64) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	return def
}
