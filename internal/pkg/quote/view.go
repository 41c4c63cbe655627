package quote

import (
	"time"

	"github.com/prismwriting/prism/internal/pkg/persistence"
)

type (
	// View is a quote as returned to the client
	View struct {
		QuoteID        string         `json:"quoteId"`
		ProjectDetails ProjectDetails `json:"projectDetails"`
		Pricing        Pricing        `json:"pricing"`
		Timeline       Timeline       `json:"timeline"`
		Contact        Contact        `json:"contact"`
		Requirements   string         `json:"requirements,omitempty"`
		Status         string         `json:"status"`
		CreatedAt      time.Time      `json:"createdAt"`
		ValidUntil     time.Time      `json:"validUntil"`
	}

	// ProjectDetails echoes the request
	ProjectDetails struct {
		WordCount      int    `json:"wordCount"`
		SourceLanguage string `json:"sourceLanguage,omitempty"`
		TargetLanguage string `json:"targetLanguage"`
		DocumentType   string `json:"documentType,omitempty"`
		Complexity     string `json:"complexity,omitempty"`
		Tier           string `json:"tier,omitempty"`
	}

	// Pricing part
	Pricing struct {
		BaseRate   float64   `json:"baseRate"`
		TotalPrice int64     `json:"totalPrice"`
		Currency   string    `json:"currency"`
		Breakdown  Breakdown `json:"breakdown"`
	}

	// Breakdown lists used multipliers
	Breakdown struct {
		LanguageMultiplier   float64 `json:"languageMultiplier"`
		ComplexityMultiplier float64 `json:"complexityMultiplier"`
		TypeMultiplier       float64 `json:"typeMultiplier"`
	}

	// Timeline part
	Timeline struct {
		TurnaroundDays    int       `json:"turnaroundDays"`
		EstimatedDelivery time.Time `json:"estimatedDelivery"`
	}

	// Contact part
	Contact struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Company string `json:"company,omitempty"`
	}
)

// ToView maps stored quote to the response structure
func ToView(q *persistence.Quote) *View {
	return &View{
		QuoteID: q.ID,
		ProjectDetails: ProjectDetails{WordCount: q.WordCount, SourceLanguage: q.SourceLanguage,
			TargetLanguage: q.TargetLanguage, DocumentType: q.DocumentType, Complexity: q.Complexity, Tier: q.Tier},
		Pricing: Pricing{BaseRate: q.BaseRate, TotalPrice: q.TotalPrice, Currency: q.Currency,
			Breakdown: Breakdown{LanguageMultiplier: q.LanguageMult, ComplexityMultiplier: q.ComplexityMult,
				TypeMultiplier: q.TypeMult}},
		Timeline: Timeline{TurnaroundDays: q.TurnaroundDays,
			EstimatedDelivery: q.Created.Add(time.Duration(q.TurnaroundDays) * 24 * time.Hour)},
		Contact:      Contact{Name: q.Name, Email: q.Email, Company: q.Company},
		Requirements: q.Requirements,
		Status:       q.Status,
		CreatedAt:    q.Created,
		ValidUntil:   q.ValidUntil,
	}
}
