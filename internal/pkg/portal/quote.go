package portal

import (
	"fmt"
	"net/http"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/extract"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/quote"
)

type quoteResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Quote   *quote.View `json:"quote"`
}

func createQuote(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("quote method")()
		ctx := c.Request().Context()

		var in quote.Input
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		if missing := quote.Missing(&in); len(missing) > 0 {
			return api.ErrValidation("Missing required fields", missing...)
		}
		in.Email = normEmail(in.Email)
		if !validEmail(in.Email) {
			return api.ErrValidation("Invalid email address", "email")
		}
		q := quote.Calculate(&in, time.Now())
		if err := data.DB.InsertQuote(ctx, q); err != nil {
			return api.ErrInternal("Failed to save quote", err)
		}
		goapp.Log.Info().Str("ID", q.ID).Int64("price", q.TotalPrice).Msg("quote created")
		if err := data.MsgSender.SendMessage(ctx, &messages.MailMessage{
			QueueMessage: amessages.QueueMessage{ID: q.ID}, Kind: messages.MailQuote, Email: q.Email,
			Name: q.Name, Text: quoteText(q)}, messages.Mail); err != nil {
			goapp.Log.Warn().Err(err).Str("ID", q.ID).Msg("can't send quote email msg")
		}
		audit(c, data, auditQuoteCreated, "", q.ID, "create", map[string]any{"totalPrice": q.TotalPrice})
		return c.JSON(http.StatusOK, &quoteResult{Success: true, Message: "Quote generated successfully", Quote: quote.ToView(q)})
	}
}

func getQuote(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.QueryParam("id")
		if id == "" {
			return api.ErrValidation("Quote ID is required", "id")
		}
		q, err := data.DB.LoadQuote(c.Request().Context(), id)
		if err != nil {
			return api.ErrInternal("Failed to load quote", err)
		}
		if q == nil {
			return api.ErrNotFound("Quote not found")
		}
		return c.JSON(http.StatusOK, &quoteResult{Success: true, Quote: quote.ToView(q)})
	}
}

func quoteText(q *persistence.Quote) string {
	return fmt.Sprintf("Quote %s: %d words %s -> %s, %s tier, %d %s, delivery in %d business days, valid until %s.",
		q.ID, q.WordCount, orAuto(q.SourceLanguage), q.TargetLanguage, q.Tier, q.TotalPrice, q.Currency,
		q.TurnaroundDays, q.ValidUntil.Format("2006-01-02"))
}

func orAuto(s string) string {
	if s == "" {
		return "auto"
	}
	return s
}

const prmFile = "file"

type wordCountResult struct {
	Success   bool   `json:"success"`
	FileName  string `json:"fileName"`
	WordCount int    `json:"wordCount"`
}

func wordCount(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("word count method")()
		fh, err := c.FormFile(prmFile)
		if err != nil {
			return api.ErrValidation("No document provided", prmFile)
		}
		if !extract.Supported(fh.Filename) {
			return api.ErrValidation("Invalid file type. Please upload TXT, PDF or DOCX files.", prmFile)
		}
		if fh.Size > extract.MaxSize {
			return api.ErrValidation("File too large. Maximum size is 20MB.", prmFile)
		}
		f, err := fh.Open()
		if err != nil {
			return api.ErrValidation("Can't read document", prmFile)
		}
		defer f.Close()
		n, err := extract.CountWords(fh.Filename, f, fh.Size)
		if err != nil {
			goapp.Log.Warn().Err(err).Str("file", fh.Filename).Msg("can't count words")
			return api.ErrValidation("Can't extract text from the document", prmFile)
		}
		return c.JSON(http.StatusOK, &wordCountResult{Success: true, FileName: fh.Filename, WordCount: n})
	}
}
