package inform

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/jordan-wright/email"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaker(t *testing.T, values map[string]string) *TemplateMailMaker {
	t.Helper()
	c := viper.New()
	c.Set("mail.from", "info@prism.test")
	c.Set("mail.baseURL", "https://prism.test/")
	for k, v := range values {
		c.Set(k, v)
	}
	res, err := NewTemplateMailMaker(c)
	require.Nil(t, err)
	return res
}

func TestNewTemplateMailMaker(t *testing.T) {
	_, err := NewTemplateMailMaker(viper.New())
	assert.NotNil(t, err)

	c := viper.New()
	c.Set("mail.from", "info@prism.test")
	c.Set("mail.Quote.text", "{{.Olia")
	_, err = NewTemplateMailMaker(c)
	assert.NotNil(t, err)
}

func TestTemplateMailMaker_Quote(t *testing.T) {
	res, err := newMaker(t, nil).Make(&messages.MailMessage{QueueMessage: amessages.QueueMessage{ID: "q1"},
		Kind: messages.MailQuote, Email: "a@a.lt", Name: "Ann", Text: "Quote q1: 100 words."})
	require.Nil(t, err)
	assert.Equal(t, "info@prism.test", res.From)
	assert.Equal(t, []string{"a@a.lt"}, res.To)
	assert.Equal(t, "Your translation quote q1", res.Subject)
	assert.Contains(t, string(res.Text), "Hello Ann,")
	assert.Contains(t, string(res.Text), "Quote q1: 100 words.")
}

func TestTemplateMailMaker_Confirm(t *testing.T) {
	res, err := newMaker(t, nil).Make(&messages.MailMessage{Kind: messages.MailNewsletterConfirm,
		Email: "a@a.lt", Token: "abc"})
	require.Nil(t, err)
	assert.Equal(t, "Please confirm your subscription", res.Subject)
	assert.Contains(t, string(res.Text), "https://prism.test/newsletter/confirm/abc")
}

func TestTemplateMailMaker_Override(t *testing.T) {
	res, err := newMaker(t, map[string]string{"mail.Quote.subject": "Q {{.Name}}"}).Make(
		&messages.MailMessage{Kind: messages.MailQuote, Email: "a@a.lt", Name: "Ann"})
	require.Nil(t, err)
	assert.Equal(t, "Q Ann", res.Subject)
}

func TestTemplateMailMaker_Unknown(t *testing.T) {
	_, err := newMaker(t, nil).Make(&messages.MailMessage{Kind: "olia", Email: "a@a.lt"})
	assert.NotNil(t, err)
}

func TestFakeEmailSender(t *testing.T) {
	var got fakeMail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := viper.New()
	c.Set("smtp.fakeUrl", srv.URL)
	s, err := NewFakeEmailSender(c)
	require.Nil(t, err)
	err = s.Send(&email.Email{From: "f@a.lt", To: []string{"a@a.lt"}, Subject: "s", Text: []byte("t")})
	require.Nil(t, err)
	assert.Equal(t, fakeMail{From: "f@a.lt", To: []string{"a@a.lt"}, Subject: "s", Text: "t"}, got)
}

func TestFakeEmailSender_Fail(t *testing.T) {
	_, err := NewFakeEmailSender(viper.New())
	assert.NotNil(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := viper.New()
	c.Set("smtp.fakeUrl", srv.URL)
	s, err := NewFakeEmailSender(c)
	require.Nil(t, err)
	assert.NotNil(t, s.Send(&email.Email{To: []string{"a@a.lt"}}))
}
