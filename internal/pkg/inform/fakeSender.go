package inform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jordan-wright/email"
	"github.com/spf13/viper"
)

// FakeEmailSender posts emails as json to the configured URL instead of sending them
type FakeEmailSender struct {
	url     string
	timeout time.Duration
}

// NewFakeEmailSender initiates email sender from smtp.fakeUrl
func NewFakeEmailSender(c *viper.Viper) (*FakeEmailSender, error) {
	res := &FakeEmailSender{url: c.GetString("smtp.fakeUrl"), timeout: time.Second * 5}
	if res.url == "" {
		return nil, fmt.Errorf("no URL")
	}
	goapp.Log.Info().Str("URL", res.url).Msgf("Fake sender")
	return res, nil
}

type fakeMail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send posts the email
func (s *FakeEmailSender) Send(e *email.Email) error {
	body, err := json.Marshal(fakeMail{From: e.From, To: e.To, Subject: e.Subject, Text: string(e.Text)})
	if err != nil {
		return err
	}
	ctx, cancelF := context.WithTimeout(context.Background(), s.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	goapp.Log.Info().Str("url", req.URL.String()).Strs("to", e.To).Msg("call")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
	}
	return nil
}
