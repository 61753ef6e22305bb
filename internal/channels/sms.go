package channels

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TwilioSMS sends through the Twilio REST API, or logs the message in
// dry-run mode (the default when no credentials are configured).
type TwilioSMS struct {
	accountSID string
	authToken  string
	from       string
	dryRun     bool
	client     *http.Client
	log        *zap.Logger
}

func NewTwilioSMS(accountSID, authToken, from string, dryRun bool, log *zap.Logger) *TwilioSMS {
	if accountSID == "" || authToken == "" {
		dryRun = true
	}
	return &TwilioSMS{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		dryRun:     dryRun,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (t *TwilioSMS) Send(ctx context.Context, to, body string) (Receipt, error) {
	if t.dryRun {
		t.log.Info("dry-run sms", zap.String("to", to), zap.String("body", body))
		return Receipt{SID: "dry_run", Status: "queued", To: to}, nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	endpoint := "https://api.twilio.com/2010-04-01/Accounts/" + t.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return Receipt{}, errors.New("twilio api error: " + resp.Status + " body=" + string(respBody))
	}

	var out struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
		To     string `json:"to"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, err
	}
	return Receipt{SID: out.SID, Status: out.Status, To: out.To}, nil
}
