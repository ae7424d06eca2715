package slack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/MikeSquared-Agency/lure/internal/report"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster sends operator alerts to a Slack channel. It satisfies
// report.Notifier; posting failures are logged and never surface to the
// dialogue.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

func (p *Poster) EngagementReported(ctx context.Context, payload report.Payload) {
	text := formatEngagementMessage(":white_check_mark: *Engagement reported*", payload, 0)
	if _, err := p.PostMessage(ctx, text); err != nil {
		p.logger.Error("slack post failed", "session_id", payload.SessionID, "error", err)
	}
}

func (p *Poster) EngagementAbandoned(ctx context.Context, payload report.Payload, failures int) {
	text := formatEngagementMessage(":warning: *Report abandoned*", payload, failures)
	if _, err := p.PostMessage(ctx, text); err != nil {
		p.logger.Error("slack post failed", "session_id", payload.SessionID, "error", err)
	}
}

// PostMessage posts text to the configured channel and returns the message
// timestamp.
func (p *Poster) PostMessage(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted alert to slack", "ts", slackResp.TS)
	return slackResp.TS, nil
}

func formatEngagementMessage(title string, payload report.Payload, failures int) string {
	var sb strings.Builder

	sb.WriteString(title)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "*Session:* %s (%d turns)\n", payload.SessionID, payload.TotalMessagesExchanged)
	if failures > 0 {
		fmt.Fprintf(&sb, "*Delivery failures:* %d\n", failures)
	}
	fmt.Fprintf(&sb, "_%s_\n", payload.AgentNotes)

	in := payload.ExtractedIntelligence
	lines := []struct {
		label  string
		values []string
	}{
		{"UPI IDs", in.UPIIDs},
		{"Bank accounts", in.BankAccounts},
		{"Phone numbers", in.PhoneNumbers},
		{"Links", in.PhishingLinks},
	}
	wrote := false
	for _, l := range lines {
		if len(l.values) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "*%s:* %s\n", l.label, strings.Join(l.values, ", "))
		wrote = true
	}
	if !wrote {
		sb.WriteString("_No payment details captured._")
	}

	return strings.TrimRight(sb.String(), "\n")
}
