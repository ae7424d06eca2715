package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MikeSquared-Agency/lure/internal/dialogue"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

// Message is one entry of the platform's conversation format.
type Message struct {
	Sender    string          `json:"sender"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// TurnRequest is the inbound body accepted over HTTP and NATS.
type TurnRequest struct {
	SessionID           string         `json:"sessionId"`
	Message             Message        `json:"message"`
	ConversationHistory []Message      `json:"conversationHistory"`
	Metadata            map[string]any `json:"metadata"`
}

// TurnResponse is the reply body.
type TurnResponse struct {
	Status string        `json:"status"`
	Reply  string        `json:"reply"`
	Stage  session.Stage `json:"stage,omitempty"`
}

// Senders that label the honeypot's own side of the conversation.
var ownSenders = map[string]bool{
	"user":     true,
	"agent":    true,
	"honeypot": true,
}

// Turn converts the request, keeping only counterpart messages from the
// history.
func (r TurnRequest) Turn() Turn {
	var transcript []string
	for _, m := range r.ConversationHistory {
		if ownSenders[strings.ToLower(strings.TrimSpace(m.Sender))] {
			continue
		}
		transcript = append(transcript, m.Text)
	}
	return Turn{
		SessionID:  strings.TrimSpace(r.SessionID),
		Text:       r.Message.Text,
		Transcript: transcript,
		Metadata:   r.Metadata,
	}
}

// ResendResponse is returned for bodies the core cannot accept.
func ResendResponse() TurnResponse {
	return TurnResponse{Status: "success", Reply: dialogue.ResendLine}
}

// Respond runs req through HandleTurn. Requests missing a session id or text
// get the resend reply instead of an error.
func (p *Processor) Respond(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	res, err := p.HandleTurn(ctx, req.Turn())
	if errors.Is(err, ErrInvalidTurn) {
		return ResendResponse(), nil
	}
	if err != nil {
		return TurnResponse{}, err
	}
	return TurnResponse{Status: "success", Reply: res.Reply, Stage: res.Stage}, nil
}

// HandleTurnRequest is the NATS request/reply adapter.
func (p *Processor) HandleTurnRequest(data []byte) ([]byte, error) {
	var req TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		p.logger.Warn("malformed turn request", "error", err)
		return json.Marshal(ResendResponse())
	}

	resp, err := p.Respond(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("handle turn %s: %w", req.SessionID, err)
	}
	return json.Marshal(resp)
}
