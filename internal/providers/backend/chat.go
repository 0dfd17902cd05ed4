package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
)

const pathChat = "/v1/chat"

// ChatClient maps one ChatRequest to one ChatResponse. Conversation history
// lives on the server; the session id returned must be threaded into the
// next request by the caller.
type ChatClient struct {
	transport *Transport
}

func NewChatClient(t *Transport) *ChatClient {
	return &ChatClient{transport: t}
}

func (c *ChatClient) SendMessage(ctx context.Context, req core.ChatRequest) (core.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return core.ChatResponse{}, fmt.Errorf("%w: message is empty", core.ErrValidation)
	}
	if strings.TrimSpace(req.Namespace) == "" {
		return core.ChatResponse{}, fmt.Errorf("%w: namespace is empty", core.ErrValidation)
	}

	resp, err := c.transport.Send(ctx, http.MethodPost, pathChat, req)
	if err != nil {
		return core.ChatResponse{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, core.KindChat); err != nil {
		return core.ChatResponse{}, fmt.Errorf("chat: %w", err)
	}

	var out core.ChatResponse
	if err := decodeJSON(resp, &out); err != nil {
		return core.ChatResponse{}, fmt.Errorf("chat: %w", err)
	}
	if out.SessionID == "" {
		out.SessionID = req.SessionID
	}
	if len(out.Sources) == 0 {
		out.Sources = nil
	}

	return out, nil
}
