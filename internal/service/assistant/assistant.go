package assistant

import (
	"context"
	"fmt"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

type Orchestrator interface {
	RunChat(ctx context.Context, message, namespace, sessionID string) (core.ChatResponse, error)
	RunUpload(ctx context.Context, file core.UploadFile, namespace, userID string) (core.UploadAck, error)
}

// Assistant is what the front-ends talk to. It threads the server session
// through a Conversation and keeps a local copy of each turn; everything
// else is delegated to the orchestrator.
type Assistant struct {
	orch Orchestrator
	repo core.HistoryRepository
}

func New(orch Orchestrator, repo core.HistoryRepository) *Assistant {
	return &Assistant{orch: orch, repo: repo}
}

// Ask sends one message. On success conv.SessionID holds the session the
// server answered in, unless conv was switched to another namespace or
// session while the request was running.
func (a *Assistant) Ask(ctx context.Context, conv *core.Conversation, message string) (core.ChatResponse, error) {
	logger := log.FromCtx(ctx)

	namespace, sessionID := conv.Namespace, conv.SessionID
	resp, err := a.orch.RunChat(ctx, message, namespace, sessionID)
	if err != nil {
		return core.ChatResponse{}, err
	}

	if resp.SessionID != sessionID {
		logger.Debug().
			Str("previous", sessionID).
			Str("session_id", resp.SessionID).
			Msg("server assigned session")
	}
	if conv.Namespace == namespace && conv.SessionID == sessionID {
		conv.SessionID = resp.SessionID
	} else {
		logger.Debug().Str("session_id", resp.SessionID).Msg("conversation switched during request, keeping new selection")
	}

	if a.repo != nil && resp.SessionID != "" {
		err := a.repo.AddTurn(ctx, namespace, resp.SessionID,
			core.ChatMessage{Role: core.RoleUser, Content: message},
			core.ChatMessage{Role: core.RoleAssistant, Content: resp.Answer, Sources: resp.Sources},
		)
		if err != nil {
			// the answer is already on the server, losing the local copy is not fatal
			logger.Error().Err(err).Msg("failed to save turn")
		}
	}

	return resp, nil
}

func (a *Assistant) Upload(ctx context.Context, conv *core.Conversation, file core.UploadFile) (core.UploadAck, error) {
	return a.orch.RunUpload(ctx, file, conv.Namespace, conv.UserID)
}

// Resume points conv at the last session used in its namespace, if any.
func (a *Assistant) Resume(ctx context.Context, conv *core.Conversation) (bool, error) {
	if a.repo == nil {
		return false, nil
	}
	sessionID, err := a.repo.LastSession(ctx, conv.Namespace)
	if err != nil {
		return false, fmt.Errorf("failed to find last session: %w", err)
	}
	if sessionID == "" {
		return false, nil
	}
	conv.SessionID = sessionID
	return true, nil
}
