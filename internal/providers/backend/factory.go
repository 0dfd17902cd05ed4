package backend

import (
	"context"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

// Clients shares one Transport, and therefore one credential source, between
// the auth, chat and upload clients.
type Clients struct {
	Auth   *AuthClient
	Chat   *ChatClient
	Upload *UploadClient
}

func NewClients(ctx context.Context, cfg core.ClientConfig, creds core.CredentialSource) *Clients {
	log.FromCtx(ctx).Debug().
		Str("base_url", cfg.GetBaseURL()).
		Dur("timeout", cfg.GetTimeout()).
		Msg("configuring backend client")

	t := NewTransport(cfg, creds)
	return &Clients{
		Auth:   NewAuthClient(t),
		Chat:   NewChatClient(t),
		Upload: NewUploadClient(t),
	}
}
