package core

import "context"

// CredentialSource hands the current access token to outgoing requests.
// An empty token means no credential is attached.
type CredentialSource interface {
	Token() string
}

type ChatSender interface {
	SendMessage(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

type DocumentUploader interface {
	Upload(ctx context.Context, req UploadRequest) (UploadAck, error)
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (Credential, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (UserProfile, error)
}
