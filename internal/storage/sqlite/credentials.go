package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sandevgo/ragchat/internal/core"
)

// Credentials stores one access token per backend base URL.
type Credentials struct {
	db *sql.DB
}

var _ core.CredentialRepository = (*Credentials)(nil)

func NewCredentials(db *sql.DB) *Credentials {
	return &Credentials{db: db}
}

func (c *Credentials) SaveCredential(ctx context.Context, baseURL string, cred core.Credential) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO credentials (base_url, access_token, expires_in, issued_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(base_url) DO UPDATE SET
		   access_token = excluded.access_token,
		   expires_in = excluded.expires_in,
		   issued_at = excluded.issued_at`,
		baseURL, cred.AccessToken, cred.ExpiresIn, cred.IssuedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (c *Credentials) LoadCredential(ctx context.Context, baseURL string) (core.Credential, bool, error) {
	var cred core.Credential
	err := c.db.QueryRowContext(ctx,
		`SELECT access_token, expires_in, issued_at FROM credentials WHERE base_url = ?`,
		baseURL,
	).Scan(&cred.AccessToken, &cred.ExpiresIn, &cred.IssuedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return core.Credential{}, false, nil
	}
	if err != nil {
		return core.Credential{}, false, fmt.Errorf("failed to load credential: %w", err)
	}
	return cred, true, nil
}

func (c *Credentials) DeleteCredential(ctx context.Context, baseURL string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM credentials WHERE base_url = ?`, baseURL); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
