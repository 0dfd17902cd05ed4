package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultTimeout = 15 * time.Second

// ClientConfig is the only externally visible setting of the backend client:
// where the API lives. The timeout is fixed unless overridden for tests.
type ClientConfig struct {
	BaseURL string        `env:"RAGCHAT_API_BASE_URL,required,notEmpty"`
	Timeout time.Duration `env:"RAGCHAT_API_TIMEOUT" envDefault:"15s"`
}

func NewClientConfig() (*ClientConfig, error) {
	c := &ClientConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid RAGCHAT_API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid RAGCHAT_API_BASE_URL %q: scheme must be http or https", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

func (c ClientConfig) GetBaseURL() string {
	return c.BaseURL
}

func (c ClientConfig) GetTimeout() time.Duration {
	return c.Timeout
}
