// Package client - SDK для DocHub: сессия, документы и транспорт к REST API
// или к встроенному серверу с фикстурами.
package client

import (
	"fmt"
)

// Client связывает хранилища сессии и документов с выбранным Backend
type Client struct {
	Config    Config
	Tokens    TokenStore
	Backend   Backend
	Session   *SessionStore
	Documents *DocumentStore
}

type Option func(*options)

type options struct {
	tokens   TokenStore
	notifier Notifier
}

// WithTokenStore задает хранилище токенов; по умолчанию файл из Config.TokenFile
func WithTokenStore(tokens TokenStore) Option {
	return func(o *options) { o.tokens = tokens }
}

func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	tokens := o.tokens
	if tokens == nil {
		fileStore, err := NewFileTokenStore(cfg.TokenFile)
		if err != nil {
			return nil, err
		}
		tokens = fileStore
	}

	c := &Client{Config: cfg, Tokens: tokens}

	var httpClient *HTTPClient
	switch cfg.Mode {
	case ModeMock:
		mock, err := NewMockBackend(tokens, cfg.MockLatency)
		if err != nil {
			return nil, err
		}
		c.Backend = mock
	case ModeHTTP:
		httpClient = NewHTTPClient(cfg.BaseURL, cfg.Timeout, tokens)
		c.Backend = NewHTTPBackend(httpClient)
	default:
		return nil, fmt.Errorf("unsupported client mode: %s", cfg.Mode)
	}

	c.Session = NewSessionStore(c.Backend, tokens, o.notifier)
	c.Documents = NewDocumentStore(c.Backend, o.notifier)

	if httpClient != nil {
		httpClient.OnSessionExpired = c.Session.Expire
	}
	return c, nil
}
