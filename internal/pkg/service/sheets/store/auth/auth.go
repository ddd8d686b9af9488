// Package auth implements the service account authentication using the OAuth 2.0 JWT bearer flow.
package auth

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/pem"
	"net/http"

	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	"github.com/keboola/sheets-writer/internal/pkg/log"
	"github.com/keboola/sheets-writer/internal/pkg/service/sheets/store"
	"github.com/keboola/sheets-writer/internal/pkg/utils/errors"
)

// p12Password is the fixed password of PKCS #12 keys generated by Google.
const p12Password = "notasecret"

type ServiceAccount struct {
	logger     log.Logger
	httpClient *http.Client
	tokenURL   string
}

type Option func(a *ServiceAccount)

// WithHTTPClient sets the client used to exchange the signed JWT for an access token.
func WithHTTPClient(c *http.Client) Option {
	return func(a *ServiceAccount) {
		a.httpClient = c
	}
}

func WithTokenURL(v string) Option {
	return func(a *ServiceAccount) {
		a.tokenURL = v
	}
}

func NewServiceAccount(logger log.Logger, opts ...Option) *ServiceAccount {
	a := &ServiceAccount{logger: logger.WithComponent("auth"), tokenURL: google.JWTTokenURL}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Authenticate builds the JWT config and fetches the first token, so invalid credentials fail fast.
func (a *ServiceAccount) Authenticate(ctx context.Context, creds store.Credentials) (oauth2.TokenSource, error) {
	cfg, err := a.jwtConfig(creds)
	if err != nil {
		return nil, errors.PrefixError(err, "invalid credentials")
	}

	// Token refresh must not depend on the cancellation of the open call
	tokenCtx := context.WithoutCancel(ctx)
	if a.httpClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, a.httpClient)
	}

	tokens := cfg.TokenSource(tokenCtx)
	if _, err := tokens.Token(); err != nil {
		return nil, errors.Errorf(`authentication of "%s" failed: %w`, cfg.Email, err)
	}

	a.logger.Infof(ctx, `authenticated as "%s"`, cfg.Email)
	return tokens, nil
}

func (a *ServiceAccount) jwtConfig(creds store.Credentials) (*jwt.Config, error) {
	key := bytes.TrimSpace(creds.PrivateKey)
	if len(key) == 0 {
		return nil, errors.New("private key is empty")
	}

	var cfg *jwt.Config
	switch {
	case key[0] == '{':
		// JSON key file contains also the e-mail
		v, err := google.JWTConfigFromJSON(key, creds.Scopes...)
		if err != nil {
			return nil, errors.Wrap(err, "cannot parse JSON key file")
		}
		cfg = v
		if creds.Principal != "" {
			cfg.Email = creds.Principal
		}
	case bytes.Contains(key, []byte("-----BEGIN")):
		cfg = &jwt.Config{PrivateKey: key}
	default:
		pemKey, err := p12ToPEM(creds.PrivateKey)
		if err != nil {
			return nil, err
		}
		cfg = &jwt.Config{PrivateKey: pemKey}
	}

	if cfg.Email == "" {
		cfg.Email = creds.Principal
	}
	if cfg.Email == "" {
		return nil, errors.New("principal e-mail is not set")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = creds.Scopes
	}
	cfg.TokenURL = a.tokenURL
	return cfg, nil
}

func p12ToPEM(data []byte) ([]byte, error) {
	key, _, err := pkcs12.Decode(data, p12Password)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode PKCS #12 key")
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode private key")
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
