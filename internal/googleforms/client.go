package googleforms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	forms "google.golang.org/api/forms/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/a3tai/mcp-form-drafter/internal/apperrors"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
	"github.com/a3tai/mcp-form-drafter/internal/retry"
)

const editURLFormat = "https://docs.google.com/forms/d/%s/edit"

// Created describes a published form.
type Created struct {
	FormID       string `json:"formId"`
	ResponderURI string `json:"responderUri"`
	EditURI      string `json:"editUri"`
	Items        int    `json:"items"`
}

// Client publishes drafts on behalf of a user holding an access token.
type Client struct {
	svc    *forms.Service
	policy retry.Policy
	log    *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRetryPolicy replaces the default transient-error retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// New creates a Client for accessToken. Extra client options are passed to
// the Forms service, e.g. an endpoint override.
func New(ctx context.Context, accessToken string, log *logger.Logger, clientOpts []option.ClientOption, opts ...Option) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, apperrors.New(apperrors.CodeAuthExpired, errors.New("missing access token"))
	}

	log = logger.OrNop(log).With("service", "googleforms.Client")
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	svc, err := forms.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(source)}, clientOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("forms service: %w", err)
	}

	c := &Client{svc: svc, policy: retry.Default(log, "googleforms"), log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create creates the form and applies the draft's batch. Both calls retry on
// transient network errors. A 401 from Google is reported as auth_expired.
func (c *Client) Create(ctx context.Context, d form.Draft) (Created, error) {
	created, err := retry.Do(ctx, c.named("forms.create"), func(ctx context.Context) (*forms.Form, error) {
		return c.svc.Forms.Create(NewForm(d)).Context(ctx).Do()
	})
	if err != nil {
		return Created{}, mapError("create form", err)
	}

	batch := &forms.BatchUpdateFormRequest{Requests: BuildRequests(d)}
	_, err = retry.Do(ctx, c.named("forms.batchUpdate"), func(ctx context.Context) (*forms.BatchUpdateFormResponse, error) {
		return c.svc.Forms.BatchUpdate(created.FormId, batch).Context(ctx).Do()
	})
	if err != nil {
		return Created{}, mapError("populate form "+created.FormId, err)
	}

	c.log.Info("form created", "form_id", created.FormId, "items", len(d.Questions), "quiz", d.IsQuiz)
	return Created{
		FormID:       created.FormId,
		ResponderURI: created.ResponderUri,
		EditURI:      fmt.Sprintf(editURLFormat, created.FormId),
		Items:        len(d.Questions),
	}, nil
}

func (c *Client) named(op string) retry.Policy {
	p := c.policy
	p.Name = op
	return p
}

func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return apperrors.New(apperrors.CodeAuthExpired, err)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return apperrors.New(apperrors.CodeAuthExpired, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
