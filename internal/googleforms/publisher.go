package googleforms

import (
	"context"

	"google.golang.org/api/option"

	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

// Publisher creates forms on behalf of whoever holds accessToken.
type Publisher interface {
	Publish(ctx context.Context, accessToken string, d form.Draft) (Created, error)
}

// ServicePublisher builds a Client per call, since every caller brings
// their own token.
type ServicePublisher struct {
	clientOpts []option.ClientOption
	opts       []Option
	log        *logger.Logger
}

// NewPublisher creates a ServicePublisher. clientOpts and opts are applied to
// every Client it builds.
func NewPublisher(log *logger.Logger, clientOpts []option.ClientOption, opts ...Option) *ServicePublisher {
	return &ServicePublisher{clientOpts: clientOpts, opts: opts, log: logger.OrNop(log)}
}

// Publish creates the form for d.
func (p *ServicePublisher) Publish(ctx context.Context, accessToken string, d form.Draft) (Created, error) {
	c, err := New(ctx, accessToken, p.log, p.clientOpts, p.opts...)
	if err != nil {
		return Created{}, err
	}
	return c.Create(ctx, d)
}
