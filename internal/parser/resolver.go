package parser

import (
	"context"
	"strings"

	"github.com/pbaille/grocer/internal/domain"
	"github.com/pbaille/grocer/internal/pkg/logger"
)

// Resolver turns raw utterances into intents. It prefers the parse service
// and routes every failure into the local heuristic, so callers never see
// an upstream error.
type Resolver struct {
	client *Client // nil means offline-only
	log    *logger.Logger
}

// NewResolver creates a Resolver. Pass a nil client to resolve locally only.
func NewResolver(client *Client, log *logger.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// Resolve never fails. Blank text (a cancelled or empty voice capture) is
// answered directly without contacting the service.
func (r *Resolver) Resolve(ctx context.Context, text, language string) domain.Intent {
	if strings.TrimSpace(text) == "" {
		return domain.Intent{
			Kind:     domain.IntentUnknown,
			Quantity: 1,
			Speech:   "I did not catch that.",
		}
	}

	if r.client != nil {
		intent, err := r.client.Parse(ctx, text, language)
		if err == nil {
			return intent
		}
		r.log.Debug("parse service unavailable, using local fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return Fallback(text)
}
