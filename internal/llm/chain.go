package llm

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// Chain tries providers in order and returns the first success.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

func (c *Chain) Len() int { return len(c.providers) }

func (c *Chain) Recognize(ctx context.Context, img core.Image, prompt string) (*core.Recognition, error) {
	if len(img.Data) == 0 {
		return nil, core.ErrMissingImage
	}
	if len(c.providers) == 0 {
		return nil, &core.UpstreamError{Op: "recognize", Err: errors.New("no recognition provider configured")}
	}

	var errs []error
	for _, p := range c.providers {
		rec, err := p.Recognize(ctx, img, prompt)
		if err == nil {
			return rec, nil
		}

		log.Warn().Err(err).Str("provider", p.Name()).Msg("recognition failed, trying next provider")
		errs = append(errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &core.UpstreamError{Op: "recognize", Err: errors.Join(errs...)}
}
