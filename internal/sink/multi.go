package sink

import (
	"context"

	"github.com/baxromumarov/pharma-pricer/internal/core"
	"github.com/baxromumarov/pharma-pricer/internal/model"
)

// Multi fans every call out to its sinks in order and stops at the first
// error.
type Multi []core.Sink

func (m Multi) Reset(ctx context.Context) error {
	for _, s := range m {
		if err := s.Reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Append(ctx context.Context, rec model.OutputRecord) error {
	for _, s := range m {
		if err := s.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
