package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/isd-etl-service/internal/domain"
)

// FanOutLoader loads every batch into each of its loaders, in order. The
// first failure aborts the batch; loaders that already succeeded will see
// the batch again on retry, so they must be idempotent.
type FanOutLoader []BatchLoader

func (f FanOutLoader) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	for i, l := range f {
		if err := l.LoadBatch(ctx, events); err != nil {
			return fmt.Errorf("loader %d: %w", i, err)
		}
	}
	return nil
}
