package ports

import (
	"context"

	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
)

// ItemRepository stores catalog items. SKUs are unique.
type ItemRepository interface {
	Add(ctx context.Context, item *catalog.Item) error
	Get(ctx context.Context, id kernel.UUID) (*catalog.Item, error)
}
