package ports

import (
	"context"

	"trickplay/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item domain.LibraryItem) error
	Update(ctx context.Context, item domain.LibraryItem) error
	Get(ctx context.Context, id domain.ItemID) (domain.LibraryItem, error)
	List(ctx context.Context) ([]domain.LibraryItem, error)
	Delete(ctx context.Context, id domain.ItemID) error
}
