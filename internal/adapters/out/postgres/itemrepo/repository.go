// Package itemrepo persists catalog items with GORM.
package itemrepo

import (
	"context"
	"errors"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/catalog"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemDTO struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SKU                   string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:items_sku_key"`
	Name                  string          `gorm:"type:varchar(255);not null"`
	Description           string          `gorm:"type:text;not null;default:''"`
	Category              string          `gorm:"type:varchar(50);not null"`
	Price                 decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RequiresRefrigeration bool            `gorm:"not null;default:false"`
	RequiresSignature     bool            `gorm:"not null;default:false"`
}

func (ItemDTO) TableName() string {
	return "items"
}

func fromDomain(item *catalog.Item) ItemDTO {
	return ItemDTO{
		ID:                    item.ID().Bytes(),
		SKU:                   item.SKU(),
		Name:                  item.Name(),
		Description:           item.Description(),
		Category:              item.Category().String(),
		Price:                 item.Price().Decimal(),
		RequiresRefrigeration: item.RequiresRefrigeration(),
		RequiresSignature:     item.RequiresSignature(),
	}
}

func toDomain(dto ItemDTO) (*catalog.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	price, err := kernel.NewMoney(dto.Price)
	if err != nil {
		return nil, err
	}
	return catalog.RestoreItem(id, dto.SKU, dto.Name, dto.Description, catalog.Category(dto.Category),
		price, dto.RequiresRefrigeration, dto.RequiresSignature)
}

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// Add inserts the item; a taken SKU becomes errs.AlreadyExistsError.
func (r *GormItemRepository) Add(ctx context.Context, item *catalog.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	dto := fromDomain(item)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.MapUnique(err, "sku", item.SKU())
	}
	return nil
}

func (r *GormItemRepository) Get(ctx context.Context, id kernel.UUID) (*catalog.Item, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ItemDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("item", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
