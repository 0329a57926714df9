package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects aggregates whose events are published after commit.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order together with its lines, approvals and shipment.
// A taken order number becomes errs.AlreadyExistsError.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.MapUnique(err, "order number", aggregate.Number())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update overwrites the order row and upserts its children. Lines and
// approvals are never removed from an order, so nothing is deleted here.
//
// The row is written only if it is still at aggregate.Version(). Otherwise
// another unit of work saved the order since it was loaded, and Update returns
// errs.VersionIsInvalidError without writing anything:
//
//	o, _ := repo.Get(ctx, id)          // version 3
//	_ = o.StartValidation(clock.Now())
//	err := repo.Update(ctx, o)         // a concurrent cancel moved the row to 4
//	errors.Is(err, errs.ErrVersionIsInvalid) // true
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit(clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate)
	}

	upsert := db.Clauses(clause.OnConflict{UpdateAll: true})
	if len(dto.Items) > 0 {
		if err := upsert.Create(&dto.Items).Error; err != nil {
			return err
		}
	}
	if len(dto.Approvals) > 0 {
		if err := upsert.Create(&dto.Approvals).Error; err != nil {
			return err
		}
	}
	if dto.Shipment != nil {
		if err := upsert.Create(dto.Shipment).Error; err != nil {
			return pgerrs.MapUnique(err, "tracking number", dto.Shipment.TrackingNumber)
		}
	}

	aggregate.IncrementVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) missingOrStale(ctx context.Context, aggregate *order.Order) error {
	var stored []int
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		Pluck("version", &stored).Error
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return errs.NewVersionIsInvalidError("order",
		fmt.Errorf("order %s loaded at version %d, stored at %d", aggregate.Number(), aggregate.Version(), stored[0]))
}

// Get loads an order with its lines, approvals and shipment.
//
// Example:
//
//	o, err := uow.OrderRepository().Get(ctx, orderID)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return err
//	}
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, id.String(), "id = ?", id.Bytes())
}

func (r *GormOrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	if number == "" {
		return nil, errs.NewValueIsRequiredError("order number")
	}
	return r.first(ctx, number, "order_number = ?", number)
}

func (r *GormOrderRepository) first(ctx context.Context, key string, query string, args ...any) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("decided_at, id") }).
		Preload("Shipment").
		Where(query, args...).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", key)
		}
		return nil, err
	}

	return toDomain(dto)
}
