package queries

import (
	"context"
	"database/sql"
	"errors"

	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

type CheckAvailabilityQueryHandler struct {
	db *gorm.DB
}

func NewCheckAvailabilityQueryHandler(db *gorm.DB) CheckAvailabilityQueryHandler {
	return CheckAvailabilityQueryHandler{db: db}
}

// Handle reports the ledger counts of one item and whether the requested
// quantity is available. An item without ledger row is errs.ObjectNotFoundError.
func (h CheckAvailabilityQueryHandler) Handle(
	ctx context.Context,
	query CheckAvailabilityQuery,
) (AvailabilityView, error) {
	if err := query.Validate(); err != nil {
		return AvailabilityView{}, err
	}

	view := AvailabilityView{ItemID: query.ItemID(), Requested: query.Quantity()}
	err := h.db.WithContext(ctx).Raw(`
		SELECT quantity_available, quantity_reserved
		FROM inventory
		WHERE item_id = ?
	`, query.ItemID().Bytes()).Row().Scan(&view.Available, &view.Reserved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AvailabilityView{}, errs.NewObjectNotFoundError("inventory", query.ItemID().String())
		}
		return AvailabilityView{}, err
	}

	view.Sufficient = view.Available >= view.Requested
	return view, nil
}
