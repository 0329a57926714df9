package order

import (
	"errors"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment")

// Shipment is the carrier hand-off of an order. An order has at most one.
type Shipment struct {
	id                kernel.UUID
	trackingNumber    string
	carrier           string
	method            string
	estimatedDelivery time.Time
	shippedAt         time.Time

	isConstructed bool
}

func NewShipment(
	id kernel.UUID,
	trackingNumber, carrier, method string,
	estimatedDelivery, shippedAt time.Time,
) (*Shipment, error) {
	var err error
	if strings.TrimSpace(trackingNumber) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("tracking number"))
	}
	if strings.TrimSpace(carrier) == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("carrier"))
	}
	if err = errors.Join(err, id.Validate()); err != nil {
		return nil, err
	}

	return &Shipment{
		id:                id,
		trackingNumber:    trackingNumber,
		carrier:           carrier,
		method:            method,
		estimatedDelivery: estimatedDelivery,
		shippedAt:         shippedAt,
		isConstructed:     true,
	}, nil
}

func (s *Shipment) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrShipmentIsNotConstructed
	}
	return nil
}

func (s *Shipment) ID() kernel.UUID {
	return s.id
}

// TrackingNumber is prefixed by the category's shipping rule, e.g. ELEC-1A2B3C4D5E.
func (s *Shipment) TrackingNumber() string {
	return s.trackingNumber
}

func (s *Shipment) Carrier() string {
	return s.carrier
}

func (s *Shipment) Method() string {
	return s.method
}

func (s *Shipment) EstimatedDelivery() time.Time {
	return s.estimatedDelivery
}

func (s *Shipment) ShippedAt() time.Time {
	return s.shippedAt
}
