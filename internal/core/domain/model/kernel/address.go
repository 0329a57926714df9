package kernel

import (
	"errors"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrAddressIsNotConstructed = errors.New("Address must be created via NewAddress")

// Address is the shipping destination of an order. Line1, city, zip and
// country are mandatory; line2 and state are optional.
type Address struct { //nolint:recvcheck //using for validation
	line1   string
	line2   string
	city    string
	state   string
	zip     string
	country string
	guard   guard.ConstructorGuard
}

func NewAddress(line1, line2, city, state, zip, country string) (Address, error) {
	a := Address{
		line1:   strings.TrimSpace(line1),
		line2:   strings.TrimSpace(line2),
		city:    strings.TrimSpace(city),
		state:   strings.TrimSpace(state),
		zip:     strings.TrimSpace(zip),
		country: strings.TrimSpace(country),
	}

	var err error
	for name, v := range map[string]string{
		"shipping address line1": a.line1,
		"shipping city":          a.city,
		"shipping zip":           a.zip,
		"shipping country":       a.country,
	} {
		if v == "" {
			err = errors.Join(err, errs.NewValueIsRequiredError(name))
		}
	}
	if err != nil {
		return Address{}, err
	}

	a.guard = guard.NewConstructorGuard()
	return a, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Line1() string   { return a.line1 }
func (a Address) Line2() string   { return a.line2 }
func (a Address) City() string    { return a.city }
func (a Address) State() string   { return a.state }
func (a Address) Zip() string     { return a.zip }
func (a Address) Country() string { return a.country }
