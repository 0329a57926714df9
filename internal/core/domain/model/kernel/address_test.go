package kernel_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("trims and keeps optional parts", func(t *testing.T) {
		a, err := kernel.NewAddress(" 1 Main St ", "", "Springfield", "", "12345", "US")
		require.NoError(t, err)
		require.NoError(t, a.Validate())
		assert.Equal(t, "1 Main St", a.Line1())
		assert.Empty(t, a.Line2())
		assert.Equal(t, "US", a.Country())
	})

	t.Run("reports every missing mandatory part", func(t *testing.T) {
		_, err := kernel.NewAddress("", "", "", "", "", "")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "shipping city")
		assert.Contains(t, err.Error(), "shipping country")
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var a kernel.Address
		assert.Equal(t, kernel.ErrAddressIsNotConstructed, a.Validate())
	})
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := kernel.NewFixedClock(start)

	assert.Equal(t, start, clock.Now())
	clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), clock.Now())
}
