package guard_test

import (
	"errors"
	"testing"

	"orderflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("reservation not constructed")

	t.Run("constructed_guard_passes", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_given_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(errNotConstructed)

		// Then
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero_value_falls_back_to_default_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type sku struct {
		code  string
		guard guard.ConstructorGuard
	}
	errSkuNotConstructed := errors.New("sku must be created via newSku")

	newSku := func(code string) (sku, error) {
		if code == "" {
			return sku{}, errors.New("sku code is required")
		}
		return sku{code: code, guard: guard.NewConstructorGuard()}, nil
	}

	s, err := newSku("ELEC-001")
	require.NoError(t, err)
	require.NoError(t, s.guard.Validate(errSkuNotConstructed))

	_, err = newSku("")
	require.Error(t, err)

	var zero sku
	assert.Equal(t, errSkuNotConstructed, zero.guard.Validate(errSkuNotConstructed))
}
