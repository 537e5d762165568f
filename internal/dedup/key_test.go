package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Run("identical inventory payloads derive the same key", func(t *testing.T) {
		body := []byte(`{"inventory_item_id":123,"location_id":1,"available":5,"updated_at":"2024-05-01T10:00:00Z"}`)

		k1, err := Key("inventory_levels/update", body)
		require.NoError(t, err)
		k2, err := Key("inventory_levels/update", body)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})

	t.Run("different update timestamps derive different keys", func(t *testing.T) {
		k1, err := Key("inventory_levels/update", []byte(`{"inventory_item_id":123,"updated_at":"T1"}`))
		require.NoError(t, err)
		k2, err := Key("inventory_levels/update", []byte(`{"inventory_item_id":123,"updated_at":"T2"}`))
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("order events key on order id and timestamp", func(t *testing.T) {
		body := []byte(`{"id":450789469,"name":"#1001","created_at":"2024-05-01T10:00:00Z","updated_at":"2024-05-01T10:00:00Z"}`)

		k1, err := Key("orders/paid", body)
		require.NoError(t, err)
		k2, err := Key("orders/paid", body)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})

	t.Run("cancellation is not a duplicate of the paid event", func(t *testing.T) {
		paid := []byte(`{"id":450789469,"name":"#1001","created_at":"T0","updated_at":"T0"}`)
		cancelled := []byte(`{"id":450789469,"name":"#1001","created_at":"T0","updated_at":"T5","cancelled_at":"T5"}`)

		k1, err := Key("orders/paid", paid)
		require.NoError(t, err)
		k2, err := Key("orders/cancelled", cancelled)
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("refunds key on order_id", func(t *testing.T) {
		k1, err := Key("refunds/create", []byte(`{"id":1,"order_id":42,"created_at":"T1"}`))
		require.NoError(t, err)
		k2, err := Key("refunds/create", []byte(`{"id":1,"order_id":42,"created_at":"T1"}`))
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		_, err := Key("orders/paid", []byte("{"))
		assert.Error(t, err)
	})
}
