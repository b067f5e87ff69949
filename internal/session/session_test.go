package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricepoint-backend/internal/domain"
	"pricepoint-backend/internal/store"
)

func newKV(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_Empty(t *testing.T) {
	s, err := Load(context.Background(), newKV(t), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaPublic, s.Persona())
	assert.Equal(t, 0, s.Cart().Len())
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)

	s, err := Load(ctx, kv, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Login(ctx, domain.PersonaPublic), domain.ErrInvalidInput)
	require.NoError(t, s.Login(ctx, domain.PersonaSalesManager))

	s.Cart().Add(domain.CartItem{ID: "a", ProductID: "vm-basic", Quantity: 2, UnitPrice: 50, TotalPrice: 100})
	require.NoError(t, s.SaveCart(ctx))

	// новый процесс видит то же состояние
	again, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaSalesManager, again.Persona())
	require.Equal(t, 1, again.Cart().Len())
	assert.InDelta(t, 100.0, again.Cart().Total(), 0.001)

	require.NoError(t, again.Logout(ctx))
	assert.Equal(t, domain.PersonaPublic, again.Persona())
	assert.Equal(t, 0, again.Cart().Len())

	after, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaPublic, after.Persona())
	assert.Equal(t, 0, after.Cart().Len())
}

func TestLoad_BrokenValues(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	require.NoError(t, kv.Put(ctx, KeyPersona, "ROOT"))
	require.NoError(t, kv.Put(ctx, KeyCart, "{not json"))

	s, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.PersonaPublic, s.Persona())
	assert.Equal(t, 0, s.Cart().Len())
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	s, err := Load(ctx, kv, nil)
	require.NoError(t, err)

	s.Cart().Add(domain.CartItem{ID: "a", Quantity: 1})
	require.NoError(t, s.SaveCart(ctx))
	require.NoError(t, s.ClearCart(ctx))

	_, ok, err := kv.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}
