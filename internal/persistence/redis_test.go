package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, ttl), mr
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestRedis_Load_Success(t *testing.T) {
	p, mr := setupTestRedis(t, 0)
	require.NoError(t, mr.Set("clientstate:cart-storage:s1", `{"schema_version":1,"items":[]}`))

	got, err := p.Load(context.Background(), "cart-storage:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema_version":1,"items":[]}`, string(got))
}

func TestRedis_Load_NotFound(t *testing.T) {
	p, _ := setupTestRedis(t, 0)

	got, err := p.Load(context.Background(), "cart-storage:missing")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRedis_Load_ServerError(t *testing.T) {
	p, mr := setupTestRedis(t, 0)
	mr.SetError("ERR injected failure")

	_, err := p.Load(context.Background(), KeyCart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get state")
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestRedis_Save_WritesPrefixedKey(t *testing.T) {
	p, mr := setupTestRedis(t, 0)

	require.NoError(t, p.Save(context.Background(), KeyWishlist, []byte(`[]`)))

	assert.True(t, mr.Exists("clientstate:wishlist-storage"))
	raw, err := mr.Get("clientstate:wishlist-storage")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.Zero(t, mr.TTL("clientstate:wishlist-storage"))
}

func TestRedis_Save_TTL(t *testing.T) {
	p, mr := setupTestRedis(t, 24*time.Hour)

	require.NoError(t, p.Save(context.Background(), KeyCart, []byte(`[]`)))

	ttl := mr.TTL("clientstate:cart-storage")
	assert.True(t, ttl > 23*time.Hour, "expected TTL > 23h, got %v", ttl)
	assert.True(t, ttl <= 24*time.Hour, "expected TTL <= 24h, got %v", ttl)
}

func TestRedis_SaveThenLoad(t *testing.T) {
	p, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	blob, err := Encode([]sample{{ProductID: "p1", Quantity: 4}}, time.Now())
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx, KeyCart, blob))

	got, err := p.Load(ctx, KeyCart)
	require.NoError(t, err)
	items, _, err := Decode[sample](got)
	require.NoError(t, err)
	assert.Equal(t, []sample{{ProductID: "p1", Quantity: 4}}, items)
	assert.NoError(t, p.Ping(ctx))
}
