package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "admin", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.MemberID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(1, "user", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "s3cretpass"))
	assert.False(t, CheckPassword(hash, "wrongpass"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "s3cretpass"))
}

func TestCodes(t *testing.T) {
	ref := NewReferralCode()
	assert.Len(t, ref, 11)
	assert.Equal(t, "REF", ref[:3])

	pin := NewPinCode()
	assert.Len(t, pin, 15)
	assert.NotEqual(t, pin, NewPinCode())
}

func TestCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var got payload
	found, err := GetCache(ctx, rdb, "k:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k:1", payload{Name: "a"}, time.Minute))
	require.NoError(t, SetCache(ctx, rdb, "k:2", payload{Name: "b"}, time.Minute))
	found, err = GetCache(ctx, rdb, "k:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", got.Name)

	require.NoError(t, DeleteCachePrefix(ctx, rdb, "k:"))
	assert.False(t, mr.Exists("k:1"))
	assert.False(t, mr.Exists("k:2"))
}

func TestCacheNilClient(t *testing.T) {
	var got string
	found, err := GetCache(context.Background(), nil, "k", &got)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(context.Background(), nil, "k", "v", time.Minute))
	assert.NoError(t, DeleteCache(context.Background(), nil, "k"))
}
