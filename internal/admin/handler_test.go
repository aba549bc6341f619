// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCounts(counts map[string]int64) func(context.Context, string) (int64, error) {
	return func(_ context.Context, pattern string) (int64, error) {
		n, ok := counts[pattern]
		if !ok {
			return 0, errors.New("unexpected pattern " + pattern)
		}
		return n, nil
	}
}

func TestGetRedisStatsReportsSessionKeyCounts(t *testing.T) {
	h := NewHandler(HandlerConfig{
		CountKeys: fixedCounts(map[string]int64{
			"user:id:*":    7,
			"user:email:*": 7,
			"user:perms:*": 5,
			"login:lock:*": 2,
		}),
	})

	rec := httptest.NewRecorder()
	h.GetRedisStats(rec, httptest.NewRequest("GET", "/admin/stats/redis", nil))

	var body struct {
		Data RedisStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	keys := body.Data.SessionKeys
	require.NotNil(t, keys)
	assert.Equal(t, int64(7), keys.Identities)
	assert.Equal(t, int64(7), keys.EmailAliases)
	assert.Equal(t, int64(5), keys.PermissionSets)
	assert.Equal(t, int64(2), keys.LoginLocks)
}

func TestGetRedisStatsOmitsKeyCountsOnScanFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		CountKeys: func(_ context.Context, _ string) (int64, error) {
			return 0, errors.New("connection refused")
		},
	})

	rec := httptest.NewRecorder()
	h.GetRedisStats(rec, httptest.NewRequest("GET", "/admin/stats/redis", nil))

	var body struct {
		Data RedisStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.Data.SessionKeys)
}

func TestGetSystemStatsCarriesSessionKeyCounts(t *testing.T) {
	h := NewHandler(HandlerConfig{
		CountKeys: fixedCounts(map[string]int64{
			"user:id:*":    1,
			"user:email:*": 1,
			"user:perms:*": 0,
			"login:lock:*": 0,
		}),
	})

	rec := httptest.NewRecorder()
	h.GetSystemStats(rec, httptest.NewRequest("GET", "/admin/stats", nil))

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.NotNil(t, body.Data.Redis.SessionKeys)
	assert.Equal(t, int64(1), body.Data.Redis.SessionKeys.Identities)
	assert.True(t, body.Data.Database.Healthy)
}
