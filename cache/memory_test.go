package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	memory, err := NewMemory(DefaultMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = memory.Close() })
	return memory
}

// --- 测试内存缓存 ---

func TestMemory_SetAndGet(t *testing.T) {
	memory := newTestMemory(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, memory.Set(ctx, "key", payload{Name: "a", Count: 2}, time.Minute))

	var got payload
	require.NoError(t, memory.Get(ctx, "key", &got))
	assert.Equal(t, payload{Name: "a", Count: 2}, got)
}

func TestMemory_Miss(t *testing.T) {
	memory := newTestMemory(t)

	var got string
	err := memory.Get(context.Background(), "absent", &got)
	assert.True(t, IsCacheMiss(err))
}

func TestMemory_Delete(t *testing.T) {
	memory := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, memory.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, memory.Delete(ctx, "key"))

	var got string
	assert.True(t, IsCacheMiss(memory.Get(ctx, "key", &got)))
}

func TestMemory_Name(t *testing.T) {
	assert.Equal(t, "memory", newTestMemory(t).Name())
}
