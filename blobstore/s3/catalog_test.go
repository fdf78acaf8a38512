package s3

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/navigo/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Current_Empty(t *testing.T) {
	c := NewCatalog(newMockDDBClient(), "navigo-graphs")

	_, err := c.Current(context.Background(), "bw")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCatalog_PublishIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(newMockDDBClient(), "navigo-graphs")
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	first, err := c.Publish(ctx, "bw", "graphs/bw-1.bin")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Version)

	second, err := c.Publish(ctx, "bw", "graphs/bw-2.bin")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Version)

	cur, err := c.Current(ctx, "bw")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cur.Version)
	assert.Equal(t, "graphs/bw-2.bin", cur.Key)
	assert.True(t, fixed.Equal(cur.PublishedAt))

	_, err = c.Current(ctx, "by")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCatalog_ConcurrentPublish(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	c := NewCatalog(ddb, "navigo-graphs")

	const publishers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		lostErr int
	)
	for range publishers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Publish(ctx, "bw", "graphs/bw.bin")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				won++
			} else if assert.ErrorIs(t, err, ErrConcurrentModification) {
				lostErr++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, publishers, won+lostErr)
	cur, err := c.Current(ctx, "bw")
	require.NoError(t, err)
	assert.Equal(t, uint64(won), cur.Version)
}
