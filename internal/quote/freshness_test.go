package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFresh(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	assert.True(t, Fresh(now.Add(-time.Minute), now, ttl))
	assert.True(t, Fresh(now.Add(-ttl+time.Second), now, ttl))
	assert.False(t, Fresh(now.Add(-ttl), now, ttl))
	assert.False(t, Fresh(now.Add(-time.Hour), now, ttl))

	// Clock skew: a future timestamp never triggers a redundant fetch.
	assert.True(t, Fresh(now.Add(time.Minute), now, ttl))
}
