package overlay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	testCases := []struct {
		in   string
		want Request
		ok   bool
	}{
		{"toggle", RequestToggle, true},
		{"  TOGGLE\n", RequestToggle, true},
		{"launcher", RequestShow, true},
		{"show", RequestShow, true},
		{"hide", RequestHide, true},
		{"statusbar:foo", RequestToggle, false},
		{"", RequestToggle, false},
	}
	for _, tc := range testCases {
		got, ok := ParseRequest(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestToggleQueueReplaysRequestsSubmittedBeforeBind(t *testing.T) {
	q := NewToggleQueue(4)
	q.RequestToggle()
	q.Submit(RequestHide)
	require.Equal(t, 2, q.Pending())

	woken := 0
	q.Bind(func() { woken++ })
	assert.Equal(t, 1, woken, "bind replays pending requests")

	var applied []Request
	assert.Equal(t, 2, q.Drain(func(r Request) { applied = append(applied, r) }))
	assert.Equal(t, []Request{RequestToggle, RequestHide}, applied)
	assert.Equal(t, 0, q.Pending())

	q.Bind(func() { woken++ })
	assert.Equal(t, 1, woken, "nothing pending, nothing to replay")
}

func TestToggleQueueDropsWhenFull(t *testing.T) {
	q := NewToggleQueue(1)
	assert.True(t, q.Submit(RequestToggle))
	assert.False(t, q.Submit(RequestToggle))
	assert.Equal(t, 1, q.Drain(func(Request) {}))
}

func TestToggleQueueDrivesControllerFromManyGoroutines(t *testing.T) {
	c, _, _ := newTestController(t, threeApps())
	q := NewToggleQueue(64)

	// the "UI thread" is whoever drains; wake just signals it
	wake := make(chan struct{}, 64)
	q.Bind(func() { wake <- struct{}{} })

	const producers = 8
	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.RequestToggle()
		}()
	}
	wg.Wait()

	applied := q.Drain(c.Apply)
	assert.Equal(t, producers, applied)
	assert.Equal(t, Closed, c.State(), "an even number of toggles ends closed")
	assert.Len(t, wake, producers)
}
