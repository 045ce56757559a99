package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewCache(t *testing.T) {
	views := New()

	_, ok := views.Get(EventListView)
	assert.False(t, ok)

	views.Set(EventListView, []byte(`[]`))
	data, ok := views.Get(EventListView)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), data)

	views.Set(EventView("e1"), []byte(`{}`))
	views.Set(ProfileView("u1"), []byte(`{}`))
	assert.Equal(t, 3, views.Len())

	// Invalidation drops only the named views
	views.Invalidate(EventListView, EventView("e1"))
	_, ok = views.Get(EventListView)
	assert.False(t, ok)
	_, ok = views.Get(ProfileView("u1"))
	assert.True(t, ok)

	// Invalidating an absent view is harmless
	views.Invalidate("never-set")
	assert.Equal(t, 1, views.Len())
}

func TestViewKeys(t *testing.T) {
	assert.Equal(t, "events:e1", EventView("e1"))
	assert.Equal(t, "profile:u1", ProfileView("u1"))
	assert.NotEqual(t, EventView("x"), ProfileView("x"))
}
