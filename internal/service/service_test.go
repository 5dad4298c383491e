package service

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db/dbtest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// Now returns a strictly increasing instant on every call.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testServices struct {
	notes      *Notes
	categories *Categories
	tags       *Tags
}

func newTestServices(t *testing.T) testServices {
	t.Helper()

	gdb := dbtest.NewSQLite(t)
	l := zap.NewNop().Sugar()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}

	s := testServices{
		notes:      NewNotes(gdb, l),
		categories: NewCategories(gdb, l),
		tags:       NewTags(gdb, l),
	}
	s.notes.now = clock.Now
	s.categories.now = clock.Now
	s.tags.now = clock.Now
	return s
}

func strPtr(s string) *string {
	return &s
}
