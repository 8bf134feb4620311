package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaveGuard_OnePerPage(t *testing.T) {
	var g saveGuard

	assert.True(t, g.TryLock("home"))
	assert.False(t, g.TryLock("home"), "second save of the same page")
	assert.True(t, g.TryLock("about"), "other pages are independent")
	assert.True(t, g.Busy("home"))

	g.Unlock("home")
	g.Unlock("home") // no claim left; ignored
	assert.False(t, g.Busy("home"))
	assert.True(t, g.TryLock("home"))

	g.Unlock("home")
	g.Unlock("about")
}

func TestSaveGuard_WaitAll(t *testing.T) {
	var g saveGuard
	assert.True(t, g.TryLock("home"))

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("home")
	}()

	done := make(chan struct{})
	go func() {
		g.WaitAll(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitAll did not return after the save finished")
	}
}

func TestSaveGuard_WaitAllHonoursContext(t *testing.T) {
	var g saveGuard
	assert.True(t, g.TryLock("home"))
	defer g.Unlock("home")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	g.WaitAll(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
