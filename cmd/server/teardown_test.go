package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeardown_WaitsForWorkersThenClosesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	td := &teardown{cancel: cancel}

	var order []string
	td.goTracked(func() {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond) // a sweep still finishing
		order = append(order, "janitor")
	})
	td.onClose(func() { order = append(order, "store") })
	td.onClose(func() { order = append(order, "events") })
	td.onClose(func() { order = append(order, "redis") })

	td.run()
	assert.Equal(t, []string{"janitor", "store", "events", "redis"}, order)
}

func TestTeardown_Empty(t *testing.T) {
	(&teardown{}).run()
}
