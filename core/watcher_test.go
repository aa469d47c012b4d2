package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatcher_Add(t *testing.T) {
	watcher := NewWatcher()

	watcher.Add(newFakeObserver())
	require.Equal(t, 1, watcher.Len())

	obs := newFakeObserver()
	watcher.Add(obs)
	require.Equal(t, 2, watcher.Len())

	watcher.Add(obs)
	require.Equal(t, 2, watcher.Len())
}

func TestWatcher_Remove(t *testing.T) {
	watcher := NewWatcher()

	first := newFakeObserver()
	watcher.Add(first)

	obs := newFakeObserver()
	watcher.Add(obs)

	watcher.Remove(obs)
	require.Equal(t, 1, watcher.Len())
	require.Equal(t, []Observer{first}, watcher.observers)

	watcher.Remove(obs)
	require.Equal(t, 1, watcher.Len())
}

func TestWatcher_Notify(t *testing.T) {
	watcher := NewWatcher()

	var order []int

	watcher.Add(&orderObserver{id: 1, order: &order})
	watcher.Add(&orderObserver{id: 2, order: &order})

	obs := newFakeObserver()
	watcher.Add(obs)

	watcher.Notify("event")
	require.Equal(t, "event", <-obs.ch)
	require.Equal(t, []int{1, 2}, order)
}

// -----------------------------------------------------------------------------
// Utility functions

type fakeObserver struct {
	ch chan interface{}
}

func (o *fakeObserver) NotifyCallback(evt interface{}) {
	o.ch <- evt
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{
		ch: make(chan interface{}, 1),
	}
}

type orderObserver struct {
	id    int
	order *[]int
}

func (o *orderObserver) NotifyCallback(interface{}) {
	*o.order = append(*o.order, o.id)
}
