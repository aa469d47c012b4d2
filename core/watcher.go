// Package core implements the tools shared by the components of the runtime.
package core

import "sync"

// Observer is the interface to implement to be notified of the events of a
// component.
type Observer interface {
	NotifyCallback(event interface{})
}

// Observable provides primitives to register observers and to notify them of
// new events.
type Observable interface {
	// Add registers the observer. Adding an observer twice has no effect.
	Add(observer Observer)

	// Remove unregisters the observer.
	Remove(observer Observer)

	// Notify delivers the event to every registered observer.
	Notify(event interface{})
}

// Watcher is an implementation of the Observable interface that notifies the
// observers in the order of registration.
//
// - implements core.Observable
type Watcher struct {
	sync.RWMutex

	observers []Observer
}

// NewWatcher creates a new empty watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Len returns the number of registered observers.
func (w *Watcher) Len() int {
	w.RLock()
	defer w.RUnlock()

	return len(w.observers)
}

// Add implements core.Observable.
func (w *Watcher) Add(observer Observer) {
	w.Lock()
	defer w.Unlock()

	if w.indexOf(observer) >= 0 {
		return
	}

	w.observers = append(w.observers, observer)
}

// Remove implements core.Observable.
func (w *Watcher) Remove(observer Observer) {
	w.Lock()
	defer w.Unlock()

	index := w.indexOf(observer)
	if index < 0 {
		return
	}

	w.observers = append(w.observers[:index], w.observers[index+1:]...)
}

// Notify implements core.Observable. The observers are called synchronously,
// one after the other.
func (w *Watcher) Notify(event interface{}) {
	w.RLock()
	observers := append([]Observer{}, w.observers...)
	w.RUnlock()

	for _, obs := range observers {
		obs.NotifyCallback(event)
	}
}

func (w *Watcher) indexOf(observer Observer) int {
	for i, obs := range w.observers {
		if obs == observer {
			return i
		}
	}

	return -1
}
