package widget

import (
	"sync"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
)

// Registry keeps one Widget per entity so re-rendering the same control
// never spawns a second in-flight submission.
type Registry struct {
	deps Deps

	mu      sync.Mutex
	widgets map[rating.EntityKey]*Widget
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps.withDefaults(), widgets: map[rating.EntityKey]*Widget{}}
}

// Bind returns the widget for the snapshot's entity, refreshed from the
// snapshot unless a submission is in flight. Snapshots without both ids get
// a throwaway widget that can never submit.
func (r *Registry) Bind(state rating.WidgetState) *Widget {
	if !state.CanSubmit() {
		return New(state, r.deps)
	}
	key := state.Key()

	r.mu.Lock()
	w, ok := r.widgets[key]
	if !ok {
		w = New(state, r.deps)
		r.widgets[key] = w
	}
	r.mu.Unlock()

	if ok {
		w.Resync(state)
	}
	return w
}

func (r *Registry) Get(key rating.EntityKey) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[key]
	return w, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}
