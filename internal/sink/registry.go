package sink

import (
	"log"
	"sync"
)

// Sink consumes applied pose frames. Send must be safe to call from the
// pipeline goroutine; a Sink that returns an error is closed and removed
// from the registry.
type Sink interface {
	Name() string
	Send(frame *Frame) error
	Close() error
}

// Registry fans frames out to every registered sink.
type Registry struct {
	mu    sync.Mutex
	sinks map[string]Sink
}

// NewRegistry creates an empty sink registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]Sink)}
}

// Add registers a sink under its name, replacing and closing any previous
// sink with the same name.
func (r *Registry) Add(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sinks[s.Name()]; ok {
		if err := old.Close(); err != nil {
			log.Printf("sink %s: close: %v", old.Name(), err)
		}
	}
	r.sinks[s.Name()] = s
}

// Remove closes and unregisters the named sink. Unknown names are a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sinks[name]
	if !ok {
		return
	}
	delete(r.sinks, name)
	if err := s.Close(); err != nil {
		log.Printf("sink %s: close: %v", name, err)
	}
}

// Names returns the registered sink names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	return names
}

// Publish sends the frame to every sink. Sinks that fail are dropped so
// one broken consumer cannot stall the pipeline.
func (r *Registry) Publish(frame *Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, s := range r.sinks {
		if err := s.Send(frame); err != nil {
			log.Printf("sink %s: send failed, removing: %v", name, err)
			delete(r.sinks, name)
			if cerr := s.Close(); cerr != nil {
				log.Printf("sink %s: close: %v", name, cerr)
			}
		}
	}
}

// Close shuts down every sink and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, s := range r.sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink %s: close: %v", name, err)
		}
		delete(r.sinks, name)
	}
}
