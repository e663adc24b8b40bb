package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// ErrSinkNotFound is returned when a requested sink cannot be found.
var ErrSinkNotFound = errors.New("sink not found")

// Discovered is an external sink found on disk: its manifest plus the
// resolved executable path.
type Discovered struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Manager discovers external sinks. Each subdirectory of the sink
// directory holding a sink.json manifest is one sink.
type Manager struct {
	sinkDir string
	sinks   map[string]*Discovered
	mu      sync.RWMutex
}

// NewManager creates a sink Manager scanning the given directory.
func NewManager(sinkDir string) *Manager {
	return &Manager{
		sinkDir: sinkDir,
		sinks:   make(map[string]*Discovered),
	}
}

// Discover rescans the sink directory. A missing directory is not an
// error; unreadable or malformed manifests are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sinks = make(map[string]*Discovered)

	info, err := os.Stat(m.sinkDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.sinkDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		sinkPath := filepath.Join(m.sinkDir, entry.Name())
		manifestPath := filepath.Join(sinkPath, "sink.json")

		manifestData, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			continue
		}

		m.sinks[manifest.Name] = &Discovered{
			Manifest:   manifest,
			Path:       sinkPath,
			Executable: filepath.Join(sinkPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a discovered sink by name.
func (m *Manager) Get(name string) (*Discovered, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.sinks[name]
	if !ok {
		return nil, ErrSinkNotFound
	}
	return d, nil
}

// List returns every discovered sink.
func (m *Manager) List() []*Discovered {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Discovered, 0, len(m.sinks))
	for _, d := range m.sinks {
		out = append(out, d)
	}
	return out
}

// SinkDir returns the directory the manager scans.
func (m *Manager) SinkDir() string {
	return m.sinkDir
}

// ProcessSink runs a discovered sink as a long-lived child process and
// streams frames to it as JSON lines on stdin. The child's stderr is
// inherited so its diagnostics reach the application log.
type ProcessSink struct {
	name string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   *json.Encoder
	closer  interface{ Close() error }
	stopped bool
}

// StartProcess launches the sink's executable with its directory as the
// working directory.
func StartProcess(d *Discovered) (*ProcessSink, error) {
	cmd := exec.Command(d.Executable)
	cmd.Dir = d.Path
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open sink stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start sink %s: %w", d.Manifest.Name, err)
	}

	return &ProcessSink{
		name:   d.Manifest.Name,
		cmd:    cmd,
		stdin:  json.NewEncoder(stdin),
		closer: stdin,
	}, nil
}

// Name returns the sink's manifest name.
func (p *ProcessSink) Name() string {
	return p.name
}

// Send writes one frame as a JSON line. A write failure usually means the
// child exited; the caller should close and drop this sink.
func (p *ProcessSink) Send(frame *Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return fmt.Errorf("sink %s is closed", p.name)
	}
	if err := p.stdin.Encode(frame); err != nil {
		return fmt.Errorf("failed to write frame to sink %s: %w", p.name, err)
	}
	return nil
}

// Close ends the frame stream and waits for the child to exit. Closing
// stdin is the shutdown signal; well-behaved sinks exit on EOF.
func (p *ProcessSink) Close() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	if err := p.closer.Close(); err != nil {
		p.cmd.Process.Kill()
		p.cmd.Wait()
		return fmt.Errorf("failed to close sink %s stdin: %w", p.name, err)
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("sink %s exited: %w", p.name, err)
	}
	return nil
}
