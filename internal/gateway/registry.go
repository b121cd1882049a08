package gateway

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"opshub/internal/logging"
)

// Registry caches live sessions keyed by (server name, target script) so
// repeated calls do not re-spawn the subprocess. It is shared across request
// goroutines; all map access is synchronized.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*registryEntry

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// lastUsed is atomic so the read-locked fast path in Get can touch it
// while the cleanup routine reads it.
type registryEntry struct {
	session  *Session
	lastUsed atomic.Int64
}

func (e *registryEntry) touch() {
	e.lastUsed.Store(time.Now().UnixNano())
}

// NewRegistry creates the registry and starts its stale-session cleanup
// routine.
func NewRegistry() *Registry {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	r := &Registry{
		sessions:       make(map[string]*registryEntry),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	go r.cleanupRoutine()
	return r
}

func sessionKey(name, command string, args []string) string {
	return name + "|" + command + " " + strings.Join(args, " ")
}

// Get returns a cached session for the given server, opening one if needed.
// Concurrent callers racing to open the same server resolve to a single
// cached session; the loser's connection is closed.
func (r *Registry) Get(ctx context.Context, name, command string, args ...string) (*Session, error) {
	key := sessionKey(name, command, args)

	r.mu.RLock()
	if entry, exists := r.sessions[key]; exists {
		entry.touch()
		r.mu.RUnlock()
		return entry.session, nil
	}
	r.mu.RUnlock()

	// Open outside the lock so a slow handshake does not block other servers.
	session, err := Open(ctx, name, command, args...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have opened the session while we handshook.
	if existing, exists := r.sessions[key]; exists {
		session.Close()
		existing.touch()
		return existing.session, nil
	}

	entry := &registryEntry{session: session}
	entry.touch()
	r.sessions[key] = entry
	logging.Info("Opened tool server session %s", name)
	return session, nil
}

// Invalidate drops and closes the cached session for a server, forcing the
// next Get to respawn it. Called after a transport failure so a dead
// subprocess is not reused.
func (r *Registry) Invalidate(name, command string, args ...string) {
	key := sessionKey(name, command, args)

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, exists := r.sessions[key]; exists {
		entry.session.Close()
		delete(r.sessions, key)
		logging.Debug("Invalidated tool server session %s", name)
	}
}

// Shutdown closes every cached session and stops the cleanup routine.
func (r *Registry) Shutdown() {
	r.shutdownCancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.sessions {
		entry.session.Close()
		delete(r.sessions, key)
	}
}

func (r *Registry) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.shutdownCtx.Done():
			return
		case <-ticker.C:
			r.cleanupStaleSessions()
		}
	}
}

func (r *Registry) cleanupStaleSessions() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for key, entry := range r.sessions {
		if time.Unix(0, entry.lastUsed.Load()).Before(cutoff) {
			logging.Info("Closing stale tool server session %s", entry.session.Name())
			entry.session.Close()
			delete(r.sessions, key)
		}
	}
}

// Stats reports the live session count, mainly for the health endpoint.
func (r *Registry) Stats() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sessions))
	for _, entry := range r.sessions {
		names = append(names, entry.session.Name())
	}

	return map[string]any{
		"active_sessions": len(r.sessions),
		"servers":         names,
	}
}
