// Package cartsync keeps a shopper's cart in memory and mirrors every change
// to the backing store that currently owns it: the device for anonymous
// shoppers, the server for signed-in ones.
package cartsync

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"boltform_back_end/internal/models"
)

const (
	// LocalKey is where the anonymous cart lives in the local store.
	LocalKey = "cart"
	// MaxQuantity caps a single line.
	MaxQuantity = 99
)

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrVersionConflict = errors.New("remote cart changed since last read")
)

type Status int

const (
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

// AuthState is the sign-in state reported by the host application.
type AuthState struct {
	Status Status
	UserID string
}

// MergePolicy decides what happens to the anonymous cart on sign-in.
type MergePolicy int

const (
	// MergeServerWins replaces the in-memory cart with the server cart and
	// leaves the anonymous cart where it is.
	MergeServerWins MergePolicy = iota
	// MergeSumQuantities unions both carts by product id, summing quantities,
	// and clears the anonymous cart once the merged cart reaches the server.
	MergeSumQuantities
)

type Product struct {
	ID    string
	Title string
	Price float64
	Image string
	Meta  map[string]any
}

// LocalStore is device-local key/value storage.
type LocalStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// RemoteStore is the server-held cart of a signed-in user.
type RemoteStore interface {
	Load(ctx context.Context, userID string) ([]models.CartLine, int64, error)
	// Save replaces the whole cart. A nil expectedVersion is unconditional.
	Save(ctx context.Context, userID string, lines []models.CartLine, expectedVersion *int64) (int64, error)
}

type Option func(*Engine)

func WithMergePolicy(p MergePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// maxConflictRetries bounds how often one snapshot is rewritten after a
// version conflict.
const maxConflictRetries = 3

type snapshot struct {
	userID  string
	gen     uint64
	lines   []models.CartLine
	retries int
}

// Engine is safe for concurrent use.
type Engine struct {
	local   LocalStore
	remote  RemoteStore
	policy  MergePolicy
	timeout time.Duration

	mu      sync.Mutex
	lines   []models.CartLine
	loading bool
	auth    AuthState
	version int64
	gen     uint64 // bumped on every auth change; older loads are stale
	closed  bool
	// mergedLocal is set while the anonymous cart has been merged into
	// memory but not yet written to the server.
	mergedLocal bool

	pending *snapshot
	busy    bool
	idle    *sync.Cond
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func NewEngine(local LocalStore, remote RemoteStore, opts ...Option) *Engine {
	e := &Engine{
		local:   local,
		remote:  remote,
		policy:  MergeServerWins,
		timeout: 10 * time.Second,
		lines:   []models.CartLine{},
		loading: true,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	e.idle = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	go e.run()
	return e
}

// SetAuth reloads the cart for a new sign-in state. While the state is
// StatusLoading the current cart is kept and Loading reports true.
func (e *Engine) SetAuth(ctx context.Context, state AuthState) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.gen++
	gen := e.gen
	e.auth = state
	e.loading = true
	e.mergedLocal = false
	e.mu.Unlock()

	switch state.Status {
	case StatusLoading:
		return
	case StatusAnonymous:
		lines := e.readLocal()
		e.apply(gen, lines, 0, nil)
	case StatusAuthenticated:
		e.loadRemote(ctx, gen, state.UserID)
	}
}

func (e *Engine) loadRemote(ctx context.Context, gen uint64, userID string) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	server, version, err := e.remote.Load(ctx, userID)
	if err != nil {
		// the anonymous cart stays on the device for the next sign-in
		log.Printf("⚠️ cart fetch for %s failed, starting empty: %v", userID, err)
		e.apply(gen, nil, 0, nil)
		return
	}

	if e.policy != MergeSumQuantities {
		e.apply(gen, server, version, nil)
		return
	}

	local := e.readLocal()
	if len(local) == 0 {
		e.apply(gen, server, version, nil)
		return
	}
	e.apply(gen, mergeSum(server, local), version, func() {
		e.mergedLocal = true
		e.enqueueLocked(userID)
	})
}

// apply installs a load result unless a newer auth change superseded it.
// after runs under the lock when the result is applied.
func (e *Engine) apply(gen uint64, lines []models.CartLine, version int64, after func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.closed {
		return
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	e.lines = lines
	e.version = version
	e.loading = false
	if after != nil {
		after()
	}
}

func (e *Engine) readLocal() []models.CartLine {
	raw, ok, err := e.local.Get(LocalKey)
	if err != nil {
		log.Printf("⚠️ read local cart: %v", err)
		return []models.CartLine{}
	}
	if !ok || raw == "" {
		return []models.CartLine{}
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil || lines == nil {
		return []models.CartLine{}
	}
	return lines
}

// Cart returns a copy of the current lines.
func (e *Engine) Cart() []models.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneLines(e.lines)
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Version is the last server cart version seen.
func (e *Engine) Version() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// AddToCart increments the matching line or appends a new one.
func (e *Engine) AddToCart(p Product) {
	e.mutate(func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == p.ID {
				if lines[i].Quantity < MaxQuantity {
					lines[i].Quantity++
				}
				return lines
			}
		}
		return append(lines, models.CartLine{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			Quantity: 1,
			Image:    p.Image,
			Meta:     p.Meta,
		})
	})
}

func (e *Engine) RemoveFromCart(id string) {
	e.mutate(func(lines []models.CartLine) []models.CartLine {
		kept := lines[:0]
		for _, line := range lines {
			if line.ID != id {
				kept = append(kept, line)
			}
		}
		return kept
	})
}

// UpdateQuantity sets the quantity of the matching line. Unknown ids are a
// no-op.
func (e *Engine) UpdateQuantity(id string, qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return ErrInvalidQuantity
	}
	e.mutate(func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Quantity = qty
			}
		}
		return lines
	})
	return nil
}

func (e *Engine) ClearCart() {
	e.mutate(func([]models.CartLine) []models.CartLine {
		return []models.CartLine{}
	})
}

func (e *Engine) mutate(fn func([]models.CartLine) []models.CartLine) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = fn(cloneLines(e.lines))
	if e.lines == nil {
		e.lines = []models.CartLine{}
	}

	// the load in flight replaces this cart, so nothing is persisted yet
	if e.loading {
		return
	}

	switch e.auth.Status {
	case StatusAnonymous:
		e.writeLocalLocked()
	case StatusAuthenticated:
		e.enqueueLocked(e.auth.UserID)
	}
}

func (e *Engine) writeLocalLocked() {
	payload, err := json.Marshal(e.lines)
	if err != nil {
		log.Printf("⚠️ encode local cart: %v", err)
		return
	}
	if err := e.local.Set(LocalKey, string(payload)); err != nil {
		log.Printf("⚠️ write local cart: %v", err)
	}
}

// enqueueLocked replaces any queued remote write with the current cart.
func (e *Engine) enqueueLocked(userID string) {
	e.queueLocked(&snapshot{userID: userID, gen: e.gen, lines: cloneLines(e.lines)})
}

func (e *Engine) queueLocked(snap *snapshot) {
	if e.closed {
		return
	}
	e.pending = snap
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued remote write has been attempted.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for (e.pending != nil || e.busy) && !e.closed {
		e.idle.Wait()
	}
}

// Close flushes pending writes and stops the sync worker. Loads still in
// flight are discarded.
func (e *Engine) Close() {
	e.Flush()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.gen++
	e.idle.Broadcast()
	e.mu.Unlock()

	close(e.done)
	<-e.stopped
}

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.wake:
			e.drain()
		case <-e.done:
			return
		}
	}
}

func (e *Engine) drain() {
	for {
		e.mu.Lock()
		snap := e.pending
		if snap == nil {
			e.busy = false
			e.idle.Broadcast()
			e.mu.Unlock()
			return
		}
		e.pending = nil
		e.busy = true

		var expected *int64
		if snap.gen == e.gen {
			v := e.version
			expected = &v
		}
		e.mu.Unlock()

		e.push(snap, expected)
	}
}

func (e *Engine) push(snap *snapshot, expected *int64) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	version, err := e.remote.Save(ctx, snap.userID, snap.lines, expected)
	switch {
	case err == nil:
		e.mu.Lock()
		if snap.gen == e.gen {
			e.version = version
			if e.mergedLocal {
				e.mergedLocal = false
				if err := e.local.Delete(LocalKey); err != nil {
					log.Printf("⚠️ clear local cart after merge: %v", err)
				}
			}
		}
		e.mu.Unlock()
	case errors.Is(err, ErrVersionConflict):
		log.Printf("⚠️ cart for %s changed elsewhere, rewriting over the new version", snap.userID)
		e.reconcile(ctx, snap)
	default:
		log.Printf("⚠️ cart sync for %s failed: %v", snap.userID, err)
	}
}

// reconcile picks up the server version after a conflict and queues the
// in-memory cart again so it is written over it. The in-memory cart is never
// replaced by the server copy.
func (e *Engine) reconcile(ctx context.Context, snap *snapshot) {
	_, version, err := e.remote.Load(ctx, snap.userID)
	if err != nil {
		log.Printf("⚠️ cart reload for %s failed: %v", snap.userID, err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if snap.gen != e.gen {
		return
	}
	e.version = version
	if e.pending != nil {
		// newer edits are queued and will carry the fresh version
		return
	}
	if snap.retries >= maxConflictRetries {
		log.Printf("⚠️ cart for %s keeps changing elsewhere, giving up for now", snap.userID)
		return
	}
	e.queueLocked(&snapshot{
		userID:  snap.userID,
		gen:     snap.gen,
		lines:   cloneLines(e.lines),
		retries: snap.retries + 1,
	})
}

func mergeSum(server, local []models.CartLine) []models.CartLine {
	merged := cloneLines(server)
	index := make(map[string]int, len(merged))
	for i, line := range merged {
		index[line.ID] = i
	}
	for _, line := range local {
		if i, ok := index[line.ID]; ok {
			merged[i].Quantity = min(merged[i].Quantity+line.Quantity, MaxQuantity)
			continue
		}
		index[line.ID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}
