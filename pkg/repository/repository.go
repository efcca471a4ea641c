package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getmockd/canonrest/pkg/resource"
)

// Seed defaults.
const (
	DefaultSeedCount  = 20
	DefaultSeedPrefix = "Resource"
)

// Hook is a caller-supplied callback run inside a compound operation's
// critical section. Returning an error aborts the operation with no effect.
// Hooks must be fast and must not call back into the Repository.
type Hook func(resource.Resource) error

func (h Hook) call(r resource.Resource) error {
	if h == nil {
		return nil
	}
	return h(r)
}

// Option configures a Repository.
type Option func(*Repository)

// WithSeed sets how many resources New and Reset create, and the data
// prefix used for them. A count of zero yields an empty store.
func WithSeed(count int, prefix string) Option {
	return func(r *Repository) {
		r.seedCount = count
		r.seedPrefix = prefix
	}
}

// WithObserver sets the operation observer.
func WithObserver(obs Observer) Option {
	return func(r *Repository) {
		if obs != nil {
			r.observer = obs
		}
	}
}

// Repository is a concurrent key to Resource store.
type Repository struct {
	items sync.Map // int -> resource.Resource

	// mu serializes compound sequences. Single-key atomics do not take it.
	mu sync.Mutex

	seedCount  int
	seedPrefix string
	observer   Observer
}

// New creates a seeded repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		seedCount:  DefaultSeedCount,
		seedPrefix: DefaultSeedPrefix,
		observer:   &NoopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.seed()
	return r
}

// seed fills keys 1..seedCount. Post and Put do not take the mutex, so a
// key they claim while Reset is seeding keeps their value.
func (r *Repository) seed() {
	for i := 1; i <= r.seedCount; i++ {
		r.items.LoadOrStore(i, resource.New(i, fmt.Sprintf("%s%d", r.seedPrefix, i)))
	}
}

// Get returns the resource stored under key.
func (r *Repository) Get(key int) (resource.Resource, bool) {
	start := time.Now()
	v, ok := r.items.Load(key)
	if !ok {
		return resource.Resource{}, false
	}
	r.observer.OnRead(key, time.Since(start))
	return v.(resource.Resource), true
}

// GetResources returns up to take resources after skipping skip, ordered by
// key. Negative or out-of-range arguments yield an empty slice.
func (r *Repository) GetResources(skip, take int) []resource.Resource {
	start := time.Now()
	all := r.snapshot()

	out := []resource.Resource{}
	if skip >= 0 && take > 0 && skip < len(all) {
		if take > len(all)-skip {
			take = len(all) - skip
		}
		out = all[skip : skip+take]
	}

	r.observer.OnList(len(out), time.Since(start))
	return out
}

// Len returns the number of stored resources.
func (r *Repository) Len() int {
	n := 0
	r.items.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (r *Repository) snapshot() []resource.Resource {
	var all []resource.Resource
	r.items.Range(func(_, v any) bool {
		all = append(all, v.(resource.Resource))
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all
}

// Post creates a resource under a server generated key, one greater than
// the largest key present. It fails with ConflictError when another
// resource already holds the same data.
func (r *Repository) Post(candidate resource.Resource) (resource.Resource, error) {
	start := time.Now()
	sanitized := resource.CreateSanitized(r.nextKey(), candidate, resource.VersionNew)
	if !sanitized.IsValid() {
		return r.fail("post", sanitized.Key, blankData())
	}

	if existing, ok := r.findConflict(sanitized); ok {
		return r.fail("post", sanitized.Key, &ConflictError{Data: sanitized.Data, ExistingKey: existing.Key})
	}

	if _, loaded := r.items.LoadOrStore(sanitized.Key, sanitized); loaded {
		return r.fail("post", sanitized.Key, &InternalError{Op: "post", Key: sanitized.Key})
	}

	r.observer.OnCreate(sanitized.Key, time.Since(start))
	return sanitized, nil
}

func (r *Repository) nextKey() int {
	maxKey := 0
	r.items.Range(func(k, _ any) bool {
		if key := k.(int); key > maxKey {
			maxKey = key
		}
		return true
	})
	return maxKey + 1
}

func (r *Repository) findConflict(candidate resource.Resource) (resource.Resource, bool) {
	var found resource.Resource
	var ok bool
	r.items.Range(func(_, v any) bool {
		existing := v.(resource.Resource)
		if existing.Data == candidate.Data {
			found, ok = existing, true
			return false
		}
		return true
	})
	return found, ok
}

// Put replaces the resource under key with proposed, provided the stored
// value still equals comparison at swap time. Only Data is taken from
// proposed. When the data is unchanged the sanitized proposal is returned
// and nothing is written, so replays keep their tag. A lost swap returns
// RaceLostError.
//
// comparison is normally the value the caller fetched with Get. Nothing is
// held between that Get and this call; the swap is what detects an
// interleaved writer.
func (r *Repository) Put(key int, proposed, comparison resource.Resource) (resource.Resource, error) {
	start := time.Now()
	sanitized := resource.CreateSanitized(key, proposed, resource.VersionUseExisting)
	if !sanitized.IsValid() {
		return r.fail("put", key, blankData())
	}
	if !comparison.DataChanged(sanitized) {
		return sanitized, nil
	}

	next := sanitized.UpdateVersion()
	if !r.items.CompareAndSwap(key, comparison, next) {
		return r.fail("put", key, &RaceLostError{Key: key})
	}

	r.observer.OnUpdate(key, time.Since(start))
	return next, nil
}

// AddOrUpdate inserts res under key when absent, or merges it into the
// stored resource when present. onAdd runs before an insert; onUpdate runs
// against the stored resource before the merge and is where callers check
// If-Match. Both run under the repository mutex and any error they return
// aborts the upsert.
//
// The merge only applies when res carries the stored tag and different
// data; otherwise the stored resource is returned unchanged.
func (r *Repository) AddOrUpdate(key int, res resource.Resource, onAdd, onUpdate Hook) (resource.Resource, error) {
	start := time.Now()
	if !res.IsValid() {
		return r.fail("addOrUpdate", key, blankData())
	}

	out, outcome, err := r.addOrUpdateLocked(key, res, onAdd, onUpdate)
	if err != nil {
		return r.fail("addOrUpdate", key, err)
	}

	switch outcome {
	case upsertCreated:
		r.observer.OnCreate(key, time.Since(start))
	case upsertUpdated:
		r.observer.OnUpdate(key, time.Since(start))
	}
	return out, nil
}

type upsertOutcome int

const (
	upsertUnchanged upsertOutcome = iota
	upsertCreated
	upsertUpdated
)

func (r *Repository) addOrUpdateLocked(key int, res resource.Resource, onAdd, onUpdate Hook) (resource.Resource, upsertOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		v, ok := r.items.Load(key)
		if !ok {
			added := resource.CreateSanitized(key, res, resource.VersionNew)
			if err := onAdd.call(added); err != nil {
				return resource.Resource{}, upsertUnchanged, err
			}
			// Post does not take the mutex and may claim the key first.
			if _, loaded := r.items.LoadOrStore(key, added); loaded {
				continue
			}
			return added, upsertCreated, nil
		}

		existing := v.(resource.Resource)
		if err := onUpdate.call(existing); err != nil {
			return resource.Resource{}, upsertUnchanged, err
		}

		merged := existing.UpdateFrom(resource.CreateSanitized(key, res, resource.VersionUseExisting))
		if merged == existing {
			return existing, upsertUnchanged, nil
		}
		// A lock-free Put may have replaced existing since the Load; rerun
		// the hook against the new value.
		if r.items.CompareAndSwap(key, existing, merged) {
			return merged, upsertUpdated, nil
		}
	}
}

// Delete removes the resource under key after check accepts it. It reports
// whether a resource was removed. A missing key is not an error, so
// repeated deletes converge. A check error is returned unchanged and
// nothing is removed.
func (r *Repository) Delete(key int, check Hook) (resource.Resource, bool, error) {
	start := time.Now()
	removed, ok, err := r.deleteLocked(key, check)
	if err != nil {
		r.observer.OnError("delete", key, err)
		return resource.Resource{}, false, err
	}
	if ok {
		r.observer.OnDelete(key, time.Since(start))
	}
	return removed, ok, nil
}

func (r *Repository) deleteLocked(key int, check Hook) (resource.Resource, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		v, ok := r.items.Load(key)
		if !ok {
			return resource.Resource{}, false, nil
		}
		existing := v.(resource.Resource)
		if err := check.call(existing); err != nil {
			return resource.Resource{}, false, err
		}
		if r.items.CompareAndDelete(key, existing) {
			return existing, true, nil
		}
	}
}

// Reset discards every resource and reseeds the store. A resource created
// concurrently with the reseed is kept in place of the seed for its key.
func (r *Repository) Reset() {
	start := time.Now()
	r.mu.Lock()
	r.items.Clear()
	r.seed()
	r.mu.Unlock()
	r.observer.OnReset(r.seedCount, time.Since(start))
}

func (r *Repository) fail(op string, key int, err error) (resource.Resource, error) {
	r.observer.OnError(op, key, err)
	return resource.Resource{}, err
}

func blankData() error {
	return &ValidationError{Field: "data", Message: "data must not be blank"}
}
