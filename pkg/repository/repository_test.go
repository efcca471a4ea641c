package repository

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/canonrest/pkg/resource"
)

func newEmpty(t *testing.T) *Repository {
	t.Helper()
	return New(WithSeed(0, ""))
}

func TestNew_Seeds(t *testing.T) {
	repo := New()
	require.Equal(t, DefaultSeedCount, repo.Len())

	for i := 1; i <= DefaultSeedCount; i++ {
		r, ok := repo.Get(i)
		require.True(t, ok, "key %d", i)
		assert.Equal(t, fmt.Sprintf("Resource%d", i), r.Data)
		assert.Equal(t, resource.ReadOnlyData, r.ReadOnlyData)
		assert.NotEmpty(t, r.Tag)
	}

	custom := New(WithSeed(3, "Item"))
	r, ok := custom.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Item3", r.Data)
	assert.Equal(t, 3, custom.Len())
}

func TestGet_Absent(t *testing.T) {
	repo := New()
	_, ok := repo.Get(999)
	assert.False(t, ok)
}

func TestGet_ReturnsCopy(t *testing.T) {
	repo := New()
	r, ok := repo.Get(1)
	require.True(t, ok)

	r.Data = "mutated"
	r.Tag = "mutated"

	stored, _ := repo.Get(1)
	assert.Equal(t, "Resource1", stored.Data)
	assert.NotEqual(t, "mutated", stored.Tag)
}

func TestGetResources(t *testing.T) {
	repo := New(WithSeed(5, "R"))

	tests := []struct {
		name     string
		skip     int
		take     int
		wantKeys []int
	}{
		{"all", 0, 10, []int{1, 2, 3, 4, 5}},
		{"first page", 0, 2, []int{1, 2}},
		{"middle page", 2, 2, []int{3, 4}},
		{"tail shorter than take", 4, 10, []int{5}},
		{"skip past end", 5, 10, nil},
		{"zero take", 0, 0, nil},
		{"negative skip", -1, 2, nil},
		{"negative take", 0, -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.GetResources(tt.skip, tt.take)
			require.NotNil(t, got)
			keys := make([]int, 0, len(got))
			for _, r := range got {
				keys = append(keys, r.Key)
			}
			if tt.wantKeys == nil {
				assert.Empty(t, keys)
				return
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestPost(t *testing.T) {
	repo := newEmpty(t)

	x, err := repo.Post(resource.Resource{Key: 50, Data: "X", ReadOnlyData: "ignored", Tag: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, 1, x.Key)
	assert.Equal(t, resource.ReadOnlyData, x.ReadOnlyData)
	assert.NotEqual(t, "ignored", x.Tag)

	_, err = repo.Post(resource.Resource{Data: "X"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.ExistingKey)
	assert.Equal(t, 1, repo.Len())

	y, err := repo.Post(resource.Resource{Data: "Y"})
	require.NoError(t, err)
	assert.Equal(t, 2, y.Key)

	stored, ok := repo.Get(2)
	require.True(t, ok)
	assert.Equal(t, y, stored)
}

func TestPost_KeyAfterMax(t *testing.T) {
	repo := New()
	r, err := repo.Post(resource.Resource{Data: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSeedCount+1, r.Key)

	_, _, err = repo.Delete(3, nil)
	require.NoError(t, err)
	r, err = repo.Post(resource.Resource{Data: "fresher"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSeedCount+2, r.Key)
}

func TestPost_Invalid(t *testing.T) {
	repo := newEmpty(t)
	_, err := repo.Post(resource.Resource{Data: "   "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "data", ve.Field)
	assert.Equal(t, 0, repo.Len())
}

func TestPut_ChangedData(t *testing.T) {
	repo := New()
	original, _ := repo.Get(1)

	updated, err := repo.Put(1, resource.Resource{Data: "modified", Tag: original.Tag, ReadOnlyData: "x"}, original)
	require.NoError(t, err)
	assert.Equal(t, "modified", updated.Data)
	assert.Equal(t, resource.ReadOnlyData, updated.ReadOnlyData)
	assert.NotEqual(t, original.Tag, updated.Tag)

	stored, _ := repo.Get(1)
	assert.Equal(t, updated, stored)

	// Replaying against the stale comparison loses the swap.
	_, err = repo.Put(1, resource.Resource{Data: "modified", Tag: original.Tag}, original)
	var raceLost *RaceLostError
	require.ErrorAs(t, err, &raceLost)
	assert.True(t, IsPreconditionFailed(err))

	stored, _ = repo.Get(1)
	assert.Equal(t, updated, stored)
}

func TestPut_Idempotent(t *testing.T) {
	repo := New()
	r, _ := repo.Get(1)

	first, err := repo.Put(1, r, r)
	require.NoError(t, err)
	second, err := repo.Put(1, r, r)
	require.NoError(t, err)

	assert.Equal(t, r.Tag, first.Tag)
	assert.Equal(t, r.Tag, second.Tag)

	stored, _ := repo.Get(1)
	assert.Equal(t, r, stored)
}

func TestPut_IgnoresKeyInBody(t *testing.T) {
	repo := New()
	r, _ := repo.Get(2)

	updated, err := repo.Put(2, resource.Resource{Key: 7, Data: "other"}, r)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Key)

	seven, _ := repo.Get(7)
	assert.Equal(t, "Resource7", seven.Data)
}

func TestPut_Invalid(t *testing.T) {
	repo := New()
	r, _ := repo.Get(1)
	_, err := repo.Put(1, resource.Resource{Data: ""}, r)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestPut_DeletedConcurrently(t *testing.T) {
	repo := New()
	r, _ := repo.Get(1)
	_, _, err := repo.Delete(1, nil)
	require.NoError(t, err)

	_, err = repo.Put(1, resource.Resource{Data: "late"}, r)
	assert.Equal(t, KindRaceLost, KindOf(err))
	_, ok := repo.Get(1)
	assert.False(t, ok)
}

func TestPut_LostRace(t *testing.T) {
	repo := New()
	stale, _ := repo.Get(1)

	const writers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		lost      atomic.Int32
		start     = make(chan struct{})
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := repo.Put(1, resource.Resource{Data: fmt.Sprintf("writer-%d", i)}, stale)
			if err == nil {
				successes.Add(1)
				return
			}
			if IsPreconditionFailed(err) {
				lost.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(writers-1), lost.Load())
}

func TestAddOrUpdate_Create(t *testing.T) {
	repo := New()
	var added, updated bool

	r, err := repo.AddOrUpdate(333, resource.Resource{Key: 1, Data: "new", Tag: "client"},
		func(resource.Resource) error { added = true; return nil },
		func(resource.Resource) error { updated = true; return nil },
	)
	require.NoError(t, err)
	assert.True(t, added)
	assert.False(t, updated)
	assert.Equal(t, 333, r.Key)
	assert.Equal(t, "new", r.Data)
	assert.NotEqual(t, "client", r.Tag)

	stored, ok := repo.Get(333)
	require.True(t, ok)
	assert.Equal(t, r, stored)
}

func TestAddOrUpdate_Update(t *testing.T) {
	repo := New()
	existing, _ := repo.Get(4)
	var seen resource.Resource

	r, err := repo.AddOrUpdate(4, resource.Resource{Data: "changed", Tag: existing.Tag}, nil,
		func(cur resource.Resource) error { seen = cur; return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, existing, seen)
	assert.Equal(t, "changed", r.Data)
	assert.NotEqual(t, existing.Tag, r.Tag)

	// Same update again: data unchanged relative to the stored value.
	again, err := repo.AddOrUpdate(4, r, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, r.Tag, again.Tag)
}

func TestAddOrUpdate_StaleTagLeavesStored(t *testing.T) {
	repo := New()
	existing, _ := repo.Get(4)

	r, err := repo.AddOrUpdate(4, resource.Resource{Data: "changed", Tag: "stale"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, existing, r)
}

func TestAddOrUpdate_HookFailureAborts(t *testing.T) {
	repo := New()
	existing, _ := repo.Get(5)
	hookErr := &PreconditionFailedError{Key: 5}

	_, err := repo.AddOrUpdate(5, resource.Resource{Data: "changed", Tag: existing.Tag}, nil,
		func(resource.Resource) error { return hookErr },
	)
	require.ErrorIs(t, err, hookErr)

	stored, _ := repo.Get(5)
	assert.Equal(t, existing, stored)

	addErr := errors.New("refused")
	_, err = repo.AddOrUpdate(500, resource.Resource{Data: "new"},
		func(resource.Resource) error { return addErr }, nil)
	require.ErrorIs(t, err, addErr)
	_, ok := repo.Get(500)
	assert.False(t, ok)
}

func TestAddOrUpdate_Invalid(t *testing.T) {
	repo := New()
	_, err := repo.AddOrUpdate(400, resource.Resource{Data: " "}, nil, nil)
	assert.Equal(t, KindInvalidInput, KindOf(err))
	_, ok := repo.Get(400)
	assert.False(t, ok)
}

func TestAddOrUpdate_ConcurrentConditionalUpdates(t *testing.T) {
	repo := New()
	base, _ := repo.Get(1)

	const writers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		start     = make(chan struct{})
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ifMatch := func(cur resource.Resource) error {
				if cur.Tag != base.Tag {
					return &PreconditionFailedError{Key: 1, Current: cur.Tag}
				}
				return nil
			}
			_, err := repo.AddOrUpdate(1, resource.Resource{Data: fmt.Sprintf("w%d", i), Tag: base.Tag}, nil, ifMatch)
			if err == nil {
				successes.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}

func TestDelete(t *testing.T) {
	repo := New()
	existing, _ := repo.Get(1)

	removed, ok, err := repo.Delete(1, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, existing, removed)

	_, ok, err = repo.Delete(1, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, found := repo.Get(1)
	assert.False(t, found)
}

func TestDelete_CheckFailureKeepsResource(t *testing.T) {
	repo := New()
	existing, _ := repo.Get(2)
	checkErr := &PreconditionFailedError{Key: 2}

	var checked resource.Resource
	_, ok, err := repo.Delete(2, func(cur resource.Resource) error {
		checked = cur
		return checkErr
	})
	require.ErrorIs(t, err, checkErr)
	assert.False(t, ok)
	assert.Equal(t, existing, checked)

	stored, found := repo.Get(2)
	require.True(t, found)
	assert.Equal(t, existing, stored)
}

func TestDelete_AbsentSkipsCheck(t *testing.T) {
	repo := newEmpty(t)
	called := false
	_, ok, err := repo.Delete(9, func(resource.Resource) error {
		called = true
		return errors.New("should not run")
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestDelete_Concurrent(t *testing.T) {
	repo := New()
	var (
		wg      sync.WaitGroup
		removed atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.Delete(3, nil)
			assert.NoError(t, err)
			if ok {
				removed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), removed.Load())
}

func TestReset(t *testing.T) {
	repo := New()
	original, _ := repo.Get(1)

	_, _, err := repo.Delete(1, nil)
	require.NoError(t, err)
	_, err = repo.Post(resource.Resource{Data: "extra"})
	require.NoError(t, err)

	repo.Reset()

	assert.Equal(t, DefaultSeedCount, repo.Len())
	r, ok := repo.Get(1)
	require.True(t, ok)
	assert.Equal(t, original.Data, r.Data)
	assert.NotEqual(t, original.Tag, r.Tag)
	_, ok = repo.Get(DefaultSeedCount + 1)
	assert.False(t, ok)
}

func TestReset_KeepsConcurrentPosts(t *testing.T) {
	const seedCount = 5000
	repo := New(WithSeed(seedCount, "Resource"))

	var (
		mu      sync.Mutex
		created []resource.Resource
	)
	done := make(chan struct{})
	started := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			res, err := repo.Post(resource.Resource{Data: fmt.Sprintf("posted-%d", i)})
			if err == nil {
				mu.Lock()
				created = append(created, res)
				mu.Unlock()
			}
			if i == 0 {
				close(started)
			}
		}
	}()

	<-started
	repo.Reset()
	close(done)
	<-finished

	// A Post that claimed a seed key must have landed after the clear, so
	// its value has to survive the reseed.
	for _, res := range created {
		if res.Key > seedCount {
			continue
		}
		got, ok := repo.Get(res.Key)
		require.True(t, ok)
		assert.Equal(t, res, got, "key %d", res.Key)
	}
}

func TestObserver(t *testing.T) {
	obs := NewMetricsObserver()
	repo := New(WithSeed(2, "R"), WithObserver(obs))

	r1, _ := repo.Get(1)
	_ = repo.GetResources(0, 10)
	_, err := repo.Post(resource.Resource{Data: "new"})
	require.NoError(t, err)
	_, err = repo.Post(resource.Resource{Data: "new"})
	require.Error(t, err)
	_, err = repo.Put(1, resource.Resource{Data: "changed"}, r1)
	require.NoError(t, err)
	_, err = repo.Put(1, resource.Resource{Data: "again"}, r1)
	require.Error(t, err)
	_, _, err = repo.Delete(2, nil)
	require.NoError(t, err)
	repo.Reset()

	snap := obs.Snapshot()
	assert.Equal(t, int64(1), snap.ReadCount)
	assert.Equal(t, int64(1), snap.ListCount)
	assert.Equal(t, int64(1), snap.CreateCount)
	assert.Equal(t, int64(1), snap.UpdateCount)
	assert.Equal(t, int64(1), snap.DeleteCount)
	assert.Equal(t, int64(2), snap.ErrorCount)
	assert.Equal(t, int64(1), snap.ConflictCount)
	assert.Equal(t, int64(1), snap.PreconditionCount)
	assert.Equal(t, int64(1), snap.ResetCount)
	assert.Equal(t, int64(5), snap.TotalOperations())
}
