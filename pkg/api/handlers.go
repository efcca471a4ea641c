package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/getmockd/canonrest/pkg/httputil"
	"github.com/getmockd/canonrest/pkg/precondition"
	"github.com/getmockd/canonrest/pkg/repository"
	"github.com/getmockd/canonrest/pkg/resource"
)

// ResetKey is the reserved DELETE key that reseeds the store.
const ResetKey = "all"

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, err := queryInt(q, 0, "skip", "$skip")
	if err != nil {
		a.writeError(w, err)
		return
	}
	take, err := queryInt(q, a.defaultTake, "take", "$top")
	if err != nil {
		a.writeError(w, err)
		return
	}
	if take > a.maxTake {
		take = a.maxTake
	}

	a.writeList(w, r, a.repo.GetResources(skip, take))
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	res, ok := a.repo.Get(key)
	if !ok {
		a.writeError(w, &repository.NotFoundError{Key: key})
		return
	}

	setETag(w, res)
	if precondition.IfNoneMatch(r.Header, res) {
		httputil.WriteNotModified(w)
		return
	}
	a.writeResource(w, r, http.StatusOK, res)
}

func (a *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	candidate, err := a.decodeResource(w, r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := validateData(candidate); err != nil {
		a.writeError(w, err)
		return
	}

	created, err := a.repo.Post(candidate)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.log.Info("resource created", "key", created.Key)
	a.writeCreated(w, r, created)
}

func (a *API) handleReplace(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	proposed, err := a.decodeResource(w, r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := validateData(proposed); err != nil {
		a.writeError(w, err)
		return
	}

	existing, ok := a.repo.Get(key)
	if !ok {
		a.writeError(w, &repository.NotFoundError{Key: key})
		return
	}
	if err := precondition.CheckIfMatch(r.Header, existing); err != nil {
		a.writeError(w, err)
		return
	}

	// Another writer may land between the Get above and this call; Put
	// detects it by comparing against existing and reports a lost race.
	updated, err := a.repo.Put(key, proposed, existing)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if existing.DataChanged(updated) {
		a.log.Info("resource replaced", "key", key)
	} else {
		// Nothing was written; answer with the stored version rather than
		// whatever tag the body carried.
		updated = existing
	}
	setETag(w, updated)
	a.writeResource(w, r, http.StatusOK, updated)
}

func (a *API) handleAddOrUpdate(w http.ResponseWriter, r *http.Request) {
	key, err := parseKey(r.PathValue("key"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	proposed, err := a.decodeResource(w, r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := validateData(proposed); err != nil {
		a.writeError(w, err)
		return
	}

	created := false
	onAdd := func(resource.Resource) error {
		created = true
		return nil
	}
	onUpdate := func(existing resource.Resource) error {
		created = false
		return precondition.CheckIfMatch(r.Header, existing)
	}

	res, err := a.repo.AddOrUpdate(key, proposed, onAdd, onUpdate)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if created {
		a.log.Info("resource created", "key", key)
		a.writeCreated(w, r, res)
		return
	}
	setETag(w, res)
	a.writeResource(w, r, http.StatusOK, res)
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("key")
	if raw == ResetKey {
		a.repo.Reset()
		a.log.Info("repository reset")
		httputil.WriteNoContent(w)
		return
	}

	key, err := parseKey(raw)
	if err != nil {
		a.writeError(w, err)
		return
	}

	removed, ok, err := a.repo.Delete(key, precondition.IfMatchHook(r.Header))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !ok {
		httputil.WriteNoContent(w)
		return
	}

	a.log.Info("resource deleted", "key", key)
	a.writeResource(w, r, http.StatusOK, removed)
}

func (a *API) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, a.doc)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"resources": a.repo.Len(),
	})
}

// MetricsResponse is the body of GET /api/metrics.
type MetricsResponse struct {
	repository.MetricsSnapshot
	TotalOperations int64 `json:"totalOperations"`
}

func (a *API) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	snap := a.metrics.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, MetricsResponse{
		MetricsSnapshot: snap,
		TotalOperations: snap.TotalOperations(),
	})
}

func (a *API) writeCreated(w http.ResponseWriter, r *http.Request, res resource.Resource) {
	w.Header().Set("Location", a.basePath+"/"+strconv.Itoa(res.Key))
	setETag(w, res)
	a.writeResource(w, r, http.StatusCreated, res)
}

func setETag(w http.ResponseWriter, res resource.Resource) {
	w.Header().Set(precondition.HeaderETag, precondition.Quote(res.Tag))
}

// parseKey parses a path key. Keys are non-negative integers.
func parseKey(raw string) (int, error) {
	key, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &repository.ValidationError{
			Field:   "key",
			Message: "key '" + raw + "' is invalid - it cannot be converted to a number",
		}
	}
	if key < 0 {
		return 0, &repository.ValidationError{Field: "key", Message: "key must not be negative"}
	}
	return key, nil
}

// queryInt returns the first of names present in q, parsed as a
// non-negative integer, or def when none is present.
func queryInt(q url.Values, def int, names ...string) (int, error) {
	for _, name := range names {
		if !q.Has(name) {
			continue
		}
		v, err := strconv.Atoi(q.Get(name))
		if err != nil {
			return 0, &repository.ValidationError{Field: name, Message: "must be an integer"}
		}
		if v < 0 {
			return 0, &repository.ValidationError{Field: name, Message: "must not be negative"}
		}
		return v, nil
	}
	return def, nil
}

func validateData(res resource.Resource) error {
	if !res.IsValid() {
		return &repository.ValidationError{Field: "data", Message: "data must not be blank"}
	}
	return nil
}
