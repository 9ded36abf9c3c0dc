// Package loader holds the incremental page loading state for the incident list.
//
// State is a plain value updated by two transitions: Begin, which claims the single
// in-flight slot and says which page to fetch, and Apply, which folds the finished
// fetch back in. The TUI drives these from its Update loop; Loader wraps them with a
// mutex for callers that fetch from their own goroutines.
package loader

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/clcollins/heroes/pkg/api"
)

// State is the whole of the list loading state
type State struct {
	Items      []api.Incident
	TotalCount int
	NextPage   int
	Loading    bool

	// Err is the last failed fetch; the next Begin retries the same page
	Err error

	// Drained is set when a page comes back empty, so a server that over-reports its
	// total cannot keep the list loading forever
	Drained bool

	// Generation changes whenever outstanding requests must be ignored
	Generation uint64
}

// Request identifies one page fetch and the generation it was issued under
type Request struct {
	Page       int
	Generation uint64
}

// Result is the outcome of a Request
type Result struct {
	Request
	Page *api.Page
	Err  error
}

func NewState() State {
	return State{NextPage: 1}
}

// Exhausted reports whether every available incident has been loaded
func (s State) Exhausted() bool {
	if s.Drained {
		return true
	}
	return s.TotalCount > 0 && len(s.Items) >= s.TotalCount
}

// Begin claims the in-flight slot. It returns false, and leaves the state alone, when a
// page is already loading or the list is exhausted.
func (s State) Begin() (State, Request, bool) {
	if s.Loading || s.Exhausted() {
		return s, Request{}, false
	}

	s.Loading = true
	s.Err = nil

	return s, Request{Page: s.NextPage, Generation: s.Generation}, true
}

// Apply folds a finished fetch into the state. Results that do not answer the
// outstanding request (stale generation, other page) are dropped.
func (s State) Apply(r Result) State {
	if !s.Loading || r.Generation != s.Generation || r.Request.Page != s.NextPage {
		log.Debug("loader.Apply", "dropped", true, "page", r.Request.Page, "generation", r.Generation, "current", s.Generation)
		return s
	}

	s.Loading = false

	if r.Err != nil {
		s.Err = r.Err
		return s
	}

	if r.Page.HasTotal {
		s.TotalCount = r.Page.TotalCount
	}

	batch := r.Page.Incidents
	if s.TotalCount > 0 {
		room := max(s.TotalCount-len(s.Items), 0)
		if len(batch) > room {
			log.Warn("loader.Apply", "page overflows total count", s.TotalCount, "page", r.Request.Page, "dropped", len(batch)-room)
			batch = batch[:room]
		}
	}

	if len(r.Page.Incidents) == 0 {
		s.Drained = true
	}

	// Full slice expression so earlier copies of the state never share the appended tail
	s.Items = append(s.Items[:len(s.Items):len(s.Items)], batch...)
	s.NextPage++

	return s
}

// Cancel abandons the outstanding request, if any. Its result will be dropped by Apply.
func (s State) Cancel() State {
	s.Generation++
	s.Loading = false
	return s
}

// Reset starts over from the first page, abandoning any outstanding request
func (s State) Reset() State {
	return State{NextPage: 1, Generation: s.Generation + 1}
}

// Fetch performs a Request against the API
func Fetch(ctx context.Context, client api.IncidentClient, req Request) Result {
	p, err := client.ListAvailableIncidentsWithContext(ctx, req.Page)
	if err == nil && p == nil {
		err = &api.Error{Kind: api.KindMalformed, Page: req.Page, Message: "no page returned"}
	}

	if err != nil {
		pagesTotal.WithLabelValues("failed").Inc()
		log.Warn("loader.Fetch", "page", req.Page, "error", err)
		return Result{Request: req, Err: err}
	}

	pagesTotal.WithLabelValues("loaded").Inc()
	log.Debug("loader.Fetch", "page", req.Page, "incidents", len(p.Incidents), "total", p.TotalCount)
	return Result{Request: req, Page: p}
}

// ErrCancelled is returned by LoadNext when Cancel or Reset ran while the page was loading
var ErrCancelled = errors.New("loader: load cancelled")

// Loader guards a State with a mutex and performs the fetches itself. At most one fetch
// is outstanding at a time; concurrent LoadNext calls return immediately.
type Loader struct {
	client api.IncidentClient

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

func New(client api.IncidentClient) *Loader {
	return &Loader{
		client: client,
		state:  NewState(),
	}
}

// LoadNext loads the next page. It reports false without error when the call was a
// no-op because a page is already loading or the list is exhausted.
func (l *Loader) LoadNext(ctx context.Context) (bool, error) {
	l.mu.Lock()
	next, req, ok := l.state.Begin()
	if !ok {
		l.mu.Unlock()
		return false, nil
	}
	l.state = next
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	res := Fetch(ctx, l.client, req)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Generation != l.state.Generation {
		return true, ErrCancelled
	}

	l.cancel = nil
	l.state = l.state.Apply(res)
	return true, res.Err
}

// LoadAll loads pages until the list is exhausted, the context ends or a fetch fails
func (l *Loader) LoadAll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		loaded, err := l.LoadNext(ctx)
		if err != nil {
			return err
		}

		if !loaded {
			if l.State().Exhausted() {
				return nil
			}
			return errors.New("loader: another load is in progress")
		}
	}
}

// Cancel aborts the in-flight fetch, if any, and makes sure its result is ignored
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.abort()
	l.state = l.state.Cancel()
}

// Reset drops everything loaded so far; the next LoadNext fetches the first page
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.abort()
	l.state = l.state.Reset()
}

func (l *Loader) abort() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// State returns a snapshot of the loading state
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.state
	s.Items = append([]api.Incident(nil), l.state.Items...)
	return s
}

// NearEnd reports whether the cursor is within threshold visible-rows of the last
// row, which is when the next page should be requested. An empty list is always near
// its end.
func NearEnd(cursor, rows, visible int, threshold float64) bool {
	if rows == 0 {
		return true
	}
	if visible < 1 {
		visible = 1
	}
	if threshold < 0 {
		threshold = 0
	}

	remaining := rows - 1 - cursor
	return float64(remaining) <= threshold*float64(visible)
}
