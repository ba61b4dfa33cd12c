package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	query   string
	page    int
	perPage int
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[int]ResultPage
	errs  map[int]error
	calls []fetchCall

	started chan struct{}
	gate    chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: map[int]ResultPage{},
		errs:  map[int]error{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, query string, page int, perPage int) (ResultPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{query, page, perPage})
	res, err := f.pages[page], f.errs[page]
	started, gate := f.started, f.gate
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return res, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recorder struct {
	appended []ImageData
	batches  int
	clears   int
	notes    []string
	armed    bool
	arms     int
	disarms  int
	topShown bool
}

func (r *recorder) Append(items []ImageData) {
	r.appended = append(r.appended, items...)
	r.batches++
}
func (r *recorder) Clear() {
	r.appended = nil
	r.clears++
}
func (r *recorder) Warning(msg string)      { r.notes = append(r.notes, "warning: "+msg) }
func (r *recorder) Info(msg string)         { r.notes = append(r.notes, "info: "+msg) }
func (r *recorder) Success(msg string)      { r.notes = append(r.notes, "success: "+msg) }
func (r *recorder) Error(msg string)        { r.notes = append(r.notes, "error: "+msg) }
func (r *recorder) NoResults(msg string)    { r.notes = append(r.notes, "noResults: "+msg) }
func (r *recorder) EndOfResults(msg string) { r.notes = append(r.notes, "end: "+msg) }
func (r *recorder) Show()                   { r.topShown = true }
func (r *recorder) Hide()                   { r.topShown = false }

func (r *recorder) Arm() {
	r.armed = true
	r.arms++
}

func (r *recorder) Disarm() {
	r.armed = false
	r.disarms++
}

func (r *recorder) lastNote() string {
	if len(r.notes) == 0 {
		return ""
	}
	return r.notes[len(r.notes)-1]
}

func newTestSession(perPage int, f *fakeFetcher) (*SearchSession, *recorder) {
	rec := &recorder{}
	s := NewSearchSession(perPage, Ports{
		Fetcher:   f,
		Renderer:  rec,
		Notify:    rec,
		Trigger:   rec,
		ScrollTop: rec,
	})
	return s, rec
}

func makeItems(from, to int) []ImageData {
	items := make([]ImageData, 0, to-from+1)
	for i := from; i <= to; i++ {
		items = append(items, ImageData{Id: fmt.Sprintf("pixabay/%d", i), Tags: fmt.Sprintf("cat %d", i)})
	}
	return items
}

// 85 hits at 40 per page: 40 + 40 + 5.
func paged85() *fakeFetcher {
	f := newFakeFetcher()
	f.pages[1] = ResultPage{Items: makeItems(1, 40), Total: 85}
	f.pages[2] = ResultPage{Items: makeItems(41, 80), Total: 85}
	f.pages[3] = ResultPage{Items: makeItems(81, 85), Total: 85}
	return f
}

func TestNewSessionState(t *testing.T) {
	s, _ := newTestSession(0, newFakeFetcher())
	st := s.State()
	assert.Equal(t, "", st.Query)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, DefaultPerPage, st.PerPage)
	assert.False(t, st.Fetching)
	assert.False(t, st.HasMore)
}

func TestSubmitEmptyQuery(t *testing.T) {
	f := paged85()
	s, rec := newTestSession(40, f)

	for _, raw := range []string{"", "   ", "\t\n"} {
		assert.Equal(t, RejectedEmptyInput, s.SubmitQuery(context.Background(), raw))
	}
	assert.Equal(t, "", s.State().Query)
	assert.Equal(t, 0, f.callCount())
	assert.Equal(t, 0, rec.clears)
	assert.Equal(t, "warning: "+msgEmptyInput, rec.lastNote())
}

func TestSubmitDuplicateQuery(t *testing.T) {
	f := paged85()
	s, rec := newTestSession(40, f)

	assert.Equal(t, Accepted, s.SubmitQuery(context.Background(), "cats"))
	assert.Equal(t, 1, f.callCount())

	assert.Equal(t, RejectedDuplicateQuery, s.SubmitQuery(context.Background(), "  cats "))
	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, "info: The previous cats request has already been received, please enter a new search parameter", rec.lastNote())
	assert.Len(t, rec.appended, 40)
}

func TestDuplicateBlockedAfterExhaustion(t *testing.T) {
	f := newFakeFetcher()
	f.pages[1] = ResultPage{Items: makeItems(1, 3), Total: 3}
	s, _ := newTestSession(40, f)

	require.Equal(t, Accepted, s.SubmitQuery(context.Background(), "owl"))
	require.False(t, s.State().HasMore)

	assert.Equal(t, RejectedDuplicateQuery, s.SubmitQuery(context.Background(), "owl"))
	assert.Equal(t, Accepted, s.SubmitQuery(context.Background(), "dog"))
	assert.Equal(t, Accepted, s.SubmitQuery(context.Background(), "owl"))
	assert.Equal(t, 3, f.callCount())
}

func TestSubmitResetsSession(t *testing.T) {
	f := paged85()
	s, rec := newTestSession(40, f)
	ctx := context.Background()

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "cats"))
	require.Equal(t, Accepted, s.RequestNextPage(ctx))
	require.Equal(t, 2, s.State().Page)

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "dogs"))
	st := s.State()
	assert.Equal(t, "dogs", st.Query)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 2, rec.clears)
	assert.Len(t, rec.appended, 40, "results of the previous query are cleared")
	assert.Equal(t, fetchCall{"dogs", 1, 40}, f.calls[len(f.calls)-1])
}

func TestPaginationEndOfResults(t *testing.T) {
	f := paged85()
	s, rec := newTestSession(40, f)
	ctx := context.Background()

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "cats"))
	assert.True(t, s.State().HasMore)
	assert.True(t, rec.armed)
	assert.Len(t, rec.appended, 40)
	assert.Equal(t, "success: Hooray! We found 85 images.", rec.lastNote())

	require.Equal(t, Accepted, s.RequestNextPage(ctx))
	assert.True(t, s.State().HasMore)
	assert.Len(t, rec.appended, 80)

	require.Equal(t, Accepted, s.RequestNextPage(ctx))
	st := s.State()
	assert.False(t, st.HasMore)
	assert.Equal(t, 3, st.Page)
	assert.Len(t, rec.appended, 85)
	assert.Equal(t, "end: "+msgEndOfResults, rec.lastNote())
	assert.True(t, rec.topShown)
	assert.False(t, rec.armed)

	assert.Equal(t, RejectedNoMore, s.RequestNextPage(ctx))
	assert.Equal(t, RejectedNoMore, s.OnSentinelVisible(ctx))
	assert.Equal(t, 3, f.callCount())
	assert.Equal(t, 3, s.State().Page)
}

func TestAppendPreservesOrder(t *testing.T) {
	f := newFakeFetcher()
	dup := ImageData{Id: "pixabay/7"}
	f.pages[1] = ResultPage{Items: []ImageData{{Id: "pixabay/9"}, dup, {Id: "pixabay/1"}}, Total: 6}
	f.pages[2] = ResultPage{Items: []ImageData{dup, {Id: "pixabay/3"}, {Id: "pixabay/2"}}, Total: 6}
	s, rec := newTestSession(3, f)
	ctx := context.Background()

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "birds"))
	require.Equal(t, Accepted, s.RequestNextPage(ctx))

	ids := make([]string, len(rec.appended))
	for i, item := range rec.appended {
		ids[i] = item.Id
	}
	assert.Equal(t, []string{"pixabay/9", "pixabay/7", "pixabay/1", "pixabay/7", "pixabay/3", "pixabay/2"}, ids)
	assert.Equal(t, 2, rec.batches)
}

func TestEmptyResultSet(t *testing.T) {
	f := newFakeFetcher()
	f.pages[1] = ResultPage{Total: 0}
	s, rec := newTestSession(40, f)
	ctx := context.Background()

	assert.Equal(t, Accepted, s.SubmitQuery(ctx, "qwertyuiop"))
	st := s.State()
	assert.False(t, st.HasMore)
	assert.False(t, st.Fetching)
	assert.Empty(t, rec.appended)
	assert.Equal(t, 0, rec.batches)
	assert.Equal(t, "noResults: "+msgNoResults, rec.lastNote())
	assert.Equal(t, RejectedNoMore, s.RequestNextPage(ctx))
}

func TestFetchErrorKeepsResults(t *testing.T) {
	f := paged85()
	f.errs[2] = &FetchError{StatusCode: 500, Message: "Internal Server Error"}
	s, rec := newTestSession(40, f)
	ctx := context.Background()

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "cats"))
	assert.Equal(t, Accepted, s.RequestNextPage(ctx))

	st := s.State()
	assert.Equal(t, 2, st.Page)
	assert.False(t, st.Fetching)
	assert.True(t, st.HasMore, "a failure leaves HasMore unchanged")
	assert.Len(t, rec.appended, 40)
	assert.Equal(t, "error: "+msgFetchFailed, rec.lastNote())

	// manual retry of the failed page
	delete(f.errs, 2)
	assert.Equal(t, Accepted, s.Retry(ctx))
	assert.Equal(t, 2, s.State().Page)
	assert.Len(t, rec.appended, 80)
	assert.Equal(t, fetchCall{"cats", 2, 40}, f.calls[len(f.calls)-1])
	assert.Equal(t, RejectedNothingToRetry, s.Retry(ctx))

	// a later pagination signal moves on as usual
	assert.Equal(t, Accepted, s.OnSentinelVisible(ctx))
	assert.Equal(t, 3, s.State().Page)
}

func TestFetchErrorThenNextPage(t *testing.T) {
	f := paged85()
	f.errs[2] = errors.New("connection reset by peer")
	s, _ := newTestSession(40, f)
	ctx := context.Background()

	require.Equal(t, Accepted, s.SubmitQuery(ctx, "cats"))
	require.Equal(t, Accepted, s.RequestNextPage(ctx))
	assert.Equal(t, Accepted, s.RequestNextPage(ctx))
	assert.Equal(t, 3, s.State().Page)
}

func TestFetchWrapsForeignErrors(t *testing.T) {
	f := newFakeFetcher()
	f.errs[1] = errors.New("boom")
	s, _ := newTestSession(40, f)

	req, outcome := s.BeginQuery("cats")
	require.Equal(t, Accepted, outcome)
	_, err := s.Fetch(context.Background(), req)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.EqualError(t, err, "fetch failed: boom")
}

func TestBusyRejectsWhileFetching(t *testing.T) {
	f := paged85()
	s, _ := newTestSession(40, f)
	ctx := context.Background()

	req, outcome := s.BeginQuery("cats")
	require.Equal(t, Accepted, outcome)
	assert.True(t, s.State().Fetching)

	_, outcome = s.BeginQuery("dogs")
	assert.Equal(t, RejectedBusy, outcome)
	_, outcome = s.BeginRetry()
	assert.Equal(t, RejectedBusy, outcome)
	for i := 0; i < 5; i++ {
		_, outcome = s.BeginNextPage()
		assert.Equal(t, RejectedBusy, outcome)
	}
	assert.Equal(t, 1, s.State().Page)

	page, err := s.Fetch(ctx, req)
	s.Complete(req, page, err)
	assert.False(t, s.State().Fetching)
	assert.Equal(t, 1, f.callCount())
}

func TestConcurrentSentinelSignals(t *testing.T) {
	f := paged85()
	s, _ := newTestSession(40, f)
	ctx := context.Background()
	require.Equal(t, Accepted, s.SubmitQuery(ctx, "cats"))

	f.mu.Lock()
	f.started = make(chan struct{}, 1)
	f.gate = make(chan struct{})
	f.mu.Unlock()

	first := make(chan Outcome, 1)
	go func() {
		first <- s.OnSentinelVisible(ctx)
	}()
	<-f.started

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 20)
	for i := range outcomes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.OnSentinelVisible(ctx)
		}()
	}
	wg.Wait()
	for _, o := range outcomes {
		assert.Equal(t, RejectedBusy, o)
	}

	close(f.gate)
	assert.Equal(t, Accepted, <-first)
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 2, s.State().Page)
	assert.False(t, s.State().Fetching)
}

func TestStaleCompletionDropped(t *testing.T) {
	f := paged85()
	s, rec := newTestSession(40, f)

	req, _ := s.BeginQuery("cats")
	s.Complete(req, f.pages[1], nil)
	require.Len(t, rec.appended, 40)

	s.Complete(req, f.pages[2], nil)
	assert.Len(t, rec.appended, 40)
	assert.False(t, s.State().Fetching)
}

func TestNextPageBeforeAnyQuery(t *testing.T) {
	f := paged85()
	s, _ := newTestSession(40, f)
	assert.Equal(t, RejectedNoMore, s.RequestNextPage(context.Background()))
	assert.Equal(t, 0, f.callCount())
}

func TestNilPorts(t *testing.T) {
	f := paged85()
	s := NewSearchSession(40, Ports{Fetcher: f})
	assert.Equal(t, Accepted, s.SubmitQuery(context.Background(), "cats"))
	assert.True(t, s.State().HasMore)

	empty := NewSearchSession(40, Ports{})
	assert.Equal(t, Accepted, empty.SubmitQuery(context.Background(), "cats"))
	assert.False(t, empty.State().Fetching)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "rejected: busy", RejectedBusy.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
