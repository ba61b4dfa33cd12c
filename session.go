package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

type Outcome int

const (
	Accepted Outcome = iota
	RejectedEmptyInput
	RejectedDuplicateQuery
	RejectedBusy
	RejectedNoMore
	RejectedNothingToRetry
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedEmptyInput:
		return "rejected: empty input"
	case RejectedDuplicateQuery:
		return "rejected: duplicate query"
	case RejectedBusy:
		return "rejected: busy"
	case RejectedNoMore:
		return "rejected: no more results"
	case RejectedNothingToRetry:
		return "rejected: nothing to retry"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const (
	msgEmptyInput   = "Please, fill the main field"
	msgDuplicate    = "The previous %s request has already been received, please enter a new search parameter"
	msgFetchFailed  = "Something went wrong. Please try again later."
	msgNoResults    = "Sorry, there are no images matching your search query. Please try again."
	msgFound        = "Hooray! We found %d images."
	msgEndOfResults = "We're sorry, but you've reached the end of search results."
)

type Renderer interface {
	Append(items []ImageData)
	Clear()
}

type Notifier interface {
	Warning(msg string)
	Info(msg string)
	Success(msg string)
	Error(msg string)
	NoResults(msg string)
	EndOfResults(msg string)
}

type PaginationTrigger interface {
	Arm()
	Disarm()
}

type ScrollToTop interface {
	Show()
	Hide()
}

// Ports are the collaborators a SearchSession drives. Nil fields are
// replaced with no-ops.
type Ports struct {
	Fetcher   ResultsFetcher
	Renderer  Renderer
	Notify    Notifier
	Trigger   PaginationTrigger
	ScrollTop ScrollToTop
}

type SessionState struct {
	Query    string
	Page     int
	PerPage  int
	Fetching bool
	HasMore  bool
}

// FetchRequest identifies one issued fetch. It is only valid for the session
// that produced it.
type FetchRequest struct {
	Query   string
	Page    int
	PerPage int
	seq     uint64
}

// SearchSession owns the query/page state of one search view. All guards
// and the Fetching flag are updated under mu, so it is safe to drive from
// several goroutines, although the UI drives it from its event loop only.
type SearchSession struct {
	mu     sync.Mutex
	state  SessionState
	seq    uint64
	failed bool

	fetcher   ResultsFetcher
	renderer  Renderer
	notify    Notifier
	trigger   PaginationTrigger
	scrollTop ScrollToTop
	log       zerolog.Logger
}

func NewSearchSession(perPage int, ports Ports) *SearchSession {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	s := &SearchSession{
		state:     SessionState{Page: 1, PerPage: perPage},
		fetcher:   ports.Fetcher,
		renderer:  ports.Renderer,
		notify:    ports.Notify,
		trigger:   ports.Trigger,
		scrollTop: ports.ScrollTop,
		log:       NewLogger("session"),
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}
	if s.notify == nil {
		s.notify = nopNotifier{}
	}
	if s.trigger == nil {
		s.trigger = nopTrigger{}
	}
	if s.scrollTop == nil {
		s.scrollTop = nopScrollTop{}
	}
	return s
}

func (s *SearchSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginQuery validates raw and, when it names a new search, resets the
// session and marks a page-1 fetch as in flight.
func (s *SearchSession) BeginQuery(raw string) (FetchRequest, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.TrimSpace(raw)
	if query == "" {
		s.notify.Warning(msgEmptyInput)
		return FetchRequest{}, RejectedEmptyInput
	}
	if query == s.state.Query {
		s.notify.Info(fmt.Sprintf(msgDuplicate, query))
		return FetchRequest{}, RejectedDuplicateQuery
	}
	if s.state.Fetching {
		return FetchRequest{}, RejectedBusy
	}

	s.state.Query = query
	s.state.Page = 1
	s.state.HasMore = false
	s.failed = false
	s.renderer.Clear()
	s.scrollTop.Hide()
	s.trigger.Disarm()
	s.log.Info().Str("query", query).Msg("new search")
	return s.beginFetch(), Accepted
}

// BeginNextPage advances to the next page if no fetch is in flight and the
// current query has more results.
func (s *SearchSession) BeginNextPage() (FetchRequest, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Fetching {
		return FetchRequest{}, RejectedBusy
	}
	if !s.state.HasMore {
		return FetchRequest{}, RejectedNoMore
	}
	s.state.Page++
	return s.beginFetch(), Accepted
}

// BeginRetry re-issues the fetch for the current page after a failure.
func (s *SearchSession) BeginRetry() (FetchRequest, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Fetching {
		return FetchRequest{}, RejectedBusy
	}
	if !s.failed {
		return FetchRequest{}, RejectedNothingToRetry
	}
	return s.beginFetch(), Accepted
}

func (s *SearchSession) beginFetch() FetchRequest {
	s.state.Fetching = true
	s.seq++
	return FetchRequest{
		Query:   s.state.Query,
		Page:    s.state.Page,
		PerPage: s.state.PerPage,
		seq:     s.seq,
	}
}

// Fetch runs the request against the fetcher. It does not touch session
// state and may run off the UI goroutine.
func (s *SearchSession) Fetch(ctx context.Context, req FetchRequest) (ResultPage, error) {
	if s.fetcher == nil {
		return ResultPage{}, &FetchError{Message: "no fetcher configured"}
	}
	page, err := s.fetcher.Fetch(ctx, req.Query, req.Page, req.PerPage)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = transportError("fetch failed", err)
		}
		return ResultPage{}, err
	}
	return page, nil
}

// Complete applies the result of req and releases the Fetching flag.
func (s *SearchSession) Complete(req FetchRequest, page ResultPage, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Fetching || req.seq != s.seq {
		s.log.Warn().
			Str("query", req.Query).
			Int("page", req.Page).
			Msg("dropping completion for a fetch that is not in flight")
		return
	}
	defer func() {
		s.state.Fetching = false
	}()

	if err != nil {
		guid := xid.New().String()
		s.failed = true
		s.log.Err(err).
			Str("guid", guid).
			Str("query", req.Query).
			Int("page", req.Page).
			Msg("error fetching images")
		s.notify.Error(msgFetchFailed)
		return
	}
	s.failed = false

	if len(page.Items) == 0 {
		s.state.HasMore = false
		s.notify.NoResults(msgNoResults)
		return
	}

	s.renderer.Append(page.Items)
	s.notify.Success(fmt.Sprintf(msgFound, page.Total))

	totalPages := TotalPages(page.Total, s.state.PerPage)
	s.log.Debug().
		Str("query", req.Query).
		Int("page", req.Page).
		Int("totalPages", totalPages).
		Int("items", len(page.Items)).
		Msg("page loaded")
	if s.state.Page >= totalPages {
		s.state.HasMore = false
		s.notify.EndOfResults(msgEndOfResults)
		s.scrollTop.Show()
		s.trigger.Disarm()
		return
	}
	s.state.HasMore = true
	s.trigger.Arm()
}

func (s *SearchSession) run(ctx context.Context, req FetchRequest, outcome Outcome) Outcome {
	if outcome != Accepted {
		return outcome
	}
	page, err := s.Fetch(ctx, req)
	s.Complete(req, page, err)
	return outcome
}

// SubmitQuery starts a new search for raw and blocks until page 1 resolves.
func (s *SearchSession) SubmitQuery(ctx context.Context, raw string) Outcome {
	req, outcome := s.BeginQuery(raw)
	return s.run(ctx, req, outcome)
}

// RequestNextPage loads the next page and blocks until it resolves.
func (s *SearchSession) RequestNextPage(ctx context.Context) Outcome {
	req, outcome := s.BeginNextPage()
	return s.run(ctx, req, outcome)
}

// OnSentinelVisible is the inbound "more content may be needed" signal.
func (s *SearchSession) OnSentinelVisible(ctx context.Context) Outcome {
	return s.RequestNextPage(ctx)
}

func (s *SearchSession) Retry(ctx context.Context) Outcome {
	req, outcome := s.BeginRetry()
	return s.run(ctx, req, outcome)
}

type nopRenderer struct{}

func (nopRenderer) Append([]ImageData) {}
func (nopRenderer) Clear()             {}

type nopNotifier struct{}

func (nopNotifier) Warning(string)      {}
func (nopNotifier) Info(string)         {}
func (nopNotifier) Success(string)      {}
func (nopNotifier) Error(string)        {}
func (nopNotifier) NoResults(string)    {}
func (nopNotifier) EndOfResults(string) {}

type nopTrigger struct{}

func (nopTrigger) Arm()    {}
func (nopTrigger) Disarm() {}

type nopScrollTop struct{}

func (nopScrollTop) Show() {}
func (nopScrollTop) Hide() {}
