package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StatePolling
	StateDiffing
	StatePatched
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StatePolling:
		return "polling"
	case StateDiffing:
		return "diffing"
	case StatePatched:
		return "patched"
	default:
		return "idle"
	}
}

// ErrTickInFlight is returned by Tick when the previous tick has not
// finished yet.
var ErrTickInFlight = errors.New("poll already in flight")

// ErrNothingSelected is returned by the selection actions when no session
// is ticked.
var ErrNothingSelected = errors.New("no sessions selected")

// Source is the part of the API client the poller needs.
type Source interface {
	ListSessions(ctx context.Context, limit int) ([]Session, error)
	GetSession(ctx context.Context, id uint) (SessionDetail, error)
	Merge(ctx context.Context, ids []uint) (MergeResult, error)
	BulkDelete(ctx context.Context, ids []uint) (DeleteResult, error)
	Reset(ctx context.Context) (DeleteResult, error)
	UpdateStatus(ctx context.Context, entryID uint, processed bool, notes string) (EntryStatus, error)
}

// TickReport describes one finished silent tick.
type TickReport struct {
	Result Result
	// Held is true when the result was kept back because the detail view
	// is open.
	Held  bool
	Stats Stats
}

type PollerOptions struct {
	Limit    int
	Interval time.Duration
	// Timeout bounds each request; zero means no extra bound.
	Timeout time.Duration
	// OnTick is called after every successful silent tick.
	OnTick func(TickReport)
}

// Poller drives the list view: a full load, then silent diff ticks that
// patch only what changed.
type Poller struct {
	src    Source
	logger *zap.Logger
	opts   PollerOptions

	inFlight atomic.Bool

	mu        sync.Mutex
	state     State
	view      *View
	selection Selection
	detail    *SessionDetail
	// held is the newest list fetched while the detail view was open.
	held []Session
}

func NewPoller(src Source, logger *zap.Logger, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	return &Poller{
		src:       src,
		logger:    logger,
		opts:      opts,
		view:      &View{},
		selection: NewSelection(),
	}
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Load fetches the list and renders it from scratch.
func (p *Poller) Load(ctx context.Context) error {
	if !p.inFlight.CompareAndSwap(false, true) {
		return ErrTickInFlight
	}
	defer p.inFlight.Store(false)

	p.setState(StateLoading)
	sessions, err := p.fetch(ctx)
	if err != nil {
		p.setState(StateIdle)
		return err
	}

	p.mu.Lock()
	p.view = Render(sessions, p.selection)
	p.held = nil
	p.state = StateRendered
	p.mu.Unlock()

	p.setState(StateIdle)
	return nil
}

// Tick runs one silent poll. A failed request leaves the view untouched and
// the poller idle, so the next tick simply retries.
func (p *Poller) Tick(ctx context.Context) (TickReport, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return TickReport{}, ErrTickInFlight
	}
	defer p.inFlight.Store(false)

	p.setState(StatePolling)
	sessions, err := p.fetch(ctx)
	if err != nil {
		p.setState(StateIdle)
		p.logger.Warn("poll failed, will retry", zap.Error(err))
		return TickReport{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.detail != nil {
		p.held = sessions
		p.state = StateIdle
		return TickReport{Held: true, Stats: p.view.Stats()}, nil
	}

	p.state = StateDiffing
	res := Diff(p.view.Sessions(), sessions)
	Apply(p.view, res, p.selection)
	p.state = StatePatched

	report := TickReport{Result: res, Stats: p.view.Stats()}
	p.state = StateIdle
	return report, nil
}

// ShowDetail opens the detail view for id. Poll results are held back
// until ShowList is called.
func (p *Poller) ShowDetail(ctx context.Context, id uint) (SessionDetail, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	detail, err := p.src.GetSession(ctx, id)
	if err != nil {
		return SessionDetail{}, err
	}

	p.mu.Lock()
	p.detail = &detail
	p.mu.Unlock()
	return detail, nil
}

// ShowList closes the detail view and applies whatever was held back.
func (p *Poller) ShowList() Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.detail = nil
	if p.held == nil {
		return Result{}
	}
	res := Diff(p.view.Sessions(), p.held)
	Apply(p.view, res, p.selection)
	p.held = nil
	return res
}

// MergeSelected merges the ticked sessions, drops them from the selection
// and reloads the list from scratch.
func (p *Poller) MergeSelected(ctx context.Context) (MergeResult, error) {
	ids := p.Selected()
	if len(ids) == 0 {
		return MergeResult{}, ErrNothingSelected
	}

	rctx, cancel := p.requestContext(ctx)
	res, err := p.src.Merge(rctx, ids)
	cancel()
	if err != nil {
		return MergeResult{}, err
	}

	p.consume(ids)
	return res, p.Load(ctx)
}

// DeleteSelected deletes the ticked sessions, drops them from the selection
// and reloads the list from scratch.
func (p *Poller) DeleteSelected(ctx context.Context) (DeleteResult, error) {
	ids := p.Selected()
	if len(ids) == 0 {
		return DeleteResult{}, ErrNothingSelected
	}

	rctx, cancel := p.requestContext(ctx)
	res, err := p.src.BulkDelete(rctx, ids)
	cancel()
	if err != nil {
		return DeleteResult{}, err
	}

	p.consume(ids)
	return res, p.Load(ctx)
}

// Reset wipes all server data, clears the selection and reloads.
func (p *Poller) Reset(ctx context.Context) (DeleteResult, error) {
	rctx, cancel := p.requestContext(ctx)
	res, err := p.src.Reset(rctx)
	cancel()
	if err != nil {
		return DeleteResult{}, err
	}

	p.mu.Lock()
	p.selection = NewSelection()
	p.detail = nil
	p.held = nil
	p.mu.Unlock()
	return res, p.Load(ctx)
}

// UpdateStatus changes one entry's processed flag and notes. When the
// detail view is open it is re-read so it shows the stored state.
func (p *Poller) UpdateStatus(ctx context.Context, entryID uint, processed bool, notes string) (EntryStatus, error) {
	rctx, cancel := p.requestContext(ctx)
	defer cancel()

	status, err := p.src.UpdateStatus(rctx, entryID, processed, notes)
	if err != nil {
		return EntryStatus{}, err
	}

	p.mu.Lock()
	open := p.detail
	p.mu.Unlock()
	if open == nil {
		return status, nil
	}

	detail, err := p.src.GetSession(rctx, open.Session.ID)
	if err != nil {
		return status, err
	}
	p.mu.Lock()
	if p.detail != nil && p.detail.Session.ID == detail.Session.ID {
		p.detail = &detail
	}
	p.mu.Unlock()
	return status, nil
}

// Detail returns the session shown in the detail view, if any.
func (p *Poller) Detail() (SessionDetail, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.detail == nil {
		return SessionDetail{}, false
	}
	return *p.detail, true
}

func (p *Poller) consume(ids []uint) {
	p.mu.Lock()
	p.selection.Remove(ids...)
	p.mu.Unlock()
}

// Toggle flips the selection of one session and redraws nothing else.
func (p *Poller) Toggle(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.selection.Toggle(id)
	if r := p.view.Row(id); r != nil {
		r.Selected = p.selection.Has(id)
	}
}

func (p *Poller) Selected() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.IDs()
}

// Snapshot returns a copy of the rendered rows.
func (p *Poller) Snapshot() []Row {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Row, len(p.view.Rows))
	for i, r := range p.view.Rows {
		out[i] = *r
	}
	return out
}

func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view.Stats()
}

// Run loads once and then ticks every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Load(ctx); err != nil {
		p.logger.Warn("initial load failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := p.Tick(ctx)
			if err != nil {
				continue
			}
			if p.opts.OnTick != nil {
				p.opts.OnTick(report)
			}
		}
	}
}

func (p *Poller) fetch(ctx context.Context) ([]Session, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()
	return p.src.ListSessions(ctx, p.opts.Limit)
}

func (p *Poller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.Timeout > 0 {
		return context.WithTimeout(ctx, p.opts.Timeout)
	}
	return context.WithCancel(ctx)
}
