package feedsync

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/headlines/internal/feed"
	"github.com/five82/headlines/internal/metrics"
	"github.com/five82/headlines/internal/sched"
	"github.com/five82/headlines/internal/stream"
)

type fetchResult struct {
	items []feed.FeedItem
	err   error
}

// fakeFetcher replays responses in order; the last one repeats.
type fakeFetcher struct {
	responses []fetchResult
	calls     int
	during    func(ctx context.Context)
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context) ([]feed.FeedItem, error) {
	f.calls++
	if f.during != nil {
		f.during(ctx)
	}
	if len(f.responses) == 0 {
		return nil, nil
	}
	r := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return feed.CloneItems(r.items), r.err
}

type fakeTransport struct {
	events stream.Events
	sent   int
	closed bool
}

func (t *fakeTransport) Send([]byte) error {
	t.sent++
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

type fakeDialer struct {
	dials []*fakeTransport
}

func (d *fakeDialer) Dial(_ string, events stream.Events) (stream.Transport, error) {
	t := &fakeTransport{events: events}
	d.dials = append(d.dials, t)
	return t, nil
}

func (d *fakeDialer) last() *fakeTransport {
	return d.dials[len(d.dials)-1]
}

func items(ids ...string) []feed.FeedItem {
	out := make([]feed.FeedItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.FeedItem{ID: id, Headline: "headline " + id, Source: "Wire", Tickers: []string{"SPY"}})
	}
	return out
}

func ids(list []feed.FeedItem) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.ID)
	}
	return out
}

func batchFrame(ids ...string) []byte {
	return frame("batch", ids...)
}

func frame(kind string, ids ...string) []byte {
	body := `{"type":"` + kind + `","items":[`
	for i, id := range ids {
		if i > 0 {
			body += ","
		}
		body += `{"id":"` + id + `","headline":"headline ` + id + `","source":"Wire"}`
	}
	return []byte(body + "]}")
}

type fixture struct {
	clock   *sched.Manual
	fetcher *fakeFetcher
	dialer  *fakeDialer
	metrics *metrics.Metrics
	ctrl    *Controller
}

func newFixture(t *testing.T, responses ...fetchResult) *fixture {
	t.Helper()
	f := &fixture{
		clock:   sched.NewManual(time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)),
		fetcher: &fakeFetcher{responses: responses},
		dialer:  &fakeDialer{},
		metrics: metrics.New(),
	}
	ctrl, err := New(Options{
		StreamURL: "ws://feed.test/ws/news",
		Fetcher:   f.fetcher,
		Dialer:    f.dialer,
		Scheduler: f.clock,
		Metrics:   f.metrics,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.ctrl = ctrl
	return f
}

func (f *fixture) assertItems(t *testing.T, want ...string) {
	t.Helper()
	if got := ids(f.ctrl.CurrentItems()); !reflect.DeepEqual(got, want) {
		t.Fatalf("items = %v, want %v", got, want)
	}
}

func TestNewRequiresFetcher(t *testing.T) {
	if _, err := New(Options{StreamURL: "ws://x"}); err == nil {
		t.Fatalf("expected error without fetcher")
	}
	if _, err := New(Options{Fetcher: &fakeFetcher{}}); err == nil {
		t.Fatalf("expected error without stream url")
	}
}

func TestControllerSnapshotThenBatch(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a", "b")})
	f.ctrl.Start()
	if f.ctrl.ConnectionStatus() != stream.StateConnecting {
		t.Fatalf("status = %v, want connecting", f.ctrl.ConnectionStatus())
	}

	f.clock.Advance(0)
	f.assertItems(t, "a", "b")

	tr := f.dialer.last()
	tr.events.Opened()
	tr.events.Message(batchFrame("b", "c"))
	f.assertItems(t, "c", "a", "b")

	if f.ctrl.ConnectionStatus() != stream.StateOpen {
		t.Fatalf("status = %v, want open", f.ctrl.ConnectionStatus())
	}
	if got := testutil.ToFloat64(f.metrics.ItemsAccepted.WithLabelValues(metrics.SourceStream)); got != 1 {
		t.Fatalf("stream accepted metric = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.ConnectionState.WithLabelValues("open")); got != 1 {
		t.Fatalf("open state gauge = %v, want 1", got)
	}
	if v := f.ctrl.Snapshot(); !v.UpdatedAt.Equal(f.clock.Now()) {
		t.Fatalf("UpdatedAt = %v, want %v", v.UpdatedAt, f.clock.Now())
	}
}

func TestControllerInitReplacesOnlyWhenEmpty(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a", "b")})
	f.ctrl.Start()

	tr := f.dialer.last()
	tr.events.Opened()
	tr.events.Message(frame("init", "x", "y", "x"))
	f.assertItems(t, "x", "y")

	// The startup snapshot lands after the stream already filled the store.
	f.clock.Advance(0)
	f.assertItems(t, "a", "b", "x", "y")

	tr.events.Message(frame("snapshot", "z", "x"))
	f.assertItems(t, "z", "a", "b", "x", "y")
}

func TestControllerSnapshotFailureIsTolerated(t *testing.T) {
	boom := errors.New("connection refused")
	f := newFixture(t, fetchResult{err: boom})
	f.ctrl.Start()
	f.clock.Advance(0)

	v := f.ctrl.Snapshot()
	if len(v.Items) != 0 || !errors.Is(v.LastError, boom) {
		t.Fatalf("after failed snapshot: items=%v err=%v", ids(v.Items), v.LastError)
	}

	tr := f.dialer.last()
	tr.events.Opened()
	tr.events.Message(frame("init", "a"))
	f.assertItems(t, "a")
}

func TestControllerPollerOnlyWhileNotOpen(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a")}, fetchResult{items: items("p")})
	f.ctrl.Start()
	f.clock.Advance(0)
	if f.ctrl.Snapshot().PollerActive {
		t.Fatalf("poller active before the first close")
	}

	first := f.dialer.last()
	first.events.Opened()
	if f.ctrl.Snapshot().PollerActive {
		t.Fatalf("poller active while open")
	}

	first.events.Closed()
	if !f.ctrl.Snapshot().PollerActive {
		t.Fatalf("poller inactive while closed")
	}

	f.clock.Advance(time.Second) // reconnect dial
	f.clock.Advance(9 * time.Second)
	if f.fetcher.calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", f.fetcher.calls)
	}
	f.assertItems(t, "p", "a")

	f.dialer.last().events.Opened()
	if f.ctrl.Snapshot().PollerActive {
		t.Fatalf("poller still active after reopen")
	}
	f.clock.Advance(time.Minute)
	if f.fetcher.calls != 2 {
		t.Fatalf("fetch calls after reopen = %d, want 2", f.fetcher.calls)
	}
}

func TestControllerErrorWhileOpenReconnects(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	f.clock.Advance(0)
	f.dialer.last().events.Opened()

	f.dialer.last().events.Failed(errors.New("reset"))
	if f.ctrl.ConnectionStatus() != stream.StateClosed {
		t.Fatalf("status = %v, want closed", f.ctrl.ConnectionStatus())
	}
	f.clock.Advance(time.Second)
	if f.ctrl.ConnectionStatus() != stream.StateConnecting || len(f.dialer.dials) != 2 {
		t.Fatalf("status = %v dials = %d, want reconnect after 1s", f.ctrl.ConnectionStatus(), len(f.dialer.dials))
	}
	f.dialer.last().events.Failed(errors.New("refused"))
	f.clock.Advance(1499 * time.Millisecond)
	if len(f.dialer.dials) != 2 {
		t.Fatalf("second reconnect came early")
	}
	f.clock.Advance(time.Millisecond)
	if len(f.dialer.dials) != 3 {
		t.Fatalf("second reconnect missing after 1.5s")
	}
	if got := testutil.ToFloat64(f.metrics.Reconnects); got != 2 {
		t.Fatalf("reconnect metric = %v, want 2", got)
	}
}

func TestControllerStopIsFinal(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a")})
	f.ctrl.Start()
	f.clock.Advance(0)
	tr := f.dialer.last()
	tr.events.Opened()
	tr.events.Closed() // reconnect pending, poller active

	f.ctrl.Stop()
	f.ctrl.Stop()
	before := f.ctrl.Snapshot()

	f.clock.Advance(time.Hour)
	tr.events.Message(batchFrame("late"))
	tr.events.Opened()

	after := f.ctrl.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed after stop:\nbefore %+v\nafter  %+v", before, after)
	}
	if len(f.dialer.dials) != 1 || f.fetcher.calls != 1 {
		t.Fatalf("dials = %d fetches = %d after stop", len(f.dialer.dials), f.fetcher.calls)
	}
	if pending := f.clock.Pending(); len(pending) != 0 {
		t.Fatalf("timers pending after stop: %v", pending)
	}
	if after.Status != stream.StateClosed || after.PollerActive || after.Running {
		t.Fatalf("view after stop = %+v", after)
	}
}

func TestControllerStopDropsInflightSnapshot(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a")})
	var ctxErr error
	f.fetcher.during = func(ctx context.Context) {
		f.ctrl.Stop()
		ctxErr = ctx.Err()
	}
	f.ctrl.Start()
	f.clock.Advance(0)

	if !errors.Is(ctxErr, context.Canceled) {
		t.Fatalf("fetch context err = %v, want canceled", ctxErr)
	}
	f.assertItems(t)
}

func TestControllerRestartUsesFreshStore(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a", "b")}, fetchResult{items: items("c")})
	f.ctrl.Start()
	f.ctrl.Start()
	f.clock.Advance(0)
	f.assertItems(t, "a", "b")
	if len(f.dialer.dials) != 1 {
		t.Fatalf("dials = %d, want 1", len(f.dialer.dials))
	}

	f.ctrl.Stop()
	f.ctrl.Start()
	f.assertItems(t)
	f.clock.Advance(0)
	f.assertItems(t, "c")
	if len(f.dialer.dials) != 2 {
		t.Fatalf("dials = %d, want 2", len(f.dialer.dials))
	}
}

func TestControllerCurrentItemsIsCopy(t *testing.T) {
	f := newFixture(t, fetchResult{items: items("a")})
	f.ctrl.Start()
	f.clock.Advance(0)

	got := f.ctrl.CurrentItems()
	got[0].Headline = "changed"
	got[0].Tickers[0] = "XXX"

	again := f.ctrl.CurrentItems()
	if again[0].Headline != "headline a" || again[0].Tickers[0] != "SPY" {
		t.Fatalf("store mutated through copy: %+v", again[0])
	}
}

func TestControllerDiscardsBadFrames(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	tr := f.dialer.last()
	tr.events.Opened()
	tr.events.Message([]byte(`{"type":"batch","items":"nope"}`))
	tr.events.Message([]byte(`{"type":"alert"}`))

	if f.ctrl.ConnectionStatus() != stream.StateOpen {
		t.Fatalf("status = %v, want open", f.ctrl.ConnectionStatus())
	}
	if got := testutil.ToFloat64(f.metrics.FramesDiscarded.WithLabelValues(stream.DiscardMalformed)); got != 1 {
		t.Fatalf("malformed discards = %v, want 1", got)
	}
	f.assertItems(t)
}

func TestControllerEnforcesCapacity(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	tr := f.dialer.last()
	tr.events.Opened()

	for i := 0; i < 201; i++ {
		tr.events.Message(batchFrame(string(rune('A'+i/26/26%26)) + string(rune('A'+i/26%26)) + string(rune('A'+i%26))))
	}
	got := f.ctrl.CurrentItems()
	if len(got) != 200 {
		t.Fatalf("len = %d, want 200", len(got))
	}
	if got[len(got)-1].ID != "AAB" {
		t.Fatalf("oldest kept = %q, want AAB", got[len(got)-1].ID)
	}
}
