package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	rerrors "rosetta/cli/internal/errors"
)

type recorder struct {
	sleeps []time.Duration
	events []string
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func (r *recorder) Attempt(n, total int) { r.events = append(r.events, fmt.Sprintf("attempt %d/%d", n, total)) }
func (r *recorder) Failed(n, total int, err error) {
	r.events = append(r.events, fmt.Sprintf("failed %d/%d", n, total))
}
func (r *recorder) Succeeded(n, total int) { r.events = append(r.events, fmt.Sprintf("ok %d/%d", n, total)) }
func (r *recorder) Exhausted(total int, err error) {
	r.events = append(r.events, fmt.Sprintf("exhausted %d", total))
}

func newRecorded() (*Coordinator, *recorder) {
	r := &recorder{}
	return New(WithSleeper(r.sleep), WithProgress(r)), r
}

func TestBackoff(t *testing.T) {
	want := []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, w := range want {
		if got := Backoff(time.Second, i+1); got != w {
			t.Errorf("Backoff(attempt %d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestDoAlwaysFails(t *testing.T) {
	for _, n := range []int{1, 3, 4} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			c, rec := newRecorded()
			calls := 0
			cause := rerrors.New(rerrors.ProtocolFault, "garbage")
			err := c.Do(context.Background(), n, func(context.Context, int) error {
				calls++
				return cause
			})
			if calls != n {
				t.Errorf("calls = %d, want %d", calls, n)
			}
			if !rerrors.Is(err, rerrors.Exhausted) || !rerrors.Is(err, rerrors.ProtocolFault) {
				t.Errorf("want Exhausted wrapping ProtocolFault, got %v", err)
			}
			if len(rec.sleeps) != n-1 {
				t.Errorf("slept %d times, want %d", len(rec.sleeps), n-1)
			}
			if got := rec.events[len(rec.events)-1]; got != fmt.Sprintf("exhausted %d", n) {
				t.Errorf("last event = %q", got)
			}
		})
	}
}

func TestDoSucceedsOnAttemptK(t *testing.T) {
	c, rec := newRecorded()
	calls := 0
	err := c.Do(context.Background(), 4, func(_ context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, rec.sleeps); diff != "" {
		t.Errorf("sleeps (-want +got):\n%s", diff)
	}
	wantEvents := []string{"attempt 1/4", "failed 1/4", "attempt 2/4", "failed 2/4", "attempt 3/4", "ok 3/4"}
	if diff := cmp.Diff(wantEvents, rec.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	c, _ := newRecorded()
	calls := 0
	denied := rerrors.New(rerrors.AccessDenied, "no access")
	err := c.Do(context.Background(), 5, func(context.Context, int) error {
		calls++
		return Permanent(denied)
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err != denied {
		t.Errorf("err = %v, want unwrapped permanent cause", err)
	}
	if IsPermanent(err) {
		t.Error("returned error still marked permanent")
	}
}

func TestDoStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(WithBase(time.Hour))
	calls := 0
	err := c.Do(ctx, 3, func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if calls != 1 || !errors.Is(err, context.Canceled) || rerrors.Is(err, rerrors.Exhausted) {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}
}

func TestValue(t *testing.T) {
	c, _ := newRecorded()
	got, err := Value(context.Background(), c, 3, func(_ context.Context, attempt int) (string, error) {
		if attempt == 1 {
			return "", errors.New("flaky")
		}
		return "snapshot", nil
	})
	if err != nil || got != "snapshot" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	c, _ := newRecorded()
	calls := 0
	_ = c.Do(context.Background(), 0, func(context.Context, int) error { calls++; return errors.New("x") })
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
