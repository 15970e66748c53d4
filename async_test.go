package hxwrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/hxwrap/lib/async"
)

type userVars struct {
	ID    int
	Title string
}

type userData struct {
	Name string
}

type cardProps struct {
	ID    int
	Title string
	Name  string
}

func card(p cardProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<div>%d %s %s</div>", p.ID, p.Title, p.Name)
		return err
	})
}

func loadUser(ctx context.Context, v userVars) (userData, error) {
	return userData{Name: fmt.Sprintf("user-%d", v.ID)}, nil
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPhaseOf(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		state    async.State[int]
		showLoad bool
		want     Phase
	}{
		{"initial", async.State[int]{IsPending: true}, false, PhasePending},
		{"settled error", async.State[int]{HasError: true, Err: boom}, false, PhaseError},
		{"error with stale data", async.State[int]{HasError: true, Err: boom, HasData: true}, false, PhaseError},
		{"pending with error", async.State[int]{IsPending: true, HasError: true, Err: boom}, false, PhasePending},
		{"ready", async.State[int]{HasData: true, Data: 1}, false, PhaseReady},
		{"refetch keeps stale", async.State[int]{IsPending: true, HasData: true}, false, PhaseReady},
		{"refetch shows loading", async.State[int]{IsPending: true, HasData: true}, true, PhasePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhaseOf(tt.state, tt.showLoad)
			if got != tt.want {
				t.Errorf("PhaseOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAsyncViewRendersMergedProps(t *testing.T) {
	view := WithAsync(card, loadUser, nil).View()

	result, err := TestView(view, userVars{ID: 7, Title: "Dr"})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if result.HTML != "<div>7 Dr user-7</div>" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestAsyncDataWinsOverVars(t *testing.T) {
	fetch := func(ctx context.Context, v userVars) (cardProps, error) {
		return cardProps{Title: "from-data", Name: "n"}, nil
	}
	view := WithAsync(card, fetch, nil).View()

	result, err := TestView(view, userVars{ID: 1, Title: "from-vars"})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !result.HTMLContains("from-data") {
		t.Errorf("HTML = %q, data should win", result.HTML)
	}
}

func TestAsyncViewRendersError(t *testing.T) {
	fetch := func(ctx context.Context, v userVars) (userData, error) {
		return userData{}, errors.New("<nope>")
	}
	view := WithAsync(card, fetch, nil).View()

	result, err := TestView(view, userVars{ID: 1})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !result.HTMLContainsAll(`role="alert"`, `data-retries="0"`, "&lt;nope&gt;") {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestAsyncViewPlaceholderOnDeadline(t *testing.T) {
	fetch := func(ctx context.Context, v userVars) (userData, error) {
		<-ctx.Done()
		return userData{}, ctx.Err()
	}
	view := WithAsync(card, fetch, nil).View()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := TestRenderWithContext(ctx, view(userVars{ID: 1}))
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !result.HTMLContains("hxwrap-pending") {
		t.Errorf("HTML = %q, want placeholder", result.HTML)
	}
}

func TestMakeWithAsyncViews(t *testing.T) {
	views := Views{
		Placeholder: func() templ.Component { return templ.Raw("loading") },
		Catch: func(p CatchProps) templ.Component {
			return templ.Raw("failed: " + p.Err.Error())
		},
	}
	fetch := func(ctx context.Context, v userVars) (userData, error) {
		return userData{}, errors.New("down")
	}
	view := WithAsync(card, fetch, MakeWithAsync[userVars](views)).View()

	result, err := TestView(view, userVars{})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if result.HTML != "failed: down" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestAsyncCustomMerge(t *testing.T) {
	view := WithAsync(card, loadUser, nil).
		Merge(func(v userVars, d userData) cardProps {
			return cardProps{ID: v.ID * 10, Name: strings.ToUpper(d.Name)}
		}).
		View()

	result, err := TestView(view, userVars{ID: 2})
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if result.HTML != "<div>20  USER-2</div>" {
		t.Errorf("HTML = %q", result.HTML)
	}
}

func TestAsyncMergeError(t *testing.T) {
	fetch := func(ctx context.Context, v userVars) (map[string]any, error) {
		return map[string]any{"ID": "not-an-int"}, nil
	}
	view := WithAsync(card, fetch, nil).View()

	_, err := TestView(view, userVars{})
	if !IsMergeError(err) {
		t.Errorf("err = %v, want merge error", err)
	}
}

func TestMountedLifecycle(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, v userVars) (userData, error) {
		calls.Add(1)
		return loadUser(ctx, v)
	}

	ctx := context.Background()
	m := WithAsync(card, fetch, nil).Mount(ctx, userVars{ID: 1})
	defer m.Close()

	if m.ID() == "" {
		t.Error("ID() should not be empty")
	}
	if err := m.Await(ctx); err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if got := render(t, m.Component()); got != "<div>1  user-1</div>" {
		t.Errorf("render = %q", got)
	}

	m.SetProps(userVars{ID: 1, Title: "x"})
	m.SetProps(userVars{ID: 2})
	eventually(t, func() bool {
		return m.State().Data.Name == "user-2" && !m.State().IsPending
	})
	if got := render(t, m.Component()); got != "<div>2  user-2</div>" {
		t.Errorf("render = %q", got)
	}
	if m.Props().ID != 2 {
		t.Errorf("Props().ID = %d, want 2", m.Props().ID)
	}
}

func TestMountedKeepsStaleDataDuringRefetch(t *testing.T) {
	for _, showLoading := range []bool{false, true} {
		t.Run(fmt.Sprintf("showLoading=%v", showLoading), func(t *testing.T) {
			gate := make(chan struct{})
			var calls atomic.Int32
			fetch := func(ctx context.Context, v userVars) (userData, error) {
				if calls.Add(1) > 1 {
					select {
					case <-gate:
					case <-ctx.Done():
						return userData{}, ctx.Err()
					}
				}
				return userData{Name: "n"}, nil
			}

			opts := DefaultAsyncOptions[userVars]()
			opts.ShowLoadingOnRefetch = showLoading
			ctx := context.Background()
			m := WithAsync(card, fetch, &opts).Mount(ctx, userVars{})
			defer m.Close()
			defer close(gate)

			if err := m.Await(ctx); err != nil {
				t.Fatalf("Await() error = %v", err)
			}
			m.Refetch()
			eventually(t, func() bool { return m.State().IsPending })

			want := PhaseReady
			if showLoading {
				want = PhasePending
			}
			if got := m.Phase(); got != want {
				t.Errorf("Phase() = %v, want %v", got, want)
			}
		})
	}
}

func TestMountedAwaitAfterClose(t *testing.T) {
	fetch := func(ctx context.Context, v userVars) (userData, error) {
		<-ctx.Done()
		return userData{}, ctx.Err()
	}
	m := WithAsync(card, fetch, nil).Mount(context.Background(), userVars{})
	m.Close()
	m.Close()

	if err := m.Await(context.Background()); !IsClosed(err) {
		t.Errorf("Await() error = %v, want ErrClosed", err)
	}
}

func TestMountedSubscribe(t *testing.T) {
	ctx := context.Background()
	m := WithAsync(card, loadUser, nil).Mount(ctx, userVars{ID: 3})
	defer m.Close()

	var notified atomic.Int32
	unsubscribe := m.Subscribe(func() { notified.Add(1) })
	defer unsubscribe()

	m.Refetch()
	eventually(t, func() bool { return notified.Load() > 0 })
}
