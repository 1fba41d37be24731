package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, InitialBackoff: time.Millisecond, Multiplier: 2}
}

func TestDo(t *testing.T) {
	errBusy := errors.New("busy")
	errBad := errors.New("bad request")

	tests := []struct {
		name      string
		results   []Result[int]
		want      int
		wantCalls int
		wantErr   error
	}{
		{
			name:      "first try succeeds",
			results:   []Result[int]{Ok(7)},
			want:      7,
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			results:   []Result[int]{Transient[int](errBusy), Transient[int](errBusy), Ok(3)},
			want:      3,
			wantCalls: 3,
		},
		{
			name:      "permanent stops immediately",
			results:   []Result[int]{Permanent[int](errBad), Ok(1)},
			wantCalls: 1,
			wantErr:   errBad,
		},
		{
			name:      "transient exhausts attempts",
			results:   []Result[int]{Transient[int](errBusy), Transient[int](errBusy), Transient[int](errBusy), Ok(1)},
			wantCalls: 3,
			wantErr:   ErrExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := Do(context.Background(), fastPolicy(), func(ctx context.Context, attempt int) Result[int] {
				calls++
				if attempt != calls {
					t.Errorf("attempt = %d, want %d", attempt, calls)
				}
				return tt.results[calls-1]
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDo_ExhaustedKeepsLastError(t *testing.T) {
	errBusy := errors.New("busy")

	_, err := Do(context.Background(), fastPolicy(), func(ctx context.Context, attempt int) Result[string] {
		return Transient[string](errBusy)
	})

	if !errors.Is(err, errBusy) {
		t.Errorf("err = %v, want it to wrap %v", err, errBusy)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{Attempts: 5, InitialBackoff: time.Hour}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, p, func(ctx context.Context, attempt int) Result[int] {
		calls++
		return Transient[int](errors.New("busy"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPolicy_Backoff(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
		{5, 2 * time.Second},
		{10, 2 * time.Second},
	}

	for _, tt := range tests {
		if got := p.Backoff(tt.n); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	if Success.String() != "success" || TransientFailure.String() != "transient" || PermanentFailure.String() != "permanent" {
		t.Error("unexpected outcome names")
	}
}
