package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ayusman/wastesort/internal/retry"
)

var (
	// ErrTimeout is returned when a hook runs longer than the executor timeout.
	ErrTimeout = errors.New("hook execution timeout")
	// ErrRejected is returned when a hook answers with success=false.
	ErrRejected = errors.New("hook rejected request")
	// ErrBadResponse is returned when a hook's stdout is not a valid Response.
	ErrBadResponse = errors.New("invalid hook response")
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 5 * time.Second

// Executor runs hooks with a timeout and retries transient failures.
type Executor struct {
	timeout time.Duration
	policy  retry.Policy
}

// NewExecutor creates a new Executor with the given per-run timeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		timeout: timeout,
		policy:  retry.DefaultPolicy(),
	}
}

// SetPolicy replaces the retry policy.
func (e *Executor) SetPolicy(p retry.Policy) {
	e.policy = p
}

// Execute runs the hook once: it marshals req to the hook's stdin and parses
// its stdout as a Response. A response with success=false is returned as is.
func (e *Executor) Execute(ctx context.Context, h *Hook, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Path

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %v", ErrTimeout, e.timeout)
	}

	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("hook execution failed: %w, stderr: %s", err, s)
		}
		return nil, fmt.Errorf("hook execution failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("%w: %w, stdout: %s", ErrBadResponse, err, stdout.String())
	}

	return &response, nil
}

// Run executes the hook under the retry policy. Timeouts, crashes and
// responses marked retryable are retried; malformed output, a missing
// executable and plain rejections are not.
func (e *Executor) Run(ctx context.Context, h *Hook, req *Request) (*Response, error) {
	return retry.Do(ctx, e.policy, func(ctx context.Context, attempt int) retry.Result[*Response] {
		return e.classify(e.Execute(ctx, h, req))
	})
}

func (e *Executor) classify(resp *Response, err error) retry.Result[*Response] {
	switch {
	case err == nil && resp.Success:
		return retry.Ok(resp)
	case err == nil && resp.Retryable:
		return retry.Transient[*Response](fmt.Errorf("%w: %s", ErrRejected, resp.Error))
	case err == nil:
		return retry.Permanent[*Response](fmt.Errorf("%w: %s", ErrRejected, resp.Error))
	case errors.Is(err, ErrBadResponse), errors.Is(err, exec.ErrNotFound), errors.Is(err, context.Canceled):
		return retry.Permanent[*Response](err)
	default:
		return retry.Transient[*Response](err)
	}
}
