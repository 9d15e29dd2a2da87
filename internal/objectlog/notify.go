package objectlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

// NotifyMethod is the JSON-RPC method called for every delivered entry. The
// params are the entry itself.
const NotifyMethod = "object_log.entry"

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object returned by an endpoint.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// errRetryable marks 5xx and network failures.
var errRetryable = errors.New("retryable")

// Notifier delivers object log entries to external endpoints as JSON-RPC 2.0
// calls over HTTP.
type Notifier struct {
	httpClient *http.Client
	nextID     atomic.Int64
	maxRetries int
	baseDelay  time.Duration
}

// NewNotifier creates a Notifier. Failed attempts are retried with
// exponential backoff starting at baseDelay.
func NewNotifier(maxRetries int, baseDelay, timeout time.Duration) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Handler returns a HandlerFunc that delivers each entry to endpoint. An
// RPC error or exhausted retries fail the entry so the follower retries it
// on the next poll.
func (n *Notifier) Handler(endpoint string) HandlerFunc {
	return func(ctx context.Context, e sampledb.ObjectLogEntry) error {
		if _, err := n.Call(ctx, endpoint, NotifyMethod, e); err != nil {
			return fmt.Errorf("notify %s of log entry %d: %w", endpoint, e.LogEntryID, err)
		}
		return nil
	}
}

// Call sends one request to endpoint and returns its result. Only 5xx and
// network failures are retried.
func (n *Notifier) Call(ctx context.Context, endpoint, method string, params any) (json.RawMessage, error) {
	data, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      n.nextID.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	var lastErr error
	for attempt := range n.maxRetries + 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := n.do(ctx, endpoint, data)
		if err == nil {
			if resp.Error != nil {
				return nil, resp.Error
			}
			return resp.Result, nil
		}
		if !errors.Is(err, errRetryable) {
			return nil, err
		}
		lastErr = err

		if attempt < n.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(n.baseDelay << attempt):
			}
		}
	}

	return nil, fmt.Errorf("rpc call failed after %d attempts: %w", n.maxRetries+1, lastErr)
}

func (n *Notifier) do(ctx context.Context, endpoint string, data []byte) (*rpcResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http request: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", errRetryable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: server error: %d", errRetryable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal rpc response: %w", err)
	}
	return &rpcResp, nil
}
