// Package mcpclient is a JSON-RPC 2.0 over streamable-HTTP+SSE client for the
// plant's remote tool servers. Both the maintenance agent and the (optional
// real) time-series agent speak the same protocol against different base
// URLs and tool names, so the session lifecycle, SSE frame reader, and
// retry-once-on-401/404 policy live here once.
package mcpclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	plantagent "github.com/plantagent/core"
)

// sessionHeader is the HTTP header the server returns the session identifier
// on after "initialize", and that the client must echo on every subsequent
// request (§4.4, §6).
const sessionHeader = "Mcp-Session-Id"

const protocolVersion = "2025-03-26"

// Client is a JSON-RPC 2.0 client against one tool server base URL. It holds
// a single session identifier, reinitializing it once on session loss (HTTP
// 401/404) before giving up for that call (§4.4 "session renewal").
//
// A Client is safe for concurrent use; the session identifier is
// mutex-protected so the maintenance and time-series agents can share one
// instance across a workflow's fanout.
type Client struct {
	baseURL string
	http    *http.Client
	id      atomic.Uint64

	mu      sync.Mutex
	session string
}

// New creates a Client against baseURL. It does not perform the initialize
// handshake; call Init (or let CallTool do it lazily) before the first call.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Init performs the MCP "initialize" handshake and captures the session
// identifier from the response header.
func (c *Client) Init(ctx context.Context) error {
	resp, err := c.post(ctx, "initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"clientInfo":      map[string]any{"name": "plantagent", "version": "1"},
	}, "")
	if err != nil {
		return &plantagent.ErrToolProtocol{Op: "initialize", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &plantagent.ErrToolProtocol{Op: "initialize", Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw))}
	}

	session := resp.Header.Get(sessionHeader)
	if session == "" {
		return &plantagent.ErrToolProtocol{Op: "initialize", Message: "server did not return a session identifier"}
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return nil
}

// CallTool invokes "tools/call" for the given tool name and arguments,
// reading the SSE stream until the terminating JSON-RPC result frame. If the
// server reports the session is gone (401/404), it re-initializes once and
// retries; a second failure is returned as an error (§4.4).
func (c *Client) CallTool(ctx context.Context, name string, arguments any) (json.RawMessage, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == "" {
		if err := c.Init(ctx); err != nil {
			return nil, err
		}
	}

	result, retry, err := c.callOnce(ctx, name, arguments)
	if !retry {
		return result, err
	}

	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	result, _, err = c.callOnce(ctx, name, arguments)
	return result, err
}

// callOnce makes a single tools/call attempt. retry is true when the
// response indicates the session was lost (401/404) and a reinit+retry is
// warranted.
func (c *Client) callOnce(ctx context.Context, name string, arguments any) (result json.RawMessage, retry bool, err error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	resp, err := c.post(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": arguments,
	}, session)
	if err != nil {
		return nil, false, &plantagent.ErrToolProtocol{Op: "tools/call", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, true, &plantagent.ErrToolProtocol{Op: "tools/call", Message: fmt.Sprintf("session rejected with status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, false, &plantagent.ErrToolProtocol{Op: "tools/call", Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw))}
	}

	rpcResp, err := readSSEResult(resp.Body)
	if err != nil {
		return nil, false, &plantagent.ErrToolProtocol{Op: "tools/call", Message: err.Error()}
	}
	if rpcResp.Error != nil {
		return nil, false, &plantagent.ErrToolLogic{Sensor: argString(arguments, "sensor_name"), Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}
	return rpcResp.Result, false, nil
}

func argString(arguments any, key string) string {
	m, ok := arguments.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// post marshals a JSON-RPC request and issues the HTTP POST. session, if
// non-empty, is echoed back on the session header.
func (c *Client) post(ctx context.Context, method string, params any, session string) (*http.Response, error) {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.id.Add(1),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/mcp", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if session != "" {
		httpReq.Header.Set(sessionHeader, session)
	}

	return c.http.Do(httpReq)
}

// rpcRequest is a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response, as decoded from an SSE frame.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// readSSEResult reads SSE frames from r until it finds one carrying a
// JSON-RPC response, then stops. Adapted from the session-handshake/
// frame-reader idiom of an SSE-based JSON-RPC tool caller.
func readSSEResult(r io.Reader) (rpcResponse, error) {
	reader := bufio.NewReader(r)
	for {
		event, data, err := readSSEEvent(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rpcResponse{}, errors.New("sse stream closed before response")
			}
			return rpcResponse{}, err
		}

		switch event {
		case "", "message", "response":
			if len(data) == 0 {
				continue
			}
			var resp rpcResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return rpcResponse{}, fmt.Errorf("decode sse frame: %w", err)
			}
			return resp, nil
		case "close":
			return rpcResponse{}, errors.New("sse stream closed without response")
		default:
			continue
		}
	}
}

// readSSEEvent reads one SSE frame (event + data), stopping at the blank
// line that terminates it.
func readSSEEvent(reader *bufio.Reader) (string, []byte, error) {
	var event string
	var data []byte
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if event == "" && len(data) == 0 {
				continue
			}
			return event, data, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if after, ok := strings.CutPrefix(line, "event:"); ok {
			event = strings.TrimSpace(after)
			continue
		}
		if after, ok := strings.CutPrefix(line, "data:"); ok {
			chunk := strings.TrimPrefix(after, " ")
			if len(data) > 0 {
				data = append(data, '\n')
			}
			data = append(data, chunk...)
			continue
		}
	}
}
