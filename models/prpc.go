package models

import "encoding/json"

// JSON-RPC 2.0 request envelope for the pRPC bridge.
type RPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PodsResponse is the get-pods-with-stats result: the raw node list the
// poller maps into NodeRecord values.
type PodsResponse struct {
	Pods       []Pod `json:"pods"`
	TotalCount int   `json:"total_count"`
}

type Pod struct {
	Pubkey            string  `json:"pubkey"`
	Address           string  `json:"address"`
	Status            string  `json:"status,omitempty"`
	Version           string  `json:"version,omitempty"`
	LastSeenTimestamp int64   `json:"last_seen_timestamp"`
	PeerCount         int     `json:"peer_count"`
	LatencyMs         float64 `json:"latency_ms,omitempty"`
	StorageCommitted  int64   `json:"storage_committed,omitempty"`
	StorageUsed       int64   `json:"storage_used,omitempty"`
	Uptime            int64   `json:"uptime,omitempty"`
	IsValidator       bool    `json:"is_validator,omitempty"`
	Country           string  `json:"country,omitempty"`
	Region            string  `json:"region,omitempty"`
}
