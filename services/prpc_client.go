package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"pnodewatch/config"
	"pnodewatch/models"
)

// PRPCClient talks JSON-RPC 2.0 to the upstream pRPC bridge that
// publishes the node list. Endpoint-dialect probing (REST vs JSON-RPC
// method variants) is handled upstream; this client speaks one dialect.
type PRPCClient struct {
	config     *config.Config
	httpClient *http.Client
}

func NewPRPCClient(cfg *config.Config) *PRPCClient {
	timeout := 10 * time.Second
	if t := cfg.PRPCTimeoutDuration(); t > 0 && t <= 15*time.Second {
		timeout = t
	}

	return &PRPCClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
		},
	}
}

// Call posts one JSON-RPC request with retry and exponential backoff on
// 5xx/429 responses.
func (c *PRPCClient) Call(method string, params interface{}) (*models.RPCResponse, error) {
	reqBody := models.RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.config.PRPC.Endpoint, "/") + "/rpc"

	maxRetries := c.config.PRPC.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var resp *http.Response
	delay := 200 * time.Millisecond
	for i := 0; i < maxRetries; i++ {
		httpReq, reqErr := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
		if reqErr != nil {
			return nil, fmt.Errorf("failed to create request: %w", reqErr)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err = c.httpClient.Do(httpReq)
		if err == nil {
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				err = fmt.Errorf("server error: %d", resp.StatusCode)
			} else {
				break
			}
		}

		if i < maxRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error %d from %s", resp.StatusCode, method)
	}

	var rpcResp models.RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return &rpcResp, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return &rpcResp, nil
}

// GetPods fetches the raw node list with per-node stats.
func (c *PRPCClient) GetPods() (*models.PodsResponse, error) {
	resp, err := c.Call("get-pods-with-stats", nil)
	if err != nil {
		return nil, err
	}

	var podsResp models.PodsResponse
	if err := json.Unmarshal(resp.Result, &podsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pods result: %w", err)
	}
	return &podsResp, nil
}
