package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
)

// RPCClient implements Client against a Solana JSON-RPC endpoint.
// Each method makes a single attempt; confirmation waiting is read-only
// status polling, never a resubmission.
type RPCClient struct {
	url            string
	httpClient     *http.Client
	logger         *slog.Logger
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

// RPCOption configures the RPC client.
type RPCOption func(*RPCClient)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) RPCOption {
	return func(r *RPCClient) {
		r.httpClient = c
	}
}

// WithRPCLogger configures a logger for the client.
func WithRPCLogger(logger *slog.Logger) RPCOption {
	return func(r *RPCClient) {
		r.logger = logger
	}
}

// WithConfirmTimeout bounds how long SubmitTransaction waits for confirmation.
func WithConfirmTimeout(d time.Duration) RPCOption {
	return func(r *RPCClient) {
		r.confirmTimeout = d
	}
}

// NewRPC creates a JSON-RPC ledger client for the given endpoint URL.
func NewRPC(url string, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		url:            url,
		httpClient:     &http.Client{Timeout: 20 * time.Second},
		confirmTimeout: 30 * time.Second,
		pollInterval:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %w", method, envelope.Error)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// Balance returns the account balance in lamports.
func (c *RPCClient) Balance(ctx context.Context, address string) (uint64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	params := []any{address, map[string]string{"commitment": "confirmed"}}
	if err := c.call(ctx, "getBalance", params, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

// LatestBlockhash returns the current recent-block reference.
func (c *RPCClient) LatestBlockhash(ctx context.Context) (string, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	params := []any{map[string]string{"commitment": "confirmed"}}
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return "", err
	}
	if result.Value.Blockhash == "" {
		return "", fmt.Errorf("getLatestBlockhash: empty blockhash")
	}
	return result.Value.Blockhash, nil
}

// SubmitTransaction submits the transaction and polls signature status until
// the network reports it confirmed, or the confirmation window closes.
func (c *RPCClient) SubmitTransaction(ctx context.Context, tx *Transaction) (string, error) {
	var signature string
	params := []any{tx.Base64(), map[string]string{
		"encoding":            "base64",
		"preflightCommitment": "confirmed",
	}}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}

	if err := c.awaitConfirmation(ctx, signature); err != nil {
		return "", err
	}
	return signature, nil
}

type signatureStatus struct {
	Confirmations      *uint64         `json:"confirmations"`
	ConfirmationStatus string          `json:"confirmationStatus"`
	Err                json.RawMessage `json:"err"`
}

func (c *RPCClient) awaitConfirmation(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.signatureStatus(ctx, signature, false)
		if err == nil && status != nil {
			if len(status.Err) > 0 && string(status.Err) != "null" {
				return fmt.Errorf("transaction %s rejected: %s", signature, status.Err)
			}
			if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
				return nil
			}
		}
		if err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "signature status poll failed", "signature", signature, "error", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not confirmed: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RPCClient) signatureStatus(ctx context.Context, signature string, searchHistory bool) (*signatureStatus, error) {
	var result struct {
		Value []*signatureStatus `json:"value"`
	}
	params := []any{[]string{signature}, map[string]bool{"searchTransactionHistory": searchHistory}}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) == 0 {
		return nil, nil
	}
	return result.Value[0], nil
}

// GetTransaction fetches a confirmed transaction, decoding its instructions
// into program addresses and raw payload bytes.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*TransactionInfo, error) {
	var result *struct {
		Slot        uint64 `json:"slot"`
		BlockTime   *int64 `json:"blockTime"`
		Transaction struct {
			Message struct {
				AccountKeys  []string `json:"accountKeys"`
				Instructions []struct {
					ProgramIDIndex int    `json:"programIdIndex"`
					Data           string `json:"data"`
				} `json:"instructions"`
			} `json:"message"`
		} `json:"transaction"`
	}
	params := []any{signature, map[string]any{
		"encoding":                       "json",
		"commitment":                     "confirmed",
		"maxSupportedTransactionVersion": 0,
	}}
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNotFound
	}

	info := &TransactionInfo{
		Signature: signature,
		Slot:      result.Slot,
	}
	if result.BlockTime != nil {
		info.BlockTime = time.Unix(*result.BlockTime, 0).UTC()
	}

	keys := result.Transaction.Message.AccountKeys
	for _, instr := range result.Transaction.Message.Instructions {
		if instr.ProgramIDIndex < 0 || instr.ProgramIDIndex >= len(keys) {
			continue
		}
		data, err := base58.Decode(instr.Data)
		if err != nil {
			// Skip undecodable payloads; a missing anchor is reported by the caller.
			continue
		}
		info.Instructions = append(info.Instructions, Instruction{
			ProgramID: keys[instr.ProgramIDIndex],
			Data:      data,
		})
	}

	status, err := c.signatureStatus(ctx, signature, true)
	if err == nil && status != nil {
		if status.Confirmations == nil {
			info.Finalized = true
		} else {
			info.Confirmations = *status.Confirmations
		}
	}
	if status != nil && status.ConfirmationStatus == "finalized" {
		info.Finalized = true
	}

	return info, nil
}

var _ Client = (*RPCClient)(nil)
