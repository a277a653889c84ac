// Package client provides a Go client for the Gatewei API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a Gatewei API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a new Gatewei client
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WidgetConfig is the public payment configuration
type WidgetConfig struct {
	ChainID         int64  `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	Beneficiary     string `json:"beneficiary"`
	PriceWei        string `json:"priceWei"`
	PriceEther      string `json:"priceEther"`
}

// VerifyResult is the server's verdict for one transaction
type VerifyResult struct {
	Status      string `json:"status"` // "verified", "pending", "rejected"
	Reason      string `json:"reason,omitempty"`
	TxHash      string `json:"txHash"`
	Payer       string `json:"payer,omitempty"`
	Beneficiary string `json:"beneficiary,omitempty"`
	AmountWei   string `json:"amountWei,omitempty"`
	AmountEther string `json:"amountEther,omitempty"`
	VerifiedAt  string `json:"verifiedAt,omitempty"`
}

// Verified reports whether the payment was confirmed
func (r *VerifyResult) Verified() bool { return r.Status == "verified" }

// Pending reports whether the transaction is still unmined
func (r *VerifyResult) Pending() bool { return r.Status == "pending" }

// Resource is public resource metadata
type Resource struct {
	ResourceID     string `json:"resourceId"`
	PriceWei       string `json:"priceWei"`
	PriceEther     string `json:"priceEther"`
	LifetimeAccess bool   `json:"lifetimeAccess"`
	Active         bool   `json:"active"`
	ContentType    string `json:"contentType"`
	PaymentCount   string `json:"paymentCount"`
	TotalRevenue   string `json:"totalRevenueWei"`
}

// Access is the on-chain access check for one wallet
type Access struct {
	ResourceID string `json:"resourceId"`
	Wallet     string `json:"wallet"`
	HasAccess  bool   `json:"hasAccess"`
}

// Content is the classified content descriptor
type Content struct {
	Kind       string `json:"kind"`
	Locator    string `json:"locator"`
	PlatformID string `json:"platformId,omitempty"`
}

// Record is one stored verification record
type Record struct {
	TxHash      string `json:"txHash"`
	Payer       string `json:"payer"`
	Beneficiary string `json:"beneficiary"`
	AmountWei   string `json:"amountWei"`
	AmountEther string `json:"amountEther"`
	VerifiedAt  string `json:"verifiedAt"`
}

// RecordsPage is the record listing
type RecordsPage struct {
	Records []Record `json:"records"`
	Count   int      `json:"count"`
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config fetches the public payment configuration
func (c *Client) Config(ctx context.Context) (*WidgetConfig, error) {
	var resp WidgetConfig
	if err := c.get(ctx, "/api/v1/config", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify submits a transaction hash for payment verification. All three
// protocol outcomes decode into a VerifyResult; only transport failures
// and request errors come back as an error.
func (c *Client) Verify(ctx context.Context, txHash string) (*VerifyResult, error) {
	body, err := json.Marshal(map[string]string{"txHash": txHash})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/verify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doVerify(req)
}

// VerifyStatus re-checks a transaction hash
func (c *Client) VerifyStatus(ctx context.Context, txHash string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/verify/"+url.PathEscape(txHash), nil)
	if err != nil {
		return nil, err
	}
	return c.doVerify(req)
}

// doVerify decodes verdicts from their status-coded responses. 200, 202 and
// 402 all carry a VerifyResult body.
func (c *Client) doVerify(req *http.Request) (*VerifyResult, error) {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusPaymentRequired:
		var result VerifyResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decoding verdict: %w", err)
		}
		return &result, nil
	default:
		return nil, c.parseError(resp)
	}
}

// GetResource fetches public resource metadata
func (c *Client) GetResource(ctx context.Context, resourceID string) (*Resource, error) {
	var resp Resource
	if err := c.get(ctx, "/api/v1/resources/"+url.PathEscape(resourceID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccess checks whether a wallet has paid for a resource
func (c *Client) GetAccess(ctx context.Context, resourceID, wallet string) (*Access, error) {
	var resp Access
	path := fmt.Sprintf("/api/v1/resources/%s/access?wallet=%s",
		url.PathEscape(resourceID), url.QueryEscape(wallet))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetContent fetches the gated content descriptor for a paying wallet
func (c *Client) GetContent(ctx context.Context, resourceID, wallet string) (*Content, error) {
	var resp Content
	path := fmt.Sprintf("/api/v1/resources/%s/content?wallet=%s",
		url.PathEscape(resourceID), url.QueryEscape(wallet))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListRecords lists stored verification records (admin)
func (c *Client) ListRecords(ctx context.Context) (*RecordsPage, error) {
	var resp RecordsPage
	if err := c.get(ctx, "/api/v1/records", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecord fetches one stored verification record (admin)
func (c *Client) GetRecord(ctx context.Context, txHash string) (*Record, error) {
	var resp Record
	if err := c.get(ctx, "/api/v1/records/"+url.PathEscape(txHash), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteRecord removes one stored verification record (admin)
func (c *Client) DeleteRecord(ctx context.Context, txHash string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/v1/records/"+url.PathEscape(txHash), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return &errResp.Error
}
