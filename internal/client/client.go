package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/simonvc/finreports/internal/api"
	"github.com/simonvc/finreports/internal/ledger"
	"github.com/simonvc/finreports/internal/report"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Error is a non-2xx response from the server.
type Error struct {
	Status int
	Body   api.Error
}

func (e *Error) Error() string {
	msg := e.Body.Error
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	return fmt.Sprintf("server error (%d): %s", e.Status, msg)
}

func (c *Client) BalanceSheet(ctx context.Context, asOf string) (*api.BalanceSheet, error) {
	params := url.Values{"asOf": {asOf}}
	var result api.BalanceSheet
	if err := c.get(ctx, "/api/reports/balance-sheet?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProfitLoss(ctx context.Context, start, end string) (*api.ProfitLoss, error) {
	params := url.Values{"start": {start}, "end": {end}}
	var result api.ProfitLoss
	if err := c.get(ctx, "/api/reports/profit-loss?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Spreadsheet downloads a statement as an xlsx workbook. start is ignored
// for the balance sheet.
func (c *Client) Spreadsheet(ctx context.Context, kind report.Kind, start, end string) ([]byte, error) {
	params := url.Values{"format": {"xlsx"}}
	switch kind {
	case report.BalanceSheet:
		params.Set("asOf", end)
	case report.ProfitAndLoss:
		params.Set("start", start)
		params.Set("end", end)
	default:
		return nil, fmt.Errorf("%w: %q", report.ErrUnknownKind, kind)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/reports/"+string(kind)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var buf bytes.Buffer
	if err := c.doRequest(req, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Client) CreateAccount(ctx context.Context, req api.CreateAccountRequest) (*api.Account, error) {
	var result api.Account
	if err := c.post(ctx, "/api/accounts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, classification, parentID string) ([]ledger.Account, error) {
	params := url.Values{}
	if classification != "" {
		params.Set("classification", classification)
	}
	if parentID != "" {
		params.Set("parent_id", parentID)
	}
	var result []ledger.Account
	if err := c.get(ctx, "/api/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAccount fetches an account with its balance as of asOf; an empty asOf
// means all postings.
func (c *Client) GetAccount(ctx context.Context, id, asOf string) (*api.Account, error) {
	path := "/api/accounts/" + url.PathEscape(id)
	if asOf != "" {
		path += "?" + url.Values{"asOf": {asOf}}.Encode()
	}
	var result api.Account
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.del(ctx, "/api/accounts/"+url.PathEscape(id))
}

func (c *Client) PostTransaction(ctx context.Context, req api.PostTransactionRequest) (*api.Transaction, error) {
	var result api.Transaction
	if err := c.post(ctx, "/api/journal-entries", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type TxnQuery struct {
	AccountID string
	Start     string
	End       string
	Limit     int
	Offset    int
}

func (c *Client) ListTransactions(ctx context.Context, q TxnQuery) ([]api.Transaction, error) {
	params := url.Values{}
	if q.AccountID != "" {
		params.Set("account_id", q.AccountID)
	}
	if q.Start != "" {
		params.Set("start", q.Start)
	}
	if q.End != "" {
		params.Set("end", q.End)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	var result []api.Transaction
	if err := c.get(ctx, "/api/journal-entries?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*api.Transaction, error) {
	var result api.Transaction
	if err := c.get(ctx, "/api/journal-entries/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Chart(ctx context.Context) (*api.Chart, error) {
	var result api.Chart
	if err := c.get(ctx, "/api/chart", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReloadChart(ctx context.Context) (*api.Chart, error) {
	var result api.Chart
	if err := c.post(ctx, "/api/chart/reload", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the server is reachable and its store answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doRequest(req, result)
}

// doRequest sends req and decodes a 2xx body into result. A *bytes.Buffer
// result receives the raw body.
func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		if json.Unmarshal(bodyBytes, &apiErr.Body) != nil || apiErr.Body.Error == "" {
			apiErr.Body = api.Error{Error: http.StatusText(resp.StatusCode), Message: string(bodyBytes)}
		}
		return apiErr
	}

	switch r := result.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		r.Write(bodyBytes)
		return nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
