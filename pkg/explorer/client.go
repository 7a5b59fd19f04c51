package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"walletguard/pkg/tokens"
)

// DefaultPageSize bounds how many transactions one fetch returns.
const DefaultPageSize = 20

// Transaction is one entry of an account's history, most-recent-first.
type Transaction struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// ValueEth renders the wei value as an ETH decimal string.
func (t Transaction) ValueEth() string {
	wei, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return t.Value
	}
	return tokens.FormatUnits(wei, 18)
}

// Client fetches account transaction history from an etherscan-compatible
// block explorer API.
type Client struct {
	baseURL    string
	apiKey     string
	chainID    *big.Int
	pageSize   int
	httpClient *http.Client
}

// NewClient creates an explorer client for one chain.
func NewClient(baseURL, apiKey string, chainID *big.Int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		chainID:    chainID,
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Transactions returns the most recent transactions of an address, capped
// at the client's page size.
func (c *Client) Transactions(ctx context.Context, address common.Address) ([]Transaction, error) {
	params := url.Values{}
	params.Set("chainid", c.chainID.String())
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address.Hex())
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", fmt.Sprintf("%d", c.pageSize))
	params.Set("sort", "desc")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer API returned status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read explorer response: %w", err)
	}

	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed explorer response: %w", err)
	}

	var txs []Transaction
	if err := json.Unmarshal(envelope.Result, &txs); err != nil {
		// On errors the explorer puts a message string where the
		// transaction list normally goes.
		var detail string
		_ = json.Unmarshal(envelope.Result, &detail)
		if detail == "" {
			detail = envelope.Message
		}
		return nil, fmt.Errorf("explorer API error: %s", detail)
	}

	return txs, nil
}
