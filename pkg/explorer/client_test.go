package explorer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var account = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "11155111", q.Get("chainid"))
		assert.Equal(t, "account", q.Get("module"))
		assert.Equal(t, "txlist", q.Get("action"))
		assert.Equal(t, account.Hex(), q.Get("address"))
		assert.Equal(t, "20", q.Get("offset"))
		assert.Equal(t, "desc", q.Get("sort"))
		assert.Equal(t, "test-key", q.Get("apikey"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "1",
			"message": "OK",
			"result": []map[string]string{
				{
					"hash":  "0xaaa",
					"from":  account.Hex(),
					"to":    "0x2222222222222222222222222222222222222222",
					"value": "1500000000000000000",
				},
				{
					"hash":  "0xbbb",
					"from":  "0x3333333333333333333333333333333333333333",
					"to":    account.Hex(),
					"value": "0",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", big.NewInt(11155111))
	txs, err := c.Transactions(context.Background(), account)
	require.NoError(t, err)

	require.Len(t, txs, 2)
	assert.Equal(t, "0xaaa", txs[0].Hash)
	assert.Equal(t, "1.5", txs[0].ValueEth())
	assert.Equal(t, "0", txs[1].ValueEth())
}

func TestTransactionsEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "0",
			"message": "No transactions found",
			"result":  []map[string]string{},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", big.NewInt(11155111))
	txs, err := c.Transactions(context.Background(), account)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

// On errors the explorer replaces the result array with a message string.
func TestTransactionsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "0",
			"message": "NOTOK",
			"result":  "Max rate limit reached",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", big.NewInt(11155111))
	_, err := c.Transactions(context.Background(), account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Max rate limit reached")
}

func TestTransactionsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", big.NewInt(11155111))
	_, err := c.Transactions(context.Background(), account)
	assert.Error(t, err)
}

func TestValueEthPassesThroughNonNumeric(t *testing.T) {
	tx := Transaction{Value: "bogus"}
	assert.Equal(t, "bogus", tx.ValueEth())
}
