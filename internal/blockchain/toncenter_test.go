package blockchain

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonpay/solvere/pkg/logger"
)

func TestGetTransactions(t *testing.T) {
	comment := base64.StdEncoding.EncodeToString([]byte("intent_abc payment"))
	body := base64.StdEncoding.EncodeToString(EncodeCommentBody("raw comment"))

	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotKey = r.Header.Get("X-API-Key")
		fmt.Fprintf(w, `{
			"ok": true,
			"result": [
				{
					"utime": 1700000000,
					"transaction_id": {"hash": "hash1"},
					"in_msg": {
						"source": "0:sender",
						"destination": "0:wallet",
						"value": "5100000000",
						"msg_data": {"@type": "msg.dataText", "text": %q}
					}
				},
				{
					"utime": 1700000001,
					"transaction_id": {"hash": "hash2"},
					"in_msg": {
						"source": "0:jettonwallet",
						"destination": "0:wallet",
						"value": "1",
						"msg_data": {"@type": "msg.dataRaw", "body": %q}
					}
				},
				{
					"utime": 1700000002,
					"transaction_id": {"hash": "hash3"}
				}
			]
		}`, comment, body)
	}))
	defer srv.Close()

	client := NewToncenter(srv.URL, "secret", logger.NewNop())
	txs, err := client.GetTransactions(context.Background(), "0:wallet", 100)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "/getTransactions?address=0%3Awallet&limit=100", gotPath)
	assert.Equal(t, "secret", gotKey)

	assert.Equal(t, "hash1", txs[0].Hash)
	assert.Equal(t, int64(1700000000), txs[0].Time)
	require.NotNil(t, txs[0].In)
	assert.Equal(t, "0:sender", txs[0].In.Source)
	assert.Equal(t, "5100000000", txs[0].In.ValueNano.String())
	assert.Equal(t, "intent_abc payment", txs[0].In.Comment)
	assert.True(t, txs[0].Inbound())

	require.NotNil(t, txs[1].In)
	assert.Empty(t, txs[1].In.Comment)
	decoded, err := ParseComment(txs[1].In.RawBody)
	require.NoError(t, err)
	assert.Equal(t, "raw comment", decoded)

	assert.Nil(t, txs[2].In)
	assert.False(t, txs[2].Inbound())
}

func TestGetTransactionsOmitsAPIKeyHeaderWhenUnset(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["X-Api-Key"]
		w.Write([]byte(`{"ok": true, "result": []}`))
	}))
	defer srv.Close()

	client := NewToncenter(srv.URL, "", logger.NewNop())
	_, err := client.GetTransactions(context.Background(), "0:wallet", 10)
	require.NoError(t, err)
	assert.False(t, sawHeader)
}

func TestGetTransactionsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "rate limit exceeded"}`))
	}))
	defer srv.Close()

	client := NewToncenter(srv.URL, "", logger.NewNop())
	_, err := client.GetTransactions(context.Background(), "0:wallet", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGetTransactionsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewToncenter(srv.URL, "", logger.NewNop())
	_, err := client.GetTransactions(context.Background(), "0:wallet", 10)
	assert.Error(t, err)
}

func TestGetTransactionsToleratesMalformedPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"ok": true,
			"result": [
				{
					"utime": 1700000000,
					"transaction_id": {"hash": "hash1"},
					"in_msg": {
						"source": "0:sender",
						"value": "not-a-number",
						"msg_data": {"@type": "msg.dataText", "text": "%%%not base64%%%"}
					}
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewToncenter(srv.URL, "", logger.NewNop())
	txs, err := client.GetTransactions(context.Background(), "0:wallet", 10)
	require.NoError(t, err, "a single malformed message must not fail the whole page")
	require.Len(t, txs, 1)
	assert.True(t, txs[0].In.ValueNano.IsZero())
	assert.Empty(t, txs[0].In.Comment)
}
