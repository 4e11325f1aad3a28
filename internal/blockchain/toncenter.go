package blockchain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tonpay/solvere/internal/models"
	"github.com/tonpay/solvere/pkg/logger"
)

const (
	// RequestTimeout bounds a single toncenter call.
	RequestTimeout = 30 * time.Second
)

// Toncenter reads account transactions through the toncenter JSON API.
type Toncenter struct {
	logger  *logger.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewToncenter creates a new Toncenter client for the given API base URL.
func NewToncenter(baseURL, apiKey string, logger *logger.Logger) *Toncenter {
	return &Toncenter{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: RequestTimeout},
	}
}

type rawMsgData struct {
	Type string `json:"@type"`
	Body string `json:"body"`
	Text string `json:"text"`
}

type rawMessage struct {
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Value       string     `json:"value"`
	MsgData     rawMsgData `json:"msg_data"`
}

type rawTransaction struct {
	Utime         int64 `json:"utime"`
	TransactionID struct {
		Hash string `json:"hash"`
	} `json:"transaction_id"`
	InMsg *rawMessage `json:"in_msg"`
}

type transactionsResponse struct {
	OK     bool             `json:"ok"`
	Result []rawTransaction `json:"result"`
	Error  string           `json:"error"`
}

// GetTransactions fetches the most recent transactions for an address,
// newest first.
func (t *Toncenter) GetTransactions(ctx context.Context, address string, limit int) ([]*models.ChainTransaction, error) {
	endpoint := fmt.Sprintf("%s/getTransactions?address=%s&limit=%d", t.baseURL, url.QueryEscape(address), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build toncenter request: %w", err)
	}
	if t.apiKey != "" {
		req.Header.Set("X-API-Key", t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var decoded transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode transactions response: %w", err)
	}
	if !decoded.OK {
		return nil, fmt.Errorf("toncenter error: %s", decoded.Error)
	}

	txs := make([]*models.ChainTransaction, 0, len(decoded.Result))
	for _, raw := range decoded.Result {
		txs = append(txs, t.mapTransaction(raw))
	}
	return txs, nil
}

func (t *Toncenter) mapTransaction(raw rawTransaction) *models.ChainTransaction {
	tx := &models.ChainTransaction{
		Hash: raw.TransactionID.Hash,
		Time: raw.Utime,
	}
	if raw.InMsg == nil {
		return tx
	}

	msg := &models.ChainMessage{
		Source:      raw.InMsg.Source,
		Destination: raw.InMsg.Destination,
	}
	if raw.InMsg.Value != "" {
		value, err := decimal.NewFromString(raw.InMsg.Value)
		if err != nil {
			t.logger.Warn("Malformed message value", "value", raw.InMsg.Value, "tx", tx.Hash)
		} else {
			msg.ValueNano = value
		}
	}

	switch raw.InMsg.MsgData.Type {
	case "msg.dataText":
		// Toncenter base64-encodes decoded text comments.
		text, err := base64.StdEncoding.DecodeString(raw.InMsg.MsgData.Text)
		if err != nil {
			t.logger.Warn("Malformed text payload", "tx", tx.Hash, "error", err)
		} else {
			msg.Comment = string(text)
		}
	case "msg.dataRaw":
		body, err := base64.StdEncoding.DecodeString(raw.InMsg.MsgData.Body)
		if err != nil {
			t.logger.Warn("Malformed raw payload", "tx", tx.Hash, "error", err)
		} else {
			msg.RawBody = body
		}
	}

	tx.In = msg
	return tx
}
