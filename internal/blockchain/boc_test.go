package blockchain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommentRoundTrip(t *testing.T) {
	body := EncodeCommentBody("intent_8b6a1f2e payment")

	comment, err := ParseComment(body)
	require.NoError(t, err)
	assert.Equal(t, "intent_8b6a1f2e payment", comment)
}

func TestParseCommentEmpty(t *testing.T) {
	comment, err := ParseComment(EncodeCommentBody(""))
	require.NoError(t, err)
	assert.Equal(t, "", comment)
}

func TestParseCommentRejectsWrongOp(t *testing.T) {
	body := EncodeJettonNotificationBody(1, big.NewInt(100))
	_, err := ParseComment(body)
	assert.Error(t, err)
}

func TestParseCommentRejectsGarbage(t *testing.T) {
	_, err := ParseComment([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)

	_, err = ParseComment([]byte("definitely not a bag of cells"))
	assert.Error(t, err)
}

func TestParseJettonNotificationRoundTrip(t *testing.T) {
	// 30 USDT in raw token units.
	amount := big.NewInt(30_000_000)
	body := EncodeJettonNotificationBody(42, amount)

	note, err := ParseJettonNotification(body)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), note.QueryID)
	assert.Equal(t, 0, note.Amount.Cmp(amount))
}

func TestParseJettonNotificationLargeAmount(t *testing.T) {
	amount := new(big.Int)
	amount.SetString("123456789012345678", 10)
	body := EncodeJettonNotificationBody(0, amount)

	note, err := ParseJettonNotification(body)
	require.NoError(t, err)
	assert.Equal(t, 0, note.Amount.Cmp(amount))
}

func TestParseJettonNotificationZeroAmount(t *testing.T) {
	note, err := ParseJettonNotification(EncodeJettonNotificationBody(7, big.NewInt(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(0), note.Amount.Int64())
}

func TestParseJettonNotificationRejectsComment(t *testing.T) {
	_, err := ParseJettonNotification(EncodeCommentBody("hello"))
	assert.Error(t, err)
}

func TestParseJettonNotificationTruncated(t *testing.T) {
	body := EncodeJettonNotificationBody(42, big.NewInt(1_000_000))
	_, err := ParseJettonNotification(body[:len(body)-3])
	assert.Error(t, err)
}

func TestRootCellSliceRejectsBadMagic(t *testing.T) {
	body := EncodeCommentBody("x")
	body[0] = 0x00
	_, err := rootCellSlice(body)
	assert.Error(t, err)
}
