package blockchain

import (
	"fmt"
	"math/big"
	"math/bits"
)

// Message body operation codes observed on inbound transfers.
const (
	// opTextComment prefixes a plain text comment on a native transfer.
	opTextComment = 0x00000000
	// OpJettonTransferNotification is sent by a jetton wallet to its owner
	// when tokens arrive: op(32) query_id(64) amount(coins) ...
	OpJettonTransferNotification = 0x7362d09c
)

var bocMagic = [4]byte{0xb5, 0xee, 0x9c, 0x72}

// JettonTransferNotification is the decoded head of a jetton transfer
// notification body. Amount is in raw token units.
type JettonTransferNotification struct {
	QueryID uint64
	Amount  *big.Int
}

// ParseComment decodes a text comment from a raw message body: a root cell
// whose data starts with the zero opcode followed by the comment bytes.
// Comments longer than one cell are truncated to the root cell, which is
// plenty for intent-id correlation.
func ParseComment(raw []byte) (string, error) {
	s, err := rootCellSlice(raw)
	if err != nil {
		return "", err
	}

	op, err := s.loadUint(32)
	if err != nil {
		return "", err
	}
	if op != opTextComment {
		return "", fmt.Errorf("not a text comment: op 0x%08x", op)
	}

	tail, err := s.loadTailBytes()
	if err != nil {
		return "", err
	}
	return string(tail), nil
}

// ParseJettonNotification decodes the fixed head of a jetton transfer
// notification body.
func ParseJettonNotification(raw []byte) (*JettonTransferNotification, error) {
	s, err := rootCellSlice(raw)
	if err != nil {
		return nil, err
	}

	op, err := s.loadUint(32)
	if err != nil {
		return nil, err
	}
	if op != OpJettonTransferNotification {
		return nil, fmt.Errorf("not a jetton transfer notification: op 0x%08x", op)
	}

	queryID, err := s.loadUint(64)
	if err != nil {
		return nil, err
	}

	amount, err := s.loadCoins()
	if err != nil {
		return nil, err
	}

	return &JettonTransferNotification{QueryID: queryID, Amount: amount}, nil
}

// cellSlice is a bit-level reader over a single cell's data.
type cellSlice struct {
	data   []byte
	bitLen int
	pos    int
}

// rootCellSlice parses a serialized bag-of-cells and returns a reader over
// the root cell's data bits. References into child cells are not followed.
func rootCellSlice(raw []byte) (*cellSlice, error) {
	if len(raw) < 7 {
		return nil, fmt.Errorf("body too short for a BOC: %d bytes", len(raw))
	}
	if [4]byte(raw[:4]) != bocMagic {
		return nil, fmt.Errorf("missing BOC magic")
	}

	flags := raw[4]
	refSize := int(flags & 0x07)
	hasIdx := flags&0x80 != 0
	offSize := int(raw[5])
	if refSize < 1 || refSize > 4 || offSize < 1 || offSize > 8 {
		return nil, fmt.Errorf("implausible BOC sizes: ref=%d off=%d", refSize, offSize)
	}

	pos := 6
	readInt := func(n int) (int, error) {
		if pos+n > len(raw) {
			return 0, fmt.Errorf("truncated BOC header")
		}
		v := 0
		for i := 0; i < n; i++ {
			v = v<<8 | int(raw[pos+i])
		}
		pos += n
		return v, nil
	}

	cells, err := readInt(refSize)
	if err != nil {
		return nil, err
	}
	roots, err := readInt(refSize)
	if err != nil {
		return nil, err
	}
	if _, err := readInt(refSize); err != nil { // absent
		return nil, err
	}
	if _, err := readInt(offSize); err != nil { // tot_cells_size
		return nil, err
	}
	// Root index list.
	pos += roots * refSize
	if hasIdx {
		pos += cells * offSize
	}

	if pos+2 > len(raw) {
		return nil, fmt.Errorf("truncated BOC: no root cell")
	}
	d1, d2 := raw[pos], raw[pos+1]
	pos += 2
	if d1&0x08 != 0 {
		return nil, fmt.Errorf("exotic root cell")
	}

	dataBytes := int(d2+1) / 2
	if pos+dataBytes > len(raw) {
		return nil, fmt.Errorf("truncated BOC: root cell data")
	}
	data := raw[pos : pos+dataBytes]

	bitLen := int(d2/2) * 8
	if d2&1 != 0 {
		// Partial byte: drop the completion tag (a 1 followed by zeros).
		last := data[dataBytes-1]
		if last == 0 {
			return nil, fmt.Errorf("malformed completion tag")
		}
		bitLen += 7 - bits.TrailingZeros8(last)
	}

	return &cellSlice{data: data, bitLen: bitLen}, nil
}

func (s *cellSlice) loadUint(n int) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("loadUint: %d bits exceeds 64", n)
	}
	if s.pos+n > s.bitLen {
		return 0, fmt.Errorf("cell underflow: need %d bits, have %d", n, s.bitLen-s.pos)
	}
	var v uint64
	for i := 0; i < n; i++ {
		bit := s.pos + i
		v <<= 1
		if s.data[bit/8]&(1<<(7-bit%8)) != 0 {
			v |= 1
		}
	}
	s.pos += n
	return v, nil
}

// loadCoins reads a VarUInteger 16: a 4-bit byte length followed by that
// many bytes of big-endian amount.
func (s *cellSlice) loadCoins() (*big.Int, error) {
	n, err := s.loadUint(4)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return big.NewInt(0), nil
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := s.loadUint(8)
		if err != nil {
			return nil, err
		}
		buf[i] = byte(b)
	}
	return new(big.Int).SetBytes(buf), nil
}

// loadTailBytes reads the remaining full bytes of the cell.
func (s *cellSlice) loadTailBytes() ([]byte, error) {
	remaining := (s.bitLen - s.pos) / 8
	buf := make([]byte, remaining)
	for i := range buf {
		b, err := s.loadUint(8)
		if err != nil {
			return nil, err
		}
		buf[i] = byte(b)
	}
	return buf, nil
}
