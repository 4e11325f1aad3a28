package blockchain

import (
	"encoding/binary"
	"math/big"
)

// Encoders for single-cell message bodies, the counterpart of the readers
// in boc.go. Used to synthesize payloads in tests and local tooling; kept
// in the package so encode and decode stay in sync.

// EncodeCommentBody builds a single-cell BOC carrying a text comment
// (zero opcode + comment bytes). The comment must fit one cell.
func EncodeCommentBody(comment string) []byte {
	payload := make([]byte, 0, 4+len(comment))
	payload = append(payload, 0, 0, 0, 0)
	payload = append(payload, []byte(comment)...)
	return wrapCell(payload, false)
}

// EncodeJettonNotificationBody builds a single-cell BOC with the head of a
// jetton transfer notification: op(32) query_id(64) amount(coins).
func EncodeJettonNotificationBody(queryID uint64, amount *big.Int) []byte {
	head := make([]byte, 0, 12)
	head = binary.BigEndian.AppendUint32(head, OpJettonTransferNotification)
	head = binary.BigEndian.AppendUint64(head, queryID)

	w := &bitWriter{}
	for _, b := range head {
		w.writeBits(uint64(b), 8)
	}
	amt := amount.Bytes()
	w.writeBits(uint64(len(amt)), 4)
	for _, b := range amt {
		w.writeBits(uint64(b), 8)
	}

	data, padded := w.finish()
	return wrapCell(data, padded)
}

// wrapCell wraps cell data into a minimal one-cell BOC. padded marks that
// the last byte carries a completion tag.
func wrapCell(data []byte, padded bool) []byte {
	d2 := byte(len(data) * 2)
	if padded {
		d2 = byte(len(data)*2 - 1)
	}

	out := make([]byte, 0, len(data)+12)
	out = append(out, bocMagic[:]...)
	out = append(out, 0x01, 0x01)        // ref size, offset size
	out = append(out, 0x01, 0x01, 0x00)  // cells, roots, absent
	out = append(out, byte(len(data)+2)) // tot_cells_size
	out = append(out, 0x00)              // root index
	out = append(out, 0x00, d2)          // cell descriptors
	out = append(out, data...)
	return out
}

// bitWriter accumulates big-endian bits, mirroring cellSlice reads.
type bitWriter struct {
	buf  []byte
	bits int
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		if w.bits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v&(1<<uint(i)) != 0 {
			w.buf[w.bits/8] |= 1 << (7 - uint(w.bits)%8)
		}
		w.bits++
	}
}

// finish appends the completion tag when the stream is not byte-aligned
// and reports whether padding happened.
func (w *bitWriter) finish() ([]byte, bool) {
	if w.bits%8 == 0 {
		return w.buf, false
	}
	w.buf[w.bits/8] |= 1 << (7 - uint(w.bits)%8)
	return w.buf, true
}
