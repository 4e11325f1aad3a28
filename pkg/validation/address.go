package validation

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// ValidateAddress validates a TON wallet address. Both the user-friendly
// base64 form (48 characters, e.g. "UQ..."/"EQ...") and the raw
// "workchain:hex" form are accepted.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	if strings.Contains(addr, ":") {
		return validateRawAddress(addr)
	}
	return validateFriendlyAddress(addr)
}

// validateRawAddress checks the "workchain:hash" form, e.g. "0:abc...".
func validateRawAddress(addr string) error {
	parts := strings.SplitN(addr, ":", 2)
	if parts[0] != "0" && parts[0] != "-1" {
		return fmt.Errorf("invalid workchain %q: expected 0 or -1", parts[0])
	}
	if len(parts[1]) != 64 {
		return fmt.Errorf("invalid account id length: expected 64 hex characters, got %d", len(parts[1]))
	}
	if _, err := hex.DecodeString(parts[1]); err != nil {
		return fmt.Errorf("invalid hex account id: %w", err)
	}
	return nil
}

// validateFriendlyAddress checks the 48-character base64 form with its
// embedded CRC16 checksum.
func validateFriendlyAddress(addr string) error {
	if len(addr) != 48 {
		return fmt.Errorf("invalid address length: expected 48 characters, got %d", len(addr))
	}

	raw, err := base64.URLEncoding.DecodeString(addr)
	if err != nil {
		// Some wallets emit the standard alphabet.
		raw, err = base64.StdEncoding.DecodeString(addr)
		if err != nil {
			return fmt.Errorf("invalid base64 address: %w", err)
		}
	}
	if len(raw) != 36 {
		return fmt.Errorf("invalid decoded address length: expected 36 bytes, got %d", len(raw))
	}

	got := binary.BigEndian.Uint16(raw[34:36])
	if want := crc16(raw[:34]); got != want {
		return fmt.Errorf("address checksum mismatch")
	}
	return nil
}

// NormalizeAddress trims whitespace and converts a std-base64 friendly
// address to the url-safe alphabet so addresses compare consistently.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	addr = strings.ReplaceAll(addr, "+", "-")
	addr = strings.ReplaceAll(addr, "/", "_")
	return addr
}

// ValidateAndNormalizeAddress validates an address and returns its normalized form
func ValidateAndNormalizeAddress(addr string) (string, error) {
	normalized := NormalizeAddress(addr)
	if err := ValidateAddress(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// crc16 implements CRC-16/XMODEM as used by TON friendly addresses.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
