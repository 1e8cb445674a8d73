package fixture

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// randomPayload reads exactly n bytes from src (crypto/rand.Reader when
// src is nil). The payload only needs to be non-trivial test content,
// not a secret, but a failing entropy source is still fatal: every job
// after it would feed the tool nothing.
func randomPayload(src io.Reader, n int) ([]byte, error) {
	if src == nil {
		src = rand.Reader
	}

	buf := make([]byte, n)

	_, err := io.ReadFull(src, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropy, err)
	}

	return buf, nil
}

// encodePayload hex-encodes raw payload bytes so they travel safely
// through the tool's stdin as printable text.
func encodePayload(raw []byte) []byte {
	enc := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(enc, raw)

	return enc
}
