package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Key derives the content address of a (message, tone) pair. Both parts are
// length-prefixed so "a:b"+"c" and "a"+"b:c" never share a key.
func Key(message, tone string) string {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(message)))
	h.Write(n[:])
	h.Write([]byte(message))
	binary.BigEndian.PutUint64(n[:], uint64(len(tone)))
	h.Write(n[:])
	h.Write([]byte(tone))
	return hex.EncodeToString(h.Sum(nil))
}
