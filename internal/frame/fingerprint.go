package frame

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint returns a hex-encoded content hash over the index and
// every column in insertion order. Two frames with identical content
// produce the same fingerprint, which validation reports record so a
// result can be tied back to the exact table it describes.
func (f *Frame) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	for _, t := range f.index {
		binary.BigEndian.PutUint64(buf[:], uint64(t.UTC().UnixNano()))
		h.Write(buf[:])
	}
	for _, name := range f.names {
		h.Write([]byte(name))
		for _, v := range f.cols[name] {
			if !v.Valid {
				h.Write([]byte{0})
				continue
			}
			h.Write([]byte(v.Decimal.String()))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
