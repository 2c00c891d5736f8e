package redisearch

import (
	"encoding/binary"
	"math"
)

// EncodeVector packs an embedding into the fixed-width binary layout the
// search module expects: little-endian IEEE 754 float32, row major.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector. Trailing bytes that do not
// form a whole float32 are ignored.
func DecodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
