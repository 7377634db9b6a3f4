package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
)

// StreamSource is a replayable Source. Bytes come from HMAC-SHA256(key,
// "salt:nonce:round") blocks, four bytes per float, so the same key, salt and
// nonce always yield the same sequence of draws.
//
// A StreamSource is not safe for concurrent use.
type StreamSource struct {
	key   string
	salt  string
	nonce uint64

	round  uint64
	pos    int
	buffer [32]byte
}

// NewStreamSource creates a stream positioned at its first byte.
func NewStreamSource(key, salt string, nonce uint64) *StreamSource {
	s := &StreamSource{
		key:   key,
		salt:  salt,
		nonce: nonce,
	}
	s.fill()
	return s
}

// Next returns the next byte of the stream.
func (s *StreamSource) Next() byte {
	if s.pos >= len(s.buffer) {
		s.round++
		s.pos = 0
		s.fill()
	}

	b := s.buffer[s.pos]
	s.pos++
	return b
}

// NextFloat returns a float in [0, 1) built from the next four bytes.
func (s *StreamSource) NextFloat() float64 {
	return bytesToFloat([4]byte{s.Next(), s.Next(), s.Next(), s.Next()})
}

// Intn scales the next float to [0, n).
func (s *StreamSource) Intn(n int) int {
	idx := int(math.Floor(s.NextFloat() * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Advance moves the stream to a new nonce and rewinds it. Simulations call it
// between rounds so each round draws from its own block sequence.
func (s *StreamSource) Advance() {
	s.nonce++
	s.round = 0
	s.pos = 0
	s.fill()
}

// Nonce reports the nonce currently feeding the stream.
func (s *StreamSource) Nonce() uint64 {
	return s.nonce
}

func (s *StreamSource) fill() {
	h := hmac.New(sha256.New, []byte(s.key))
	fmt.Fprintf(h, "%s:%d:%d", s.salt, s.nonce, s.round)
	copy(s.buffer[:], h.Sum(nil))
}

func bytesToFloat(b [4]byte) float64 {
	result := 0.0
	for i, v := range b {
		result += float64(v) / math.Pow(256, float64(i+1))
	}
	return result
}
