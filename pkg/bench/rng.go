package bench

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// KeySource produces the sequence of int keys a Workload drives a tree.OrderedMap with
// (SPEC_FULL.md §4.6). Implementations need not be safe for concurrent use; a concurrent
// Runner shares one KeySource across all worker goroutines, so only a source that is safe
// for concurrent use may drive a Workload with Concurrency > 1.
type KeySource interface {
	// Next returns the next key and advances the source.
	Next() int
}

// XorshiftRNG is the harness's default, reproducible key source: a 64-bit xorshift PRNG
// seeded explicitly so a recorded workload (scenario S5) can be replayed bit-for-bit.
type XorshiftRNG struct {
	state uint64
	mod   int
}

// NewXorshiftRNG seeds a generator that yields values in [0, mod). A zero seed, from which
// xorshift64 cannot advance, is replaced with a fixed non-zero constant.
func NewXorshiftRNG(seed uint64, mod int) *XorshiftRNG {
	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}
	return &XorshiftRNG{state: seed, mod: mod}
}

// Next implements KeySource using the classic 13/7/17 xorshift64 update.
func (x *XorshiftRNG) Next() int {
	s := x.state
	s ^= s << 13
	s ^= s >> 7
	s ^= s << 17
	x.state = s
	if x.mod <= 0 {
		return int(s)
	}
	return int(s % uint64(x.mod))
}

// CryptoRNG draws keys from a chacha20 keystream instead of xorshift64, for workloads that
// want a cryptographically-sourced key distribution (e.g. to rule out xorshift's known
// linear structure skewing a particular search strategy's branch predictor).
type CryptoRNG struct {
	cipher *chacha20.Cipher
	mod    int
	buf    [8]byte
	zero   [8]byte
}

// NewCryptoRNG builds a CryptoRNG with a random key and nonce, yielding values in [0, mod).
func NewCryptoRNG(mod int) (*CryptoRNG, error) {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return nil, fmt.Errorf("bench: seeding CryptoRNG key: %w", err)
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("bench: seeding CryptoRNG nonce: %w", err)
	}

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, fmt.Errorf("bench: constructing chacha20 cipher: %w", err)
	}
	return &CryptoRNG{cipher: c, mod: mod}, nil
}

// Next draws the next 8 bytes of keystream and folds them into a key in [0, mod).
func (c *CryptoRNG) Next() int {
	c.cipher.XORKeyStream(c.buf[:], c.zero[:])
	var v uint64
	for _, b := range c.buf {
		v = v<<8 | uint64(b)
	}
	if c.mod <= 0 {
		return int(v)
	}
	return int(v % uint64(c.mod))
}

// SequentialSource yields start, start+1, start+2, ... (ascending workload, e.g. scenario S4
// run forwards).
type SequentialSource struct {
	next int
}

// NewSequentialSource builds a source starting at start.
func NewSequentialSource(start int) *SequentialSource {
	return &SequentialSource{next: start}
}

func (s *SequentialSource) Next() int {
	v := s.next
	s.next++
	return v
}

// DescendingSource yields start, start-1, start-2, ... (scenario S4's descending-insert
// workload, which forces a different split pattern than ascending keys would).
type DescendingSource struct {
	next int
}

// NewDescendingSource builds a source starting at start and counting down.
func NewDescendingSource(start int) *DescendingSource {
	return &DescendingSource{next: start}
}

func (s *DescendingSource) Next() int {
	v := s.next
	s.next--
	return v
}
