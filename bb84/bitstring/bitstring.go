// Package bitstring provides a densely-packed, fixed-length vector of
// bits with the bulk operations needed for basis sifting and error
// comparison: bitwise combination, masked selection, popcounts and
// random fills.
package bitstring

import (
	"fmt"
	"math/bits"
	"math/rand"
	"strings"
)

const wordSize = 64

// A Bits is a vector of bits packed into 64-bit words. The zero value
// is an empty vector ready to be appended to.
type Bits struct {
	words []uint64
	n     int
}

// New returns an all-zero vector of n bits.
func New(n int) Bits {
	return Bits{
		words: make([]uint64, wordsFor(n)),
		n:     n,
	}
}

// Random returns a vector of n bits drawn uniformly from r.
func Random(r *rand.Rand, n int) Bits {
	b := New(n)
	for i := range b.words {
		b.words[i] = r.Uint64()
	}
	b.clip()
	return b
}

// FromString parses a string of '1's and '0's into a Bits. Spaces are
// ignored.
func FromString(s string) (Bits, error) {
	var b Bits
	for _, c := range s {
		switch c {
		case '1':
			b.Append(true)
		case '0':
			b.Append(false)
		case ' ':
			continue
		default:
			return Bits{}, fmt.Errorf("invalid bitstring rep: %q", s)
		}
	}
	return b, nil
}

// Len returns the number of bits in b.
func (b Bits) Len() int { return b.n }

// Get returns the i-th bit.
func (b Bits) Get(i int) bool {
	return b.words[i/wordSize]&(1<<(i%wordSize)) != 0
}

// Set sets the i-th bit to v.
func (b *Bits) Set(i int, v bool) {
	if v {
		b.words[i/wordSize] |= 1 << (i % wordSize)
	} else {
		b.words[i/wordSize] &^= 1 << (i % wordSize)
	}
}

// Flip inverts the i-th bit.
func (b *Bits) Flip(i int) {
	b.words[i/wordSize] ^= 1 << (i % wordSize)
}

// Append adds a single bit to the end of b.
func (b *Bits) Append(v bool) {
	if b.n%wordSize == 0 {
		b.words = append(b.words, 0)
	}
	b.n++
	b.Set(b.n-1, v)
}

// XOr returns the bitwise XOR of b and o.
func (b Bits) XOr(o Bits) Bits {
	r := b.binop(o, func(x, y uint64) uint64 { return x ^ y })
	return r
}

// XNor returns the bitwise XNOR of b and o.
func (b Bits) XNor(o Bits) Bits {
	r := b.binop(o, func(x, y uint64) uint64 { return ^(x ^ y) })
	r.clip()
	return r
}

// And returns the bitwise AND of b and o.
func (b Bits) And(o Bits) Bits {
	return b.binop(o, func(x, y uint64) uint64 { return x & y })
}

// Or returns the bitwise OR of b and o.
func (b Bits) Or(o Bits) Bits {
	return b.binop(o, func(x, y uint64) uint64 { return x | y })
}

// Not returns the bitwise negation of b.
func (b Bits) Not() Bits {
	r := New(b.n)
	for i, w := range b.words {
		r.words[i] = ^w
	}
	r.clip()
	return r
}

// Select returns the bits of b at the positions where mask is set, in
// order. Mask and b must have equal lengths.
func (b Bits) Select(mask Bits) Bits {
	if mask.n != b.n {
		panic(fmt.Sprintf("bitstring: selecting %d bits with a %d-bit mask", b.n, mask.n))
	}
	var r Bits
	for i := 0; i < b.n; i++ {
		if mask.Get(i) {
			r.Append(b.Get(i))
		}
	}
	return r
}

// Slice returns a copy of bits [start, end).
func (b Bits) Slice(start, end int) Bits {
	if start < 0 || end < start || end > b.n {
		panic(fmt.Sprintf("bitstring: slice [%d:%d) of %d bits", start, end, b.n))
	}
	r := New(end - start)
	for i := start; i < end; i++ {
		r.Set(i-start, b.Get(i))
	}
	return r
}

// Ones returns the number of set bits in b.
func (b Bits) Ones() int {
	var sum int
	for _, w := range b.words {
		sum += bits.OnesCount64(w)
	}
	return sum
}

// Shuffle randomly permutes the bits of b, using r as a source of
// randomness.
func (b *Bits) Shuffle(r *rand.Rand) {
	r.Shuffle(b.n, b.swap)
}

func (b *Bits) swap(i, j int) {
	if b.Get(i) == b.Get(j) {
		return
	}
	b.Flip(i)
	b.Flip(j)
}

// Bytes returns the contents of b packed into bytes, little-endian
// within each word, with trailing padding bits zero.
func (b Bits) Bytes() []byte {
	r := make([]byte, (b.n+7)/8)
	for i := range r {
		r[i] = byte(b.words[i/8] >> (8 * (i % 8)))
	}
	return r
}

// Equal returns true iff a and b have the same length and contents.
func Equal(a, b Bits) bool {
	if a.n != b.n {
		return false
	}
	for i, w := range a.words {
		if w != b.words[i] {
			return false
		}
	}
	return true
}

// String renders b as a string of '1's and '0's, lowest index first.
func (b Bits) String() string {
	var sb strings.Builder
	for i := 0; i < b.n; i++ {
		if b.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (b Bits) binop(o Bits, op func(x, y uint64) uint64) Bits {
	if o.n != b.n {
		panic(fmt.Sprintf("bitstring: combining vectors of unequal length: %d != %d", b.n, o.n))
	}
	r := New(b.n)
	for i := range b.words {
		r.words[i] = op(b.words[i], o.words[i])
	}
	return r
}

// clip zeroes any bits in the final word past the logical length, so
// that popcounts stay honest after negating operations.
func (b *Bits) clip() {
	if off := b.n % wordSize; off != 0 && len(b.words) > 0 {
		b.words[len(b.words)-1] &= (1 << off) - 1
	}
}

func wordsFor(n int) int {
	return (n + wordSize - 1) / wordSize
}
