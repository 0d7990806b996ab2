package buffer

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRingBufferProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("length never exceeds capacity", prop.ForAll(
		func(capacity int, writes [][]byte) bool {
			rb := NewRingBuffer(capacity)
			for _, w := range writes {
				rb.Write(w)
			}
			return rb.Len() <= rb.Cap()
		},
		gen.IntRange(1, 64),
		gen.SliceOf(gen.SliceOf(gen.UInt8())),
	))

	properties.Property("buffer holds the suffix of everything written", prop.ForAll(
		func(capacity int, writes [][]byte) bool {
			rb := NewRingBuffer(capacity)
			var all []byte
			for _, w := range writes {
				rb.Write(w)
				all = append(all, w...)
			}

			want := all
			if len(all) > capacity {
				want = all[len(all)-capacity:]
			}
			got := rb.ReadAll()
			if len(want) == 0 {
				return got == nil
			}
			return bytes.Equal(got, want)
		},
		gen.IntRange(1, 64),
		gen.SliceOf(gen.SliceOf(gen.UInt8())),
	))

	properties.TestingRun(t)
}
