package embedding_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/halcyonco/chatvault/pkg/embedding"
	"github.com/halcyonco/chatvault/pkg/vector"
)

var _ = Describe("Cache", func() {
	It("stores and retrieves vectors", func() {
		c := embedding.NewCache(4)
		c.Put("a", vector.Vector{1, 2})

		v, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(vector.Vector{1, 2}))
	})

	It("misses on unknown keys", func() {
		c := embedding.NewCache(4)
		_, ok := c.Get("nope")
		Expect(ok).To(BeFalse())
	})

	It("evicts the least recently used entry at capacity", func() {
		c := embedding.NewCache(3)
		for i := range 3 {
			c.Put(fmt.Sprintf("k%d", i), vector.Vector{float64(i)})
		}

		// Touch k0 so k1 becomes the oldest.
		_, ok := c.Get("k0")
		Expect(ok).To(BeTrue())

		c.Put("k3", vector.Vector{3})
		Expect(c.Len()).To(Equal(3))

		_, ok = c.Get("k1")
		Expect(ok).To(BeFalse())
		_, ok = c.Get("k0")
		Expect(ok).To(BeTrue())
		_, ok = c.Get("k3")
		Expect(ok).To(BeTrue())
	})

	It("replaces and promotes on Put of an existing key", func() {
		c := embedding.NewCache(2)
		c.Put("a", vector.Vector{1})
		c.Put("b", vector.Vector{2})
		c.Put("a", vector.Vector{9})

		// "a" was just promoted, so adding "c" evicts "b".
		c.Put("c", vector.Vector{3})

		v, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(vector.Vector{9}))
		_, ok = c.Get("b")
		Expect(ok).To(BeFalse())
	})

	It("copies vectors on Put and Get", func() {
		c := embedding.NewCache(4)
		original := vector.Vector{1, 2}
		c.Put("a", original)
		original[0] = 99

		v, ok := c.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v[0]).To(Equal(1.0))

		v[1] = 99
		again, _ := c.Get("a")
		Expect(again[1]).To(Equal(2.0))
	})

	It("clears all entries", func() {
		c := embedding.NewCache(4)
		c.Put("a", vector.Vector{1})
		c.Put("b", vector.Vector{2})

		c.Clear()
		Expect(c.Len()).To(Equal(0))
		_, ok := c.Get("a")
		Expect(ok).To(BeFalse())
	})

	It("falls back to the default capacity for non-positive sizes", func() {
		c := embedding.NewCache(0)
		for i := range embedding.DefaultCacheSize + 10 {
			c.Put(fmt.Sprintf("k%d", i), vector.Vector{float64(i)})
		}
		Expect(c.Len()).To(Equal(embedding.DefaultCacheSize))
	})
})
