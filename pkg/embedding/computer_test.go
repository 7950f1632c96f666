package embedding_test

import (
	"context"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/embedding"
	testutils "github.com/halcyonco/chatvault/pkg/utils/test"
	"github.com/halcyonco/chatvault/pkg/vector"
	"github.com/halcyonco/chatvault/pkg/wordvec"
)

// countingProvider wraps a provider and counts lookups, so tests can tell a
// cache hit from a recomputation.
type countingProvider struct {
	wordvec.Provider
	lookups int
}

func (p *countingProvider) VectorFor(token string) (vector.Vector, bool) {
	p.lookups++
	return p.Provider.VectorFor(token)
}

var _ = Describe("Computer", func() {
	var (
		ctx      context.Context
		provider *testutils.StaticProvider
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = testutils.NewStaticProvider(map[string]vector.Vector{
			"hello": {1, 0},
			"world": {0, 1},
			"up":    {0, -1},
			"down":  {-1, 0},
		})
	})

	newComputer := func() *embedding.Computer {
		return embedding.NewComputer(provider, embedding.NewCache(16), zap.NewNop())
	}

	It("returns the unit-normalized mean of known token vectors", func() {
		v, err := newComputer().Compute(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(HaveLen(2))
		Expect(vector.Norm(v)).To(BeNumerically("~", 1.0, 1e-9))
		Expect(v[0]).To(BeNumerically("~", math.Sqrt2/2, 1e-9))
		Expect(v[1]).To(BeNumerically("~", math.Sqrt2/2, 1e-9))
	})

	It("skips tokens without a known vector", func() {
		withUnknown, err := newComputer().Compute(ctx, "hello xyzzy quux")
		Expect(err).NotTo(HaveOccurred())

		clean, err := newComputer().Compute(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(withUnknown).To(Equal(clean))
	})

	It("returns absent for text with no usable tokens", func() {
		c := newComputer()

		v, err := c.Compute(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNil())

		v, err = c.Compute(ctx, "xyzzy quux")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNil())
	})

	It("produces a zero vector when opposing tokens cancel", func() {
		// "hello down" has known tokens but their mean is the zero vector;
		// normalization leaves it untouched and the result is still a real
		// (if useless) vector, not absent.
		v, err := newComputer().Compute(ctx, "hello down")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).NotTo(BeNil())
		Expect(vector.IsZero(v)).To(BeTrue())
	})

	It("is deterministic for identical input", func() {
		c := newComputer()
		a, err := c.Compute(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		b, err := c.Compute(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())

		for i := range a {
			Expect(math.Float64bits(a[i])).To(Equal(math.Float64bits(b[i])))
		}
	})

	It("ignores tokens beyond the cap", func() {
		capped := strings.Repeat("hello ", embedding.MaxTokens) + strings.Repeat("world ", 50)

		v, err := newComputer().Compute(ctx, capped)
		Expect(err).NotTo(HaveOccurred())

		// Only the first 100 tokens (all "hello") contribute.
		Expect(v[0]).To(BeNumerically("~", 1.0, 1e-9))
		Expect(v[1]).To(BeNumerically("~", 0.0, 1e-9))
	})

	It("serves repeated computations from the cache", func() {
		counting := &countingProvider{Provider: provider}
		c := embedding.NewComputer(counting, embedding.NewCache(16), zap.NewNop())

		_, err := c.Compute(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		after := counting.lookups

		_, err = c.Compute(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(counting.lookups).To(Equal(after))
	})

	It("works without a cache", func() {
		c := embedding.NewComputer(provider, nil, zap.NewNop())

		v, err := c.Compute(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).NotTo(BeNil())
	})

	It("honors context cancellation", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newComputer().Compute(cancelled, "hello world")
		Expect(err).To(MatchError(context.Canceled))
	})

	It("does not let callers mutate cached values", func() {
		c := newComputer()

		a, err := c.Compute(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		a[0] = 42

		b, err := c.Compute(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(b[0]).To(BeNumerically("~", 1.0, 1e-9))
	})
})
