package backfill_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/backfill"
	"github.com/halcyonco/chatvault/pkg/embedding"
	testutils "github.com/halcyonco/chatvault/pkg/utils/test"
	"github.com/halcyonco/chatvault/pkg/vector"
)

func newComputer() *embedding.Computer {
	provider := testutils.NewStaticProvider(map[string]vector.Vector{
		"hello": {1, 0},
		"world": {0, 1},
	})
	return embedding.NewComputer(provider, embedding.NewCache(16), zap.NewNop())
}

var _ = Describe("Coordinator", func() {
	var (
		ctx   context.Context
		store *testutils.FlakyStore
		coord *backfill.Coordinator
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewFlakyStore()
		coord = backfill.NewCoordinator(store, newComputer(), zap.NewNop())
	})

	It("embeds every message lacking a vector", func() {
		base := time.Now().UTC()
		for i := range 10 {
			_, err := store.SeedMessage(ctx, fmt.Sprintf("hello world %d", i), true, base.Add(time.Duration(i)*time.Second))
			Expect(err).NotTo(HaveOccurred())
		}

		result, err := coord.Run(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Embedded).To(Equal(10))
		Expect(result.Failed).To(Equal(0))

		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})

	It("returns immediately when nothing is missing", func() {
		result, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Processed()).To(Equal(0))
	})

	It("writes the zero-vector sentinel for text with no signal", func() {
		msg, err := store.SeedMessage(ctx, "xyzzy quux", true, time.Now().UTC())
		Expect(err).NotTo(HaveOccurred())

		result, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Sentinels).To(Equal(1))
		Expect(result.Embedded).To(Equal(0))

		v, err := store.LoadVector(ctx, msg.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(HaveLen(2))
		Expect(vector.IsZero(v)).To(BeTrue())

		// The sentinel settles the message: a second run finds nothing.
		again, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Processed()).To(Equal(0))
	})

	It("does not reprocess messages that already have vectors", func() {
		msg, err := store.SeedMessage(ctx, "hello", true, time.Now().UTC())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.SaveVector(ctx, msg.ID, vector.Vector{0, 1})).To(Succeed())

		result, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Processed()).To(Equal(0))

		// The pre-existing vector is untouched.
		v, err := store.LoadVector(ctx, msg.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(vector.Vector{0, 1}))
	})

	It("continues past a failing message", func() {
		base := time.Now().UTC()
		doomed, err := store.SeedMessage(ctx, "hello 0", true, base)
		Expect(err).NotTo(HaveOccurred())
		store.FailSaveVectorFor = doomed.ID

		for i := 1; i < 5; i++ {
			_, err := store.SeedMessage(ctx, fmt.Sprintf("hello %d", i), true, base.Add(time.Duration(i)*time.Second))
			Expect(err).NotTo(HaveOccurred())
		}

		result, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Embedded).To(Equal(4))
		Expect(result.Failed).To(Equal(1))

		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(HaveLen(1))
		Expect(missing[0].ID).To(Equal(doomed.ID))
	})

	It("stops rather than loop on a batch that makes no progress", func() {
		base := time.Now().UTC()
		doomed, err := store.SeedMessage(ctx, "hello", true, base)
		Expect(err).NotTo(HaveOccurred())
		store.FailSaveVectorFor = doomed.ID

		result, err := coord.Run(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed).To(Equal(1))
		Expect(store.SaveVectorCalls.Load()).To(Equal(int64(1)))
	})

	It("stops on context cancellation", func() {
		_, err := store.SeedMessage(ctx, "hello", true, time.Now().UTC())
		Expect(err).NotTo(HaveOccurred())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = coord.Run(cancelled, 10)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("leaves exactly one vector per message under concurrent runs", func() {
		base := time.Now().UTC()
		ids := make(map[string]bool)
		for i := range 10 {
			msg, err := store.SeedMessage(ctx, fmt.Sprintf("hello world %d", i), true, base.Add(time.Duration(i)*time.Second))
			Expect(err).NotTo(HaveOccurred())
			ids[msg.ID.String()] = true
		}

		var wg sync.WaitGroup
		for range 2 {
			other := backfill.NewCoordinator(store, newComputer(), zap.NewNop())
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := other.Run(ctx, 3)
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		// Every message settled, none missing, none duplicated.
		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())

		all, err := store.ListWithVectors(ctx, 100, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(10))
		seen := make(map[string]bool)
		for _, e := range all {
			id := e.Message.ID.String()
			Expect(seen[id]).To(BeFalse())
			seen[id] = true
			Expect(ids[id]).To(BeTrue())
			Expect(vector.Norm(e.Vector)).To(BeNumerically("~", 1.0, 1e-9))
		}
	})
})
