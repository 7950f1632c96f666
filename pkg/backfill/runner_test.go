package backfill_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/backfill"
	testutils "github.com/halcyonco/chatvault/pkg/utils/test"
)

var _ = Describe("Runner", func() {
	var (
		ctx   context.Context
		store *testutils.FlakyStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewFlakyStore()
	})

	newRunner := func(queueSize int) *backfill.Runner {
		return backfill.NewRunner(backfill.RunnerConfig{
			Coordinator: backfill.NewCoordinator(store, newComputer(), zap.NewNop()),
			BatchSize:   4,
			QueueSize:   queueSize,
			Logger:      zap.NewNop(),
		})
	}

	It("runs a pass for a queued trigger", func() {
		for i := range 6 {
			_, err := store.SeedMessage(ctx, fmt.Sprintf("hello %d", i), true, time.Now().UTC())
			Expect(err).NotTo(HaveOccurred())
		}

		r := newRunner(2)
		Expect(r.Trigger()).To(BeTrue())
		r.Close()

		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})

	It("never blocks the caller when the queue is full", func() {
		r := newRunner(1)
		defer r.Close()

		// Flood the queue well past capacity; every call must return
		// promptly, dropped or not.
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			for range 50 {
				r.Trigger()
			}
			close(done)
		}()
		Eventually(done).Within(time.Second).Should(BeClosed())
	})

	It("coalesces triggers while a pass is pending", func() {
		for i := range 3 {
			_, err := store.SeedMessage(ctx, fmt.Sprintf("hello %d", i), true, time.Now().UTC())
			Expect(err).NotTo(HaveOccurred())
		}

		r := newRunner(4)
		for range 20 {
			r.Trigger()
		}
		r.Close()

		// Coalescing bounds the redundant passes: at most queue-size runs
		// ever listed the store, and the work still completed exactly once
		// per message.
		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())

		all, err := store.ListWithVectors(ctx, 100, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})

	It("drains pending passes on Close", func() {
		_, err := store.SeedMessage(ctx, "hello", true, time.Now().UTC())
		Expect(err).NotTo(HaveOccurred())

		r := newRunner(2)
		Expect(r.Trigger()).To(BeTrue())
		r.Close()

		missing, err := store.ListMissingVectors(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
	})
})

var _ = Describe("Result", func() {
	It("tallies processed messages", func() {
		r := &backfill.Result{Embedded: 3, Sentinels: 2, Skipped: 1, Failed: 4}
		Expect(r.Processed()).To(Equal(6))
	})

	It("formats a summary string", func() {
		r := &backfill.Result{Embedded: 3, Sentinels: 2, Skipped: 1, Failed: 0}
		summary := r.Summary()
		Expect(summary).To(ContainSubstring("Backfill complete"))
		Expect(summary).To(ContainSubstring("3 embedded"))
		Expect(summary).To(ContainSubstring("2 sentinels"))
		Expect(summary).To(ContainSubstring("1 skipped"))
		Expect(summary).To(ContainSubstring("0 failed"))
	})
})
