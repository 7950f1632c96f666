package logger_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/halcyonco/chatvault/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("NewLoggerWithWriters", func() {
	It("writes info logs to the given writer", func() {
		var buf bytes.Buffer
		log := logger.NewLoggerWithWriters(false, &buf)

		log.Info("hello from the logger")
		Expect(log.Sync()).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("hello from the logger"))
	})

	It("suppresses debug logs unless debug is enabled", func() {
		var buf bytes.Buffer
		log := logger.NewLoggerWithWriters(false, &buf)
		log.Debug("hidden")
		Expect(buf.String()).To(BeEmpty())

		log = logger.NewLoggerWithWriters(true, &buf)
		log.Debug("visible")
		Expect(buf.String()).To(ContainSubstring("visible"))
	})
})

var _ = Describe("NewPrettyWithWriter", func() {
	It("writes structured key-value output", func() {
		var buf bytes.Buffer
		log := logger.NewPrettyWithWriter(false, &buf)

		log.Info("backfill complete", "embedded", 3)
		Expect(buf.String()).To(ContainSubstring("backfill complete"))
		Expect(buf.String()).To(ContainSubstring("embedded"))
	})
})
