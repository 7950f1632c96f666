package wordvec

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyonco/chatvault/pkg/vector"
)

// File is a provider backed by a GloVe-style plain-text vector table:
// one `token f1 f2 ... fn` line per entry, whitespace separated. The whole
// table is loaded into memory at construction so lookups never touch disk.
type File struct {
	dimensions int
	table      map[string]vector.Vector
	logger     *zap.Logger
}

// maxLineBytes bounds the scanner buffer; GloVe lines for 300-dim vectors
// run ~3.5KB, so 1MB leaves generous headroom.
const maxLineBytes = 1 << 20

// NewFile loads the vector table at path. Lines whose dimensionality differs
// from the first parsed line, or whose components fail to parse, are skipped
// with a logged warning rather than failing the load. Duplicate tokens keep
// the first occurrence, matching GloVe's frequency-ordered layout.
func NewFile(path string, logger *zap.Logger) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word-vector table: %w", err)
	}
	defer f.Close()

	p := &File{
		table:  make(map[string]vector.Vector),
		logger: logger,
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		token := strings.ToLower(fields[0])
		if _, exists := p.table[token]; exists {
			continue
		}

		v := make(vector.Vector, 0, len(fields)-1)
		ok := true
		for _, field := range fields[1:] {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			v = append(v, x)
		}
		if !ok {
			skipped++
			logger.Warn("skipping malformed word-vector line",
				zap.String("path", path),
				zap.Int("line", lineNo),
			)
			continue
		}

		if p.dimensions == 0 {
			p.dimensions = len(v)
		}
		if len(v) != p.dimensions {
			skipped++
			logger.Warn("skipping word-vector line with drifting dimensions",
				zap.String("path", path),
				zap.Int("line", lineNo),
				zap.Int("got", len(v)),
				zap.Int("want", p.dimensions),
			)
			continue
		}

		p.table[token] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word-vector table: %w", err)
	}

	if len(p.table) == 0 {
		return nil, fmt.Errorf("word-vector table %s contains no usable entries", path)
	}

	logger.Info("word-vector table loaded",
		zap.String("path", path),
		zap.Int("tokens", len(p.table)),
		zap.Int("dimensions", p.dimensions),
		zap.Int("skipped_lines", skipped),
	)

	return p, nil
}

// VectorFor returns the vector for token, case-folded.
func (p *File) VectorFor(token string) (vector.Vector, bool) {
	v, ok := p.table[strings.ToLower(token)]
	if !ok {
		return nil, false
	}
	return v, true
}

// Dimensions returns the table's vector dimensionality.
func (p *File) Dimensions() int {
	return p.dimensions
}

// Close releases the table.
func (p *File) Close() error {
	p.table = nil
	return nil
}

var _ Provider = (*File)(nil)
