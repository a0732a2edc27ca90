package embed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hazalci/textcompare/pkg/lexical"
)

// maxLineBytes bounds a single vector row. 4096 dimensions of ~25 bytes
// each stays well inside this.
const maxLineBytes = 1 << 20

// WordVecEmbedder embeds text by mean-pooling pretrained word vectors.
//
// It reads the common text format used by GloVe, word2vec (text export)
// and spaCy's vector export: one token per line followed by its
// whitespace-separated float components. An optional word2vec-style
// header line ("<count> <dim>") is skipped.
type WordVecEmbedder struct {
	dim     int
	vectors map[string][]float32
}

// LoadWordVectors loads a word-vector model from a file.
func LoadWordVectors(path string) (*WordVecEmbedder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	e, err := ReadWordVectors(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return e, nil
}

// ReadWordVectors parses a word-vector model from a reader.
// The vector dimension is detected from the first data row; rows with a
// different dimension are rejected.
func ReadWordVectors(r io.Reader) (*WordVecEmbedder, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	e := &WordVecEmbedder{vectors: make(map[string][]float32)}
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		// word2vec text files start with a "<count> <dim>" header.
		if line == 1 && len(fields) == 2 {
			if _, err := strconv.Atoi(fields[0]); err == nil {
				if dim, err := strconv.Atoi(fields[1]); err == nil {
					e.dim = dim
					continue
				}
			}
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has no vector components", ErrInvalidModel, line)
		}

		token := fields[0]
		vec := make([]float32, len(fields)-1)
		for i, field := range fields[1:] {
			val, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidModel, line, err)
			}
			vec[i] = float32(val)
		}

		if e.dim == 0 {
			e.dim = len(vec)
		} else if len(vec) != e.dim {
			return nil, fmt.Errorf("%w: line %d has %d components, expected %d",
				ErrInvalidModel, line, len(vec), e.dim)
		}

		e.vectors[token] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model data: %w", err)
	}
	if len(e.vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors found", ErrInvalidModel)
	}
	return e, nil
}

// Embed converts text into a vector by averaging the vectors of its
// tokens. Tokens outside the model vocabulary are skipped; if no token
// is known, the zero vector is returned.
func (e *WordVecEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	pooled := make([]float32, e.dim)
	known := 0
	for _, token := range lexical.Normalize(text) {
		vec, ok := e.vectors[token]
		if !ok {
			continue
		}
		for i, v := range vec {
			pooled[i] += v
		}
		known++
	}

	if known > 1 {
		inv := 1 / float32(known)
		for i := range pooled {
			pooled[i] *= inv
		}
	}
	return pooled, nil
}

// EmbedBatch converts multiple texts into vectors.
func (e *WordVecEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedAll(ctx, e, texts)
}

// Dim returns the vector dimension of the loaded model.
func (e *WordVecEmbedder) Dim() int {
	return e.dim
}

// VocabSize returns the number of tokens in the loaded model.
func (e *WordVecEmbedder) VocabSize() int {
	return len(e.vectors)
}

// Lookup returns the vector for a single token, if present.
func (e *WordVecEmbedder) Lookup(token string) ([]float32, bool) {
	vec, ok := e.vectors[strings.ToLower(token)]
	return vec, ok
}
