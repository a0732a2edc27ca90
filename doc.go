// Package textcompare provides semantic text comparison for Go.
//
// textcompare is a 100% pure Go library (no CGO) that scores how close two
// texts are in meaning. It loads a pretrained language model (word vectors),
// embeds both texts into vector space, and scores them with cosine
// similarity. A score of 1.0 means identical meaning, 0.0 means unrelated.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/hazalci/textcompare"
//	    "github.com/hazalci/textcompare/pkg/embed"
//	)
//
//	func main() {
//	    emb, _ := embed.LoadWordVectors("en-vectors.txt")
//	    cmp, _ := textcompare.New(textcompare.WithEmbedder(emb))
//
//	    score, _ := cmp.Compare(context.Background(), "Hello", "World")
//	    _ = score
//	}
//
// # Language Models
//
// Models are pretrained word-vector files in the common text format
// (one token per line followed by its vector components). A YAML manifest
// maps model names to files, and the registry loads each model once and
// caches it:
//
//	reg, _ := model.OpenRegistry("models.yaml")
//	cmp, _ := textcompare.New(textcompare.WithRegistry(reg))
//	score, _ := cmp.CompareWith(ctx, "cat", "dog", "en-core-sm")
//
// # Hybrid Scoring
//
// The semantic score can be blended with a sparse lexical score (term
// frequency cosine) for domains where exact word overlap matters:
//
//	cmp, _ := textcompare.New(
//	    textcompare.WithEmbedder(emb),
//	    textcompare.WithLexicalWeight(0.3),
//	)
//
// # Embedding Cache
//
// An optional SQLite-backed store (modernc.org/sqlite, no CGO) caches
// computed embeddings by content hash and keeps a history of comparisons:
//
//	st, _ := store.Open("textcompare.db")
//	_ = st.Init(ctx)
//	cmp, _ := textcompare.New(
//	    textcompare.WithEmbedder(emb),
//	    textcompare.WithStore(st),
//	)
//
// For command-line usage, see cmd/textcompare.
package textcompare
