package textcompare

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazalci/textcompare/pkg/embed"
	"github.com/hazalci/textcompare/pkg/model"
	"github.com/hazalci/textcompare/pkg/store"
)

// testVectors is a tiny hand-built model: cat and dog point in nearly the
// same direction, car is orthogonal to both.
const testVectors = `cat 1.0 0.0 0.0
dog 0.9 0.1 0.0
car 0.0 1.0 0.0
fast 0.0 0.9 0.1
`

func testEmbedder(t *testing.T) *embed.WordVecEmbedder {
	t.Helper()
	e, err := embed.ReadWordVectors(strings.NewReader(testVectors))
	if err != nil {
		t.Fatalf("ReadWordVectors() error = %v", err)
	}
	return e
}

func TestCompareIdenticalText(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	texts := []string{"cat", "the cat sat", "xyzzy unknown words"}
	for _, text := range texts {
		score, err := cmp.Compare(ctx, text, text)
		if err != nil {
			t.Fatalf("Compare(%q, %q) error = %v", text, text, err)
		}
		if score != 1.0 {
			t.Errorf("Compare(%q, %q) = %v, want 1.0", text, text, score)
		}
	}
}

func TestCompareRanking(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	catDog, err := cmp.Compare(ctx, "cat", "dog")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	catCar, err := cmp.Compare(ctx, "cat", "car")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if catDog <= catCar {
		t.Errorf("expected cat/dog (%v) to score above cat/car (%v)", catDog, catCar)
	}
	// cos((1,0,0), (0.9,0.1,0)) = 0.9/sqrt(0.82)
	want := 0.9 / math.Sqrt(0.82)
	if math.Abs(catDog-want) > 1e-6 {
		t.Errorf("Compare(cat, dog) = %v, want %v", catDog, want)
	}
}

func TestCompareEmptyText(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	for _, pair := range []Pair{{"", "dog"}, {"cat", ""}, {"", ""}} {
		_, err := cmp.Compare(ctx, pair.Source, pair.Target)
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Compare(%q, %q) error = %v, want ErrEmptyText", pair.Source, pair.Target, err)
		}
	}
}

func TestCompareWithoutModel(t *testing.T) {
	cmp, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = cmp.Compare(context.Background(), "cat", "dog")
	if !errors.Is(err, ErrNoModel) {
		t.Errorf("Compare() error = %v, want ErrNoModel", err)
	}
}

func TestCompareUnknownVocabulary(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// All tokens unknown: zero vector, cosine defined as 0.
	score, err := cmp.Compare(context.Background(), "xyzzy", "cat")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if score != 0.0 {
		t.Errorf("Compare() with unknown vocabulary = %v, want 0", score)
	}
}

func TestCompareDetailed(t *testing.T) {
	cmp, err := New(
		WithEmbedder(testEmbedder(t)),
		WithThreshold(0.9),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := cmp.CompareDetailed(context.Background(), "cat", "dog")
	if err != nil {
		t.Fatalf("CompareDetailed() error = %v", err)
	}
	if !res.Passed {
		t.Errorf("expected score %v to pass threshold %v", res.Score, res.Threshold)
	}
	if res.Threshold != 0.9 {
		t.Errorf("Threshold = %v, want 0.9", res.Threshold)
	}
	if res.Semantic != res.Score {
		t.Errorf("without lexical blending Semantic (%v) should equal Score (%v)", res.Semantic, res.Score)
	}

	res, err = cmp.CompareDetailed(context.Background(), "cat", "car")
	if err != nil {
		t.Fatalf("CompareDetailed() error = %v", err)
	}
	if res.Passed {
		t.Errorf("expected score %v to fail threshold %v", res.Score, res.Threshold)
	}
}

func TestLexicalBlending(t *testing.T) {
	// car/fast are near-orthogonal semantically but share the token "car"
	// in the texts below, so lexical weight should lift the score.
	semantic, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	blended, err := New(
		WithEmbedder(testEmbedder(t)),
		WithLexicalWeight(0.5),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	source, target := "car cat", "car dog fast"

	s1, err := semantic.Compare(ctx, source, target)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	s2, err := blended.Compare(ctx, source, target)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if s2 <= 0 || s2 > 1 {
		t.Errorf("blended score %v outside (0, 1]", s2)
	}
	// TF cosine of {car, cat} vs {car, dog, fast} is 1/sqrt(6).
	want := 0.5*s1 + 0.5*(1/math.Sqrt(6))
	if math.Abs(s2-want) > 1e-6 {
		t.Errorf("blended score = %v, want %v", s2, want)
	}
}

func TestInvalidLexicalWeight(t *testing.T) {
	for _, w := range []float64{-0.1, 1.1} {
		_, err := New(WithEmbedder(embed.NewHashEmbedder(16)), WithLexicalWeight(w))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("New(WithLexicalWeight(%v)) error = %v, want ErrInvalidConfig", w, err)
		}
	}
}

func TestComparePairs(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pairs := []Pair{
		{"cat", "cat"},
		{"cat", "dog"},
		{"cat", "car"},
		{"dog", "dog"},
	}

	scores, err := cmp.ComparePairs(context.Background(), pairs)
	if err != nil {
		t.Fatalf("ComparePairs() error = %v", err)
	}
	if len(scores) != len(pairs) {
		t.Fatalf("got %d scores, want %d", len(scores), len(pairs))
	}
	if scores[0] != 1.0 || scores[3] != 1.0 {
		t.Errorf("identical pairs scored %v and %v, want 1.0", scores[0], scores[3])
	}
	if scores[1] <= scores[2] {
		t.Errorf("expected pair order to be preserved: cat/dog %v should beat cat/car %v", scores[1], scores[2])
	}
}

func TestComparePairsEmptyInput(t *testing.T) {
	cmp, err := New(WithEmbedder(testEmbedder(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = cmp.ComparePairs(context.Background(), []Pair{{"cat", "dog"}, {"", "dog"}})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("ComparePairs() error = %v, want ErrEmptyText", err)
	}

	scores, err := cmp.ComparePairs(context.Background(), nil)
	if err != nil || scores != nil {
		t.Errorf("ComparePairs(nil) = %v, %v; want nil, nil", scores, err)
	}
}

func TestCompareWithRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en-test.txt")
	if err := os.WriteFile(path, []byte(testVectors), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg := model.NewRegistry(&model.Manifest{
		Models:  []model.Info{{Name: "en-test", Path: path}},
		Default: "en-test",
	})

	cmp, err := New(WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	score, err := cmp.CompareWith(ctx, "cat", "dog", "en-test")
	if err != nil {
		t.Fatalf("CompareWith() error = %v", err)
	}
	if score <= 0.9 {
		t.Errorf("CompareWith(cat, dog) = %v, want > 0.9", score)
	}
	if cmp.Model() != "en-test" {
		t.Errorf("Model() = %q, want %q", cmp.Model(), "en-test")
	}

	_, err = cmp.CompareWith(ctx, "cat", "dog", "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("CompareWith(missing) error = %v, want model.ErrNotFound", err)
	}
}

func TestCompareLazyDefaultModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en-test.txt")
	if err := os.WriteFile(path, []byte(testVectors), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg := model.NewRegistry(&model.Manifest{
		Models:  []model.Info{{Name: "en-test", Path: path}},
		Default: "en-test",
	})

	// No explicit model: the registry default loads on first Compare.
	cmp, err := New(WithRegistry(reg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := cmp.Compare(context.Background(), "cat", "dog"); err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
}

func TestCompareWithStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "compare.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cmp, err := New(WithEmbedder(testEmbedder(t)), WithStore(st))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := cmp.Compare(ctx, "cat", "dog")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	// Second run is served from the vector cache and must agree.
	second, err := cmp.Compare(ctx, "cat", "dog")
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if first != second {
		t.Errorf("cached compare = %v, want %v", second, first)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Vectors != 2 {
		t.Errorf("Stats().Vectors = %d, want 2", stats.Vectors)
	}
	if stats.Comparisons != 2 {
		t.Errorf("Stats().Comparisons = %d, want 2", stats.Comparisons)
	}
}

func TestDefaultComparer(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() returned nil")
	}
	if Default() != Default() {
		t.Error("Default() should return the shared instance")
	}
}
