package textcompare

import (
	"context"
	"fmt"
	"sync"

	"github.com/hazalci/textcompare/pkg/embed"
	"github.com/hazalci/textcompare/pkg/lexical"
	"github.com/hazalci/textcompare/pkg/model"
	"github.com/hazalci/textcompare/pkg/store"
)

// Default configuration values.
const (
	// DefaultThreshold is the score at or above which a comparison passes.
	DefaultThreshold = 0.7
	// DefaultBatchWorkers bounds concurrency in ComparePairs.
	DefaultBatchWorkers = 8
)

// Pair is one source/target comparison request.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Result holds the outcome of a detailed comparison.
type Result struct {
	// Score is the final similarity score.
	Score float64 `json:"score"`
	// Semantic is the embedding similarity before lexical blending.
	Semantic float64 `json:"semantic"`
	// Lexical is the sparse term-overlap score.
	Lexical float64 `json:"lexical"`
	// Passed reports whether Score met the configured threshold.
	Passed bool `json:"passed"`
	// Threshold used to determine Passed.
	Threshold float64 `json:"threshold"`
	// Model is the name of the model used, if loaded through a registry.
	Model string `json:"model,omitempty"`
}

// Comparer scores the semantic similarity of text pairs.
//
// A Comparer needs a language model before it can compare: either give it
// an Embedder directly (WithEmbedder) or a registry plus model name
// (WithRegistry, WithModel, or LoadModel). Safe for concurrent use once
// configured; LoadModel swaps the active model under a lock.
type Comparer struct {
	mu        sync.RWMutex
	embedder  embed.Embedder
	modelName string

	registry  *model.Registry
	simFn     SimilarityFunc
	lexWeight float64
	threshold float64
	clamp     bool
	st        *store.Store
	logger    Logger
}

// Option is a functional option for configuring a Comparer.
type Option func(*Comparer)

// WithEmbedder sets the embedder used to vectorize texts.
func WithEmbedder(e embed.Embedder) Option {
	return func(c *Comparer) { c.embedder = e }
}

// WithRegistry sets the model registry used to resolve named models.
func WithRegistry(r *model.Registry) Option {
	return func(c *Comparer) { c.registry = r }
}

// WithModel selects the model to load from the registry at first use.
func WithModel(name string) Option {
	return func(c *Comparer) { c.modelName = name }
}

// WithSimilarityFunc sets the similarity function. Default is Cosine.
func WithSimilarityFunc(fn SimilarityFunc) Option {
	return func(c *Comparer) { c.simFn = fn }
}

// WithLexicalWeight blends a sparse lexical score into the final score.
// weight 0 (the default) is purely semantic, 1 purely lexical.
func WithLexicalWeight(weight float64) Option {
	return func(c *Comparer) { c.lexWeight = weight }
}

// WithThreshold sets the pass threshold for CompareDetailed.
func WithThreshold(threshold float64) Option {
	return func(c *Comparer) { c.threshold = threshold }
}

// WithClamp controls clipping of final scores into [0, 1].
// Enabled by default; disable to see raw similarity values.
func WithClamp(enabled bool) Option {
	return func(c *Comparer) { c.clamp = enabled }
}

// WithStore attaches a persistent store. Embeddings are cached in it and
// every comparison is logged. The caller keeps ownership and must close it.
func WithStore(st *store.Store) Option {
	return func(c *Comparer) { c.st = st }
}

// WithLogger sets the logger. Default discards all messages.
func WithLogger(logger Logger) Option {
	return func(c *Comparer) { c.logger = logger }
}

// New creates a Comparer with the provided options.
func New(opts ...Option) (*Comparer, error) {
	c := &Comparer{
		simFn:     Cosine,
		threshold: DefaultThreshold,
		clamp:     true,
		logger:    NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.lexWeight < 0 || c.lexWeight > 1 {
		return nil, wrapError("new", fmt.Errorf("%w: lexical weight %v outside [0, 1]", ErrInvalidConfig, c.lexWeight))
	}
	if c.modelName != "" && c.registry == nil && c.embedder == nil {
		return nil, wrapError("new", fmt.Errorf("%w: model %q requested without a registry", ErrInvalidConfig, c.modelName))
	}

	c.logger.Info("initialized comparer", "model", c.modelName, "lexical_weight", c.lexWeight)
	return c, nil
}

var (
	defaultComparer *Comparer
	defaultOnce     sync.Once
)

// Default returns a process-wide shared Comparer. It has no model loaded;
// call LoadModel or Compare through a configured registry before use.
func Default() *Comparer {
	defaultOnce.Do(func() {
		defaultComparer, _ = New()
	})
	return defaultComparer
}

// Model returns the name of the currently active model, or "" when an
// embedder was set directly.
func (c *Comparer) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modelName
}

// SetEmbedder replaces the active embedder.
func (c *Comparer) SetEmbedder(e embed.Embedder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embedder = e
	c.modelName = ""
}

// LoadModel loads the named model from the registry and makes it the
// active model. Already-loaded models are served from the registry cache.
func (c *Comparer) LoadModel(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadModelLocked(ctx, name)
}

func (c *Comparer) loadModelLocked(ctx context.Context, name string) error {
	if c.registry == nil {
		return wrapError("load_model", ErrNoRegistry)
	}
	if name == "" {
		name = c.registry.Default()
	}

	e, err := c.registry.Load(ctx, name)
	if err != nil {
		c.logger.Error("failed to load language model", "model", name, "error", err)
		return wrapError("load_model", err)
	}

	c.embedder = e
	c.modelName = name
	c.logger.Info("loaded language model", "model", name, "dims", e.Dim())
	return nil
}

// ensureEmbedder resolves the active embedder, loading the configured
// model on first use.
func (c *Comparer) ensureEmbedder(ctx context.Context) (embed.Embedder, string, error) {
	c.mu.RLock()
	e, name := c.embedder, c.modelName
	c.mu.RUnlock()
	if e != nil {
		return e, name, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.embedder != nil {
		return c.embedder, c.modelName, nil
	}

	if c.registry == nil {
		return nil, "", ErrNoModel
	}
	if err := c.loadModelLocked(ctx, c.modelName); err != nil {
		return nil, "", err
	}
	return c.embedder, c.modelName, nil
}

// Compare scores the semantic similarity of two texts.
//
// Empty inputs return ErrEmptyText. Without a loaded model, ErrNoModel.
// Identical inputs score 1.0 without embedding: identical text is
// maximally similar regardless of model vocabulary coverage.
func (c *Comparer) Compare(ctx context.Context, source, target string) (float64, error) {
	res, err := c.compare(ctx, source, target)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// CompareWith scores two texts under the named model, loading it through
// the registry if needed. The model stays active afterwards.
func (c *Comparer) CompareWith(ctx context.Context, source, target, modelName string) (float64, error) {
	if modelName != "" && modelName != c.Model() {
		if err := c.LoadModel(ctx, modelName); err != nil {
			return 0, err
		}
	}
	return c.Compare(ctx, source, target)
}

// CompareDetailed scores two texts and reports the score breakdown.
func (c *Comparer) CompareDetailed(ctx context.Context, source, target string) (Result, error) {
	return c.compare(ctx, source, target)
}

func (c *Comparer) compare(ctx context.Context, source, target string) (Result, error) {
	if source == "" || target == "" {
		return Result{}, wrapError("compare", ErrEmptyText)
	}

	e, modelName, err := c.ensureEmbedder(ctx)
	if err != nil {
		return Result{}, wrapError("compare", err)
	}

	res := Result{Threshold: c.threshold, Model: modelName}

	if source == target {
		res.Score, res.Semantic, res.Lexical = 1.0, 1.0, 1.0
		res.Passed = res.Score >= c.threshold
		c.record(ctx, source, target, modelName, res.Score)
		return res, nil
	}

	srcVec, err := c.embedText(ctx, e, modelName, source)
	if err != nil {
		c.logger.Error("failed to embed source text", "error", err)
		return Result{}, wrapError("compare", err)
	}
	tgtVec, err := c.embedText(ctx, e, modelName, target)
	if err != nil {
		c.logger.Error("failed to embed target text", "error", err)
		return Result{}, wrapError("compare", err)
	}
	if len(srcVec) != len(tgtVec) {
		return Result{}, wrapError("compare", ErrDimensionMismatch)
	}

	res.Semantic = c.simFn(srcVec, tgtVec)
	score := res.Semantic
	if c.clamp {
		score = clamp01(score)
	}

	if c.lexWeight > 0 {
		res.Lexical = lexical.Similarity(source, target)
		score = (1-c.lexWeight)*score + c.lexWeight*res.Lexical
	}

	res.Score = score
	res.Passed = score >= c.threshold

	c.logger.Debug("compared texts",
		"score", res.Score,
		"semantic", res.Semantic,
		"lexical", res.Lexical,
		"model", modelName,
	)
	c.record(ctx, source, target, modelName, res.Score)
	return res, nil
}

// embedText embeds one text, going through the persistent cache when a
// store is attached. Cache failures fall back to direct embedding.
func (c *Comparer) embedText(ctx context.Context, e embed.Embedder, modelName, text string) ([]float32, error) {
	if c.st != nil {
		if vec, err := c.st.GetVector(ctx, modelName, text); err == nil {
			return vec, nil
		}
	}

	vec, err := e.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if c.st != nil {
		if err := c.st.PutVector(ctx, modelName, text, vec); err != nil {
			c.logger.Warn("failed to cache embedding", "error", err)
		}
	}
	return vec, nil
}

// record logs the comparison to the store, best effort.
func (c *Comparer) record(ctx context.Context, source, target, modelName string, score float64) {
	if c.st == nil {
		return
	}
	err := c.st.LogComparison(ctx, &store.Comparison{
		Source: source,
		Target: target,
		Model:  modelName,
		Score:  score,
	})
	if err != nil {
		c.logger.Warn("failed to log comparison", "error", err)
	}
}

// ComparePairs scores multiple pairs concurrently, preserving input
// order. The first failing pair fails the whole batch.
func (c *Comparer) ComparePairs(ctx context.Context, pairs []Pair) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	// Resolve the model up front so workers never race on lazy loading.
	if _, _, err := c.ensureEmbedder(ctx); err != nil {
		return nil, wrapError("compare_pairs", err)
	}

	scores := make([]float64, len(pairs))
	errs := make([]error, len(pairs))

	sem := make(chan struct{}, DefaultBatchWorkers)
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, pair Pair) {
			defer wg.Done()
			defer func() { <-sem }()
			scores[idx], errs[idx] = c.Compare(ctx, pair.Source, pair.Target)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}
