package resolve

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"arbsweep/internal/extract"
	"arbsweep/internal/match"
)

// Action is what the applier does with a candidate.
type Action string

const (
	// Reuse points the literal at an existing catalog key.
	Reuse Action = "reuse"
	// Create adds a new catalog key for the literal.
	Create Action = "create"
)

// Catalog is the part of the string catalog the resolver reads.
type Catalog interface {
	LookupExact(text, locale string) (string, bool)
	LookupFuzzy(text, locale string, threshold float64) (match.Match, bool)
	Has(key string) bool
	Texts(key string) map[string]string
	Locales() []string
}

// Hint is the nearest catalog entry shown to a reviewer for a Create.
type Hint struct {
	Key   string
	Text  string
	Score float64
}

// Resolution is the decision taken for one candidate.
type Resolution struct {
	Candidate  extract.Candidate
	Action     Action
	Key        string
	Confidence float64
	// Proposed holds the text per locale the key should carry.
	Proposed map[string]string
	// NeedsTranslation lists locales prefilled with the source text.
	NeedsTranslation []string
	Hint             *Hint
}

// Options configures a Resolver.
type Options struct {
	// SourceLocale is used for candidates whose locale the catalog does not
	// hold. Empty means the first catalog locale.
	SourceLocale    string
	ReuseThreshold  float64
	ReviewThreshold float64
	Synth           SynthOptions
	Logger          *zap.Logger
}

// Resolver maps candidates onto catalog keys.
type Resolver struct {
	catalog  Catalog
	registry *KeyRegistry
	synth    *KeySynthesizer
	source   string
	reuse    float64
	review   float64
	logger   *zap.Logger
}

// New returns a resolver reading cat and issuing new keys through reg.
func New(cat Catalog, reg *KeyRegistry, opts Options) *Resolver {
	if opts.ReuseThreshold <= 0 {
		opts.ReuseThreshold = match.DefaultReuseThreshold
	}

	if opts.ReviewThreshold <= 0 {
		opts.ReviewThreshold = match.DefaultReviewThreshold
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if reg == nil {
		reg = NewKeyRegistry()
	}

	return &Resolver{
		catalog:  cat,
		registry: reg,
		synth:    NewKeySynthesizer(opts.Synth),
		source:   opts.SourceLocale,
		reuse:    opts.ReuseThreshold,
		review:   opts.ReviewThreshold,
		logger:   opts.Logger,
	}
}

// Resolve decides between reusing a catalog key and creating a new one.
func (r *Resolver) Resolve(c extract.Candidate) Resolution {
	c.Locale = r.localeOf(c)
	value := c.Value()

	for _, text := range lo.Uniq([]string{value, c.Text}) {
		if key, ok := r.catalog.LookupExact(text, c.Locale); ok {
			return r.reuseOf(c, key, 1.0)
		}
	}

	best, found := r.catalog.LookupFuzzy(c.Text, c.Locale, r.review)
	if found && best.Score >= r.reuse {
		r.logger.Debug("Fuzzy reuse",
			zap.String("text", c.Text),
			zap.String("key", best.Key),
			zap.Float64("score", best.Score))

		return r.reuseOf(c, best.Key, best.Score)
	}

	res := r.createOf(c, value)

	if found {
		res.Confidence = best.Score
		res.Hint = &Hint{Key: best.Key, Text: best.Text, Score: best.Score}
	} else if m, ok := r.catalog.LookupFuzzy(c.Text, c.Locale, 0); ok {
		res.Confidence = m.Score
	}

	return res
}

// localeOf returns the catalog locale a candidate's text is written in.
func (r *Resolver) localeOf(c extract.Candidate) string {
	locales := r.catalog.Locales()
	if lo.Contains(locales, c.Locale) {
		return c.Locale
	}

	if r.source != "" {
		return r.source
	}

	if len(locales) > 0 {
		return locales[0]
	}

	return c.Locale
}

// ResolveAll resolves candidates in order.
func (r *Resolver) ResolveAll(cands []extract.Candidate) []Resolution {
	return lo.Map(cands, func(c extract.Candidate, _ int) Resolution {
		return r.Resolve(c)
	})
}

// Registry returns the key registry shared by this run.
func (r *Resolver) Registry() *KeyRegistry {
	return r.registry
}

func (r *Resolver) reuseOf(c extract.Candidate, key string, score float64) Resolution {
	return Resolution{
		Candidate:  c,
		Action:     Reuse,
		Key:        key,
		Confidence: score,
		Proposed:   r.catalog.Texts(key),
	}
}

func (r *Resolver) createOf(c extract.Candidate, value string) Resolution {
	key, ok := r.registry.Lookup(c.Locale, value)
	if !ok {
		key = r.registry.Claim(r.synth.Base(c), r.catalog.Has)
		r.registry.Bind(c.Locale, value, key)
	}

	proposed := map[string]string{}
	var pending []string

	for _, loc := range r.catalog.Locales() {
		proposed[loc] = value

		if loc != c.Locale {
			pending = append(pending, loc)
		}
	}

	proposed[c.Locale] = value

	return Resolution{
		Candidate:        c,
		Action:           Create,
		Key:              key,
		Proposed:         proposed,
		NeedsTranslation: pending,
	}
}
