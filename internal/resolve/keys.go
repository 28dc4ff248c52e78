package resolve

import (
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"arbsweep/internal/extract"
)

// DefaultMaxKeyTokens caps the words taken from the literal itself.
const DefaultMaxKeyTokens = 4

// DefaultModuleMarkers are directories whose child names the module of a file.
var DefaultModuleMarkers = []string{"pages", "screens", "features", "widgets"}

// moduleNoise are trailing file-name words that do not name a module.
var moduleNoise = map[string]struct{}{
	"page": {}, "screen": {}, "view": {}, "widget": {}, "dart": {},
}

// dartReserved lists words that cannot be used as a getter name.
var dartReserved = map[string]struct{}{
	"assert": {}, "break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"default": {}, "do": {}, "else": {}, "enum": {}, "extends": {}, "false": {}, "final": {},
	"finally": {}, "for": {}, "if": {}, "in": {}, "is": {}, "new": {}, "null": {}, "rethrow": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {}, "try": {},
	"var": {}, "void": {}, "while": {}, "with": {}, "hashCode": {}, "runtimeType": {},
	"toString": {}, "noSuchMethod": {},
}

// SynthOptions configures a KeySynthesizer.
type SynthOptions struct {
	ModuleMarkers   []string
	ContextPrefixes map[string]string
	MaxTokens       int
	Dictionary      *Dictionary
}

// KeySynthesizer derives base key names for new catalog entries.
type KeySynthesizer struct {
	markers   map[string]struct{}
	prefixes  map[string]string
	maxTokens int
	dict      *Dictionary
}

// NewKeySynthesizer applies defaults to opts.
func NewKeySynthesizer(opts SynthOptions) *KeySynthesizer {
	if opts.ModuleMarkers == nil {
		opts.ModuleMarkers = DefaultModuleMarkers
	}

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxKeyTokens
	}

	if opts.Dictionary == nil {
		opts.Dictionary = NewDictionary(nil)
	}

	markers := map[string]struct{}{}
	for _, m := range opts.ModuleMarkers {
		markers[m] = struct{}{}
	}

	return &KeySynthesizer{
		markers:   markers,
		prefixes:  opts.ContextPrefixes,
		maxTokens: opts.MaxTokens,
		dict:      opts.Dictionary,
	}
}

// Base returns the key a candidate would get without collisions:
// module + context prefix + translated literal, camelCased.
func (s *KeySynthesizer) Base(c extract.Candidate) string {
	var parts []string

	parts = append(parts, s.module(c.File)...)
	parts = append(parts, splitWords(s.prefixes[c.ContextTag])...)

	words := s.dict.Tokens(c.Text)
	if len(words) > s.maxTokens {
		words = words[:s.maxTokens]
	}

	if len(words) == 0 {
		words = splitWords(c.ContextTag)
	}

	if len(words) == 0 {
		words = []string{"text"}
	}

	key := camelCase(append(parts, words...))

	if key == "" || !unicode.IsLetter(rune(key[0])) {
		key = "text" + capitalize(key)
	}

	if _, reserved := dartReserved[key]; reserved {
		key += "Text"
	}

	return key
}

// module names the file's feature from the path segment after a marker
// directory: "lib/pages/user_profile/edit.dart" -> ["user", "profile"].
func (s *KeySynthesizer) module(file string) []string {
	segs := strings.Split(path.Clean(file), "/")

	for i := 0; i+1 < len(segs); i++ {
		if _, ok := s.markers[segs[i]]; !ok {
			continue
		}

		name := strings.TrimSuffix(segs[i+1], path.Ext(segs[i+1]))
		words := splitWords(name)

		for len(words) > 1 {
			if _, noise := moduleNoise[words[len(words)-1]]; !noise {
				break
			}
			words = words[:len(words)-1]
		}

		if len(words) > 2 {
			words = words[:2]
		}

		return words
	}

	return nil
}

func camelCase(words []string) string {
	var b strings.Builder

	for i, w := range words {
		if w == "" {
			continue
		}

		if b.Len() == 0 || i == 0 {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
			continue
		}

		b.WriteString(capitalize(w))
	}

	return b.String()
}

func capitalize(w string) string {
	if w == "" {
		return w
	}

	return strings.ToUpper(w[:1]) + w[1:]
}

type textRef struct {
	locale string
	text   string
}

// KeyRegistry tracks keys handed out during one run so that new keys never
// collide with each other, and one text always gets one key.
type KeyRegistry struct {
	taken  map[string]struct{}
	byText map[textRef]string
}

// NewKeyRegistry returns an empty registry.
func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		taken:  map[string]struct{}{},
		byText: map[textRef]string{},
	}
}

// Lookup returns the key already issued for text in locale.
func (r *KeyRegistry) Lookup(locale, text string) (string, bool) {
	k, ok := r.byText[textRef{locale, text}]
	return k, ok
}

// Claim reserves the first of base, base1, base2, ... that is neither
// issued nor reported by exists.
func (r *KeyRegistry) Claim(base string, exists func(string) bool) string {
	key := base

	for n := 1; r.isTaken(key) || (exists != nil && exists(key)); n++ {
		key = base + strconv.Itoa(n)
	}

	r.taken[key] = struct{}{}

	return key
}

// Bind records key as the key issued for text in locale.
func (r *KeyRegistry) Bind(locale, text, key string) {
	r.taken[key] = struct{}{}
	r.byText[textRef{locale, text}] = key
}

// Keys returns all issued keys in lexical order.
func (r *KeyRegistry) Keys() []string {
	keys := make([]string, 0, len(r.taken))
	for k := range r.taken {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func (r *KeyRegistry) isTaken(key string) bool {
	_, ok := r.taken[key]
	return ok
}
