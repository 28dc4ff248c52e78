package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/text/language"

	"arbsweep/internal/match"
)

// DefaultFilePattern names locale files; "{locale}" is replaced by the tag.
const DefaultFilePattern = "app_{locale}.arb"

// Options configures where the catalog lives and which locales it holds.
type Options struct {
	Dir            string
	FilePattern    string
	Locales        []string
	MetadataPrefix string
}

// Duplicate is a text carried by more than one key of a locale.
type Duplicate struct {
	Text string
	Keys []string
}

// Gap is a key that is absent from some configured locales.
type Gap struct {
	Key     string
	Missing []string
}

// Catalog is the multi-locale key -> text store.
type Catalog struct {
	fs   afero.Fs
	opts Options

	texts map[string]map[string]string          // locale -> key -> text
	meta  map[string]map[string]json.RawMessage // locale -> metadata key -> raw
	exact map[string]map[string][]string        // locale -> text -> keys
	dirty map[string]bool

	entries map[string][]match.Entry // locale -> sorted entries, built lazily
}

// New returns an empty catalog.
func New(fs afero.Fs, opts Options) (*Catalog, error) {
	if opts.FilePattern == "" {
		opts.FilePattern = DefaultFilePattern
	}

	if opts.MetadataPrefix == "" {
		opts.MetadataPrefix = "@"
	}

	if len(opts.Locales) == 0 {
		return nil, errors.New("catalog needs at least one locale")
	}

	if !strings.Contains(opts.FilePattern, "{locale}") {
		return nil, fmt.Errorf("file pattern %q has no {locale} placeholder", opts.FilePattern)
	}

	seen := map[string]struct{}{}
	for _, loc := range opts.Locales {
		if _, err := language.Parse(loc); err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", loc, err)
		}

		if _, dup := seen[loc]; dup {
			return nil, fmt.Errorf("locale %q listed twice", loc)
		}

		seen[loc] = struct{}{}
	}

	c := &Catalog{
		fs:      fs,
		opts:    opts,
		texts:   map[string]map[string]string{},
		meta:    map[string]map[string]json.RawMessage{},
		exact:   map[string]map[string][]string{},
		dirty:   map[string]bool{},
		entries: map[string][]match.Entry{},
	}

	for _, loc := range opts.Locales {
		c.texts[loc] = map[string]string{}
		c.meta[loc] = map[string]json.RawMessage{}
		c.exact[loc] = map[string][]string{}
	}

	return c, nil
}

// Load reads every configured locale file. A missing file is an empty locale.
func Load(fs afero.Fs, opts Options) (*Catalog, error) {
	c, err := New(fs, opts)
	if err != nil {
		return nil, err
	}

	for _, loc := range c.opts.Locales {
		if err := c.loadLocale(loc); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) loadLocale(loc string) error {
	path := c.Path(loc)

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &FormatError{Path: path, Err: err}
	}

	for key, value := range raw {
		if c.isMetadata(key) {
			c.meta[loc][key] = value
			continue
		}

		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return &FormatError{Path: path, Key: key, Err: errors.New("value is not a string")}
		}

		c.set(loc, key, text)
	}

	return nil
}

// Path returns the file path of a locale.
func (c *Catalog) Path(locale string) string {
	return filepath.Join(c.opts.Dir, strings.ReplaceAll(c.opts.FilePattern, "{locale}", locale))
}

// Locales returns the configured locales in configuration order.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.opts.Locales...)
}

// Has reports whether key exists in any locale.
func (c *Catalog) Has(key string) bool {
	for _, texts := range c.texts {
		if _, ok := texts[key]; ok {
			return true
		}
	}

	return false
}

// Text returns the text of key in locale.
func (c *Catalog) Text(key, locale string) (string, bool) {
	t, ok := c.texts[locale][key]
	return t, ok
}

// Texts returns the text of key for every locale that has it.
func (c *Catalog) Texts(key string) map[string]string {
	out := map[string]string{}

	for loc, texts := range c.texts {
		if t, ok := texts[key]; ok {
			out[loc] = t
		}
	}

	return out
}

// Keys returns every content key in lexical order.
func (c *Catalog) Keys() []string {
	set := map[string]struct{}{}
	for _, texts := range c.texts {
		for k := range texts {
			set[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Len returns the number of distinct content keys.
func (c *Catalog) Len() int {
	return len(c.Keys())
}

// LookupExact returns the key whose text in locale equals text.
// When several keys share the text the shortest, then lexically first, wins.
func (c *Catalog) LookupExact(text, locale string) (string, bool) {
	keys := c.exact[locale][text]
	if len(keys) == 0 {
		return "", false
	}

	best := keys[0]
	for _, k := range keys[1:] {
		if len(k) < len(best) || (len(k) == len(best) && k < best) {
			best = k
		}
	}

	return best, true
}

// LookupFuzzy returns the best match for text in locale scoring at least
// threshold. Ranking follows match.MatchList: score, then key length, then
// key order.
func (c *Catalog) LookupFuzzy(text, locale string, threshold float64) (match.Match, bool) {
	best := match.Rank(text, c.localeEntries(locale)).Best()
	if best == nil || best.Score < threshold {
		return match.Match{}, false
	}

	return *best, true
}

// Commit adds key with a text for every configured locale.
// It never overwrites: an existing key yields a DuplicateKeyError.
func (c *Catalog) Commit(key string, textByLocale map[string]string) error {
	if key == "" || c.isMetadata(key) {
		return fmt.Errorf("invalid catalog key %q", key)
	}

	if c.Has(key) {
		return &DuplicateKeyError{Key: key}
	}

	for _, loc := range c.opts.Locales {
		if _, ok := textByLocale[loc]; !ok {
			return fmt.Errorf("%w: key %q has no %s text", ErrIncompleteEntry, key, loc)
		}
	}

	for _, loc := range c.opts.Locales {
		c.set(loc, key, textByLocale[loc])
		c.dirty[loc] = true
	}

	return nil
}

// Missing lists keys that are absent from at least one locale.
func (c *Catalog) Missing() []Gap {
	var gaps []Gap

	for _, key := range c.Keys() {
		var missing []string

		for _, loc := range c.opts.Locales {
			if _, ok := c.texts[loc][key]; !ok {
				missing = append(missing, loc)
			}
		}

		if len(missing) > 0 {
			gaps = append(gaps, Gap{Key: key, Missing: missing})
		}
	}

	return gaps
}

// Duplicates lists the texts of locale shared by several keys, ordered by
// text. Keys within a Duplicate are sorted.
func (c *Catalog) Duplicates(locale string) []Duplicate {
	var out []Duplicate

	for text, keys := range c.exact[locale] {
		if len(keys) < 2 {
			continue
		}

		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)

		out = append(out, Duplicate{Text: text, Keys: sorted})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })

	return out
}

// Unused returns the keys, in lexical order, that used reports as unreferenced.
func (c *Catalog) Unused(used map[string]int) []string {
	return lo.Reject(c.Keys(), func(key string, _ int) bool { return used[key] > 0 })
}

func (c *Catalog) set(loc, key, text string) {
	if old, ok := c.texts[loc][key]; ok {
		c.exact[loc][old] = removeString(c.exact[loc][old], key)
	}

	c.texts[loc][key] = text
	c.exact[loc][text] = append(c.exact[loc][text], key)
	delete(c.entries, loc)
}

func (c *Catalog) localeEntries(loc string) []match.Entry {
	if cached, ok := c.entries[loc]; ok {
		return cached
	}

	texts := c.texts[loc]

	keys := make([]string, 0, len(texts))
	for k := range texts {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	entries := make([]match.Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, match.Entry{Key: k, Text: texts[k]})
	}

	c.entries[loc] = entries

	return entries
}

func (c *Catalog) isMetadata(key string) bool {
	return strings.HasPrefix(key, c.opts.MetadataPrefix)
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}

	return out
}
