package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"arbsweep/internal/fsutil"
)

// Persist writes every locale changed since load or the last Persist.
func (c *Catalog) Persist() error {
	for _, loc := range c.opts.Locales {
		if !c.dirty[loc] {
			continue
		}

		if err := c.persistLocale(loc); err != nil {
			return err
		}
	}

	return nil
}

// PersistAll rewrites every locale file in canonical order.
func (c *Catalog) PersistAll() error {
	for _, loc := range c.opts.Locales {
		if err := c.persistLocale(loc); err != nil {
			return err
		}
	}

	return nil
}

func (c *Catalog) persistLocale(loc string) error {
	data, err := encodeLocale(c.meta[loc], c.texts[loc])
	if err != nil {
		return fmt.Errorf("failed to encode catalog %s: %w", loc, err)
	}

	if err := fsutil.WriteFileAtomic(c.fs, c.Path(loc), data); err != nil {
		return fmt.Errorf("failed to persist catalog %s: %w", loc, err)
	}

	c.dirty[loc] = false

	return nil
}

// encodeLocale renders metadata keys first (sorted), then content keys sorted
// case-insensitively, as 2-space indented JSON with non-ASCII and HTML
// characters left unescaped.
func encodeLocale(meta map[string]json.RawMessage, texts map[string]string) ([]byte, error) {
	metaKeys := make([]string, 0, len(meta))
	for k := range meta {
		metaKeys = append(metaKeys, k)
	}

	sort.Strings(metaKeys)

	textKeys := make([]string, 0, len(texts))
	for k := range texts {
		textKeys = append(textKeys, k)
	}

	sort.Slice(textKeys, func(i, j int) bool {
		li, lj := strings.ToLower(textKeys[i]), strings.ToLower(textKeys[j])
		if li != lj {
			return li < lj
		}
		return textKeys[i] < textKeys[j]
	})

	total := len(metaKeys) + len(textKeys)
	if total == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer

	buf.WriteString("{\n")

	n := 0
	writeField := func(key string, value []byte) {
		buf.WriteString("  ")
		buf.Write(key2json(key))
		buf.WriteString(": ")
		buf.Write(value)

		n++
		if n < total {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	for _, k := range metaKeys {
		var indented bytes.Buffer
		if err := json.Indent(&indented, meta[k], "  ", "  "); err != nil {
			return nil, fmt.Errorf("metadata %q: %w", k, err)
		}

		writeField(k, indented.Bytes())
	}

	for _, k := range textKeys {
		value, err := marshalString(texts[k])
		if err != nil {
			return nil, err
		}

		writeField(k, value)
	}

	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

func key2json(key string) []byte {
	b, _ := marshalString(key)
	return b
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
