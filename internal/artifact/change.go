package artifact

import "arbsweep/internal/resolve"

// Change is an approved entry ready to apply: either ReuseChange or
// CreateChange.
type Change interface {
	Target() *Entry
	Action() resolve.Action
	isChange()
}

// ReuseChange points a literal at an existing catalog key.
type ReuseChange struct {
	Entry *Entry
}

// CreateChange adds Entry.Key to the catalog with Entry.TargetText.
type CreateChange struct {
	Entry *Entry
}

func (c ReuseChange) Target() *Entry          { return c.Entry }
func (c ReuseChange) Action() resolve.Action  { return resolve.Reuse }
func (ReuseChange) isChange()                 {}
func (c CreateChange) Target() *Entry         { return c.Entry }
func (c CreateChange) Action() resolve.Action { return resolve.Create }
func (CreateChange) isChange()                {}

// Changes returns the approved entries in file, line and column order.
// Entries Validate found stale are left out.
func (f *File) Changes() []Change {
	var out []Change

	for _, t := range f.Entries() {
		if !t.Approved || t.Status == StatusStale {
			continue
		}

		if t.Action == resolve.Create {
			out = append(out, CreateChange{Entry: t.Entry})
		} else {
			out = append(out, ReuseChange{Entry: t.Entry})
		}
	}

	return out
}

// Stale returns the approved entries Validate found stale.
func (f *File) Stale() []*Entry {
	var out []*Entry

	for _, t := range f.Entries() {
		if t.Approved && t.Status == StatusStale {
			out = append(out, t.Entry)
		}
	}

	return out
}
