package header

import (
	"strings"

	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/field"
)

// Count returns the number of fields in the Store.
func (s *Store) Count() int { return len(s.entries) }

// All returns every field in insertion order (spec §4.1 "begin()/end()").
func (s *Store) All() []Entry {
	return s.entries
}

// matches reports whether entry e matches the given name (case-insensitive)
// or field.ID, whichever selector is non-empty/non-Unknown. Passing both a
// name and field.Unknown means "match by name only".
func matches(e Entry, name string, id field.ID) bool {
	if name != "" {
		return strings.EqualFold(e.Name, name)
	}
	return e.ID == id && id != field.Unknown
}

// Find returns the index of the first field named name, or -1 if absent
// (spec §4.1 "find(id_or_name)").
func (s *Store) Find(name string) int {
	return s.FindFrom(0, name)
}

// FindID returns the index of the first field with the given well-known
// ID, or -1 if absent.
func (s *Store) FindID(id field.ID) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// FindFrom returns the index of the first field named name at or after
// from, or -1 if absent (spec §4.1 "find(from, id_or_name)").
func (s *Store) FindFrom(from int, name string) int {
	for i := from; i < len(s.entries); i++ {
		if matches(s.entries[i], name, field.Unknown) {
			return i
		}
	}
	return -1
}

// FindLast returns the index of the last field named name strictly before
// index before, or -1 if absent (spec §4.1 "find_last(before, id_or_name)").
func (s *Store) FindLast(before int, name string) int {
	if before > len(s.entries) {
		before = len(s.entries)
	}
	for i := before - 1; i >= 0; i-- {
		if matches(s.entries[i], name, field.Unknown) {
			return i
		}
	}
	return -1
}

// CountName returns how many fields are named name.
func (s *Store) CountName(name string) int {
	n := 0
	for _, e := range s.entries {
		if strings.EqualFold(e.Name, name) {
			n++
		}
	}
	return n
}

// Exists reports whether any field is named name.
func (s *Store) Exists(name string) bool { return s.Find(name) >= 0 }

// ValueOr returns the value of the first field named name, or def if
// absent (spec §4.1 "value_or(default)").
func (s *Store) ValueOr(name, def string) string {
	if i := s.Find(name); i >= 0 {
		return s.entries[i].Value
	}
	return def
}

// At returns the field at index i, or a KindNotFound error if i is out of
// range (spec §4.1 "at (fails-with not_found if absent)").
func (s *Store) At(i int) (Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, errors.New(errors.KindNotFound, "header.At", 0)
	}
	return s.entries[i], nil
}

// Subrange is a sequence of fields sharing one name or field.ID
// (spec §3.3). It holds indices into the owning Store, all collected when
// FindAll/FindAllID is called, and is only valid until the next mutation.
type Subrange struct {
	store *Store
	name  string
	id    field.ID
	idx   []int
}

// FindAll returns a Subrange enumerating every field named name
// (spec §4.1 "find_all(id_or_name)").
func (s *Store) FindAll(name string) Subrange {
	sr := Subrange{store: s, name: name}
	for i, e := range s.entries {
		if matches(e, name, field.Unknown) {
			sr.idx = append(sr.idx, i)
		}
	}
	return sr
}

// FindAllID returns a Subrange enumerating every field with the given ID.
func (s *Store) FindAllID(id field.ID) Subrange {
	sr := Subrange{store: s, id: id}
	for i, e := range s.entries {
		if e.ID == id {
			sr.idx = append(sr.idx, i)
		}
	}
	return sr
}

// Len returns the number of fields in the subrange.
func (sr Subrange) Len() int { return len(sr.idx) }

// At returns the i'th field in the subrange.
func (sr Subrange) At(i int) Entry { return sr.store.entries[sr.idx[i]] }

// Values returns every value in the subrange, in insertion order.
func (sr Subrange) Values() []string {
	out := make([]string, len(sr.idx))
	for i, idx := range sr.idx {
		out[i] = sr.store.entries[idx].Value
	}
	return out
}

// validateNameValue enforces the character constraints from spec §4.1:
// names must be RFC 7230 tokens; values must be field-vchar/SP/HTAB with
// no embedded CR/LF.
func validateNameValue(name, value string) error {
	if !IsToken(name) {
		return errors.New(errors.KindBadFieldName, "header.validateNameValue", 0)
	}
	ok, smuggle := isValidFieldValue(value)
	if smuggle {
		return errors.New(errors.KindBadFieldSmuggle, "header.validateNameValue", 0)
	}
	if !ok {
		return errors.New(errors.KindBadFieldValue, "header.validateNameValue", 0)
	}
	return nil
}

// Append adds a new field (spec §4.1 "append(name, value)"). Unlike Set,
// it never replaces an existing field with the same name.
func (s *Store) Append(name, value string) error {
	if err := validateNameValue(name, value); err != nil {
		return err
	}
	if len(s.entries) >= maxFieldsHardLimit {
		return errors.New(errors.KindFieldsLimit, "header.Append", 0)
	}
	s.entries = append(s.entries, Entry{Name: name, Value: value, ID: field.LookupString(name)})
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// maxFieldsHardLimit is a sanity backstop independent of the parser's
// configurable headers.max_fields (which bounds fields arriving from the
// wire); programmatic Append calls are bounded here only to prevent
// unbounded growth from a caller bug.
const maxFieldsHardLimit = 1 << 20

// SetAt replaces the value of the field at index i (spec §4.1
// "set(iter, value)").
func (s *Store) SetAt(i int, value string) error {
	if i < 0 || i >= len(s.entries) {
		return errors.New(errors.KindNotFound, "header.SetAt", 0)
	}
	if err := validateNameValue(s.entries[i].Name, value); err != nil {
		return err
	}
	s.entries[i].Value = value
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// Set replaces every field named name with a single field carrying value,
// appending one if none existed (spec §4.1 "set(id_or_name, value)").
func (s *Store) Set(name, value string) error {
	if err := validateNameValue(name, value); err != nil {
		return err
	}
	first := -1
	for i := 0; i < len(s.entries); {
		if strings.EqualFold(s.entries[i].Name, name) {
			if first == -1 {
				first = i
				s.entries[i].Value = value
				i++
			} else {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
			}
			continue
		}
		i++
	}
	if first == -1 {
		s.entries = append(s.entries, Entry{Name: name, Value: value, ID: field.LookupString(name)})
	}
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// Erase removes the field at index i (spec §4.1 "erase(iter)").
func (s *Store) Erase(i int) error {
	if i < 0 || i >= len(s.entries) {
		return errors.New(errors.KindNotFound, "header.Erase", 0)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.bufDirty = true
	s.recomputeFraming()
	return nil
}

// EraseName removes every field named name, returning how many were
// removed (spec §4.1 "erase(id_or_name) erases all matching").
func (s *Store) EraseName(name string) int {
	n := 0
	out := s.entries[:0]
	for _, e := range s.entries {
		if strings.EqualFold(e.Name, name) {
			n++
			continue
		}
		out = append(out, e)
	}
	s.entries = out
	if n > 0 {
		s.bufDirty = true
		s.recomputeFraming()
	}
	return n
}

// AppendRaw is used by the parser to install an already-validated,
// already-obs-fold-normalized field without re-running character
// validation on the hot path (the parser validates bytes as it scans).
func (s *Store) AppendRaw(name, value string, id field.ID) {
	s.entries = append(s.entries, Entry{Name: name, Value: value, ID: id})
	s.bufDirty = true
	s.recomputeFraming()
}
