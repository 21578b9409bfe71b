// Package textsearch provides the counted set used to aggregate posting
// identifiers while ranking search results.
package textsearch

import (
	"cmp"
	"fmt"
	"strings"

	h "github.com/STBoyden/text-search-go/hashbag"

	"golang.org/x/exp/slices"
)

// Entry is a key of a CountedSet together with its count.
type Entry = h.Entry[int64]

// CountedSet is a multiset of int64 keys. Each key is stored with the number
// of times it was inserted, and its length is the number of distinct keys.
//
// A CountedSet is not safe for concurrent use. The zero value is an empty set
// ready to use.
type CountedSet struct {
	bag h.HashBag[int64]
}

// Creates a new, empty CountedSet.
func New() *CountedSet {
	return &CountedSet{bag: h.New[int64]()}
}

// Creates a new CountedSet with every key of keys inserted once per
// occurrence.
func FromKeys(keys ...int64) *CountedSet {
	set := New()

	for _, key := range keys {
		set.Insert(key)
	}

	return set
}

func (s *CountedSet) init() {
	if s.bag == nil {
		s.bag = h.New[int64]()
	}
}

// entries returns the underlying bag, treating a nil set as empty.
func (s *CountedSet) entries() h.HashBag[int64] {
	if s == nil {
		return nil
	}

	return s.bag
}

// Len returns the number of distinct keys.
func (s *CountedSet) Len() int {
	return len(s.bag)
}

func (s *CountedSet) IsEmpty() bool {
	return s.Len() == 0
}

func (s *CountedSet) Contains(key int64) bool {
	return h.Contains(s.bag, key)
}

// Count returns the count of key, or 0 if key is absent.
func (s *CountedSet) Count(key int64) uint32 {
	return h.Count(s.bag, key)
}

// Total returns the sum of every count in the set.
func (s *CountedSet) Total() uint64 {
	return h.Total(s.bag)
}

// Insert increments the count of key and returns the resulting count.
//
// Insert panics if the count would overflow a uint32.
func (s *CountedSet) Insert(key int64) uint32 {
	s.init()

	return h.Insert(s.bag, key)
}

// Remove decrements the count of key and returns the resulting count. The key
// is deleted once its count reaches 0. Removing an absent key is a no-op that
// returns 0.
func (s *CountedSet) Remove(key int64) uint32 {
	return h.Remove(s.bag, key)
}

// RemoveAll deletes key in one step, whatever its count, and reports whether
// it was present.
func (s *CountedSet) RemoveAll(key int64) bool {
	return h.RemoveAll(s.bag, key)
}

func (s *CountedSet) Clear() {
	h.Clear(s.bag)
}

// Union adds the count of every key in other to s. other is not modified.
func (s *CountedSet) Union(other *CountedSet) {
	s.init()

	h.Union(s.bag, other.entries())
}

// Intersect removes from s every key that other does not contain. Each
// remaining key is given the sum of its count in s and in other.
func (s *CountedSet) Intersect(other *CountedSet) {
	h.Intersect(s.bag, other.entries())
}

// Minus subtracts the count of every key in other from s. A key whose count
// falls to 0 or below is deleted.
func (s *CountedSet) Minus(other *CountedSet) {
	h.Minus(s.bag, other.entries())
}

// Clone returns a deep copy of s.
func (s *CountedSet) Clone() *CountedSet {
	return &CountedSet{bag: h.Clone(s.bag)}
}

// ToVec returns every distinct key ordered by descending count. Keys with
// equal counts appear in no particular order.
func (s *CountedSet) ToVec() []int64 {
	return h.Keys(s.bag)
}

// Entries returns every key with its count, ordered like ToVec.
func (s *CountedSet) Entries() []Entry {
	return h.Entries(s.bag)
}

// Each calls fn for every key until fn returns false.
func (s *CountedSet) Each(fn func(key int64, count uint32) bool) {
	h.Each(s.bag, fn)
}

func (s *CountedSet) String() string {
	entries := s.Entries()

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Key, b.Key)
	})

	sb := strings.Builder{}
	sb.WriteString("CountedSet{")

	for i, entry := range entries {
		if i > 0 {
			sb.WriteString(" ")
		}

		fmt.Fprintf(&sb, "%d:%d", entry.Key, entry.Count)
	}

	sb.WriteString("}")

	return sb.String()
}
