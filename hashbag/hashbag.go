// Package hashbag implements a counted multiset over any comparable key.
//
// A HashBag maps each key to the number of times it was inserted. A key that
// is not in the map has a count of zero, and no stored count is ever zero.
package hashbag

import (
	"cmp"
	"fmt"
	"math"

	e "github.com/STBoyden/text-search-go/error"

	"github.com/go-errors/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type HashBag[K comparable] map[K]uint32

// Entry is a single key and its count, as returned by Entries.
type Entry[K comparable] struct {
	Key   K
	Count uint32
}

func New[K comparable]() HashBag[K] {
	return make(map[K]uint32)
}

// Insert increments the count for key and returns the resulting count.
func Insert[K comparable](bag HashBag[K], key K) uint32 {
	count := bag[key]
	if count == math.MaxUint32 {
		overflow("insert", key)
	}

	bag[key] = count + 1
	return count + 1
}

// Remove decrements the count for key and returns the resulting count. A key
// whose count drops to zero is deleted. Removing an absent key does nothing.
func Remove[K comparable](bag HashBag[K], key K) uint32 {
	count, ok := bag[key]
	if !ok {
		return 0
	}

	if count > 1 {
		bag[key] = count - 1
		return count - 1
	}

	delete(bag, key)
	return 0
}

// RemoveAll deletes key regardless of its count and reports whether it was
// present.
func RemoveAll[K comparable](bag HashBag[K], key K) bool {
	_, ok := bag[key]
	delete(bag, key)

	return ok
}

func Count[K comparable](bag HashBag[K], key K) uint32 {
	return bag[key]
}

func Contains[K comparable](bag HashBag[K], key K) bool {
	return bag[key] > 0
}

// Total is the sum of all counts in the bag.
func Total[K comparable](bag HashBag[K]) uint64 {
	var total uint64

	for _, count := range bag {
		total += uint64(count)
	}

	return total
}

func Clear[K comparable](bag HashBag[K]) {
	clear(bag)
}

func Clone[K comparable](bag HashBag[K]) HashBag[K] {
	if bag == nil {
		return New[K]()
	}

	return maps.Clone(bag)
}

// Union adds the count of every key in other to bag.
func Union[K comparable](bag HashBag[K], other HashBag[K]) {
	for key, count := range other {
		checkSum("union", key, bag[key], count)
	}

	for key, count := range other {
		bag[key] += count
	}
}

// Intersect keeps only the keys of bag that are also in other. The count of a
// kept key becomes the sum of both counts, not the minimum.
func Intersect[K comparable](bag HashBag[K], other HashBag[K]) {
	for key, count := range bag {
		if otherCount, ok := other[key]; ok {
			checkSum("intersect", key, count, otherCount)
		}
	}

	for key, count := range bag {
		otherCount, ok := other[key]
		if !ok {
			delete(bag, key)
			continue
		}

		bag[key] = count + otherCount
	}
}

// Minus subtracts the count of every key in other from bag. Keys whose count
// would drop to zero or below are deleted.
func Minus[K comparable](bag HashBag[K], other HashBag[K]) {
	for key, count := range bag {
		otherCount, ok := other[key]
		if !ok {
			continue
		}

		if otherCount >= count {
			delete(bag, key)
			continue
		}

		bag[key] = count - otherCount
	}
}

// Entries returns every key with its count, ordered by descending count. The
// order of keys with equal counts is unspecified.
func Entries[K comparable](bag HashBag[K]) []Entry[K] {
	entries := make([]Entry[K], 0, len(bag))

	for key, count := range bag {
		entries = append(entries, Entry[K]{Key: key, Count: count})
	}

	slices.SortFunc(entries, func(a, b Entry[K]) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return entries
}

// Keys returns every key ordered by descending count.
func Keys[K comparable](bag HashBag[K]) []K {
	entries := Entries(bag)
	keys := make([]K, len(entries))

	for i, entry := range entries {
		keys[i] = entry.Key
	}

	return keys
}

// Each calls fn for every key in unspecified order until fn returns false.
// fn may remove keys from bag; removed keys are not visited afterwards.
func Each[K comparable](bag HashBag[K], fn func(key K, count uint32) bool) {
	for _, key := range maps.Keys(bag) {
		count, ok := bag[key]
		if !ok {
			continue
		}

		if !fn(key, count) {
			return
		}
	}
}

func checkSum[K comparable](op string, key K, a, b uint32) {
	if uint64(a)+uint64(b) > math.MaxUint32 {
		overflow(op, key)
	}
}

func overflow[K comparable](op string, key K) {
	panic(errors.Wrap(e.New(e.CountOverflowError, fmt.Sprintf("%s would exceed %d for key %v", op, uint32(math.MaxUint32), key)), 2))
}
