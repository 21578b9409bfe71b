package main

import (
	"fmt"
	"strings"

	textsearch "github.com/STBoyden/text-search-go"
	"github.com/STBoyden/text-search-go/debug"
)

var documents = map[int64]string{
	1: "the quick brown fox",
	2: "the lazy brown dog",
	3: "quick quick fox jumps",
	4: "a dog and a fox",
}

func index() map[string]*textsearch.CountedSet {
	postings := map[string]*textsearch.CountedSet{}

	for id, text := range documents {
		for _, term := range strings.Fields(text) {
			if postings[term] == nil {
				postings[term] = textsearch.New()
			}

			postings[term].Insert(id)
		}
	}

	return postings
}

func postingsFor(postings map[string]*textsearch.CountedSet, term string) *textsearch.CountedSet {
	if set, ok := postings[term]; ok {
		return set
	}

	return textsearch.New()
}

func main() {
	postings := index()

	// fox AND quick, NOT dog
	results := postingsFor(postings, "fox").Clone()
	results.Intersect(postingsFor(postings, "quick"))
	results.Minus(postingsFor(postings, "dog"))

	for rank, id := range results.ToVec() {
		fmt.Printf("%d. doc %d (weight %d): %s\n", rank+1, id, results.Count(id), documents[id])
	}

	// brown OR jumps
	either := postingsFor(postings, "brown").Clone()
	either.Union(postingsFor(postings, "jumps"))
	fmt.Println(either)

	logger := debug.NewLogger()

	if _, err := logger.LogWhenEnv("fox AND quick NOT dog"); err != nil {
		fmt.Println(err)
		return
	}

	if _, err := logger.LogSet("fox AND quick NOT dog", results); err != nil {
		fmt.Println(err)
	}
}
