// Package match resolves a query against the curated intent bank.
//
// A Matcher embeds the normalized query once, ranks it against every indexed
// example by cosine similarity, and walks the topK candidates in descending
// score order. Scanning stops at the first candidate scoring below the
// threshold; the first qualifying candidate whose intent has a configured
// response wins. Equal scores favor the example inserted first.
//
// A Matcher never guesses: when nothing qualifies, Match returns a nil result
// and the caller falls through to the document cascade.
package match
