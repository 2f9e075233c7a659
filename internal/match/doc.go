// Package match finds the declared key a misspelled front-matter key most
// likely meant. Keys are compared after normalization ("publishedAt",
// "published_at" and "published-at" are the same key) by rune-wise
// Levenshtein similarity.
package match
