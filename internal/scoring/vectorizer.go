package scoring

import (
	"errors"
	"math"
	"regexp"
)

// ErrEmptyVocabulary is returned when tokenization leaves nothing to
// vectorize. Callers fall back to set overlap.
var ErrEmptyVocabulary = errors.New("empty vocabulary: no terms survived tokenization")

// Tokens are word runs of two or more characters; single-character tokens
// carry no signal for skill text.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// tfidfCosine computes the cosine similarity of two documents in a TF-IDF
// vector space built from exactly those two documents, with smoothed IDF and
// L2-normalized vectors.
func tfidfCosine(docA, docB string) (float64, error) {
	tokensA := tokenize(docA)
	tokensB := tokenize(docB)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0, ErrEmptyVocabulary
	}

	vocab := make(map[string]int)
	for _, tok := range tokensA {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}
	for _, tok := range tokensB {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}

	countsA := termCounts(tokensA, vocab)
	countsB := termCounts(tokensB, vocab)

	// Smoothed IDF over the two-document corpus: ln((1+n)/(1+df)) + 1.
	vecA := make([]float64, len(vocab))
	vecB := make([]float64, len(vocab))
	for _, idx := range vocab {
		df := 0
		if countsA[idx] > 0 {
			df++
		}
		if countsB[idx] > 0 {
			df++
		}
		idf := math.Log(3.0/float64(1+df)) + 1.0
		vecA[idx] = float64(countsA[idx]) * idf
		vecB[idx] = float64(countsB[idx]) * idf
	}

	normalize(vecA)
	normalize(vecB)

	dot := 0.0
	for i := range vecA {
		dot += vecA[i] * vecB[i]
	}
	return dot, nil
}

func termCounts(tokens []string, vocab map[string]int) []int {
	counts := make([]int, len(vocab))
	for _, tok := range tokens {
		counts[vocab[tok]]++
	}
	return counts
}

func normalize(vec []float64) {
	sum := 0.0
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}
