package llm

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"raggate/internal/domain"
)

// Extractive is the mock-mode generator: instead of calling a model it ranks
// the context sentences by token frequency, weighting tokens that also occur
// in the question, and returns the best few in their original order. No
// network, fully deterministic.
type Extractive struct {
	maxSentences int
	tokenPattern *regexp.Regexp
	sentenceRe   *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewExtractive(maxSentences int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Extractive{
		maxSentences: maxSentences,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentenceRe:   regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:    defaultStopwords(),
	}
}

func (e *Extractive) Generate(ctx context.Context, question, contextBlock string) (string, error) {
	if strings.TrimSpace(contextBlock) == "" {
		return "I do not know: no relevant context was retrieved.", nil
	}
	sentences := e.sentenceRe.FindAllString(contextBlock, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(contextBlock), nil
	}

	questionTokens := make(map[string]struct{})
	for _, tok := range e.tokens(question) {
		questionTokens[tok] = struct{}{}
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range e.tokens(sent) {
			if _, ok := e.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := e.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			if v, ok := freq[tok]; ok {
				score += v
			}
			if _, ok := questionTokens[tok]; ok {
				score += 1
			}
		}
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = pair{i, score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := e.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, n)
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (e *Extractive) tokens(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can",
		"will", "just", "should", "now", "what", "which", "who", "whom", "how",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var _ domain.Generator = (*Extractive)(nil)
