package processor

import (
	"regexp"
	"strings"
)

type ProcessorConfig struct {
	MinTokenLength  int
	RemoveStopwords bool
	CustomStopwords []string
	PreserveCase    bool
}

type Processor struct {
	config    ProcessorConfig
	stopwords map[string]struct{}
}

// wordRe matches runs of letters, digits, marks and underscores.
var wordRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MinTokenLength == 0 {
		config.MinTokenLength = 2
	}

	stopwords := make(map[string]struct{})
	if config.RemoveStopwords {
		for _, w := range getStopwords() {
			stopwords[w] = struct{}{}
		}
		for _, w := range config.CustomStopwords {
			stopwords[strings.ToLower(w)] = struct{}{}
		}
	}

	return Processor{
		config:    config,
		stopwords: stopwords,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{})
}

// Tokenize splits text into word tokens, dropping tokens shorter than
// MinTokenLength runes and, if configured, stopwords.
func (p Processor) Tokenize(text string) []string {
	text = p.cleanText(text)

	var tokens []string
	for _, word := range wordRe.FindAllString(text, -1) {
		if len([]rune(word)) < p.config.MinTokenLength {
			continue
		}
		if _, stop := p.stopwords[strings.ToLower(word)]; stop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

func (p Processor) cleanText(text string) string {
	if !p.config.PreserveCase {
		text = strings.ToLower(text)
	}

	// Collapse whitespace
	return strings.Join(strings.Fields(text), " ")
}

// Common English stopwords
func getStopwords() []string {
	return []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with",
	}
}
