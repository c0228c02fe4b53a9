package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pbaille/grocer/internal/domain"
)

// stopWords are stripped from the utterance (whole words only) before the
// item name is extracted.
var stopWords = map[string]struct{}{
	"add": {}, "remove": {}, "please": {}, "to": {},
	"my": {}, "list": {}, "find": {}, "search": {},
}

// numberWords cover spoken quantities; explicit digits take precedence.
var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Fallback derives an intent from the utterance alone. It is the last line
// of defense when the parse service is down, so it never fails: the worst
// case is an unknown intent with an empty item.
//
// The item heuristic is deliberately crude (last two tokens after stop-word
// removal) and can yield names like "of water" for "add two bottles of
// water". That output is part of the observable contract and must not be
// "fixed" here.
func Fallback(text string) domain.Intent {
	lowered := strings.ToLower(text)
	tokens := tokenize(lowered)

	kind := classify(tokens)
	quantity := extractQuantity(lowered, tokens)
	item := strings.Join(trailingWindow(stripStopWords(tokens), 2), " ")
	speech := strings.TrimSpace(fmt.Sprintf("Okay, %s %s", kind, item))

	return domain.Intent{
		Kind:     kind,
		Item:     item,
		Quantity: quantity,
		Speech:   speech,
	}
}

func tokenize(text string) []string {
	return strings.Fields(text)
}

// classify picks the intent kind from standalone command tokens. When both
// appear, remove wins.
func classify(tokens []string) domain.IntentKind {
	kind := domain.IntentUnknown
	for _, tok := range tokens {
		if tok == "add" {
			kind = domain.IntentAddItem
		}
	}
	for _, tok := range tokens {
		if tok == "remove" {
			kind = domain.IntentRemoveItem
		}
	}
	return kind
}

// extractQuantity prefers the first usable digit sequence in the text, then
// the first spoken number word, then defaults to 1.
func extractQuantity(text string, tokens []string) int {
	if n, ok := firstNumber(text); ok {
		return n
	}
	for _, tok := range tokens {
		if n, ok := numberWords[tok]; ok {
			return n
		}
	}
	return 1
}

// firstNumber returns the first digit group that can serve as a quantity.
// Groups that cannot (zero, or too large to parse) are skipped and the scan
// continues.
func firstNumber(text string) (int, bool) {
	start := -1
	for i, r := range text {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if n, ok := parseQuantity(text[start:i]); ok {
				return n, true
			}
			start = -1
		}
	}
	if start >= 0 {
		if n, ok := parseQuantity(text[start:]); ok {
			return n, true
		}
	}
	return 0, false
}

func parseQuantity(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func stripStopWords(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := stopWords[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}

func trailingWindow(tokens []string, n int) []string {
	if len(tokens) <= n {
		return tokens
	}
	return tokens[len(tokens)-n:]
}
