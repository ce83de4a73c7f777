// Package bulk turns pasted study notes into question/answer pairs and
// imports the valid ones into the store.
//
// Recognized markers, case-insensitive, at the start of a trimmed line:
//
//	Q:, Q1:, Question:, Question12:, 1.<space>   start a question
//	A:, A1:, Answer:, Answer12:                   start an answer
//
// Any other line continues whichever part is being read.
package bulk

import (
	"regexp"
	"strings"
	"unicode"
)

// ErrMissingAnswer is the only per-item error the parser produces.
const ErrMissingAnswer = "Missing answer"

// blank matches any whitespace rune, including no-break spaces and the
// byte order mark that pasted text often carries.
const blank = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	questionMarker = regexp.MustCompile(`(?i)^(Q\d*:|Question\d*:|\d+\.` + blank + `)`)
	questionPrefix = regexp.MustCompile(`(?i)^(Q\d*:|Question\d*:|\d+\.` + blank + `)` + blank + `*`)
	answerMarker   = regexp.MustCompile(`(?i)^(A\d*:|Answer\d*:)`)
	answerPrefix   = regexp.MustCompile(`(?i)^(A\d*:|Answer\d*:)` + blank + `*`)
)

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// Item is one parsed candidate. Valid is true exactly when Answer is
// non-empty; invalid items carry Error.
type Item struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

type readMode int

const (
	readingNothing readMode = iota
	readingQuestion
	readingAnswer
)

// Parse classifies each line of text and returns the candidate pairs in
// input order. It never fails: malformed input yields invalid items, and
// empty input yields nil.
func Parse(text string) []Item {
	if trimBlank(text) == "" {
		return nil
	}

	var (
		items    []Item
		question string
		answer   string
		mode     = readingNothing
	)

	for _, raw := range strings.Split(text, "\n") {
		line := trimBlank(raw)
		if line == "" {
			continue
		}

		switch {
		case questionMarker.MatchString(line):
			if question != "" {
				items = append(items, finish(question, answer))
			}
			question = trimBlank(questionPrefix.ReplaceAllString(line, ""))
			answer = ""
			mode = readingQuestion

		case answerMarker.MatchString(line):
			answer = trimBlank(answerPrefix.ReplaceAllString(line, ""))
			mode = readingAnswer

		case mode == readingQuestion:
			question += " " + line

		case mode == readingAnswer:
			answer += " " + line

		case question == "":
			question = line
			mode = readingQuestion
		}
	}

	if question != "" {
		items = append(items, finish(question, answer))
	}
	return items
}

func finish(question, answer string) Item {
	item := Item{
		Question: trimBlank(question),
		Answer:   trimBlank(answer),
	}
	item.Valid = item.Answer != ""
	if !item.Valid {
		item.Error = ErrMissingAnswer
	}
	return item
}

// Summary counts valid and invalid items for the preview header.
func Summary(items []Item) (valid, invalid int) {
	for _, it := range items {
		if it.Valid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// ValidItems returns only the importable items, in order.
func ValidItems(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.Valid {
			out = append(out, it)
		}
	}
	return out
}

// SampleText is the example offered by the "load sample" action.
const SampleText = `Q1: What is JavaScript?
A1: JavaScript is a versatile, object-oriented scripting language used to create dynamic and interactive content on websites.

Q2: What are the data types in JavaScript?
A2: Primitive data types: String, Number, Boolean, Undefined, Null, BigInt, Symbol. Non-primitive: Object.

Q3: What is the difference between let, const, and var?
A3: var is function-scoped and can be redeclared. let is block-scoped and cannot be redeclared. const is block-scoped and cannot be reassigned.

Q4: Explain closures in JavaScript.
A4: A closure is a function that has access to its own scope, the outer function's scope, and the global scope.`
