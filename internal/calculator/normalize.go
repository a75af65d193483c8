// In file: internal/calculator/normalize.go

// Package calculator turns natural-language arithmetic ("what is 15% of 80",
// "subtract 10 from 50 and then add 5") into a compact expression string and
// evaluates it.
//
// Normalization is a fixed, ordered pipeline of rewrites. Later stages build on
// the output of earlier ones, so the order below is part of the behavior.
package calculator

import (
	"regexp"
	"strings"
	"unicode"
)

// Chain connectors are swapped for single placeholder words before filler removal,
// otherwise "add" and "multiply" inside them would be stripped as filler verbs.
const (
	thenAddPlaceholder    = "andthenadd"
	multiplyByPlaceholder = "andmultiplyby"
)

const number = `\d+(?:\.\d+)?`

var (
	thenAddPhrase    = regexp.MustCompile(`\band then add\b`)
	multiplyByPhrase = regexp.MustCompile(`\band multiply by\b`)

	fillerWords = regexp.MustCompile(`\b(?:what is|how much is|how many is|calculate|compute|find|please|the|add|subtract|multiply|divide)\b`)

	cubeRootOfNumber = regexp.MustCompile(`\bcube root(?:\s+of)?\s+(` + number + `)`)
	cubeRoot         = regexp.MustCompile(`\bcube root\b`)
	squareRoot       = regexp.MustCompile(`\bsquare root\b`)
	sineWord         = regexp.MustCompile(`\bsine\b`)
	cosineWord       = regexp.MustCompile(`\bcosine\b`)
	tangentWord      = regexp.MustCompile(`\btangent\b`)
	logarithmWord    = regexp.MustCompile(`\blogarithm\b`)

	multipliedBy = regexp.MustCompile(`\bmultiplied by\b`)
	dividedBy    = regexp.MustCompile(`\bdivided by\b`)
	plusWord     = regexp.MustCompile(`\b(?:plus|add up)\b`)
	minusWord    = regexp.MustCompile(`\bminus\b`)
	timesWord    = regexp.MustCompile(`\btimes\b`)
	byWord       = regexp.MustCompile(`\bby\b`)
	percentWord  = regexp.MustCompile(`\s*(?:\bpercent\b|%)`)

	percentOffOf = regexp.MustCompile(`(` + number + `)\s*/100\s+off(?:\s+of)?\s+(` + number + `)`)
	percentTipOn = regexp.MustCompile(`(` + number + `)\s*/100\s+tip\s+on\s+(` + number + `)`)
	chainSplit   = regexp.MustCompile(`\s*\b(` + thenAddPlaceholder + `|` + multiplyByPlaceholder + `)\b\s*`)
	fromWord     = regexp.MustCompile(`\bfrom\b`)
	andWord      = regexp.MustCompile(`\band\b`)

	degreesWord  = regexp.MustCompile(`\bdegrees?\b`)
	base10Phrase = regexp.MustCompile(`\bbase\s*10\b`)
	letterRun    = regexp.MustCompile(`[a-z_]+`)
	disallowed   = regexp.MustCompile(`[^0-9+\-*/().\sa-z]`)

	numberToken     = regexp.MustCompile(number)
	adjacentNumbers = regexp.MustCompile(`(` + number + `)\s+(` + number + `)`)
	functionNumber  = regexp.MustCompile(`\b(sqrt|log|sin|cos|tan)\s*(` + number + `)`)
	trigCall        = regexp.MustCompile(`\b(sin|cos|tan)\((` + number + `)\)`)
	logCall         = regexp.MustCompile(`\blog\((` + number + `)\)`)
)

// allowedWords are the only alphabetic tokens that survive normalization.
var allowedWords = map[string]bool{
	"sqrt": true,
	"log":  true,
	"sin":  true,
	"cos":  true,
	"tan":  true,
	"pi":   true,
}

// Normalize rewrites raw natural-language arithmetic into an expression made of
// numbers, operators, parentheses and the whitelisted function names.
// It never fails: input it cannot make sense of is passed through best-effort and
// left for Evaluate to reject.
func Normalize(raw string) string {
	// 1. Lowercase and drop sentence punctuation.
	expr := stripPunctuation(strings.ToLower(raw))

	// 2. Filler phrases and bare verbs.
	expr = thenAddPhrase.ReplaceAllString(expr, " "+thenAddPlaceholder+" ")
	expr = multiplyByPhrase.ReplaceAllString(expr, " "+multiplyByPlaceholder+" ")
	expr = fillerWords.ReplaceAllString(expr, " ")

	// 3. Function-name synonyms.
	expr = cubeRootOfNumber.ReplaceAllString(expr, "$1 ** (1/3)")
	expr = cubeRoot.ReplaceAllString(expr, "** (1/3)")
	expr = squareRoot.ReplaceAllString(expr, "sqrt")
	expr = sineWord.ReplaceAllString(expr, "sin")
	expr = cosineWord.ReplaceAllString(expr, "cos")
	expr = tangentWord.ReplaceAllString(expr, "tan")
	expr = logarithmWord.ReplaceAllString(expr, "log")

	// 4. Operator words. An isolated "by" is ambiguous and maps to "*".
	expr = multipliedBy.ReplaceAllString(expr, "*")
	expr = dividedBy.ReplaceAllString(expr, "/")
	expr = plusWord.ReplaceAllString(expr, "+")
	expr = minusWord.ReplaceAllString(expr, "-")
	expr = timesWord.ReplaceAllString(expr, "*")
	expr = byWord.ReplaceAllString(expr, "*")
	expr = percentWord.ReplaceAllString(expr, "/100")

	// 5. Domain idioms.
	expr = percentOffOf.ReplaceAllString(expr, "$2 * (1 - $1/100)")
	expr = percentTipOn.ReplaceAllString(expr, "$2 * ($1/100)")
	expr = rewriteChain(expr)
	expr = andWord.ReplaceAllString(expr, " ")

	// 6. Whitelist. Flags that depend on words about to be removed are read first.
	inDegrees := degreesWord.MatchString(expr)
	logBase10 := base10Phrase.MatchString(expr)
	expr = base10Phrase.ReplaceAllString(expr, " ")
	expr = letterRun.ReplaceAllStringFunc(expr, func(word string) string {
		if allowedWords[word] {
			return word
		}
		return " "
	})
	expr = disallowed.ReplaceAllString(expr, "")
	bareList := !strings.ContainsAny(expr, "+-*/") && len(numberToken.FindAllString(expr, -1)) > 2

	// 7. Implicit multiplication between adjacent numbers.
	for {
		next := adjacentNumbers.ReplaceAllString(expr, "$1*$2")
		if next == expr {
			break
		}
		expr = next
	}

	// 8. Parenthesize bare function arguments.
	expr = functionNumber.ReplaceAllString(expr, "$1($2)")

	// 9. Degrees.
	if inDegrees {
		expr = trigCall.ReplaceAllString(expr, "$1($2 * pi / 180)")
	}

	// 10. Explicit base-10 logarithm.
	if logBase10 {
		expr = logCall.ReplaceAllString(expr, "log($1, 10)")
	}

	// 11. A bare list of numbers is read as "add these up".
	if bareList && !strings.Contains(expr, "+") {
		expr = strings.Join(numberToken.FindAllString(expr, -1), "+")
	}

	// 12. Currency.
	expr = strings.ReplaceAll(expr, "$", "")

	return compact(expr)
}

// stripPunctuation removes '?', '!' and ',' everywhere and '.' unless it is a
// decimal point.
func stripPunctuation(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		switch r {
		case '?', '!', ',':
			continue
		case '.':
			if i+1 >= len(runes) || !unicode.IsDigit(runes[i+1]) {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rewriteChain applies the "subtract A from B" rule to each segment between
// chain connectors, then folds the segments left to right.
func rewriteChain(expr string) string {
	matches := chainSplit.FindAllStringSubmatchIndex(expr, -1)
	if len(matches) == 0 {
		return rewriteFrom(expr)
	}

	out := rewriteFrom(expr[:matches[0][0]])
	for i, m := range matches {
		end := len(expr)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		operand := rewriteFrom(expr[m[1]:end])
		op := "+"
		if expr[m[2]:m[3]] == multiplyByPlaceholder {
			op = "*"
		}
		out = "(" + out + ") " + op + " " + operand
	}
	return out
}

func rewriteFrom(segment string) string {
	parts := fromWord.Split(segment, -1)
	if len(parts) != 2 {
		return strings.TrimSpace(segment)
	}
	subtrahend := strings.TrimSpace(parts[0])
	minuend := strings.TrimSpace(parts[1])
	return minuend + " - " + subtrahend
}

// compact drops whitespace, keeping a single space only between two words.
func compact(expr string) string {
	fields := strings.Fields(expr)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 && endsWithLetter(fields[i-1]) && startsWithLetter(f) {
			b.WriteByte(' ')
		}
		b.WriteString(f)
	}
	return b.String()
}

func startsWithLetter(s string) bool {
	return s != "" && unicode.IsLetter(rune(s[0]))
}

func endsWithLetter(s string) bool {
	return s != "" && unicode.IsLetter(rune(s[len(s)-1]))
}
