package textrec

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tablesight/tablesight/internal/layout"
)

// Value is a normalized zone reading: either a number or a cleaned
// string. The zero Value means normalization rejected the read.
type Value struct {
	Num   float64
	Str   string
	IsNum bool
	OK    bool
}

// NumValue wraps a numeric reading.
func NumValue(v float64) Value { return Value{Num: v, IsNum: true, OK: true} }

// StrValue wraps a string reading.
func StrValue(s string) Value { return Value{Str: s, OK: true} }

// String renders the value for display; empty when rejected.
func (v Value) String() string {
	if !v.OK {
		return ""
	}
	if v.IsNum {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// MarshalJSON emits a bare number, a string, or null for a rejected read.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	if v.IsNum {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// Normalize converts raw OCR text into a typed value per zone semantics.
func Normalize(sem layout.Semantics, text string) Value {
	switch sem {
	case layout.SemanticsName:
		return NormalizeName(text)
	case layout.SemanticsPot:
		return ExtractPotValue(text)
	case layout.SemanticsMoney:
		return ParseMonetary(text)
	default:
		s := strings.TrimSpace(text)
		if s == "" {
			return Value{}
		}
		return StrValue(s)
	}
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds diacritics and strips a raw read down to letters,
// digits, spaces and hyphens. Too-short or mostly-numeric survivors are
// OCR noise wearing a name's clothes and are rejected.
func NormalizeName(text string) Value {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if utf8.RuneCountInString(name) < 2 {
		return Value{}
	}

	digits, total := 0, 0
	for _, r := range name {
		if r == ' ' {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 || float64(digits)/float64(total) > 0.7 {
		return Value{}
	}
	return StrValue(name)
}

var confusionReplacer = strings.NewReplacer(
	"O", "0", "o", "0",
	"I", "1", "l", "1",
	"S", "5", "s", "5",
	"B", "8", "b", "8",
	"G", "6", "g", "6",
)

// CorrectConfusions rewrites glyphs OCR commonly mistakes for digits.
func CorrectConfusions(text string) string {
	return confusionReplacer.Replace(text)
}

type amountToken struct {
	value   float64
	decimal bool
}

// splitAmountRuns cuts text into maximal runs of digits and decimal
// separators, keeping only runs that contain at least one digit. Label
// words act as token boundaries rather than vanishing into the number.
func splitAmountRuns(text string) []string {
	var runs []string
	var b strings.Builder
	hasDigit := false
	flush := func() {
		if hasDigit {
			runs = append(runs, b.String())
		}
		b.Reset()
		hasDigit = false
	}
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			hasDigit = true
		case r == '.' || r == ',':
			b.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return runs
}

func parseAmountTokens(text string) []amountToken {
	var out []amountToken
	for _, raw := range splitAmountRuns(text) {
		tok := strings.TrimRight(raw, ".,")
		if tok == "" {
			continue
		}
		if tok[0] == '.' || tok[0] == ',' {
			// A misread leading digit vanishes under a digit whitelist
			// and sub-unit amounts lead with zero; restore it.
			tok = "0" + tok
		}
		decimal := strings.ContainsAny(tok, ".,")
		v, err := strconv.ParseFloat(strings.ReplaceAll(tok, ",", "."), 64)
		if err != nil {
			continue
		}
		out = append(out, amountToken{value: v, decimal: decimal})
	}
	return out
}

// ExtractPotValue pulls the pot amount out of a label-bearing read,
// whatever the phrasing: "Pot 1.25", "Pot total 1.25" and "Side pot:
// 1.25" all yield 1.25. The last decimal-formatted token wins; the last
// token of any kind is the fallback.
func ExtractPotValue(text string) Value {
	tokens := parseAmountTokens(text)
	if len(tokens) == 0 {
		return Value{}
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].decimal {
			return NumValue(tokens[i].value)
		}
	}
	return NumValue(tokens[len(tokens)-1].value)
}

var (
	moneyStrip   = regexp.MustCompile(`[^0-9.,kKmM€]`)
	kiloPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)[kK]`)
	megaPattern  = regexp.MustCompile(`(\d+(?:[.,]\d+)?)[mM]`)
	plainPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v, err == nil
}

// ParseMonetary parses a bare monetary read such as a stack value.
// Confusion corrections run first so 1O5 parses as 105, then suffix
// forms take priority: 10.5k is 10500 and 2.3M is 2300000, with plain
// decimals and integers after.
func ParseMonetary(text string) Value {
	cleaned := moneyStrip.ReplaceAllString(CorrectConfusions(text), "")
	if cleaned == "" {
		return Value{}
	}
	if m := kiloPattern.FindStringSubmatch(cleaned); m != nil {
		if v, ok := parseDecimal(m[1]); ok {
			return NumValue(v * 1000)
		}
	}
	if m := megaPattern.FindStringSubmatch(cleaned); m != nil {
		if v, ok := parseDecimal(m[1]); ok {
			return NumValue(v * 1000000)
		}
	}
	if m := plainPattern.FindString(cleaned); m != "" {
		if v, ok := parseDecimal(m); ok {
			return NumValue(v)
		}
	}
	return Value{}
}
