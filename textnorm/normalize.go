// Package textnorm canonicalizes query and example text before embedding.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Arabic-script letter variants folded to their Persian forms.
var scriptVariants = strings.NewReplacer(
	"ي", "ی", // ARABIC LETTER YEH -> FARSI YEH
	"ى", "ی", // ARABIC LETTER ALEF MAKSURA -> FARSI YEH
	"ك", "ک", // ARABIC LETTER KAF -> KEHEH
)

// Normalize returns the canonical form of text.
//
// Steps, in order:
//  1. NFKC, then Arabic letter variants folded to one Persian form
//  2. whitespace runs collapsed to a single space, ends trimmed
//  3. Unicode case folding
//
// Normalize is total and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = scriptVariants.Replace(norm.NFKC.String(text))
	text = strings.Join(strings.Fields(text), " ")
	// Casers are stateful and must not be shared between goroutines.
	return cases.Fold().String(text)
}
