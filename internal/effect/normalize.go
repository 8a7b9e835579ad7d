// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package effect

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// normalize folds a description into the form every pattern and phrase
// table in this package is written against: full-width ASCII becomes
// half-width (３ターン -> 3ターン, ＋３０％ -> +30%), letters are case-folded
// (HP -> hp) and runs of whitespace collapse to one space.
func normalize(text string) string {
	folded := width.Fold.String(text)
	folded = cases.Fold().String(folded)
	return strings.Join(strings.Fields(folded), " ")
}
