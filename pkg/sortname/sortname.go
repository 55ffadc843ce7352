// Package sortname builds the keys records are ordered by: titles without
// their leading article and authors in "Last, First" form, case-folded so
// that ordering doesn't depend on capitalization.
package sortname

import (
	"slices"
	"strings"

	"github.com/shishobooks/bookshelf/pkg/mediafile"
	"golang.org/x/text/cases"
)

// TitleArticles are moved from the front of a title to its end.
var TitleArticles = []string{"The", "A", "An"}

// GenerationalSuffixes stay in the sort name since they tell people apart.
var GenerationalSuffixes = []string{"Jr.", "Jr", "Sr.", "Sr", "II", "III", "IV"}

// Honorifics are dropped from the front of a name.
var Honorifics = []string{"Dr.", "Dr", "Mr.", "Mr", "Mrs.", "Mrs", "Ms.", "Ms", "Prof.", "Prof", "Sir", "Dame"}

// ForTitle moves a leading article to the end.
//   - "The Hobbit" -> "Hobbit, The"
//   - "An American Tragedy" -> "American Tragedy, An"
func ForTitle(title string) string {
	title = strings.TrimSpace(title)
	first, rest, ok := strings.Cut(title, " ")
	if !ok || !containsFold(TitleArticles, first) {
		return title
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return title
	}
	return rest + ", " + first
}

// ForPerson converts a display name to "Last, First Middle".
//   - "Frank Herbert" -> "Herbert, Frank"
//   - "Dr. Sarah Connor" -> "Connor, Sarah"
//   - "Martin Luther King Jr." -> "King, Martin Luther, Jr."
//   - "Ludwig van Beethoven" -> "Beethoven, Ludwig van"
func ForPerson(name string) string {
	parts := strings.Fields(name)
	for len(parts) > 1 && containsFold(Honorifics, parts[0]) {
		parts = parts[1:]
	}

	var suffixes []string
	for len(parts) > 1 && containsFold(GenerationalSuffixes, strings.TrimSuffix(parts[len(parts)-1], ",")) {
		suffixes = append([]string{parts[len(parts)-1]}, suffixes...)
		parts = parts[:len(parts)-1]
	}

	if len(parts) < 2 {
		return strings.Join(append(parts, suffixes...), ", ")
	}

	surname := parts[len(parts)-1]
	given := parts[:len(parts)-1]
	// Particles ("van", "de") stay at the end of the given name.
	sortName := surname + ", " + strings.Join(given, " ")
	if len(suffixes) > 0 {
		sortName += ", " + strings.Join(suffixes, ", ")
	}
	return sortName
}

// ForAuthors returns the sort name of the first author in a joined author
// field.
func ForAuthors(authors string) string {
	first, _, _ := strings.Cut(authors, mediafile.Separator)
	return ForPerson(first)
}

// Key folds s for case-insensitive comparison.
func Key(s string) string {
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

func containsFold(list []string, word string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(s, word)
	})
}
