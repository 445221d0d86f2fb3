package report

import (
	"strings"
	"unicode"

	"aftermarket-report/internal/model"
)

// Predicates is the optional part of the filtered-products WHERE clause.
// Args holds one value per placeholder, in the order the fragments appear.
type Predicates struct {
	Fragments []string
	Args      []any
}

// Clause returns the fragments joined for appending to an existing WHERE,
// or an empty string when there are none.
func (p Predicates) Clause() string {
	if len(p.Fragments) == 0 {
		return ""
	}
	return " AND " + strings.Join(p.Fragments, " AND ")
}

func (p *Predicates) add(fragment string, args ...any) {
	p.Fragments = append(p.Fragments, fragment)
	p.Args = append(p.Args, args...)
}

// BuildPredicates turns the optional filters into LIKE predicates.
// Blank values are treated as absent.
func BuildPredicates(f model.FilterSet) Predicates {
	f = f.Normalize()
	var p Predicates

	if f.VendorPartNumber != "" {
		p.add("A7.A7_PRODUTO LIKE ?", contains(f.VendorPartNumber))
	}

	if f.ClientPartNumber != "" {
		p.add("REPLACE(TRIM(A7.A7_CODCLI), ' ', '') LIKE ?", contains(stripSpaces(f.ClientPartNumber)))
	}

	if f.ClientName != "" {
		// full name slot first, short name second
		like := contains(f.ClientName)
		p.add("(TRIM(A1.A1_NOME) LIKE ? OR TRIM(A1.A1_NREDUZ) LIKE ?)", like, like)
	}

	return p
}

func contains(v string) string {
	return "%" + v + "%"
}

func stripSpaces(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}
