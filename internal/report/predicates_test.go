package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aftermarket-report/internal/model"
)

func TestBuildPredicates_None(t *testing.T) {
	p := BuildPredicates(model.FilterSet{Plant: "P1", PrimaryStore: "01"})

	assert.Empty(t, p.Fragments)
	assert.Empty(t, p.Args)
	assert.Equal(t, "", p.Clause())
}

func TestBuildPredicates_VendorPart(t *testing.T) {
	p := BuildPredicates(model.FilterSet{Plant: "P1", PrimaryStore: "01", VendorPartNumber: "ABC"})

	assert.Equal(t, []string{"A7.A7_PRODUTO LIKE ?"}, p.Fragments)
	assert.Equal(t, []any{"%ABC%"}, p.Args)
	assert.Equal(t, " AND A7.A7_PRODUTO LIKE ?", p.Clause())
}

func TestBuildPredicates_ClientNameBindsTwice(t *testing.T) {
	p := BuildPredicates(model.FilterSet{Plant: "P1", PrimaryStore: "01", ClientName: "ACME"})

	assert.Equal(t, []string{"(TRIM(A1.A1_NOME) LIKE ? OR TRIM(A1.A1_NREDUZ) LIKE ?)"}, p.Fragments)
	assert.Equal(t, []any{"%ACME%", "%ACME%"}, p.Args)
}

func TestBuildPredicates_ClientPartStripsWhitespace(t *testing.T) {
	p := BuildPredicates(model.FilterSet{ClientPartNumber: " 12 34\t5 "})

	assert.Equal(t, []string{"REPLACE(TRIM(A7.A7_CODCLI), ' ', '') LIKE ?"}, p.Fragments)
	assert.Equal(t, []any{"%12345%"}, p.Args)
}

func TestBuildPredicates_AllInFragmentOrder(t *testing.T) {
	p := BuildPredicates(model.FilterSet{
		ClientName:       "ACME",
		ClientPartNumber: "CP-1",
		VendorPartNumber: "V-9",
	})

	assert.Equal(t, []string{
		"A7.A7_PRODUTO LIKE ?",
		"REPLACE(TRIM(A7.A7_CODCLI), ' ', '') LIKE ?",
		"(TRIM(A1.A1_NOME) LIKE ? OR TRIM(A1.A1_NREDUZ) LIKE ?)",
	}, p.Fragments)
	assert.Equal(t, []any{"%V-9%", "%CP-1%", "%ACME%", "%ACME%"}, p.Args)
	assert.Equal(t,
		" AND A7.A7_PRODUTO LIKE ? AND REPLACE(TRIM(A7.A7_CODCLI), ' ', '') LIKE ? AND (TRIM(A1.A1_NOME) LIKE ? OR TRIM(A1.A1_NREDUZ) LIKE ?)",
		p.Clause())
}

func TestBuildPredicates_BlankValuesAreAbsent(t *testing.T) {
	p := BuildPredicates(model.FilterSet{
		ClientName:       "   ",
		ClientPartNumber: "",
		VendorPartNumber: "\t",
	})

	assert.Empty(t, p.Fragments)
	assert.Empty(t, p.Args)
}

func TestBuildPredicates_PlaceholdersMatchArgs(t *testing.T) {
	cases := []model.FilterSet{
		{},
		{VendorPartNumber: "A"},
		{ClientPartNumber: "B"},
		{ClientName: "C"},
		{ClientName: "C", VendorPartNumber: "A"},
		{ClientName: "C", ClientPartNumber: "B", VendorPartNumber: "A"},
	}
	for _, f := range cases {
		p := BuildPredicates(f)
		assert.Equal(t, len(p.Args), countPlaceholders(p.Clause()), "filters %+v", f)
	}
}
