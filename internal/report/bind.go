package report

import (
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// scanPlaceholders walks sql and calls emit for every text run and every
// positional placeholder. Question marks inside [bracketed] identifiers and
// 'quoted' literals are text: store labels may legitimately contain them.
func scanPlaceholders(sql string, text func(string), placeholder func()) {
	start := 0
	inBracket, inQuote := false, false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case inBracket:
			if c == ']' {
				if i+1 < len(sql) && sql[i+1] == ']' {
					i++
					continue
				}
				inBracket = false
			}
		case inQuote:
			if c == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					i++
					continue
				}
				inQuote = false
			}
		case c == '[':
			inBracket = true
		case c == '\'':
			inQuote = true
		case c == '?':
			text(sql[start:i])
			placeholder()
			start = i + 1
		}
	}
	text(sql[start:])
}

// countPlaceholders returns the number of bindable placeholders in sql
func countPlaceholders(sql string) int {
	n := 0
	scanPlaceholders(sql, func(string) {}, func() { n++ })
	return n
}

// rebind rewrites ? placeholders into the bind style of the driver.
// Unlike sqlx.Rebind it leaves bracketed identifiers untouched.
func rebind(driverName, sql string) string {
	bindType := sqlx.BindType(driverName)
	if bindType == sqlx.QUESTION || bindType == sqlx.UNKNOWN {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 16)
	n := 0
	scanPlaceholders(sql, func(s string) { b.WriteString(s) }, func() {
		n++
		switch bindType {
		case sqlx.AT:
			b.WriteString("@p")
		case sqlx.DOLLAR:
			b.WriteByte('$')
		case sqlx.NAMED:
			b.WriteString(":arg")
		}
		b.WriteString(strconv.Itoa(n))
	})
	return b.String()
}
