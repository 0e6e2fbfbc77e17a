package catalog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower lowercases s the way PostgreSQL's ILIKE does before comparing.
// A Caser is stateful, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// likeFold reports whether s matches the SQL ILIKE pattern. % matches any
// run of characters, _ matches exactly one, and a backslash makes the next
// character literal.
func likeFold(pattern, s string) bool {
	p := []rune(lower(pattern))
	r := []rune(lower(s))

	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(r) {
		if pi < len(p) {
			switch c := p[pi]; {
			case c == '%':
				star, mark = pi, si
				pi++
				continue
			case c == '_':
				pi++
				si++
				continue
			case c == '\\' && pi+1 < len(p):
				if p[pi+1] == r[si] {
					pi += 2
					si++
					continue
				}
			case c == r[si]:
				pi++
				si++
				continue
			}
		}
		if star < 0 {
			return false
		}
		// Let the last % absorb one more character and retry.
		mark++
		pi, si = star+1, mark
	}

	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
