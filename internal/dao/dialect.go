package dao

import (
	"strconv"
	"strings"
)

// KeyStrategy how a dialect hands back generated keys
type KeyStrategy int

const (
	// KeyLastInsertID driver result LastInsertId
	KeyLastInsertID KeyStrategy = iota
	// KeyReturning INSERT ... RETURNING <key>
	KeyReturning
)

// Dialect placeholder style and generated-key strategy.
// Statements are always written with '?' placeholders.
type Dialect struct {
	Name   string
	Dollar bool
	Keys   KeyStrategy
}

var (
	Postgres = Dialect{Name: "postgres", Dollar: true, Keys: KeyReturning}
	SQLite   = Dialect{Name: "sqlite", Keys: KeyLastInsertID}
)

// DialectFor maps a driver name to its dialect; unknown drivers get SQLite rules
func DialectFor(driver string) Dialect {
	if strings.EqualFold(driver, Postgres.Name) {
		return Postgres
	}
	return SQLite
}

// Rebind rewrites '?' placeholders for the dialect
func (d Dialect) Rebind(query string) string {
	if !d.Dollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	scanPlaceholders(query, func(i int, isPlaceholder bool) {
		if isPlaceholder {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			return
		}
		b.WriteByte(query[i])
	})
	return b.String()
}

// CountPlaceholders counts '?' placeholders; see scanPlaceholders
func CountPlaceholders(query string) int {
	n := 0
	scanPlaceholders(query, func(_ int, isPlaceholder bool) {
		if isPlaceholder {
			n++
		}
	})
	return n
}

// scanPlaceholders visits every byte of query, flagging the '?' that are
// bind placeholders. Quoted literals and identifiers, "--" line comments and
// "/* */" block comments are skipped, as are the jsonb operators "?|" and
// "?&". A bare "?" is always a placeholder, so the jsonb key-exists operator
// must be written as a function call (jsonb_exists).
func scanPlaceholders(query string, visit func(i int, isPlaceholder bool)) {
	const (
		code = iota
		quoted
		lineComment
		blockComment
	)
	state := code
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		var next byte
		if i+1 < len(query) {
			next = query[i+1]
		}
		switch state {
		case quoted:
			if c == quote {
				state = code
			}
		case lineComment:
			if c == '\n' {
				state = code
			}
		case blockComment:
			if c == '*' && next == '/' {
				visit(i, false)
				i++
				state = code
			}
		default:
			switch {
			case c == '\'' || c == '"':
				state, quote = quoted, c
			case c == '-' && next == '-':
				state = lineComment
			case c == '/' && next == '*':
				visit(i, false)
				i++
				state = blockComment
			case c == '?' && (next == '&' || (next == '|' && !strings.HasPrefix(query[i+1:], "||"))):
				visit(i, false)
				i++
			case c == '?':
				visit(i, true)
				continue
			}
		}
		visit(i, false)
	}
}
