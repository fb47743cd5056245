package pyast

import "strings"

// parseFString splits raw — the text lexString captured between an
// f-string's quotes, braces and all — into literal runs and expression
// spans, recursively parsing each span with the full expression grammar.
// This is what lets a forbidden call hidden inside "{...}" surface as an
// ordinary CallExpr the validator walks like any other.
func parseFString(raw string, pos Position) (*FStringExpr, error) {
	var values []Expr
	var lit strings.Builder

	flushLiteral := func() {
		if lit.Len() > 0 {
			values = append(values, &StringExpr{base: base{pos}, Value: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch c {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '{' {
				lit.WriteRune('{')
				i += 2
				continue
			}
			exprSrc, end, err := scanFStringExpr(runes, i+1)
			if err != nil {
				return nil, &SyntaxError{Pos: pos, Message: err.Error()}
			}
			e, err := parseFStringSub(exprSrc)
			if err != nil {
				return nil, &SyntaxError{Pos: pos, Message: "f-string expression: " + err.Error()}
			}
			flushLiteral()
			values = append(values, e)
			i = end
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				lit.WriteRune('}')
				i += 2
				continue
			}
			return nil, &SyntaxError{Pos: pos, Message: "f-string: single '}' is not allowed"}
		default:
			lit.WriteRune(c)
			i++
		}
	}
	flushLiteral()
	if len(values) == 0 {
		values = append(values, &StringExpr{base: base{pos}, Value: ""})
	}
	return &FStringExpr{base: base{pos}, Values: values}, nil
}

// scanFStringExpr scans from just past an opening "{" to its matching
// "}", tracking nested brackets and quoted strings so a comma, colon, or
// bang inside a nested call or literal doesn't end the span early. It
// returns the expression text (conversion and format-spec suffixes
// stripped) and the index just past the closing "}".
func scanFStringExpr(runes []rune, start int) (string, int, error) {
	depth := 0
	var quote rune
	exprEnd := -1
	i := start
	for i < len(runes) {
		c := runes[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(runes) {
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '{':
			depth++
		case '}':
			if depth == 0 {
				if exprEnd < 0 {
					exprEnd = i
				}
				return strings.TrimSpace(string(runes[start:exprEnd])), i + 1, nil
			}
			depth--
		case '!':
			if depth == 0 && exprEnd < 0 && i+1 < len(runes) && runes[i+1] != '=' {
				exprEnd = i
			}
		case ':':
			if depth == 0 && exprEnd < 0 {
				exprEnd = i
			}
		}
		i++
	}
	return "", 0, &SyntaxError{Message: "f-string: unterminated '{'"}
}

// parseFStringSub parses src — an f-string interpolation's expression
// text, with any conversion/format-spec suffix already stripped — as a
// standalone expression using the same grammar as top-level code.
func parseFStringSub(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Message: "f-string: empty expression"}
	}
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseNamedExpr()
	if err != nil {
		return nil, err
	}
	return e, nil
}
