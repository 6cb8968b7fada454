package routerconfig

import "strings"

// SplitArgs splits a raw config string captured by the lexer's
// TokConfig span into top-level comma-separated arguments, respecting
// nested parens/brackets and quoted strings, per spec.md §4.6 ("Commas
// separate arguments at the same brace level"). Each returned argument
// has its surrounding whitespace trimmed.
func SplitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var args []string
	var cur strings.Builder
	depth := 0
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case '(', '[':
			depth++
			cur.WriteRune(ch)
		case ')', ']':
			depth--
			cur.WriteRune(ch)
		case '"', '\'':
			cur.WriteRune(ch)
			close := ch
			i++
			for i < len(runes) {
				cur.WriteRune(runes[i])
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
					cur.WriteRune(runes[i])
				} else if runes[i] == close {
					break
				}
				i++
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
			cur.WriteRune(ch)
		default:
			cur.WriteRune(ch)
		}
	}
	args = append(args, strings.TrimSpace(cur.String()))
	return args
}

// KeywordSpec describes one accepted keyword argument to ParseKeywords.
type KeywordSpec struct {
	Name      string
	Mandatory bool
	Present   *bool   // set to true if the keyword was supplied
	Value     *string // set to the keyword's value if supplied
}

// ParseKeywords splits args into leading positional values and
// KEYWORD value pairs, per spec.md §4.6. Positional args (those before
// the first recognized keyword) are returned as-is. A keyword not
// present in specs is an error unless ignoreRest is true, in which case
// it and everything after it are appended to the returned leftover
// slice untouched.
func ParseKeywords(args []string, specs []KeywordSpec, ignoreRest bool) (positional []string, leftover []string, err error) {
	byName := make(map[string]*KeywordSpec, len(specs))
	for i := range specs {
		byName[strings.ToUpper(specs[i].Name)] = &specs[i]
	}
	seenKeyword := false
	i := 0
	for ; i < len(args); i++ {
		spec, ok := byName[strings.ToUpper(args[i])]
		if !ok {
			if seenKeyword {
				if ignoreRest {
					leftover = append(leftover, args[i:]...)
					i = len(args)
					break
				}
				return nil, nil, &ArgError{Msg: "unknown keyword " + args[i]}
			}
			positional = append(positional, args[i])
			continue
		}
		seenKeyword = true
		if i+1 >= len(args) {
			return nil, nil, &ArgError{Msg: "keyword " + args[i] + " missing value"}
		}
		val := args[i+1]
		i++
		if spec.Present != nil {
			*spec.Present = true
		}
		if spec.Value != nil {
			*spec.Value = val
		}
	}
	for _, spec := range specs {
		if spec.Mandatory && (spec.Present == nil || !*spec.Present) {
			return nil, nil, &ArgError{Msg: "missing mandatory keyword " + spec.Name}
		}
	}
	return positional, leftover, nil
}

// ArgError reports a typed-argument parsing failure.
type ArgError struct {
	Msg string
}

func (e *ArgError) Error() string { return e.Msg }

// ParseString unquotes one config argument produced by SplitArgs. A
// double-quoted argument has backslash escapes resolved (the same
// rules as the lexer's own quoted strings, including hex-literal
// blocks \xHH); a single-quoted argument is returned byte-for-byte
// with its quotes stripped; a bare word is returned unchanged. This
// mirrors the lexer's scanQuoted, applied after the fact because
// SplitArgs works over the config span's still-raw text.
func ParseString(raw string) (string, Status) {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw[1 : len(raw)-1], StatusOK
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return unescapeDoubleQuoted(raw[1 : len(raw)-1])
	}
	return raw, StatusOK
}

func unescapeDoubleQuoted(s string) (string, Status) {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '\\' || i+1 >= len(runes) {
			b.WriteRune(ch)
			continue
		}
		i++
		esc := runes[i]
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteRune(esc)
		case 'x':
			if i+2 >= len(runes) || !isHexDigit(runes[i+1]) || !isHexDigit(runes[i+2]) {
				return "", StatusFormat
			}
			b.WriteByte(hexByte(runes[i+1], runes[i+2]))
			i += 2
		default:
			if isHexDigit(esc) {
				if i+1 >= len(runes) || !isHexDigit(runes[i+1]) {
					return "", StatusFormat
				}
				b.WriteByte(hexByte(esc, runes[i+1]))
				i++
			} else {
				b.WriteRune(esc)
			}
		}
	}
	return b.String(), StatusOK
}
