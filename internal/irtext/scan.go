package irtext

import (
	"fmt"
	"strings"
)

// tokKind classifies line tokens.
type tokKind int

const (
	tokIdent tokKind = iota
	tokInt
	tokPunct
)

// tok is a single token of an instruction line.
type tok struct {
	kind tokKind
	text string
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanLine tokenizes one source line. Comments ("//" to end of line) are
// stripped before scanning.
func scanLine(line string) ([]tok, error) {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}

	var toks []tok
	i := 0
	for i < len(line) {
		b := line[i]
		switch {
		case b == ' ' || b == '\t':
			i++
		case isDigit(b):
			j := i
			for j < len(line) && isDigit(line[j]) {
				j++
			}
			toks = append(toks, tok{tokInt, line[i:j]})
			i = j
		case isIdentByte(b):
			j := i
			for j < len(line) && isIdentByte(line[j]) {
				j++
			}
			toks = append(toks, tok{tokIdent, line[i:j]})
			i = j
		case strings.IndexByte("(){}[],:.=", b) >= 0:
			toks = append(toks, tok{tokPunct, string(b)})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q", b)
		}
	}
	return toks, nil
}
