package accessor

import "fmt"

type segmentKind int

const (
	segLiteral segmentKind = iota
	segPath
)

type segment struct {
	kind    segmentKind
	literal string
	path    Path
}

// splitTemplate scans src for "${...}" expressions and returns the ordered
// sequence of literal-text and parsed-path segments. It reports whether src
// is exactly one expression with no surrounding text (the Expression
// variant) versus a mix (Interpolator).
func splitTemplate(src string) (segs []segment, soleExpression bool, err error) {
	n := len(src)
	i := 0
	exprCount := 0

	for i < n {
		start := i
		for i < n && !(src[i] == '$' && i+1 < n && src[i+1] == '{') {
			i++
		}
		if i > start {
			segs = append(segs, segment{kind: segLiteral, literal: src[start:i]})
		}
		if i >= n {
			break
		}

		// at "${"
		exprStart := i + 2
		j := exprStart
		for j < n && src[j] != '}' {
			j++
		}
		if j >= n {
			return nil, false, fmt.Errorf("accessor: unterminated %q in %q", "${", src)
		}
		inner := src[exprStart:j]
		path, perr := parsePath(inner)
		if perr != nil {
			return nil, false, perr
		}
		segs = append(segs, segment{kind: segPath, path: path})
		exprCount++
		i = j + 1
	}

	soleExpression = exprCount == 1 && len(segs) == 1
	return segs, soleExpression, nil
}
