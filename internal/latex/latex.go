// Package latex produces compilable LaTeX documents from OCR output.
package latex

import (
	"regexp"
	"strings"
)

const documentClass = `\documentclass`

const preamble = `\documentclass{article}
\usepackage{amsmath}
\usepackage{amssymb}
\usepackage{amsfonts}
\usepackage{graphicx}
\usepackage{mathtools}

\begin{document}

`

const closing = `

\end{document}`

// EmptyBodyPlaceholder fills in for OCR runs that produced no LaTeX at all.
const EmptyBodyPlaceholder = "No LaTeX content was generated."

// WrapDocument wraps body in a minimal compilable document. Input that
// already carries a document class declaration is returned unchanged, so
// the function is idempotent.
func WrapDocument(body string) string {
	if strings.Contains(body, documentClass) {
		return body
	}
	if body == "" {
		body = EmptyBodyPlaceholder
	}
	return preamble + body + closing
}

// IsDocument reports whether s is a full LaTeX document rather than a fragment.
func IsDocument(s string) bool {
	return strings.Contains(s, documentClass)
}

var (
	rePower = regexp.MustCompile(`(\d+)\^(\d+)`)
	reSqrt  = regexp.MustCompile(`sqrt\((.+?)\)`)
	reFrac  = regexp.MustCompile(`(\d+)/(\d+)`)
)

// ConvertText applies basic plain-text-to-LaTeX substitutions and wraps the
// result. It is the fallback for OCR output that has no LaTeX counterpart;
// anything beyond exponent, square-root and fraction shapes passes through
// untouched.
func ConvertText(text string) string {
	out := rePower.ReplaceAllString(text, `$1^{$2}`)
	out = reSqrt.ReplaceAllString(out, `\sqrt{$1}`)
	out = reFrac.ReplaceAllString(out, `\frac{$1}{$2}`)
	return WrapDocument(out)
}
