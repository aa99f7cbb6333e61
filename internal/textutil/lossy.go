// Package textutil converts token bytes to text.
package textutil

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

const replacement = "�"

// Lossy is a transformer that passes valid UTF-8 through and replaces each
// maximal invalid subsequence with a single U+FFFD.
//
// A maximal invalid subsequence is the longest prefix that could still start
// a valid encoding, or a single byte when no such prefix exists. The
// truncated sequence E4 BD becomes one U+FFFD; FF FF becomes two.
var Lossy transform.SpanningTransformer = lossy{}

type lossy struct{ transform.NopResetter }

func (lossy) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if c := src[nSrc]; c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		rest := src[nSrc:]
		if !atEOF && !utf8.FullRune(rest) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			if nDst+len(replacement) > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], replacement)
			nSrc += invalidPrefix(rest)
			continue
		}

		if nDst+size > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], rest[:size])
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (lossy) Span(src []byte, atEOF bool) (n int, err error) {
	for n < len(src) {
		if src[n] < utf8.RuneSelf {
			n++
			continue
		}
		rest := src[n:]
		if !atEOF && !utf8.FullRune(rest) {
			return n, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			return n, transform.ErrEndOfSpan
		}
		n += size
	}
	return n, nil
}

// invalidPrefix returns the length of the invalid sequence at the start of
// b, which must not begin with a valid encoding.
func invalidPrefix(b []byte) int {
	n := 1
	for n < len(b) && n < utf8.UTFMax-1 && !utf8.FullRune(b[:n+1]) {
		n++
	}
	return n
}

// String decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func String(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, _, err := transform.Bytes(Lossy, b)
	if err != nil {
		// Lossy never fails on complete input.
		return string(b)
	}
	return string(s)
}
