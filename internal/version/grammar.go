// Package version locates release version tokens inside artifact text.
//
// Two grammars are in use across the discovery channels. Binaries built
// from the desktop client embed a build banner of the form
//
//	Release Build ... cef_1.2.3+gabc1234+chromium-100.0.1.2
//
// while installer metadata and store listings carry a bare release token
// such as 1.2.215.832.g8f6e41fa. Both grammars are fixed: existing
// ledger snapshots were produced with them, so the patterns must not be
// loosened.
package version

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Grammar selects which token shape the extractor looks for.
type Grammar int

const (
	// GrammarBuildLabel matches the build banner embedded in client
	// binaries. Capture 1 is the build label (Master, Release, PR or
	// Local), capture 2 is the full version+hash+chromium token.
	GrammarBuildLabel Grammar = iota
	// GrammarRelease matches a bare A.B.C.D.gXXXXXXXX token with
	// exactly 8 hex digits after the g, not adjacent to a word
	// character or hyphen.
	GrammarRelease
)

var (
	buildLabelRe = regexp.MustCompile(`(Master|Release|PR|Local) Build.*?(?:cef_)?(\d+\.\d+\.\d+\+g[0-9a-f]+\+chromium-\d+\.\d+\.\d+\.\d+)`)

	// RE2 has no lookaround, so the word/hyphen boundary is expressed
	// as consumed character classes around the capture group.
	releaseRe = regexp.MustCompile(`(?:^|[^\w-])(\d+\.\d+\.\d+\.\d+\.g[0-9a-f]{8})(?:[^\w-]|$)`)

	// exactRelease anchors the release grammar for whole-string
	// validation of user-supplied version arguments.
	exactRelease = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+\.g[0-9a-f]{8}$`)
)

// Extraction is the result of one extraction call. Found false means
// the grammar matched nothing; that is a legitimate terminal outcome,
// not an error.
type Extraction struct {
	Found   bool
	Version string
	// Label is the build label for GrammarBuildLabel matches, empty
	// otherwise.
	Label string
}

// Extract scans a single text blob and returns the first match of the
// selected grammar. Later matches are ignored.
func Extract(text string, g Grammar) Extraction {
	switch g {
	case GrammarBuildLabel:
		m := buildLabelRe.FindStringSubmatch(text)
		if m == nil {
			return Extraction{}
		}
		return Extraction{Found: true, Label: m[1], Version: m[2]}
	case GrammarRelease:
		m := releaseRe.FindStringSubmatch(text)
		if m == nil {
			return Extraction{}
		}
		return Extraction{Found: true, Version: m[1]}
	}
	return Extraction{}
}

// ExtractLines scans lines in order and stops at the first line that
// produces a match.
func ExtractLines(lines []string, g Grammar) Extraction {
	for _, line := range lines {
		if res := Extract(line, g); res.Found {
			return res
		}
	}
	return Extraction{}
}

// ExtractReader scans r line by line, first match wins. Decoded binary
// content often contains lines far beyond the default scanner limit, so
// the buffer is widened. Read errors surface as not-found: the callers
// treat the artifact as already materialized text and a truncated read
// cannot produce a confirmed match.
func ExtractReader(r io.Reader, g Grammar) Extraction {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if res := Extract(scanner.Text(), g); res.Found {
			return res
		}
	}
	return Extraction{}
}

// IsRelease reports whether s as a whole is a release version token.
func IsRelease(s string) bool {
	return exactRelease.MatchString(s)
}

// BaseComponents parses the first four dot-separated integer components
// of a version token. The trailing .gXXXXXXXX suffix is ignored. ok is
// false when fewer than four integer components are present.
func BaseComponents(v string) (parts [4]int, ok bool) {
	fields := strings.Split(v, ".")
	if len(fields) < 4 {
		return parts, false
	}
	for i := 0; i < 4; i++ {
		f := fields[i]
		if f == "" {
			return parts, false
		}
		num := 0
		for _, c := range f {
			if c < '0' || c > '9' {
				return parts, false
			}
			num = num*10 + int(c-'0')
		}
		parts[i] = num
	}
	return parts, true
}
