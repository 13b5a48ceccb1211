package version

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestExtractBuildLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		found   bool
		label   string
		version string
	}{
		{
			name:    "release build with cef prefix",
			input:   "Release Build xyz cef_1.2.3+gabc1234+chromium-100.0.1.2",
			found:   true,
			label:   "Release",
			version: "1.2.3+gabc1234+chromium-100.0.1.2",
		},
		{
			name:    "master build without cef prefix",
			input:   "Master Build 20240101 1.2.3+gdeadbeef+chromium-120.0.6099.109",
			found:   true,
			label:   "Master",
			version: "1.2.3+gdeadbeef+chromium-120.0.6099.109",
		},
		{
			name:    "pr build",
			input:   "PR Build #4411 cef_6.7.8+g00ff00+chromium-1.2.3.4",
			found:   true,
			label:   "PR",
			version: "6.7.8+g00ff00+chromium-1.2.3.4",
		},
		{
			name:    "local build",
			input:   "Local Build dirty cef_0.1.2+gaa+chromium-9.8.7.6",
			found:   true,
			label:   "Local",
			version: "0.1.2+gaa+chromium-9.8.7.6",
		},
		{
			name:  "chromium part missing a component",
			input: "Release Build cef_1.2.3+gabc1234+chromium-100.0.1",
			found: false,
		},
		{
			name:  "unknown label",
			input: "Nightly Build cef_1.2.3+gabc1234+chromium-100.0.1.2",
			found: false,
		},
		{
			name:  "hash not hex",
			input: "Release Build cef_1.2.3+gxyz+chromium-100.0.1.2",
			found: false,
		},
		{
			name:  "no banner at all",
			input: "some unrelated binary noise",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input, GrammarBuildLabel)
			if res.Found != tt.found {
				t.Fatalf("Found = %v, want %v", res.Found, tt.found)
			}
			if !tt.found {
				return
			}
			if res.Label != tt.label {
				t.Errorf("Label = %q, want %q", res.Label, tt.label)
			}
			if res.Version != tt.version {
				t.Errorf("Version = %q, want %q", res.Version, tt.version)
			}
		})
	}
}

func TestExtractRelease(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		found   bool
		version string
	}{
		{
			name:    "bare token",
			input:   "1.2.215.832.g8f6e41fa",
			found:   true,
			version: "1.2.215.832.g8f6e41fa",
		},
		{
			name:    "token inside text",
			input:   "installer for 1.1.68.632.g2b11de83 released",
			found:   true,
			version: "1.1.68.632.g2b11de83",
		},
		{
			name:  "seven hex digits",
			input: "1.2.215.832.g8f6e41f",
			found: false,
		},
		{
			name:  "nine hex digits",
			input: "1.2.215.832.g8f6e41fa0",
			found: false,
		},
		{
			name:  "preceded by word character",
			input: "v1.2.215.832.g8f6e41fa",
			found: false,
		},
		{
			name:  "followed by hyphen",
			input: "1.2.215.832.g8f6e41fa-270",
			found: false,
		},
		{
			name:    "surrounded by punctuation",
			input:   "(1.2.215.832.g8f6e41fa)",
			found:   true,
			version: "1.2.215.832.g8f6e41fa",
		},
		{
			name:  "uppercase hex rejected",
			input: "1.2.215.832.g8F6E41FA",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.input, GrammarRelease)
			if res.Found != tt.found {
				t.Fatalf("Found = %v, want %v", res.Found, tt.found)
			}
			if tt.found && res.Version != tt.version {
				t.Errorf("Version = %q, want %q", res.Version, tt.version)
			}
			if res.Label != "" {
				t.Errorf("Label = %q, want empty for release grammar", res.Label)
			}
		})
	}
}

func TestExtractLinesFirstMatchWins(t *testing.T) {
	lines := []string{
		"noise",
		"Release Build cef_1.2.3+gabc1234+chromium-100.0.1.2",
		"Master Build cef_9.9.9+gffffffff+chromium-1.1.1.1",
	}

	res := ExtractLines(lines, GrammarBuildLabel)
	if !res.Found {
		t.Fatal("expected a match")
	}
	if res.Label != "Release" {
		t.Errorf("Label = %q, want %q (first matching line)", res.Label, "Release")
	}
	if res.Version != "1.2.3+gabc1234+chromium-100.0.1.2" {
		t.Errorf("Version = %q, matched a later line", res.Version)
	}
}

func TestExtractLinesNoMatch(t *testing.T) {
	res := ExtractLines([]string{"nothing", "to", "see"}, GrammarRelease)
	if res.Found {
		t.Errorf("Found = true for input with no token, res = %+v", res)
	}
}

func TestExtractReader(t *testing.T) {
	blob := "garbage line\n1.2.216.1.gabcdef12\ntrailing\n"
	res := ExtractReader(strings.NewReader(blob), GrammarRelease)
	if !res.Found || res.Version != "1.2.216.1.gabcdef12" {
		t.Errorf("ExtractReader = %+v, want 1.2.216.1.gabcdef12", res)
	}
}

func TestIsRelease(t *testing.T) {
	if !IsRelease("1.1.68.632.g2b11de83") {
		t.Error("valid token rejected")
	}
	if IsRelease("1.1.68.632") {
		t.Error("token without hash suffix accepted")
	}
	if IsRelease("1.1.68.632.g2b11de831") {
		t.Error("nine hex digit token accepted")
	}
}

func TestBaseComponents(t *testing.T) {
	parts, ok := BaseComponents("1.2.54.304.g8f6e41fa")
	if !ok {
		t.Fatal("expected four components")
	}
	if parts != [4]int{1, 2, 54, 304} {
		t.Errorf("parts = %v", parts)
	}

	if _, ok := BaseComponents("1.2.54"); ok {
		t.Error("three components accepted")
	}
	if _, ok := BaseComponents("a.b.c.d"); ok {
		t.Error("non-numeric components accepted")
	}
}

// genHexDigits generates lowercase hex strings of the given length.
func genHexDigits(n int) gopter.Gen {
	return gen.RegexMatch(fmt.Sprintf(`^[0-9a-f]{%d}$`, n))
}

// genReleaseBase generates the A.B.C.D numeric part of a release token.
func genReleaseBase() gopter.Gen {
	return gen.RegexMatch(`^[0-9]{1,2}\.[0-9]{1,2}\.[0-9]{1,3}\.[0-9]{1,4}$`)
}

func TestReleaseGrammarHashLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("tokens with 8 hex digits match", prop.ForAll(
		func(base, hash string) bool {
			token := base + ".g" + hash
			res := Extract("before "+token+" after", GrammarRelease)
			return res.Found && res.Version == token
		},
		genReleaseBase(),
		genHexDigits(8),
	))

	properties.Property("tokens with 7 hex digits do not match", prop.ForAll(
		func(base, hash string) bool {
			res := Extract("before "+base+".g"+hash+" after", GrammarRelease)
			return !res.Found
		},
		genReleaseBase(),
		genHexDigits(7),
	))

	properties.Property("tokens with 9 hex digits do not match", prop.ForAll(
		func(base, hash string) bool {
			res := Extract("before "+base+".g"+hash+" after", GrammarRelease)
			return !res.Found
		},
		genReleaseBase(),
		genHexDigits(9),
	))

	properties.TestingRun(t)
}
