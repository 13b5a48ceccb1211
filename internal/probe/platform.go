// Package probe discovers installer artifacts on the vendor CDN by
// sweeping revision-numbered download URLs per platform.
package probe

import (
	"fmt"
	"strings"

	"github.com/LoaderSpot/LoaderSpot/internal/version"
)

// BaseURL is the root of the vendor upgrade CDN.
const BaseURL = "https://upgrade.scdn.co/upgrade/client/"

// Platform identifies one platform/architecture distribution channel.
type Platform int

const (
	WinX86 Platform = iota
	WinX64
	WinArm64
	MacIntel
	MacArm64
)

// platformKeys are the labels used in payloads and the ledger.
var platformKeys = map[Platform]string{
	WinX86:   "WIN32",
	WinX64:   "WIN64",
	WinArm64: "WIN-ARM64",
	MacIntel: "OSX",
	MacArm64: "OSX-ARM64",
}

// pathTemplates are the CDN path shapes per platform.
var pathTemplates = map[Platform]string{
	WinX86:   "win32-x86/spotify_installer-%s-%d.exe",
	WinX64:   "win32-x86_64/spotify_installer-%s-%d.exe",
	WinArm64: "win32-arm64/spotify_installer-%s-%d.exe",
	MacIntel: "osx-x86_64/spotify-autoupdate-%s-%d.tbz",
	MacArm64: "osx-arm64/spotify-autoupdate-%s-%d.tbz",
}

// Key returns the payload label for the platform.
func (p Platform) Key() string {
	return platformKeys[p]
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return p.Key()
}

// All returns every platform in stable order.
func All() []Platform {
	return []Platform{WinX86, WinX64, WinArm64, MacIntel, MacArm64}
}

// InstallerURL builds the CDN URL for one installer revision.
func InstallerURL(p Platform, ver string, revision int) string {
	return BaseURL + fmt.Sprintf(pathTemplates[p], ver, revision)
}

// win32Cutoff is the first release shipped without a 32-bit Windows
// installer.
var win32Cutoff = [4]int{1, 2, 54, 304}

// UsesWin32 reports whether the given version still ships a WIN32
// installer. Versions that do not parse into four components are
// probed on all platforms.
func UsesWin32(ver string) bool {
	parts, ok := version.BaseComponents(ver)
	if !ok {
		return true
	}
	for i := 0; i < 4; i++ {
		if parts[i] != win32Cutoff[i] {
			return parts[i] < win32Cutoff[i]
		}
	}
	return false
}

// Filter drops platforms the version no longer ships for.
func Filter(ver string, platforms []Platform) []Platform {
	if UsesWin32(ver) {
		return platforms
	}
	out := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		if p != WinX86 {
			out = append(out, p)
		}
	}
	return out
}

// Select maps the CLI --os/--arch selectors onto platforms. The value
// "all" in either list expands to everything valid for the other.
func Select(oses, arches []string) ([]Platform, error) {
	osSet := expand(oses, []string{"win", "mac"})
	archSet := expand(arches, []string{"x86", "x64", "arm64", "intel"})

	var platforms []Platform
	add := func(p Platform) {
		for _, existing := range platforms {
			if existing == p {
				return
			}
		}
		platforms = append(platforms, p)
	}

	for _, o := range osSet {
		for _, a := range archSet {
			switch {
			case o == "win" && a == "x86":
				add(WinX86)
			case o == "win" && a == "x64":
				add(WinX64)
			case o == "win" && a == "arm64":
				add(WinArm64)
			case o == "mac" && a == "intel":
				add(MacIntel)
			case o == "mac" && a == "arm64":
				add(MacArm64)
			}
		}
	}

	if len(platforms) == 0 {
		return nil, fmt.Errorf("no valid platform for os=%v arch=%v", oses, arches)
	}
	return platforms, nil
}

func expand(values, all []string) []string {
	for _, v := range values {
		if strings.EqualFold(v, "all") {
			return all
		}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
