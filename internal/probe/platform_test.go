package probe

import (
	"testing"
)

func TestInstallerURL(t *testing.T) {
	tests := []struct {
		platform Platform
		want     string
	}{
		{WinX86, "https://upgrade.scdn.co/upgrade/client/win32-x86/spotify_installer-1.2.26.1187.g36b715a1-12.exe"},
		{WinX64, "https://upgrade.scdn.co/upgrade/client/win32-x86_64/spotify_installer-1.2.26.1187.g36b715a1-12.exe"},
		{WinArm64, "https://upgrade.scdn.co/upgrade/client/win32-arm64/spotify_installer-1.2.26.1187.g36b715a1-12.exe"},
		{MacIntel, "https://upgrade.scdn.co/upgrade/client/osx-x86_64/spotify-autoupdate-1.2.26.1187.g36b715a1-12.tbz"},
		{MacArm64, "https://upgrade.scdn.co/upgrade/client/osx-arm64/spotify-autoupdate-1.2.26.1187.g36b715a1-12.tbz"},
	}

	for _, tt := range tests {
		t.Run(tt.platform.Key(), func(t *testing.T) {
			got := InstallerURL(tt.platform, "1.2.26.1187.g36b715a1", 12)
			if got != tt.want {
				t.Errorf("InstallerURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUsesWin32(t *testing.T) {
	tests := []struct {
		ver  string
		want bool
	}{
		{"1.2.53.440.g12345678", true},
		{"1.2.54.303.g12345678", true},
		{"1.2.54.304.g12345678", false},
		{"1.2.54.305.g12345678", false},
		{"1.2.55.1.g12345678", false},
		{"1.3.0.0.g12345678", false},
		{"2.0.0.0.g12345678", false},
		{"1.1.99.999.g12345678", true},
		// Versions that do not parse into four components stay included
		{"1.2.54", true},
		{"garbage", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.ver, func(t *testing.T) {
			if got := UsesWin32(tt.ver); got != tt.want {
				t.Errorf("UsesWin32(%q) = %v, want %v", tt.ver, got, tt.want)
			}
		})
	}
}

func TestFilterDropsWin32AfterCutoff(t *testing.T) {
	all := All()

	kept := Filter("1.2.53.440.g12345678", all)
	if len(kept) != len(all) {
		t.Errorf("old version should keep all platforms, got %v", kept)
	}

	kept = Filter("1.2.60.100.g12345678", all)
	if len(kept) != len(all)-1 {
		t.Fatalf("new version should drop one platform, got %v", kept)
	}
	for _, p := range kept {
		if p == WinX86 {
			t.Error("WIN32 should be dropped for versions past the cutoff")
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		oses    []string
		arches  []string
		want    []Platform
		wantErr bool
	}{
		{
			name:   "all platforms",
			oses:   []string{"all"},
			arches: []string{"all"},
			want:   []Platform{WinX86, WinX64, WinArm64, MacIntel, MacArm64},
		},
		{
			name:   "windows x64 only",
			oses:   []string{"win"},
			arches: []string{"x64"},
			want:   []Platform{WinX64},
		},
		{
			name:   "mac arm64",
			oses:   []string{"mac"},
			arches: []string{"arm64"},
			want:   []Platform{MacArm64},
		},
		{
			name:   "both arm64 flavors",
			oses:   []string{"win", "mac"},
			arches: []string{"arm64"},
			want:   []Platform{WinArm64, MacArm64},
		},
		{
			name:   "case insensitive",
			oses:   []string{"WIN"},
			arches: []string{"X86"},
			want:   []Platform{WinX86},
		},
		{
			name:    "invalid combination",
			oses:    []string{"mac"},
			arches:  []string{"x86"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.oses, tt.arches)
			if tt.wantErr {
				if err == nil {
					t.Error("Select() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Select() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Select()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
