package catalog

import "testing"

func TestCleanTitle(t *testing.T) {
	qc := NewQueryCleaner()

	tests := []struct {
		name        string
		input       string
		want        string
		wantChanged bool
	}{
		{
			name:        "plain title untouched",
			input:       "Bohemian Rhapsody",
			want:        "Bohemian Rhapsody",
			wantChanged: false,
		},
		{
			name:        "live qualifier stripped",
			input:       "Bohemian Rhapsody (Live)",
			want:        "Bohemian Rhapsody",
			wantChanged: true,
		},
		{
			name:        "acoustic version stripped",
			input:       "Love of My Life (Acoustic Version)",
			want:        "Love of My Life",
			wantChanged: true,
		},
		{
			name:        "featuring credit stripped",
			input:       "Under Pressure feat. David Bowie",
			want:        "Under Pressure",
			wantChanged: true,
		},
		{
			name:        "remaster dash suffix stripped",
			input:       "Under Pressure - Remastered 2011",
			want:        "Under Pressure",
			wantChanged: true,
		},
		{
			name:        "meaningful parens kept",
			input:       "Intermission (There Is No Reason)",
			want:        "Intermission (There Is No Reason)",
			wantChanged: false,
		},
		{
			name:        "unbalanced brackets left alone",
			input:       "Broken (Title",
			want:        "Broken (Title",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := qc.CleanTitle(tt.input)
			if got != tt.want || changed != tt.wantChanged {
				t.Errorf("CleanTitle(%q) = (%q, %v), want (%q, %v)",
					tt.input, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name   string
		track  string
		artist string
		want   string
	}{
		{
			name:   "track only",
			track:  "One Vision",
			artist: "",
			want:   "track:One Vision",
		},
		{
			name:   "track and artist",
			track:  "One Vision",
			artist: "Queen",
			want:   "track:One Vision artist:Queen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildSearchQuery(tt.track, tt.artist); got != tt.want {
				t.Errorf("buildSearchQuery(%q, %q) = %q, want %q", tt.track, tt.artist, got, tt.want)
			}
		})
	}
}
