package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Blog Posts!!", "blog-posts"},
		{"  Hello   World  ", "hello-world"},
		{"snake_case_name", "snake-case-name"},
		{"--Already--Hyphenated--", "already-hyphenated"},
		{"Café Menu", "caf-menu"},
		{"2024 Releases", "2024-releases"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
