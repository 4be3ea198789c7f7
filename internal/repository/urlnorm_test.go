package repository

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "owner repo shorthand",
			input: "octocat/Hello-World",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "full https url unchanged",
			input: "https://github.com/octocat/Hello-World.git",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "https url without suffix gains it",
			input: "https://github.com/octocat/Hello-World",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "gitlab url gains suffix",
			input: "https://gitlab.com/group/project",
			want:  "https://gitlab.com/group/project.git",
		},
		{
			name:  "unknown host untouched",
			input: "https://git.example.com/owner/repo",
			want:  "https://git.example.com/owner/repo",
		},
		{
			name:  "ssh scp form passes through",
			input: "git@github.com:octocat/Hello-World.git",
			want:  "git@github.com:octocat/Hello-World.git",
		},
		{
			name:  "colon instead of slash repaired",
			input: "https://github.com:octocat/Hello-World",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "numeric port preserved",
			input: "https://git.example.com:8443/owner/repo",
			want:  "https://git.example.com:8443/owner/repo",
		},
		{
			name:  "scheme typo with extra slashes",
			input: "https:///github.com/octocat/Hello-World",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "full width parentheses replaced",
			input: "https://github.com/octocat/Hello（World）",
			want:  "https://github.com/octocat/Hello(World).git",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  octocat/Hello-World  ",
			want:  "https://github.com/octocat/Hello-World.git",
		},
		{
			name:  "query string blocks suffix",
			input: "https://github.com/octocat/Hello-World?ref=main",
			want:  "https://github.com/octocat/Hello-World?ref=main",
		},
		{
			name:  "bare word untouched",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeURL(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Normalizing an already-normalized URL must be a no-op.
func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"octocat/Hello-World",
		"https://github.com/octocat/Hello-World",
		"https://gitlab.com/group/sub/project",
		"git@github.com:octocat/Hello-World.git",
		"https://git.example.com:8443/owner/repo",
		"https://github.com:octocat/Hello-World",
		"",
	}
	for _, input := range inputs {
		once := NormalizeURL(input)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("NormalizeURL not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
