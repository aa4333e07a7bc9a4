package shared

import "testing"

func TestNormalize(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic normalization",
			input: "Song Title",
			want:  "song title",
		},
		{
			name:  "extra whitespace",
			input: "  Song   Title  ",
			want:  "song title",
		},
		{
			name:  "mixed case",
			input: "SoNg TiTlE",
			want:  "song title",
		},
		{
			name:  "tabs and newlines",
			input: "Song\tTitle\nMore",
			want:  "song title more",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" || id2 == "" {
		t.Fatal("expected non-empty IDs")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
	if len(id1) != 36 {
		t.Errorf("expected UUID format, got %s", id1)
	}
}
