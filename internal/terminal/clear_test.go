package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinesFor(t *testing.T) {
	tests := []struct{ n, width, want int }{
		{0, 80, 1},
		{80, 80, 1},
		{81, 80, 2},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := LinesFor(tt.n, tt.width); got != tt.want {
			t.Errorf("LinesFor(%d, %d) = %d, want %d", tt.n, tt.width, got, tt.want)
		}
	}
}

func TestClearPreviousLines(t *testing.T) {
	var buf bytes.Buffer
	ClearPreviousLines(&buf, 100, 80)
	if got := strings.Count(buf.String(), "\x1b[2K"); got != 3 {
		t.Errorf("cleared %d lines, want 3", got)
	}
	if got := strings.Count(buf.String(), "\x1b[1A"); got != 2 {
		t.Errorf("moved up %d lines, want 2", got)
	}
}

func TestPrompterReadsSuccessiveLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in")
	if err := os.WriteFile(path, []byte("  ABC123 \n/keys/AuthKey.p8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	var out bytes.Buffer
	p := NewPrompter(in, &out)
	first, err := p.Ask("Key ID: ", true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Ask("Key path: ", false)
	if err != nil {
		t.Fatal(err)
	}
	third, err := p.Ask("Optional: ", false)
	if err != nil {
		t.Fatal(err)
	}
	if first != "ABC123" || second != "/keys/AuthKey.p8" || third != "" {
		t.Errorf("answers = %q, %q, %q", first, second, third)
	}
	if out.String() != "Key ID: Key path: Optional: " {
		t.Errorf("prompts = %q", out.String())
	}
}
