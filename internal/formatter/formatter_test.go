package formatter

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"rosetta/cli/internal/snapshot"
)

func init() {
	pterm.DisableStyling()
}

func demo() snapshot.Snapshot {
	var md snapshot.Metadata
	md.Set("zh-Hans", snapshot.LocaleMetadata{Name: "演示"})
	md.Set("en-US", snapshot.LocaleMetadata{
		Name: "Demo", Subtitle: "Sub", Description: "Desc", Keywords: "a,b", WhatsNew: "New",
	})
	md.Set("de-DE", snapshot.LocaleMetadata{Name: "Demo", Keywords: strings.Repeat("k", 101)})
	return snapshot.Snapshot{
		AppID:         "com.example.demo",
		AppVersion:    "1.0",
		DefaultLocale: "en-US",
		Locales:       []string{"zh-Hans", "en-US", "de-DE"},
		Metadata:      md,
	}
}

func TestOrderedLocales(t *testing.T) {
	if diff := cmp.Diff([]string{"en-US", "de-DE", "zh-Hans"}, OrderedLocales(demo())); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	snap := demo()
	snap.DefaultLocale = "ja"
	if diff := cmp.Diff([]string{"de-DE", "en-US", "zh-Hans"}, OrderedLocales(snap)); diff != "" {
		t.Errorf("missing default (-want +got):\n%s", diff)
	}
}

func TestInspect(t *testing.T) {
	snap := demo()
	en, _ := snap.Metadata.Get("en-US")
	if c := Inspect(en); c.Filled != 5 || c.Status() != "OK" {
		t.Errorf("en-US = %+v", c)
	}
	zh, _ := snap.Metadata.Get("zh-Hans")
	if c := Inspect(zh); c.Filled != 1 || c.Status() != "Incomplete" {
		t.Errorf("zh-Hans = %+v", c)
	}
	de, _ := snap.Metadata.Get("de-DE")
	if c := Inspect(de); c.Status() != "Invalid" || len(c.Problems) != 1 {
		t.Errorf("de-DE = %+v", c)
	}
}

func TestWrap(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor ", 20) + strings.Repeat("x", 130)
	for _, line := range strings.Split(Wrap(text, WrapWidth), "\n") {
		if n := utf8.RuneCountInString(line); n > WrapWidth {
			t.Errorf("line of %d runes: %q", n, line)
		}
	}
	if got := Wrap("short\nlines", WrapWidth); got != "short\nlines" {
		t.Errorf("got %q", got)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, demo()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"App: com.example.demo (version 1.0)", "en-US (default)", "5/5", "1/5", "101/100"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "en-US (default)") > strings.Index(out, "zh-Hans\n") {
		t.Error("default locale not rendered first")
	}
}
