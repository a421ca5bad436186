package estimate

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rosetta/cli/internal/bridge"
	"rosetta/cli/internal/bridge/model"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

func demo() snapshot.Snapshot {
	var md snapshot.Metadata
	md.Set("en-US", snapshot.LocaleMetadata{Name: "Demo", Description: "An app"})
	md.Set("fr-FR", snapshot.LocaleMetadata{Name: "Démo"})
	return snapshot.Snapshot{
		AppID:         "com.example.demo",
		DefaultLocale: "en-US",
		Locales:       []string{"en-US", "fr-FR"},
		Metadata:      md,
	}
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest(demo(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Request{
		Metadata:      snapshot.LocaleMetadata{Name: "Demo", Description: "An app"},
		SourceLocale:  "en-US",
		TargetLocales: []string{"fr-FR"},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("request (-want +got):\n%s", diff)
	}

	req, err = NewRequest(demo(), "en-US", []string{"ja", "en-US", "ja", "zh-Hans"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ja", "zh-Hans"}, req.TargetLocales); diff != "" {
		t.Errorf("targets (-want +got):\n%s", diff)
	}
}

func TestNewRequestRejects(t *testing.T) {
	if _, err := NewRequest(demo(), "de-DE", nil); !rerrors.Is(err, rerrors.InvalidOptions) {
		t.Errorf("missing source: got %v", err)
	}
	if _, err := NewRequest(demo(), "en-US", []string{"en-US"}); !rerrors.Is(err, rerrors.InvalidOptions) {
		t.Errorf("no targets: got %v", err)
	}
}

type recordingBridge struct {
	function string
	args     []byte
	out      model.Outcome
}

func (b *recordingBridge) Invoke(_ context.Context, function string, args any) (model.Outcome, error) {
	b.function = function
	b.args, _ = json.Marshal(args)
	return b.out, nil
}

func TestFetch(t *testing.T) {
	b := &recordingBridge{out: model.Outcome{Success: true, Data: []byte(`{"estimatedCost":0.0125,"tokenEstimate":42}`)}}
	req, _ := NewRequest(demo(), "", nil)
	got, err := Fetch(context.Background(), b, req)
	if err != nil {
		t.Fatal(err)
	}
	if got != (Estimate{EstimatedCost: 0.0125, TokenEstimate: 42}) {
		t.Errorf("estimate = %+v", got)
	}
	if bridge.Route(b.function) != bridge.AIModule {
		t.Errorf("%s is not routed to the AI module", b.function)
	}
	want := `{"metadata":{"name":"Demo","description":"An app"},"sourceLocale":"en-US","targetLocales":["fr-FR"]}`
	if string(b.args) != want {
		t.Errorf("args = %s\nwant   %s", b.args, want)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := map[string]struct {
		out  model.Outcome
		want rerrors.Kind
	}{
		"worker failure": {model.Outcome{Message: "OPENAI_API_KEY is not set"}, rerrors.WorkerFailure},
		"null":           {model.Outcome{Success: true, Data: []byte("null")}, rerrors.ProtocolFault},
		"not an object":  {model.Outcome{Success: true, Data: []byte(`"cheap"`)}, rerrors.ProtocolFault},
	}
	for name, tt := range tests {
		_, err := Fetch(context.Background(), &recordingBridge{out: tt.out}, Request{})
		if got := rerrors.KindOf(err); got != tt.want {
			t.Errorf("%s: kind = %q, want %q", name, got, tt.want)
		}
	}
}
