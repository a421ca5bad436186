package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAndWrite(t *testing.T) {
	m := New()
	m.ObserveBridge("asc_download", 1500*time.Millisecond, "success")
	m.ObserveBridge("asc_download", time.Second, "protocol_fault")
	m.ObserveBridge("asc_download", time.Second, "protocol_fault")
	m.ObserveCache("hit")
	m.ObserveRetry("failed")
	m.ObservePull("remote", 3*time.Second)

	if got := testutil.ToFloat64(m.bridgeCalls.WithLabelValues("asc_download", "protocol_fault")); got != 2 {
		t.Errorf("protocol_fault calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}

	path := filepath.Join(t.TempDir(), "rosetta.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`rosetta_bridge_calls_total{function="asc_download",outcome="success"} 1`,
		`rosetta_cache_lookups_total{result="hit"} 1`,
		`rosetta_retry_attempts_total{result="failed"} 1`,
		`rosetta_pull_duration_seconds_count{source="remote"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
}
