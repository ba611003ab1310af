package evalcmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/partmatch/internal/catalog"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/dataset"
	"github.com/lehigh-university-libraries/partmatch/internal/eval/metrics"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
)

const pairsJSONL = `{"id":"ok","component_type":"resistor","original_mpn":"A","candidate_mpn":"B","original_specs":[{"name":"resistance","number":10000},{"name":"tolerance","number":1},{"name":"package","text":"0603"},{"name":"power_rating","number":0.1}],"candidate_specs":[{"name":"resistance","number":10000},{"name":"tolerance","number":1},{"name":"package","text":"0603"},{"name":"power_rating","number":0.1}],"expected_substitute":true}
{"id":"bad","component_type":"resistor","original_mpn":"A","candidate_mpn":"C","original_specs":[{"name":"resistance","number":10000},{"name":"package","text":"0603"}],"candidate_specs":[{"name":"resistance","number":1000},{"name":"package","text":"0603"}],"expected_substitute":false}
{"id":"unknown","component_type":"thermistor","original_specs":[],"candidate_specs":[]}
`

func writePairs(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pairs.jsonl")
	if err := os.WriteFile(path, []byte(pairsJSONL), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestScoreAllKeepsOrder(t *testing.T) {
	registry, err := catalog.Default(metadata.ProfileReplacementStrict)
	if err != nil {
		t.Fatalf("Default catalog failed: %v", err)
	}
	records, err := dataset.NewLoader(writePairs(t)).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out, err := scoreAll(context.Background(), registry, records, 2)
	if err != nil {
		t.Fatalf("scoreAll failed: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(out))
	}
	for i, want := range []string{"ok", "bad", "unknown"} {
		if out[i].ID != want {
			t.Errorf("result %d: expected %s, got %s", i, want, out[i].ID)
		}
	}

	if out[0].Result == nil || !out[0].Result.Acceptable {
		t.Errorf("Expected identical parts to be acceptable, got %+v", out[0].Result)
	}
	if out[1].Result == nil || !out[1].Result.Vetoed {
		t.Errorf("Expected wrong resistance to be vetoed, got %+v", out[1].Result)
	}
	if out[2].Error == "" {
		t.Error("Expected unknown component type to fail")
	}
}

func TestScoreAllCanceled(t *testing.T) {
	registry, _ := catalog.Default(metadata.ProfileReplacementStrict)
	records, _ := dataset.NewLoader(writePairs(t)).Load()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scoreAll(ctx, registry, records, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExecuteRunAndReport(t *testing.T) {
	dir := t.TempDir()
	opts := runOptions{
		datasetPath:   writePairs(t),
		sampleSize:    -1,
		concurrency:   2,
		outputJSON:    filepath.Join(dir, "results.json"),
		outputReport:  filepath.Join(dir, "report.txt"),
		outputYAMLDir: filepath.Join(dir, "evals"),
	}

	if err := executeRun(context.Background(), opts); err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	agg, err := metrics.LoadFromJSON(opts.outputJSON)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}
	if agg.TotalRecords != 3 || agg.FailureCount != 1 {
		t.Errorf("Unexpected totals: total=%d failed=%d", agg.TotalRecords, agg.FailureCount)
	}
	if agg.Confusion.TruePositives != 1 || agg.Confusion.TrueNegatives != 1 {
		t.Errorf("Unexpected confusion matrix %+v", agg.Confusion)
	}

	if _, err := os.Stat(opts.outputReport); err != nil {
		t.Errorf("Expected report file: %v", err)
	}
	entries, err := os.ReadDir(opts.outputYAMLDir)
	if err != nil || len(entries) != 1 {
		t.Errorf("Expected one YAML run file, got %v (%v)", entries, err)
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := executeReport(&buf, opts.outputJSON, "text"); err != nil {
			t.Fatalf("executeReport failed: %v", err)
		}
		out := buf.String()
		for _, s := range []string{"Pair ID: bad", "Vetoed By: resistance", "Precision:"} {
			if !strings.Contains(out, s) {
				t.Errorf("text report missing %q", s)
			}
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := executeReport(&buf, opts.outputJSON, "csv"); err != nil {
			t.Fatalf("executeReport failed: %v", err)
		}
		rows, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(rows) != 4 {
			t.Errorf("Expected header plus 3 rows, got %d", len(rows))
		}
		if rows[0][0] != "ID" || rows[2][0] != "bad" {
			t.Errorf("Unexpected CSV layout: %v", rows[:3])
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if err := executeReport(&bytes.Buffer{}, opts.outputJSON, "xml"); err == nil {
			t.Error("Expected error for unsupported format")
		}
	})
}

func TestExecuteRunBadProfile(t *testing.T) {
	opts := runOptions{datasetPath: writePairs(t), concurrency: 1, profile: "aggressive"}
	if err := executeRun(context.Background(), opts); err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestExecuteConvert(t *testing.T) {
	output := filepath.Join(t.TempDir(), "pairs.parquet")
	if err := executeConvert(writePairs(t), output); err != nil {
		t.Fatalf("executeConvert failed: %v", err)
	}

	records, err := dataset.NewLoader(output).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

func TestExecuteInspect(t *testing.T) {
	var buf bytes.Buffer
	if err := executeInspect(context.Background(), &buf, writePairs(t), 2, false); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PAIR 2/2") {
		t.Error("Expected two pairs to be printed")
	}
	if strings.Contains(out, "thermistor") {
		t.Error("Expected limit to stop before the third pair")
	}
	if !strings.Contains(out, "10000") {
		t.Error("Expected spec values in output")
	}
}

func TestExecuteInspectRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pairsJSONL))
	}))
	defer srv.Close()
	t.Setenv("PARTMATCH_CACHE_DIR", t.TempDir())

	var buf bytes.Buffer
	if err := executeInspect(context.Background(), &buf, srv.URL+"/pairs.jsonl", 0, false); err != nil {
		t.Fatalf("executeInspect failed: %v", err)
	}
	if !strings.Contains(buf.String(), "PAIR 3/3") {
		t.Errorf("Expected all three remote pairs, got:\n%s", buf.String())
	}
}
