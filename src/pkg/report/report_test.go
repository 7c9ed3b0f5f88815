package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-scanner/src/pkg/scan"
)

func writeResult(t *testing.T, outDir string, runID string, result scan.Result) {
	t.Helper()
	runDir := filepath.Join(outDir, runID)
	require.NoError(t, os.MkdirAll(runDir, 0o755))
	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(runDir, scan.ArtifactResult), data, 0o644))
}

func TestBuild(t *testing.T) {
	outDir := t.TempDir()
	inMonth := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	writeResult(t, outDir, "a", scan.Result{CreatedAt: inMonth, Cropped: true, HasText: true, MRZFormat: "TD3", ElapsedMs: 100})
	writeResult(t, outDir, "b", scan.Result{CreatedAt: inMonth, Cropped: true, HasText: true, MRZFormat: "TD3", ElapsedMs: 300})
	writeResult(t, outDir, "c", scan.Result{CreatedAt: inMonth, Cropped: true, HasText: true, ElapsedMs: 200})
	writeResult(t, outDir, "d", scan.Result{CreatedAt: inMonth, CropError: "invalid geometry", ElapsedMs: 200})
	writeResult(t, outDir, "e", scan.Result{CreatedAt: inMonth.AddDate(0, 1, 0), Cropped: true, HasText: true})
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "broken", scan.ArtifactResult), []byte("{"), 0o644))

	report, e := Build(Options{OutDir: outDir, Year: 2025, Month: time.March, Title: "Scans"})
	require.Nil(t, e)

	assert.Equal(t, 4, report.ScanCount)
	assert.Equal(t, 3, report.CroppedCount)
	assert.Equal(t, 1, report.FallbackCount)
	assert.Equal(t, int64(200), report.AvgElapsedMs)
	assert.Equal(t, "UTC", report.Timezone)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, OutcomeTD3, report.Rows[0].Key)
	assert.Equal(t, 2, report.Rows[0].Count)
	assert.InDelta(t, 50.0, report.Rows[0].Percent, 0.001)
	assert.Equal(t, 50, report.Rows[0].BarPercent)
	assert.Equal(t, OutcomeText, report.Rows[1].Key)
	assert.Equal(t, OutcomeNoText, report.Rows[2].Key)

	assert.Contains(t, report.Notes, "Unreadable result files skipped: 1")
}

func TestBuildMissingDirectory(t *testing.T) {
	_, e := Build(Options{OutDir: filepath.Join(t.TempDir(), "absent"), Year: 2025, Month: time.March})
	assert.NotNil(t, e)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeTD1, Outcome(scan.Result{MRZFormat: "TD1", HasText: true}))
	assert.Equal(t, OutcomeTD2, Outcome(scan.Result{MRZFormat: "TD2", HasText: true}))
	assert.Equal(t, OutcomeText, Outcome(scan.Result{HasText: true}))
	assert.Equal(t, OutcomeNoText, Outcome(scan.Result{}))
}

func TestRenderHTML(t *testing.T) {
	report := Report{
		Title:        "Scans <March>",
		Year:         2025,
		Month:        time.March,
		Timezone:     "UTC",
		ScanCount:    1234,
		CroppedCount: 1200,
		Rows:         []Row{{Key: OutcomeTD3, DisplayName: outcomeNames[OutcomeTD3], Count: 1234, Percent: 100, Color: "#2563EB", BarPercent: 100}},
		Notes:        []string{"a & b"},
	}

	htmlText := RenderHTML(report)
	assert.Contains(t, htmlText, "Scans &lt;March&gt;")
	assert.Contains(t, htmlText, "1,234")
	assert.Contains(t, htmlText, "Passport MRZ (TD3)")
	assert.Contains(t, htmlText, "width:100%;background-color:#2563EB")
	assert.Contains(t, htmlText, "a &amp; b")

	empty := RenderHTML(Report{Title: "Empty", Month: time.April})
	assert.Contains(t, empty, "No scans found for this month")
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "999", itoa(999))
	assert.Equal(t, "1,000", itoa(1000))
	assert.Equal(t, "12,345,678", itoa(12345678))
}
