/*
Package report summarizes the scans stored under an output directory for one
month: how many documents were cropped, how many fell back to the full frame,
and what was recognized in them.
*/
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/util"
)

// Outcome keys, in display order.
const (
	OutcomeTD3    = "td3"
	OutcomeTD2    = "td2"
	OutcomeTD1    = "td1"
	OutcomeText   = "text"
	OutcomeNoText = "no-text"
)

var outcomeNames = map[string]string{
	OutcomeTD3:    "Passport MRZ (TD3)",
	OutcomeTD2:    "ID/visa MRZ (TD2)",
	OutcomeTD1:    "ID card MRZ (TD1)",
	OutcomeText:   "Text without MRZ",
	OutcomeNoText: "No text recognized",
}

var outcomeColors = map[string]string{
	OutcomeTD3:    "#2563EB",
	OutcomeTD2:    "#7C3AED",
	OutcomeTD1:    "#059669",
	OutcomeText:   "#D97706",
	OutcomeNoText: "#9CA3AF",
}

type Options struct {
	OutDir   string
	Year     int
	Month    time.Month
	Location *time.Location
	Title    string
}

type Row struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"display_name"`
	Count       int     `json:"count"`
	Percent     float64 `json:"percent"`
	Color       string  `json:"color"`
	BarPercent  int     `json:"bar_percent"`
}

type Report struct {
	Title        string     `json:"title"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	Timezone     string     `json:"timezone"`
	PeriodStart  time.Time  `json:"period_start"`
	PeriodEnd    time.Time  `json:"period_end"`
	GeneratedAt  time.Time  `json:"generated_at"`
	ScanCount    int        `json:"scan_count"`
	CroppedCount int        `json:"cropped_count"`
	// Scans whose frame was too small to crop and went to OCR whole.
	FallbackCount int      `json:"fallback_count"`
	AvgElapsedMs  int64    `json:"avg_elapsed_ms"`
	Rows          []Row    `json:"rows"`
	Notes         []string `json:"notes"`
}

/*
Build reads every result.json under options.OutDir and aggregates the scans
created within the selected month. Unreadable files are skipped with a note.
*/
func Build(options Options) (report Report, e *xerr.Error) {
	location := options.Location
	if location == nil {
		location = time.UTC
	}

	periodStart := time.Date(options.Year, options.Month, 1, 0, 0, 0, 0, location)
	periodEnd := periodStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	report = Report{
		Title:       options.Title,
		Year:        options.Year,
		Month:       options.Month,
		Timezone:    location.String(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GeneratedAt: time.Now().In(location),
		Notes:       []string{},
	}

	resultPaths, e := collectResultFiles(options.OutDir)
	if e != nil {
		return report, e
	}
	tl.Log(tl.Info1, palette.Cyan, "Found %s %s files under '%s'", fmt.Sprintf("%d", len(resultPaths)), scan.ArtifactResult, options.OutDir)

	counts := map[string]int{}
	skipped := 0
	totalElapsedMs := int64(0)
	for _, resultPath := range resultPaths {
		result, loadErr := loadResult(resultPath)
		if loadErr != nil {
			skipped++
			tl.Log(tl.Warning, palette.Yellow, "Skipping '%s': %s", resultPath, util.ErrorMessage(loadErr))
			continue
		}

		createdAt := result.CreatedAt.In(location)
		if createdAt.Before(periodStart) || createdAt.After(periodEnd) {
			continue
		}

		report.ScanCount++
		if result.Cropped {
			report.CroppedCount++
		} else if result.CropError != "" {
			report.FallbackCount++
		}
		totalElapsedMs += result.ElapsedMs
		counts[Outcome(result)]++
	}

	if report.ScanCount > 0 {
		report.AvgElapsedMs = totalElapsedMs / int64(report.ScanCount)
	}
	report.Rows = buildRows(counts, report.ScanCount)

	if skipped > 0 {
		report.Notes = append(report.Notes, "Unreadable result files skipped: "+itoa(skipped))
	}
	if report.FallbackCount > 0 {
		report.Notes = append(report.Notes, "Frames too small to crop were recognized whole: "+itoa(report.FallbackCount))
	}
	report.Notes = append(report.Notes, "Dates come from the created_at field of each scan result.")

	return report, nil
}

// Outcome classifies a scan by what was recognized in it.
func Outcome(result scan.Result) string {
	switch {
	case result.MRZFormat == "TD3":
		return OutcomeTD3
	case result.MRZFormat == "TD2":
		return OutcomeTD2
	case result.MRZFormat == "TD1":
		return OutcomeTD1
	case result.HasText:
		return OutcomeText
	default:
		return OutcomeNoText
	}
}

func buildRows(counts map[string]int, total int) []Row {
	rows := make([]Row, 0, len(counts))
	for key, count := range counts {
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100.0
		}

		barPercent := int(math.Round(percent))
		if count > 0 && barPercent == 0 {
			barPercent = 1
		}

		rows = append(rows, Row{
			Key:         key,
			DisplayName: outcomeNames[key],
			Count:       count,
			Percent:     percent,
			Color:       outcomeColors[key],
			BarPercent:  min(barPercent, 100),
		})
	}

	order := map[string]int{OutcomeTD3: 0, OutcomeTD2: 1, OutcomeTD1: 2, OutcomeText: 3, OutcomeNoText: 4}
	sort.Slice(rows, func(first int, second int) bool {
		if rows[first].Count != rows[second].Count {
			return rows[first].Count > rows[second].Count
		}
		return order[rows[first].Key] < order[rows[second].Key]
	})
	return rows
}

func collectResultFiles(outDir string) (paths []string, e *xerr.Error) {
	paths = make([]string, 0)

	walkErr := filepath.WalkDir(outDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && entry.Name() == scan.ArtifactResult {
			paths = append(paths, path)
		}
		return nil
	})
	if walkErr != nil {
		return paths, xerr.NewErrorEC(walkErr, "walk out directory", "outDir", outDir, false)
	}

	sort.Strings(paths)
	return paths, nil
}

func loadResult(resultPath string) (result scan.Result, e *xerr.Error) {
	bytesRead, readErr := os.ReadFile(resultPath)
	if readErr != nil {
		return result, xerr.NewErrorEC(readErr, "read JSON file", "path", resultPath, false)
	}

	unmarshalErr := json.Unmarshal(bytesRead, &result)
	if unmarshalErr != nil {
		return result, xerr.NewErrorEC(unmarshalErr, "unmarshal scan result", "path", resultPath, false)
	}
	return result, nil
}
