package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/app"
	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/email"
	"document-scanner/src/pkg/report"
	"document-scanner/src/pkg/util"
)

/*
main writes an HTML summary of one month of scans and optionally emails it.

Example:

	go run ./src/cmd/report -out ./out -year 2025 -month 3 -o ./tmp/scans-2025-03.html
*/
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	outDirFlag := flag.String("out", "./out", "Directory to search recursively for result.json files")
	yearFlag := flag.Int("year", 0, "Year to report (default: current year)")
	monthFlag := flag.Int("month", 0, "Month to report 1-12 (default: current month)")
	outputFlag := flag.String("o", "", "Output HTML path (default: ./tmp/scans-YYYY-MM.html)")
	timezoneFlag := flag.String("tz", "UTC", "IANA timezone (e.g., Europe/Stockholm)")
	titleFlag := flag.String("title", "", "Report title (default: Scan report, Month Year)")
	sendEmail := flag.Bool("email", false, "Email the report to the recipients of the email config section")

	flag.Parse()
	app.InitializeConfig(*configPath)

	location, locationErr := time.LoadLocation(*timezoneFlag)
	if locationErr != nil {
		tl.Log(tl.Warning, palette.YellowBold, "Invalid timezone '%s'; falling back to UTC", *timezoneFlag)
		location = time.UTC
	}

	now := time.Now().In(location)
	yearValue := *yearFlag
	if yearValue == 0 {
		yearValue = now.Year()
	}
	monthValue := *monthFlag
	if monthValue == 0 {
		monthValue = int(now.Month())
	}
	if !util.InRange(monthValue, 1, 12) {
		tl.Log(tl.Warning, palette.YellowBold, "Month %s is outside 1-12; clamping", fmt.Sprintf("%d", monthValue))
		monthValue = util.Clamp(monthValue, 1, 12)
	}

	outputPath := *outputFlag
	if outputPath == "" {
		outputPath = fmt.Sprintf("./tmp/scans-%04d-%02d.html", yearValue, monthValue)
	}
	title := *titleFlag
	if title == "" {
		title = fmt.Sprintf("Scan report, %s %d", time.Month(monthValue), yearValue)
	}

	tl.Log(tl.Notice, palette.BlueBold, "Generating scan report for %s from '%s'", fmt.Sprintf("%04d-%02d", yearValue, monthValue), *outDirFlag)

	monthly, e := report.Build(report.Options{
		OutDir:   *outDirFlag,
		Year:     yearValue,
		Month:    time.Month(monthValue),
		Location: location,
		Title:    title,
	})
	e.QuitIf(xerr.ErrorTypeError)

	htmlText := report.RenderHTML(monthly)
	writeErr := os.WriteFile(outputPath, []byte(htmlText), 0o644)
	xerr.QuitIfError(writeErr, "write HTML report file")
	tl.Log(tl.Info1, palette.Green, "Saved report to '%s'", outputPath)

	if !*sendEmail {
		return
	}
	config.CheckIfEnvVarsPresent(email.RequiredEnvVars(email.Cfg.Provider)...)
	subject := strings.TrimSpace(email.Cfg.SubjectPrefix + " " + title)
	text := fmt.Sprintf("%s\nScans: %d, cropped: %d, full frame fallback: %d\n", title, monthly.ScanCount, monthly.CroppedCount, monthly.FallbackCount)
	sendEmails := true
	e = email.SendMessage(email.Cfg.Provider, &sendEmails, email.Cfg.Sender, email.Cfg.Recipients, subject, text, htmlText, nil)
	e.QuitIf(xerr.ErrorTypeError)
}
