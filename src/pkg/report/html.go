package report

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
)

/*
RenderHTML renders the report as a self-contained, email-safe HTML page
(inline styles, table layout).
*/
func RenderHTML(report Report) string {
	var buffer bytes.Buffer

	buffer.WriteString("<!doctype html>")
	buffer.WriteString("<html>")
	buffer.WriteString("<head>")
	buffer.WriteString(`<meta charset="utf-8">`)
	buffer.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buffer.WriteString("</head>")

	bodyStyle := "margin:0;padding:0;background-color:#F3F4F6;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Inter,Arial,sans-serif;color:#111827;"
	buffer.WriteString(`<body style="` + bodyStyle + `">`)

	// Outer wrapper table (email-safe centering).
	buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="border-collapse:collapse;background-color:#F3F4F6;">`)
	buffer.WriteString(`<tr><td align="center" style="padding:24px;">`)
	buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="680" style="border-collapse:separate;width:680px;max-width:680px;">`)
	buffer.WriteString(`<tr><td style="padding:0;">`)

	// Header.
	buffer.WriteString(`<div style="padding:8px 4px 18px 4px;">`)
	buffer.WriteString(`<div style="font-size:24px;font-weight:800;line-height:1.2;">` + html.EscapeString(report.Title) + `</div>`)
	buffer.WriteString(`<div style="margin-top:6px;font-size:13px;line-height:1.5;color:#6B7280;">`)
	buffer.WriteString(`Period: ` + strong(report.Month.String()+" "+strconv.Itoa(report.Year)))
	buffer.WriteString(` &nbsp;•&nbsp; Scans: ` + strong(itoa(report.ScanCount)))
	buffer.WriteString(` &nbsp;•&nbsp; Timezone: ` + strong(report.Timezone))
	buffer.WriteString(`</div></div>`)

	// Summary card.
	buffer.WriteString(cardOpen())
	buffer.WriteString(`<div style="padding:18px;">`)
	buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr>`)
	buffer.WriteString(statCell("Cropped", itoa(report.CroppedCount)))
	buffer.WriteString(statCell("Full frame fallback", itoa(report.FallbackCount)))
	buffer.WriteString(statCell("Avg time", fmt.Sprintf("%d ms", report.AvgElapsedMs)))
	buffer.WriteString(`</tr></table>`)
	buffer.WriteString(`<div style="margin-top:8px;font-size:13px;line-height:1.5;color:#6B7280;">`)
	buffer.WriteString(`From ` + strong(report.PeriodStart.Format("2006-01-02")) + ` to ` + strong(report.PeriodEnd.Format("2006-01-02")))
	buffer.WriteString(`</div></div>`)

	// Outcome breakdown.
	buffer.WriteString(`<div style="padding:0 18px 18px 18px;">`)
	buffer.WriteString(`<div style="height:1px;background-color:#E5E7EB;width:100%;"></div>`)
	buffer.WriteString(`<div style="margin-top:14px;font-size:14px;font-weight:800;">What was recognized</div>`)
	if report.ScanCount == 0 || len(report.Rows) == 0 {
		buffer.WriteString(`<div style="margin-top:10px;padding:14px;border:1px dashed #D1D5DB;border-radius:12px;background-color:#FAFAFA;color:#6B7280;font-size:13px;">`)
		buffer.WriteString(`No scans found for this month in the selected directory.`)
		buffer.WriteString(`</div>`)
	} else {
		buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="border-collapse:separate;border-spacing:0 10px;">`)
		for _, row := range report.Rows {
			buffer.WriteString(rowHTML(row))
		}
		buffer.WriteString(`</table>`)
	}
	buffer.WriteString(`</div>`)
	buffer.WriteString(cardClose())

	// Notes.
	buffer.WriteString(`<div style="padding:18px 0;">`)
	buffer.WriteString(cardOpen())
	buffer.WriteString(`<div style="padding:16px 18px;">`)
	buffer.WriteString(`<div style="font-size:13px;font-weight:900;">Notes</div>`)
	buffer.WriteString(`<div style="margin-top:10px;font-size:12px;line-height:1.7;color:#6B7280;">`)
	for _, note := range report.Notes {
		buffer.WriteString(`• ` + html.EscapeString(note) + `<br>`)
	}
	buffer.WriteString(`</div>`)
	buffer.WriteString(`<div style="margin-top:12px;font-size:11px;color:#9CA3AF;">Generated ` + html.EscapeString(report.GeneratedAt.Format("2006-01-02 15:04:05")) + `</div>`)
	buffer.WriteString(`</div>`)
	buffer.WriteString(cardClose())
	buffer.WriteString(`</div>`)

	buffer.WriteString(`</td></tr></table>`)
	buffer.WriteString(`</td></tr></table>`)
	buffer.WriteString(`</body></html>`)

	return buffer.String()
}

func rowHTML(row Row) string {
	var buffer bytes.Buffer
	buffer.WriteString(`<tr><td style="padding:12px;background-color:#FFFFFF;border:1px solid #E5E7EB;border-radius:12px;">`)
	buffer.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%" style="border-collapse:collapse;"><tr>`)

	buffer.WriteString(`<td style="vertical-align:top;padding-right:10px;">`)
	buffer.WriteString(`<div style="display:inline-block;width:10px;height:10px;border-radius:999px;background-color:` + row.Color + `;margin-right:8px;"></div>`)
	buffer.WriteString(`<span style="font-size:14px;font-weight:800;">` + html.EscapeString(row.DisplayName) + `</span>`)
	buffer.WriteString(`</td>`)

	buffer.WriteString(`<td align="right" style="vertical-align:top;">`)
	buffer.WriteString(`<div style="font-size:14px;font-weight:900;">` + itoa(row.Count) + `</div>`)
	buffer.WriteString(`<div style="margin-top:2px;font-size:12px;font-weight:800;color:#6B7280;">` + fmt.Sprintf("%.1f%%", row.Percent) + `</div>`)
	buffer.WriteString(`</td></tr>`)

	// Bar.
	buffer.WriteString(`<tr><td colspan="2" style="padding-top:10px;">`)
	buffer.WriteString(`<div style="width:100%;height:10px;border-radius:999px;background-color:#EEF2FF;overflow:hidden;border:1px solid #E5E7EB;">`)
	buffer.WriteString(`<div style="height:10px;width:` + strconv.Itoa(row.BarPercent) + `%;background-color:` + row.Color + `;border-radius:999px;"></div>`)
	buffer.WriteString(`</div></td></tr>`)

	buffer.WriteString(`</table></td></tr>`)
	return buffer.String()
}

func statCell(label string, value string) string {
	return `<td style="vertical-align:top;padding-right:12px;">` +
		`<div style="font-size:12px;letter-spacing:0.10em;text-transform:uppercase;color:#6B7280;">` + html.EscapeString(label) + `</div>` +
		`<div style="margin-top:6px;font-size:28px;font-weight:900;line-height:1.1;">` + html.EscapeString(value) + `</div>` +
		`</td>`
}

func strong(text string) string {
	return `<span style="font-weight:700;color:#111827;">` + html.EscapeString(text) + `</span>`
}

/*
cardOpen returns the opening HTML for a card-like container (email-safe).
*/
func cardOpen() string {
	return `<div style="background-color:#FFFFFF;border:1px solid #E5E7EB;border-radius:16px;box-shadow:0 8px 24px rgba(17,24,39,0.06);overflow:hidden;">`
}

func cardClose() string {
	return `</div>`
}

// itoa formats a count with comma thousand separators.
func itoa(value int) string {
	raw := strconv.Itoa(value)
	if len(raw) <= 3 {
		return raw
	}

	var buffer bytes.Buffer
	firstGroupLen := len(raw) % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	buffer.WriteString(raw[:firstGroupLen])
	for index := firstGroupLen; index < len(raw); index += 3 {
		buffer.WriteString(",")
		buffer.WriteString(raw[index : index+3])
	}
	return buffer.String()
}
