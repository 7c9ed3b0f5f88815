// in case you need to create an entrypoint with multiple subprograms
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"document-scanner/src/pkg/app"
	"document-scanner/src/pkg/config"
	"document-scanner/src/pkg/email"
	"document-scanner/src/pkg/frame"
	"document-scanner/src/pkg/scan"
	"document-scanner/src/pkg/util"
)

/*
Pick provider and use it to send a test email to the specified address.
Text and html bodies are read from files.
*/
func testProvider(subprogram string, flags []string) {
	// common flags
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	// custom flags
	provider := subprogramCmd.String("provider", "ses", "Provider to use when sending emails: ses, mailgun or sendgrid")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address, comma separated for several")
	subject := subprogramCmd.String("subject", "Test subject", "Subject of an email")
	emailHtmlFilePath := subprogramCmd.String("html", "./tmp/email.html", "Html body of an email")
	emailTextFilePath := subprogramCmd.String("text", "./tmp/email.txt", "Text body of an email")

	// parse and init config
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	app.InitializeConfig(*configPath)

	util.RequiredFlag(senderAddress, "sender")
	util.RequiredFlag(recipientAddress, "recipient")
	util.RequiredFlag(provider, "provider")
	util.EnsureFlags()
	config.CheckIfEnvVarsPresent(email.RequiredEnvVars(email.Provider(*provider))...)

	recipientAddresses := strings.Split(*recipientAddress, ",")

	htmlFileContentBytes, err := os.ReadFile(*emailHtmlFilePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailHtmlFilePath))
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", htmlFileContentBytes)
	textFileContentBytes, err := os.ReadFile(*emailTextFilePath)
	xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailTextFilePath))
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", textFileContentBytes)

	sendEmails := true
	e := email.SendMessage(email.Provider(*provider), &sendEmails, *senderAddress, recipientAddresses, *subject, string(textFileContentBytes), string(htmlFileContentBytes), nil)
	e.QuitIf(xerr.ErrorTypeError)
}

/*
Email the result of an earlier scan, read from its run directory
(result.json plus crop.png, or orig.png when the scan was not cropped).
Sender, recipients and provider come from the email config section unless given as flags.
*/
func scanResult(subprogram string, flags []string) {
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	runDirPath := subprogramCmd.String("run", "", "Run directory written by the scan program")
	provider := subprogramCmd.String("provider", "", "Provider to use. Overrides email.provider")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address. Overrides email.sender")
	recipientAddress := subprogramCmd.String("recipient", "", "Recipient's address(es). Overrides email.recipients")
	dryRun := subprogramCmd.Bool("dry-run", false, "Only log the email")

	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	app.InitializeConfig(*configPath)

	util.RequiredFlag(runDirPath, "run")
	util.EnsureFlags()

	cfg := email.Cfg
	if *provider != "" {
		cfg.Provider = email.Provider(*provider)
	}
	if *senderAddress != "" {
		cfg.Sender = *senderAddress
	}
	if *recipientAddress != "" {
		cfg.Recipients = strings.Split(*recipientAddress, ",")
	}
	cfg.SendEmails = !*dryRun
	if cfg.SendEmails {
		config.CheckIfEnvVarsPresent(email.RequiredEnvVars(cfg.Provider)...)
	}

	result, document, e := loadRun(*runDirPath)
	e.QuitIf(xerr.ErrorTypeError)

	e = email.NewScanNotifier(cfg).Notify(context.Background(), result, document)
	e.QuitIf(xerr.ErrorTypeError)
	tl.Log(tl.Notice1, palette.GreenBold, "Scan result of '%s' %s", result.Source, "emailed")
}

func loadRun(runDirPath string) (result scan.Result, document *frame.Frame, e *xerr.Error) {
	resultPath := filepath.Join(runDirPath, scan.ArtifactResult)
	resultBytes, err := os.ReadFile(resultPath)
	if err != nil {
		return result, nil, xerr.NewError(err, "read scan result", resultPath)
	}
	err = json.Unmarshal(resultBytes, &result)
	if err != nil {
		return result, nil, xerr.NewError(err, "parse scan result", resultPath)
	}

	for _, name := range []string{scan.ArtifactCrop, scan.ArtifactOriginal} {
		imagePath := filepath.Join(runDirPath, name)
		if _, statErr := os.Stat(imagePath); statErr != nil {
			continue
		}
		document, e = frame.Load(imagePath)
		return result, document, e
	}

	tl.Log(tl.Warning, palette.YellowBold, "No image found in '%s', %s", runDirPath, "sending without attachment")
	return result, nil, nil
}

func main() {
	// Check if there are enough arguments
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run src/cmd/send-email/main.go subprogram_name (test-provider or scan-result)")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	// Switch subprogram based on the first argument
	switch subprogram {
	case "test-provider":
		testProvider(subprogram, flags)
	case "scan-result":
		scanResult(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
