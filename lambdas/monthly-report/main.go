package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/reports"
	"fieldforce.com/fieldforce/infrastructure/filesystem"
	"fieldforce.com/fieldforce/infrastructure/mail"
	"fieldforce.com/fieldforce/lambdas/common"
	"fieldforce.com/fieldforce/utils"
	"github.com/aws/aws-lambda-go/lambda"
)

type ReportEvent struct {
	// Month is yyyy-MM; empty means the previous month.
	Month  string `json:"month"`
	DryRun bool   `json:"dryRun"`
}

type ReportResult struct {
	Month     string   `json:"month"`
	Total     float64  `json:"total"`
	Rows      int      `json:"rows"`
	Files     []string `json:"files"`
	MessageID string   `json:"messageId,omitempty"`
}

type uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type sender interface {
	Send(ctx context.Context, info *mail.EmailInfo) (string, error)
}

// reporter sees every branch.
var reporter = core.Viewer{ID: "monthly-report", Role: model.RoleSuperAdmin}

// BuildAttachments renders the expense and attendance workbooks of month.
func BuildAttachments(ctx context.Context, svc *core.Service, month string) (*core.ExpenseReport, []mail.Attachment, error) {
	expenses, err := svc.ExpenseReport(ctx, reporter, month)
	if err != nil {
		return nil, nil, err
	}
	f, err := reports.ExpenseWorkbook(expenses)
	if err != nil {
		return nil, nil, err
	}
	expenseXlsx, err := reports.Bytes(f)
	if err != nil {
		return nil, nil, err
	}

	rows, err := svc.AttendanceReport(ctx, reporter, month)
	if err != nil {
		return nil, nil, err
	}
	f, err = reports.AttendanceWorkbook(month, rows, svc.Options().Location)
	if err != nil {
		return nil, nil, err
	}
	attendanceXlsx, err := reports.Bytes(f)
	if err != nil {
		return nil, nil, err
	}

	return expenses, []mail.Attachment{
		{Filename: reports.ExpenseFilename(month), ContentType: reports.ContentType, Content: expenseXlsx},
		{Filename: reports.AttendanceFilename(month), ContentType: reports.ContentType, Content: attendanceXlsx},
	}, nil
}

// SendReport archives the workbooks under reports/{month}/ and mails them.
func SendReport(ctx context.Context, svc *core.Service, archive uploader, mailer sender, from string, to []string, event ReportEvent) (*ReportResult, error) {
	month := event.Month
	if month == "" {
		today, err := time.ParseInLocation(utils.DateLayout, svc.Today(), svc.Options().Location)
		if err != nil {
			return nil, err
		}
		month = utils.PreviousMonth(today)
	}
	if _, err := utils.ParseMonth(month); err != nil {
		return nil, err
	}

	expenses, attachments, err := BuildAttachments(ctx, svc, month)
	if err != nil {
		return nil, fmt.Errorf("failed to build reports for %s: %w", month, err)
	}
	result := &ReportResult{Month: month, Total: expenses.Total, Rows: len(expenses.Rows)}
	fmt.Printf("[INFO] %s: %d expense days, total %.2f\n", month, result.Rows, result.Total)

	if event.DryRun {
		for _, a := range attachments {
			result.Files = append(result.Files, a.Filename)
		}
		return result, nil
	}

	links := ""
	for _, a := range attachments {
		url, err := archive.Upload(ctx, fmt.Sprintf("reports/%s/%s", month, a.Filename), bytes.NewReader(a.Content), a.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to archive %s: %w", a.Filename, err)
		}
		result.Files = append(result.Files, url)
		links += url + "\n"
	}

	id, err := mailer.Send(ctx, &mail.EmailInfo{
		From:        from,
		To:          to,
		Subject:     fmt.Sprintf("Monthly report %s", month),
		Text:        fmt.Sprintf("Expenses for %s total %.2f over %d days.\n\nArchived copies:\n%s", month, expenses.Total, len(expenses.Rows), links),
		Attachments: attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send report: %w", err)
	}
	result.MessageID = id
	return result, nil
}

func HandleRequest(ctx context.Context, event ReportEvent) (*ReportResult, error) {
	eventJson, _ := json.Marshal(event)
	fmt.Printf("[INFO] Event: %s\n", string(eventJson))

	env, err := common.LoadEnvironment(ctx)
	if err != nil {
		return nil, err
	}
	defer env.Close()
	cfg := env.Config

	archive, err := filesystem.NewBucket(ctx, cfg.Storage.ReportBucket, cfg.Storage.Region, "")
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewMailer(ctx, cfg.Storage.Region)
	if err != nil {
		return nil, err
	}
	return SendReport(ctx, env.Service(ctx), archive, mailer, cfg.Mail.From, cfg.Mail.To, event)
}

func main() {
	if common.InLambda() {
		lambda.Start(HandleRequest)
		return
	}

	month := ""
	if len(os.Args) > 1 {
		month = os.Args[1]
	}
	result, err := HandleRequest(context.Background(), ReportEvent{Month: month, DryRun: true})
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(result, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
