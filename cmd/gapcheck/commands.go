package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gapcheck/internal/domain"
	"gapcheck/internal/pdfinfo"
)

func (a *app) analyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	curriculumPath := fs.String("curriculum", "", "curriculum PDF")
	standardsPath := fs.String("standards", "", "standards PDF")
	exportList := fs.String("export", "", "comma-separated export formats written after completion")
	emailTo := fs.String("email", a.cfg.Email.Recipient, "send a summary to this address after completion")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	formats, err := parseFormats(*exportList)
	if err != nil {
		return err
	}

	curriculum, err := a.validator.LoadDocument(domain.RoleCurriculum, *curriculumPath)
	if err != nil {
		return err
	}
	standards, err := a.validator.LoadDocument(domain.RoleStandards, *standardsPath)
	if err != nil {
		return err
	}
	describe(curriculum)
	describe(standards)

	outcome, err := a.orchestrator.Run(ctx, curriculum, standards, printEvent)
	if err != nil {
		return err
	}
	return a.finish(ctx, outcome, formats, *emailTo)
}

func (a *app) resume(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resume", flag.ContinueOnError)
	exportList := fs.String("export", "", "comma-separated export formats written after completion")
	emailTo := fs.String("email", a.cfg.Email.Recipient, "send a summary to this address after completion")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	sessionID, err := sessionArg(fs)
	if err != nil {
		return err
	}
	formats, err := parseFormats(*exportList)
	if err != nil {
		return err
	}

	outcome, err := a.orchestrator.Resume(ctx, sessionID, printEvent)
	if err != nil {
		return err
	}
	return a.finish(ctx, outcome, formats, *emailTo)
}

func (a *app) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	sessionID, err := sessionArg(fs)
	if err != nil {
		return err
	}

	report, err := a.orchestrator.FetchReport(ctx, sessionID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatList := fs.String("formats", "pdf,json,xlsx", "comma-separated export formats")
	share := fs.Duration("share", 0, "also print a share link valid for this long")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	sessionID, err := sessionArg(fs)
	if err != nil {
		return err
	}
	formats, err := parseFormats(*formatList)
	if err != nil {
		return err
	}
	if len(formats) == 0 {
		return usageError("no export formats given")
	}

	objs, err := a.exporter.Export(ctx, sessionID, formats)
	if err != nil {
		return err
	}
	return a.printStored(ctx, objs, *share)
}

func (a *app) mapping(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mapping", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	sessionID, err := sessionArg(fs)
	if err != nil {
		return err
	}

	raw, err := a.api.Mapping(ctx, sessionID)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		out.Reset()
		out.Write(raw)
	}
	fmt.Println(out.String())
	return nil
}

func (a *app) health(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("server:  %s\nstatus:  %s\nAI key:  %v\n", h.Service, h.Status, h.AIConfigured)
	return nil
}

// finish prints the outcome and runs the optional follow-ups for a completed session.
func (a *app) finish(ctx context.Context, outcome *domain.Outcome, formats []domain.ExportFormat, emailTo string) error {
	if outcome.State == domain.StateTimedOut {
		fmt.Printf("\n%s\nResume with: gapcheck resume %s\n", outcome.Message, outcome.SessionID)
		return nil
	}

	printReport(outcome.Report)

	if len(formats) > 0 {
		objs, err := a.exporter.Export(ctx, outcome.SessionID, formats)
		if err != nil {
			return err
		}
		if err := a.printStored(ctx, objs, 0); err != nil {
			return err
		}
	}
	if emailTo != "" {
		if err := a.notifier.SendReportSummary(ctx, emailTo, outcome.SessionID, outcome.Report); err != nil {
			return fmt.Errorf("sending summary: %w", err)
		}
		fmt.Printf("Summary sent to %s\n", emailTo)
	}
	return nil
}

func (a *app) printStored(ctx context.Context, objs []domain.StoredObject, share time.Duration) error {
	for _, obj := range objs {
		fmt.Printf("%-5s %9s  %s\n", obj.Format, humanize.IBytes(uint64(obj.Size)), obj.Location)
		if share > 0 {
			url, err := a.exporter.ShareURL(ctx, obj, share)
			if err != nil {
				return err
			}
			fmt.Printf("      share: %s\n", url)
		}
	}
	return nil
}

func describe(doc domain.UploadedDocument) {
	line := fmt.Sprintf("%-10s %s (%s)", doc.Role, doc.FileName, humanize.IBytes(uint64(doc.Size)))
	if info, err := pdfinfo.Inspect(doc.Content); err == nil {
		line += fmt.Sprintf(", %d pages", info.Pages)
		if !info.HasText {
			line += ", no text layer found"
		}
	}
	fmt.Println(line)
}

func printEvent(ev domain.Event) {
	switch {
	case ev.Stage == domain.StageUpload && ev.Message == "":
		fmt.Printf("\rUploading... %3d%%", ev.Percent)
		if ev.Percent == 100 {
			fmt.Println()
		}
	case ev.Message != "":
		fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
	}
}

func printReport(r *domain.AnalysisReport) {
	if r == nil {
		return
	}
	fmt.Printf("\nCoverage %.1f%%  (%d of %d topics, alignment %d)\n",
		r.Summary.CoveragePercent, r.Summary.TopicsCovered, r.Summary.TotalTopics, r.Summary.AlignmentScore)
	if len(r.Gaps) > 0 {
		fmt.Printf("\nGaps (%d):\n", len(r.Gaps))
		for _, g := range r.Gaps {
			fmt.Printf("  [%-6s] %s\n           %s\n", g.Severity, g.Topic, g.Recommendation)
		}
	}
	if len(r.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for i, rec := range r.Recommendations {
			fmt.Printf("  %d. %s\n", i+1, rec)
		}
	}
	if len(r.Strengths) > 0 {
		fmt.Println("\nStrengths:")
		for _, s := range r.Strengths {
			fmt.Printf("  - %s\n", s)
		}
	}
}

func sessionArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", usageError(fs.Name() + ": exactly one SESSION_ID is required")
	}
	return fs.Arg(0), nil
}

func parseFormats(list string) ([]domain.ExportFormat, error) {
	var formats []domain.ExportFormat
	for _, raw := range strings.Split(list, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f, ok := domain.ParseExportFormat(raw)
		if !ok {
			return nil, usageError(fmt.Sprintf("unknown export format %q", raw))
		}
		formats = append(formats, f)
	}
	return formats, nil
}
