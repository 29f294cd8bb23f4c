package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"gapcheck/internal/domain"
	"gapcheck/internal/port"
)

// maxListedGaps limits how many gaps are spelled out in the e-mail body.
const maxListedGaps = 5

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed ReportNotifier.
func NewSESSender(ctx context.Context, region, fromAddress, fromName string) (port.ReportNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendReportSummary(ctx context.Context, toEmail, sessionID string, report *domain.AnalysisReport) error {
	subject := fmt.Sprintf("Curriculum gap analysis %s: %.1f%% coverage", sessionID, report.Summary.CoveragePercent)
	htmlBody := buildSummaryHTML(sessionID, report)
	textBody := buildSummaryText(sessionID, report)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildSummaryText(sessionID string, report *domain.AnalysisReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis %s is complete.\n\n", sessionID)
	fmt.Fprintf(&b, "Coverage: %.1f%%\nTopics covered: %d of %d\nGaps: %d\nAlignment score: %d\n",
		report.Summary.CoveragePercent, report.Summary.TopicsCovered, report.Summary.TotalTopics,
		report.Summary.GapCount, report.Summary.AlignmentScore)
	if len(report.Gaps) > 0 {
		b.WriteString("\nTop gaps:\n")
		for i, g := range report.Gaps {
			if i == maxListedGaps {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s: %s\n", g.Severity, g.Topic, g.Recommendation)
		}
	}
	return b.String()
}

func buildSummaryHTML(sessionID string, report *domain.AnalysisReport) string {
	var rows strings.Builder
	for i, g := range report.Gaps {
		if i == maxListedGaps {
			break
		}
		fmt.Fprintf(&rows, `<tr><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px;">%s</td></tr>`,
			html.EscapeString(string(g.Severity)), html.EscapeString(g.Topic), html.EscapeString(g.Recommendation))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Curriculum gap analysis complete</h2>
  <p>Session <strong>%s</strong> finished with <strong>%.1f%%</strong> coverage.</p>
  <ul>
    <li>Topics covered: %d of %d</li>
    <li>Gaps: %d</li>
    <li>Alignment score: %d</li>
  </ul>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><th align="left">Severity</th><th align="left">Topic</th><th align="left">Recommendation</th></tr>
    %s
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Curriculum Gap Check</p>
</body>
</html>`, html.EscapeString(sessionID), report.Summary.CoveragePercent,
		report.Summary.TopicsCovered, report.Summary.TotalTopics,
		report.Summary.GapCount, report.Summary.AlignmentScore, rows.String())
}
