package mail

import (
	"bytes"
	_ "embed"
	"html/template"
)

type ReportMailParams struct {
	OrgID       string
	RunID       string
	Scope       string
	Finished    string
	Duration    string
	QueueCount  int
	GrantCount  int
	IssueCount  int
	Interrupted bool
}

var (
	reportTemplate = template.New("report")

	//go:embed templates/report.html
	reportTemplateRaw string
)

func init() {
	if _, err := reportTemplate.Parse(reportTemplateRaw); err != nil {
		panic(err)
	}
}

func RenderReport(p ReportMailParams) (string, error) {
	b := bytes.Buffer{}
	err := reportTemplate.Execute(&b, p)
	return b.String(), err
}
