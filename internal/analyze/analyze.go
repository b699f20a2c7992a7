// Package analyze is a read-only reporting pass over the merged stream.
// It tallies node-type usage, buckets types into service categories by
// keyword matching, and renders the top types per category. It persists
// nothing.
package analyze

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/flowatlas/atlasctl/internal/consolidate"
	"github.com/flowatlas/atlasctl/internal/workflow"
)

// TypeUsage tracks one raw node-type string across the whole stream.
// Sample parameters and credentials are first-seen, kept so a reader can
// inspect a representative configuration of each type.
type TypeUsage struct {
	Type              string         `json:"type"`
	Count             int            `json:"count"`
	SampleParameters  map[string]any `json:"sample_parameters,omitempty"`
	SampleCredentials map[string]any `json:"sample_credentials,omitempty"`
}

// CategoryRule pairs a category name with the keywords that claim a node
// type for it.
type CategoryRule struct {
	Name     string
	Keywords []string
}

// Categories is the ordered classification table. Matching is
// case-insensitive substring, first rule wins, so the declaration order
// here is load-bearing: "mail" must claim gmail before the "ai" rule can
// see it.
var Categories = []CategoryRule{
	{"database", []string{"postgres", "mysql", "mongo", "redis", "mariadb", "mssql", "supabase", "sqlite"}},
	{"spreadsheet", []string{"sheet", "airtable", "excel", "baserow", "nocodb"}},
	{"messaging", []string{"slack", "discord", "telegram", "teams", "mattermost", "whatsapp", "twilio", "sms"}},
	{"mail", []string{"mail", "smtp", "imap", "sendgrid", "mailchimp", "mandrill"}},
	{"crm", []string{"hubspot", "salesforce", "pipedrive", "zoho", "crm"}},
	{"devops", []string{"github", "gitlab", "jenkins", "docker", "kubernetes", "aws", "ssh", "jira"}},
	{"ai", []string{"openai", "anthropic", "langchain", "gemini", "ollama", "ai"}},
	{"trigger", []string{"trigger", "webhook", "cron", "schedule"}},
}

// CategoryOther collects everything no rule claims; it is tallied but
// never reported.
const CategoryOther = "other"

// Classify returns the first category whose keyword list matches the
// node type, or CategoryOther.
func Classify(nodeType string) string {
	lower := strings.ToLower(nodeType)
	for _, rule := range Categories {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return CategoryOther
}

// Report is the outcome of one analysis pass.
type Report struct {
	Records    int                     `json:"records"`
	Errors     int                     `json:"errors"`
	Types      int                     `json:"distinct_types"`
	ByCategory map[string][]*TypeUsage `json:"by_category"`
}

// TopPerCategory bounds how many types each category section reports.
const TopPerCategory = 5

// Run loads the merged stream fully into memory and builds the coverage
// report. Unparseable lines are counted and skipped.
func Run(streamPath string) (*Report, error) {
	f, err := os.Open(streamPath)
	if err != nil {
		return nil, fmt.Errorf("open merged stream: %w", err)
	}
	defer f.Close()

	registry := make(map[string]*TypeUsage)
	report := &Report{ByCategory: make(map[string][]*TypeUsage)}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), consolidate.MaxLineBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec workflow.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			report.Errors++
			continue
		}
		if len(rec.Content) == 0 {
			report.Errors++
			continue
		}
		def, err := workflow.ParseDefinition(rec.Content)
		if err != nil {
			report.Errors++
			continue
		}
		report.Records++
		for _, n := range def.Nodes {
			if n.Type == "" {
				continue
			}
			usage, ok := registry[n.Type]
			if !ok {
				usage = &TypeUsage{
					Type:              n.Type,
					SampleParameters:  n.Parameters,
					SampleCredentials: n.Credentials,
				}
				registry[n.Type] = usage
			}
			usage.Count++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read merged stream: %w", err)
	}

	report.Types = len(registry)
	for _, usage := range registry {
		cat := Classify(usage.Type)
		report.ByCategory[cat] = append(report.ByCategory[cat], usage)
	}
	for _, usages := range report.ByCategory {
		// Count descending, then type ascending so the report is stable.
		sort.Slice(usages, func(i, j int) bool {
			if usages[i].Count != usages[j].Count {
				return usages[i].Count > usages[j].Count
			}
			return usages[i].Type < usages[j].Type
		})
	}
	return report, nil
}

// Render prints the per-category top lists in table declaration order,
// excluding "other".
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "node coverage: %d records, %d distinct types, %d errors\n", r.Records, r.Types, r.Errors)
	for _, rule := range Categories {
		usages := r.ByCategory[rule.Name]
		if len(usages) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s:\n", rule.Name)
		for i, u := range usages {
			if i >= TopPerCategory {
				break
			}
			fmt.Fprintf(&b, "  %-50s %d\n", u.Type, u.Count)
		}
	}
	return b.String()
}
