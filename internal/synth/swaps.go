package synth

import "strings"

// SwapRule maps a node family to the services that can stand in for it
// without breaking the surrounding workflow shape.
type SwapRule struct {
	Key   string
	Swaps []string
}

// SwapTable lists compatible replacements per node family. Matching is
// bidirectional substring on the lowercased, prefix- and trigger-stripped
// type, and the first matching rule wins, so declaration order matters.
var SwapTable = []SwapRule{
	// Triggers
	{"webhook", []string{"httpRequest", "formTrigger", "manualTrigger"}},
	{"manualTrigger", []string{"scheduleTrigger", "cronTrigger", "webhook"}},
	{"scheduleTrigger", []string{"cronTrigger", "manualTrigger"}},
	{"emailTrigger", []string{"imapEmail", "gmailTrigger"}},
	{"gmailTrigger", []string{"emailTrigger", "microsoftOutlookTrigger"}},

	// Databases
	{"postgres", []string{"mysql", "mssql", "mariaDb", "mongoDb"}},
	{"mysql", []string{"postgres", "mssql", "mariaDb"}},
	{"mongoDb", []string{"postgres", "mysql", "redis"}},
	{"redis", []string{"mongoDb", "postgres"}},
	{"airtable", []string{"googleSheets", "notion", "baserow", "nocodb"}},
	{"googleSheets", []string{"airtable", "notion", "baserow"}},
	{"notion", []string{"airtable", "googleSheets", "clickup"}},

	// Communication
	{"slack", []string{"discord", "mattermost", "microsoftTeams", "telegram"}},
	{"discord", []string{"slack", "mattermost", "telegram"}},
	{"telegram", []string{"slack", "discord", "whatsapp"}},
	{"email", []string{"gmail", "microsoftOutlook", "sendgrid"}},
	{"gmail", []string{"email", "microsoftOutlook"}},

	// CRM
	{"hubspot", []string{"salesforce", "pipedrive", "zoho"}},
	{"salesforce", []string{"hubspot", "pipedrive"}},
	{"pipedrive", []string{"hubspot", "salesforce", "airtable"}},

	// Project management
	{"trello", []string{"asana", "clickup", "jira", "monday"}},
	{"asana", []string{"trello", "clickup", "jira"}},
	{"jira", []string{"asana", "trello", "linear", "github"}},
	{"clickup", []string{"asana", "trello", "notion"}},

	// Storage
	{"googleDrive", []string{"dropbox", "oneDrive", "box"}},
	{"dropbox", []string{"googleDrive", "oneDrive"}},
	{"s3", []string{"googleCloudStorage", "azureBlob"}},

	// AI
	{"openAi", []string{"anthropic", "googleAi", "ollama"}},
	{"anthropic", []string{"openAi", "googleAi"}},
}

// SwapCandidates returns the compatible replacements for a node type, or
// nil when no rule claims it.
func SwapCandidates(nodeType string) []string {
	base := strings.ToLower(strings.ReplaceAll(
		strings.TrimPrefix(nodeType, "n8n-nodes-base."), "Trigger", ""))
	if base == "" {
		return nil
	}
	for _, rule := range SwapTable {
		key := strings.ToLower(rule.Key)
		if strings.Contains(base, key) || strings.Contains(key, base) {
			return rule.Swaps
		}
	}
	return nil
}
