package validator

import (
	"fmt"
	"strings"
)

// NoIssuesReport is the report text when no path has an issue.
const NoIssuesReport = "No Windows filename compatibility issues found.\n"

var remediationHints = []string{
	`Remove or replace invalid characters: < > : " | ? * \ /`,
	"Rename files that use reserved Windows names (CON, PRN, AUX, etc.)",
	"Remove trailing periods and spaces from filenames",
	"Shorten very long filenames or paths",
	"Remove leading/trailing spaces from directory names",
}

// GenerateReport renders results as human-readable text. Paths are sorted,
// so equal results always render identically.
func GenerateReport(results Results) string {
	if len(results) == 0 {
		return NoIssuesReport
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d files with Windows naming issues:\n\n", len(results))

	for _, path := range results.Paths() {
		b.WriteString(path)
		b.WriteByte('\n')
		for _, issue := range results[path] {
			fmt.Fprintf(&b, "   - %s\n", issue)
		}
		if suggested, ok := Suggest(path); ok {
			fmt.Fprintf(&b, "   suggested name: %s\n", suggested)
		}
		b.WriteByte('\n')
	}

	b.WriteString("Common fixes:\n")
	for _, hint := range remediationHints {
		fmt.Fprintf(&b, "- %s\n", hint)
	}

	return b.String()
}
