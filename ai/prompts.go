package ai

import (
	"fmt"

	"fieldforce.com/fieldforce/fieldforce/core"
)

const adviceSystem = "You advise field force officers, drivers and their managers. Be brief and practical."

func summaryPrompt(rowsJSON, language string) string {
	return fmt.Sprintf(`Analyze this attendance data: %s
Write a one-sentence summary in %s of overall team punctuality and any concerns.
Rate punctuality from 0 (everyone absent or late) to 10 (everyone on time).`, rowsJSON, language)
}

func advicePrompt(req core.AdviceRequest, language string) string {
	location := req.Location
	if location == "" {
		location = "unknown"
	}
	return fmt.Sprintf(`User %s with role %s is asking for field management advice. Current location context: %s.
Provide 3 brief, actionable professional tips in %s to improve efficiency or safety today.`, req.Name, req.Role, location, language)
}
