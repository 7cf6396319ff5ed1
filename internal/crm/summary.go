package crm

import (
	"fmt"
	"strings"

	"crm-copilot/backend/internal/models"
)

// ContactSummary renders a contact as a one-line natural-language summary
// for AI grounding. Missing fields get explicit placeholders so the
// briefing never silently drops information.
func ContactSummary(c models.Contact) string {
	company := "an unknown company"
	if c.Company != nil && c.Company.Name != "" {
		company = c.Company.Name
	}

	lastInteraction := "an unknown date"
	if c.LastInteraction != nil {
		lastInteraction = c.LastInteraction.Format("Jan 2, 2006")
	}

	notes := c.Notes
	if notes == "" {
		notes = "No notes available"
	}

	tags := "No tags"
	if len(c.Tags) > 0 {
		names := make([]string, 0, len(c.Tags))
		for _, t := range c.Tags {
			names = append(names, t.Name)
		}
		tags = strings.Join(names, ", ")
	}

	return fmt.Sprintf(
		"%s can be reached at %s. They are currently employed at %s. The last recorded interaction was on %s. Notes: %s. Tags associated: %s.",
		c.Name, c.Email, company, lastInteraction, notes, tags,
	)
}

// ActivitySummary renders an activity record as a one-line summary for
// AI grounding.
func ActivitySummary(a models.Activity) string {
	name := ""
	if a.EntityName != "" {
		name = fmt.Sprintf(" %q", a.EntityName)
	}
	return fmt.Sprintf("Performed %q on %s%s at %s.",
		a.Action, a.EntityType, name, a.Timestamp.Format("Jan 2, 2006 3:04 PM"))
}
