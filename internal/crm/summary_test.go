package crm

import (
	"testing"
	"time"

	"crm-copilot/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestContactSummaryFullRecord(t *testing.T) {
	last := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	contact := models.Contact{
		Name:            "Ada Lovelace",
		Email:           "ada@analytical.example",
		Company:         &models.Company{Name: "Analytical Engines"},
		Notes:           "Prefers email",
		LastInteraction: &last,
		Tags:            []models.Tag{{Name: "vip"}, {Name: "engineering"}},
	}

	got := ContactSummary(contact)
	assert.Contains(t, got, "Ada Lovelace can be reached at ada@analytical.example")
	assert.Contains(t, got, "employed at Analytical Engines")
	assert.Contains(t, got, "Mar 14, 2025")
	assert.Contains(t, got, "Notes: Prefers email")
	assert.Contains(t, got, "Tags associated: vip, engineering")
}

func TestContactSummaryPlaceholders(t *testing.T) {
	contact := models.Contact{
		Name:  "Blank Contact",
		Email: "blank@example.com",
	}

	got := ContactSummary(contact)
	assert.Contains(t, got, "an unknown company")
	assert.Contains(t, got, "an unknown date")
	assert.Contains(t, got, "Notes: No notes available")
	assert.Contains(t, got, "Tags associated: No tags")
}

func TestActivitySummary(t *testing.T) {
	ts := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	activity := models.Activity{
		Action:     models.ActionContactCreated,
		EntityType: "contact",
		EntityName: "Ada Lovelace",
		Timestamp:  ts,
	}

	got := ActivitySummary(activity)
	assert.Equal(t, `Performed "contact_created" on contact "Ada Lovelace" at Jun 1, 2025 3:30 PM.`, got)
}

func TestActivitySummaryNoEntityName(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	activity := models.Activity{
		Action:     models.ActionUserLogin,
		EntityType: "user",
		Timestamp:  ts,
	}

	got := ActivitySummary(activity)
	assert.Equal(t, `Performed "user_login" on user at Jun 1, 2025 9:05 AM.`, got)
}
