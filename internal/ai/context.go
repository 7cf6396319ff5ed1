package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-copilot/backend/internal/crm"
	"crm-copilot/backend/internal/models"
	apperrors "crm-copilot/backend/pkg/errors"

	"gorm.io/gorm"
)

// TranscriptProvider loads the full ordered transcript of a conversation
type TranscriptProvider interface {
	GetTranscript(ctx context.Context, userID, conversationID uint) ([]models.ChatMessage, error)
}

// Assembler builds the ephemeral context briefing that grounds the AI
// model in the user's CRM state. The briefing is regenerated on every
// call and never cached.
type Assembler struct {
	users         crm.UserStore
	contacts      crm.ContactStore
	activities    crm.ActivityStore
	transcripts   TranscriptProvider
	activityLimit int
}

// NewAssembler creates a context assembler. activityLimit bounds the
// recent-activity section; values <= 0 fall back to 5.
func NewAssembler(users crm.UserStore, contacts crm.ContactStore, activities crm.ActivityStore, transcripts TranscriptProvider, activityLimit int) *Assembler {
	if activityLimit <= 0 {
		activityLimit = 5
	}
	return &Assembler{
		users:         users,
		contacts:      contacts,
		activities:    activities,
		transcripts:   transcripts,
		activityLimit: activityLimit,
	}
}

// Build renders the briefing for one AI turn. An unknown user aborts the
// turn with a NOT_FOUND error; empty contact or activity sets render
// with explicit placeholders instead of being omitted.
func (a *Assembler) Build(ctx context.Context, userID, conversationID uint, userMessage string) (string, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NewNotFoundError("User not found")
		}
		return "", apperrors.NewPersistenceError("Failed to load user").WithCause(err)
	}

	contacts, err := a.contacts.ListByOwner(ctx, userID)
	if err != nil {
		return "", apperrors.NewPersistenceError("Failed to load contacts").WithCause(err)
	}

	activities, err := a.activities.ListRecent(ctx, userID, a.activityLimit)
	if err != nil {
		return "", apperrors.NewPersistenceError("Failed to load activities").WithCause(err)
	}

	transcript, err := a.transcripts.GetTranscript(ctx, userID, conversationID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a helpful AI assistant supporting a CRM user. Use the following context to understand their recent activity and provide relevant responses.\n\n")

	b.WriteString("User Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", valueOr(user.DisplayName, "unknown"))
	fmt.Fprintf(&b, "- Email: %s\n", valueOr(user.Email, "unknown"))
	fmt.Fprintf(&b, "- Preference: %s\n\n", valueOr(user.Preference, "N/A"))

	b.WriteString("Recent Contacts:\n")
	if len(contacts) == 0 {
		b.WriteString("No contacts on record.\n")
	} else {
		for _, c := range contacts {
			b.WriteString(crm.ContactSummary(c))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("Recent Activities:\n")
	if len(activities) == 0 {
		b.WriteString("No recent activities.\n")
	} else {
		for _, act := range activities {
			b.WriteString(crm.ActivitySummary(act))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString("Recent Chat History:\n")
	if len(transcript) == 0 {
		b.WriteString("No previous messages.\n")
	} else {
		for _, msg := range transcript {
			if msg.Sender == models.SenderAI {
				fmt.Fprintf(&b, "AI Response: %s\n", msg.Message)
			} else {
				fmt.Fprintf(&b, "User Message: %s\n", msg.Message)
			}
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Current User Message:\n%q\n\n", userMessage)
	b.WriteString("Respond helpfully using the above CRM context.")

	return b.String(), nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
