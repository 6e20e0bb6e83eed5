package engine

import "github.com/okan/urcp/internal/app/models"

// NotificationIntent describes a notification the caller should enqueue after
// the aggregate mutation has been persisted. Engine functions only return
// intents; they never deliver anything themselves, so business-rule tests can
// assert on the intent list without a database or a sink.
type NotificationIntent struct {
	RecipientID int64
	Type        models.NotificationType
	Message     string
	FromUserID  int64
}

// notifyProjectLeaders builds intents for the initiator and mentor,
// deduplicated and excluding the acting user. Used by the request and
// top-level comment fan-outs.
func notifyProjectLeaders(p *models.Project, actor models.Actor, typ models.NotificationType, message string) []NotificationIntent {
	recipients := []int64{p.InitiatorID}
	if p.MentorID != nil {
		recipients = append(recipients, *p.MentorID)
	}

	seen := make(map[int64]bool, len(recipients))
	var intents []NotificationIntent
	for _, id := range recipients {
		if id == actor.ID || seen[id] {
			continue
		}
		seen[id] = true
		intents = append(intents, NotificationIntent{
			RecipientID: id,
			Type:        typ,
			Message:     message,
			FromUserID:  actor.ID,
		})
	}
	return intents
}
