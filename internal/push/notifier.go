package push

import (
	"context"
	"fmt"
	"log"

	"github.com/jthomisee/changing-500/internal/store"
)

// Notifier composes the league's notifications on top of the push service.
type Notifier struct {
	service *Service
	store   store.Store
}

func NewNotifier(service *Service, st store.Store) *Notifier {
	return &Notifier{service: service, store: st}
}

// GameReminder notifies group members about an upcoming scheduled game.
// Members who already RSVP'd "out" are skipped.
func (n *Notifier) GameReminder(ctx context.Context, game *store.Game) error {
	members, err := n.store.ListMembers(ctx, game.GroupID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	declined := make(map[string]bool)
	for _, r := range game.Results {
		if r.RSVPStatus == "out" {
			declined[r.UserID] = true
		}
	}

	var recipients []string
	for _, m := range members {
		if !declined[m.UserID] {
			recipients = append(recipients, m.UserID)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	log.Printf("Sending game reminder for %s to %d members", game.ID, len(recipients))

	payload := NotificationPayload{
		Title: "Game Night Tomorrow ♠️",
		Body:  fmt.Sprintf("A game is scheduled for %s. RSVP now!", game.Date.Format("Mon Jan 2 15:04")),
		Tag:   "game-reminder",
		Data: map[string]interface{}{
			"gameId": game.ID,
			"url":    "/",
		},
	}

	n.service.SendToMultipleUsers(ctx, recipients, payload)
	return nil
}

// ResultsPosted notifies a game's participants that results are in.
func (n *Notifier) ResultsPosted(ctx context.Context, game *store.Game) {
	recipients := make([]string, 0, len(game.Results))
	for _, r := range game.Results {
		recipients = append(recipients, r.UserID)
	}
	if len(recipients) == 0 {
		return
	}

	payload := NotificationPayload{
		Title: "Results Are In 🏆",
		Body:  "Standings have been updated. See where you landed.",
		Tag:   "results-posted",
		Data: map[string]interface{}{
			"gameId": game.ID,
			"url":    "/",
		},
	}

	n.service.SendToMultipleUsers(ctx, recipients, payload)
}
