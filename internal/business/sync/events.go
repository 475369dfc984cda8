package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/onecal/outlook-sync-backend/internal/redis"
)

// SyncEvents pulls remote events for every linked account and reconciles
// them into local records. A failing account is logged and skipped so the
// rest of the sweep still completes; all writes land in one tail commit.
func (s *Service) SyncEvents(ctx context.Context) error {
	accounts, err := s.users.GetUsers(ctx, s.db)
	if err != nil {
		return fmt.Errorf("list linked accounts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	total := len(accounts)
	for i, account := range accounts {
		if err := s.syncAccountEvents(ctx, tx, account); err != nil {
			s.logger.Errorw("skipping account", "user", account.ID, "err", err)
		}

		s.publisher.PublishProgress(ctx, s.cfg.EventsChannel, redis.Progress{
			Progress: i + 1,
			Total:    total,
			Title:    "Syncing Outlook events",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *Service) syncAccountEvents(ctx context.Context, tx database.Tx, account *model.MicrosoftUser) error {
	remote, err := s.gateway.ListEvents(ctx, account.ID, graph.ListEventsOptions{})
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for _, rev := range remote {
		fields, err := translate.FromOutlook(rev)
		if err != nil {
			s.logger.Errorw("skipping event", "user", account.ID, "event", rev.ID, "err", err)
			continue
		}
		fields.Organiser = account.ID

		existing, err := s.events.GetEventByOutlookID(ctx, tx, rev.ID)
		if err != nil && !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("get event by remote id: %w", err)
		}

		if _, err := s.reconciler.Reconcile(ctx, tx, existing, fields, false); err != nil {
			return fmt.Errorf("reconcile event %s: %w", rev.ID, err)
		}
	}

	return nil
}
