package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/onecal/outlook-sync-backend/internal/redis"
	"golang.org/x/sync/errgroup"
)

// SyncCalendars refreshes the calendar and calendar-group mirror for every
// linked account. Existence is always tested by the remote id.
func (s *Service) SyncCalendars(ctx context.Context) error {
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
		if err := s.syncAccountCalendars(ctx, tx, account); err != nil {
			s.logger.Errorw("skipping account", "user", account.ID, "err", err)
		}

		s.publisher.PublishProgress(ctx, s.cfg.CalendarsChannel, redis.Progress{
			Progress: i + 1,
			Total:    total,
			Title:    "Syncing Outlook calendars",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *Service) syncAccountCalendars(ctx context.Context, tx database.Tx, account *model.MicrosoftUser) error {
	groups, err := s.gateway.ListCalendarGroups(ctx, account.ID)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("list calendar groups: %w", err)
	}

	for _, g := range groups {
		if err := s.upsertCalendarGroup(ctx, tx, account.ID, g); err != nil {
			return err
		}
	}

	calendars, err := s.gateway.ListCalendars(ctx, account.ID)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("list calendars: %w", err)
	}

	for _, c := range calendars {
		if err := s.upsertCalendar(ctx, tx, account.ID, c); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) upsertCalendarGroup(ctx context.Context, q database.Queryable, userID string, g *graph.CalendarGroup) error {
	existing, err := s.calendars.GetCalendarGroupByRemoteID(ctx, q, g.ID)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("get calendar group: %w", err)
		}
		if err := s.calendars.CreateCalendarGroup(ctx, q, &model.CalendarGroup{
			ID:            g.ID,
			Name:          g.Name,
			ChangeKey:     g.ChangeKey,
			ClassID:       g.ClassID,
			MicrosoftUser: userID,
		}); err != nil {
			return fmt.Errorf("create calendar group: %w", err)
		}
		return nil
	}

	fields := map[string]interface{}{}
	if existing.Name != g.Name {
		fields["name"] = g.Name
	}
	if existing.ChangeKey != g.ChangeKey {
		fields["change_key"] = g.ChangeKey
	}
	if existing.ClassID != g.ClassID {
		fields["class_id"] = g.ClassID
	}

	if err := s.calendars.SetCalendarGroupFields(ctx, q, g.ID, fields); err != nil {
		return fmt.Errorf("set calendar group fields: %w", err)
	}

	return nil
}

func (s *Service) upsertCalendar(ctx context.Context, q database.Queryable, userID string, c *graph.Calendar) error {
	existing, err := s.calendars.GetCalendarByRemoteID(ctx, q, c.ID)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("get calendar: %w", err)
		}

		calendar := &model.Calendar{
			ID:                c.ID,
			CalendarName:      c.Name,
			ChangeKey:         c.ChangeKey,
			Color:             c.HexColor,
			IsDefaultCalendar: c.IsDefaultCalendar,
			MicrosoftUser:     userID,
		}
		if c.Owner != nil {
			calendar.OwnerEmail = c.Owner.Address
			calendar.OwnerName = c.Owner.Name
		}
		if err := s.calendars.CreateCalendar(ctx, q, calendar); err != nil {
			return fmt.Errorf("create calendar: %w", err)
		}
		return nil
	}

	fields := map[string]interface{}{}
	if existing.CalendarName != c.Name {
		fields["calendar_name"] = c.Name
	}
	if existing.ChangeKey != c.ChangeKey {
		fields["change_key"] = c.ChangeKey
	}
	if c.HexColor != "" && existing.Color != c.HexColor {
		fields["color"] = c.HexColor
	}
	if existing.IsDefaultCalendar != c.IsDefaultCalendar {
		fields["is_default_calendar"] = c.IsDefaultCalendar
	}
	if c.Owner != nil && existing.OwnerEmail != c.Owner.Address {
		fields["owner_email"] = c.Owner.Address
		fields["owner_name"] = c.Owner.Name
	}

	if err := s.calendars.SetCalendarFields(ctx, q, c.ID, fields); err != nil {
		return fmt.Errorf("set calendar fields: %w", err)
	}

	return nil
}

// SyncUsers mirrors the remote user directory locally.
func (s *Service) SyncUsers(ctx context.Context) error {
	remote, err := s.gateway.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list remote users: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	total := len(remote)
	for i, u := range remote {
		if err := s.upsertUser(ctx, tx, u); err != nil {
			s.logger.Errorw("skipping user", "user", u.ID, "err", err)
		}

		s.publisher.PublishProgress(ctx, s.cfg.UsersChannel, redis.Progress{
			Progress: i + 1,
			Total:    total,
			Title:    "Syncing Microsoft users",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *Service) upsertUser(ctx context.Context, q database.Queryable, u *graph.User) error {
	existing, err := s.users.GetUserByRemoteID(ctx, q, u.ID)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("get user: %w", err)
		}
		if err := s.users.CreateUser(ctx, q, &model.MicrosoftUser{
			ID:            u.ID,
			DisplayName:   u.DisplayName,
			Mail:          u.Mail,
			PrincipalName: u.UserPrincipalName,
		}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	}

	fields := map[string]interface{}{}
	if existing.DisplayName != u.DisplayName {
		fields["display_name"] = u.DisplayName
	}
	if existing.Mail != u.Mail {
		fields["mail"] = u.Mail
	}
	if existing.PrincipalName != u.UserPrincipalName {
		fields["principal_name"] = u.UserPrincipalName
	}

	if err := s.users.SetUserFields(ctx, q, u.ID, fields); err != nil {
		return fmt.Errorf("set user fields: %w", err)
	}

	return nil
}

// SyncGroups mirrors directory groups and their user memberships. Member
// listings are fetched concurrently, one goroutine per group.
func (s *Service) SyncGroups(ctx context.Context) error {
	remote, err := s.gateway.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("list remote groups: %w", err)
	}

	members := make([][]string, len(remote))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range remote {
		i, g := i, g
		eg.Go(func() error {
			res, err := s.gateway.ListGroupMembers(egCtx, g.ID)
			if err != nil {
				return fmt.Errorf("list members of %s: %w", g.ID, err)
			}
			members[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	total := len(remote)
	for i, g := range remote {
		if err := s.upsertGroup(ctx, tx, g, members[i]); err != nil {
			s.logger.Errorw("skipping group", "group", g.ID, "err", err)
		}

		s.publisher.PublishProgress(ctx, s.cfg.GroupsChannel, redis.Progress{
			Progress: i + 1,
			Total:    total,
			Title:    "Syncing Microsoft groups",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func (s *Service) upsertGroup(ctx context.Context, q database.Queryable, g *graph.Group, members []string) error {
	existing, err := s.groups.GetGroupByRemoteID(ctx, q, g.ID)
	if err != nil {
		if !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("get group: %w", err)
		}
		if err := s.groups.CreateGroup(ctx, q, &model.DirectoryGroup{
			ID:          g.ID,
			DisplayName: g.DisplayName,
			Mail:        g.Mail,
			Members:     members,
		}); err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		return nil
	}

	fields := map[string]interface{}{}
	if existing.DisplayName != g.DisplayName {
		fields["display_name"] = g.DisplayName
	}
	if existing.Mail != g.Mail {
		fields["mail"] = g.Mail
	}

	if err := s.groups.SetGroupFields(ctx, q, g.ID, fields); err != nil {
		return fmt.Errorf("set group fields: %w", err)
	}

	if err := s.groups.ReplaceMembers(ctx, q, g.ID, members); err != nil {
		return fmt.Errorf("replace members: %w", err)
	}

	return nil
}
