package sync

import (
	"context"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/onecal/outlook-sync-backend/internal/pkg/jobs"
	"github.com/onecal/outlook-sync-backend/internal/redis"
	"go.uber.org/zap"
)

// Config carries the sweep job names and progress channel ids so callers
// construct them in one place instead of scattering constants.
type Config struct {
	EventsJobName    string
	CalendarsJobName string
	UsersJobName     string
	GroupsJobName    string

	EventsChannel    string
	CalendarsChannel string
	UsersChannel     string
	GroupsChannel    string
}

func DefaultConfig() Config {
	return Config{
		EventsJobName:    "sync_outlook_events",
		CalendarsJobName: "sync_outlook_calendars",
		UsersJobName:     "sync_microsoft_users",
		GroupsJobName:    "sync_microsoft_groups",
		EventsChannel:    "outlook_sync_events_progress",
		CalendarsChannel: "outlook_sync_calendars_progress",
		UsersChannel:     "outlook_sync_users_progress",
		GroupsChannel:    "outlook_sync_groups_progress",
	}
}

// Service runs the pull sweeps: one pass over all linked accounts per
// invocation, sequential, dispatched as a background job.
type Service struct {
	cfg        Config
	db         database.PGX
	logger     *zap.SugaredLogger
	gateway    gateway
	reconciler reconciler
	events     eventRepository
	users      userRepository
	calendars  calendarRepository
	groups     groupRepository
	publisher  progressPublisher
	runner     *jobs.Runner
}

type gateway interface {
	ListEvents(ctx context.Context, userID string, opts graph.ListEventsOptions) ([]*graph.Event, error)
	ListCalendars(ctx context.Context, userID string) ([]*graph.Calendar, error)
	ListCalendarGroups(ctx context.Context, userID string) ([]*graph.CalendarGroup, error)
	ListUsers(ctx context.Context) ([]*graph.User, error)
	ListGroups(ctx context.Context) ([]*graph.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, q database.Queryable, existing *model.Event, in translate.EventFields, refreshModified bool) (map[string]interface{}, error)
}

type eventRepository interface {
	GetEventByOutlookID(ctx context.Context, q database.Queryable, outlookID string) (*model.Event, error)
}

type userRepository interface {
	GetUsers(ctx context.Context, q database.Queryable) ([]*model.MicrosoftUser, error)
	GetUserByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.MicrosoftUser, error)
	CreateUser(ctx context.Context, q database.Queryable, u *model.MicrosoftUser) error
	SetUserFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error
}

type calendarRepository interface {
	GetCalendarByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.Calendar, error)
	CreateCalendar(ctx context.Context, q database.Queryable, c *model.Calendar) error
	SetCalendarFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error
	GetCalendarGroupByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.CalendarGroup, error)
	CreateCalendarGroup(ctx context.Context, q database.Queryable, g *model.CalendarGroup) error
	SetCalendarGroupFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error
}

type groupRepository interface {
	GetGroupByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.DirectoryGroup, error)
	CreateGroup(ctx context.Context, q database.Queryable, g *model.DirectoryGroup) error
	SetGroupFields(ctx context.Context, q database.Queryable, id string, fields map[string]interface{}) error
	ReplaceMembers(ctx context.Context, q database.Queryable, groupID string, members []string) error
}

type progressPublisher interface {
	PublishProgress(ctx context.Context, channel string, progress redis.Progress)
}

func NewService(
	cfg Config,
	db database.PGX,
	logger *zap.SugaredLogger,
	gw gateway,
	rec reconciler,
	events eventRepository,
	users userRepository,
	calendars calendarRepository,
	groups groupRepository,
	publisher progressPublisher,
	runner *jobs.Runner,
) *Service {
	return &Service{
		cfg:        cfg,
		db:         db,
		logger:     logger,
		gateway:    gw,
		reconciler: rec,
		events:     events,
		users:      users,
		calendars:  calendars,
		groups:     groups,
		publisher:  publisher,
		runner:     runner,
	}
}

// Enqueue dispatchers: the caller gets an immediate ticket naming the
// channel to watch for progress.

func (s *Service) EnqueueSyncEvents() (*jobs.Ticket, error) {
	return s.runner.Enqueue(s.cfg.EventsJobName, s.cfg.EventsChannel, s.SyncEvents)
}

func (s *Service) EnqueueSyncCalendars() (*jobs.Ticket, error) {
	return s.runner.Enqueue(s.cfg.CalendarsJobName, s.cfg.CalendarsChannel, s.SyncCalendars)
}

func (s *Service) EnqueueSyncUsers() (*jobs.Ticket, error) {
	return s.runner.Enqueue(s.cfg.UsersJobName, s.cfg.UsersChannel, s.SyncUsers)
}

func (s *Service) EnqueueSyncGroups() (*jobs.Ticket, error) {
	return s.runner.Enqueue(s.cfg.GroupsJobName, s.cfg.GroupsChannel, s.SyncGroups)
}
