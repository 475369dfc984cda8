package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/onecal/outlook-sync-backend/internal/business/lifecycle"
	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/jobs"
	"go.uber.org/zap"
)

type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	jwts      jwtManager
	lifecycle lifecycleService
	syncs     syncService
}

type jwtManager interface {
	GetIdFromToken(token string) (int64, error)
}

type lifecycleService interface {
	CreateSlot(ctx context.Context, slot *model.EventSlot) (int64, error)
	ConfirmSlot(ctx context.Context, proposalID string, online bool) (*model.Event, []translate.MissingEmailParticipant, error)
	CancelSlot(ctx context.Context, id int64, actor, reason string) error
	RescheduleSlot(ctx context.Context, id int64, proposals []*model.SlotProposal, actor, reason string) error
	CancelEvent(ctx context.Context, id int64, actor, reason string) error
	RescheduleEvent(ctx context.Context, id int64, proposals []*model.SlotProposal, actor, reason string) (*model.EventSlot, error)
	EditEvent(ctx context.Context, id int64, update *lifecycle.EventUpdate) ([]translate.MissingEmailParticipant, error)
	GetReferenceEvents(ctx context.Context, refDoctype, refDocname string) ([]*lifecycle.TimelineItem, error)
}

type syncService interface {
	EnqueueSyncEvents() (*jobs.Ticket, error)
	EnqueueSyncCalendars() (*jobs.Ticket, error)
	EnqueueSyncUsers() (*jobs.Ticket, error)
	EnqueueSyncGroups() (*jobs.Ticket, error)
}

func NewApi(
	logger *zap.SugaredLogger,
	jwts jwtManager,
	lifecycleService lifecycleService,
	syncService syncService,
) (*Api, error) {
	a := &Api{
		logger:    logger,
		jwts:      jwts,
		lifecycle: lifecycleService,
		syncs:     syncService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Guest endpoints: the booking page confirms slots and reads the
	// reference timeline without a session.
	r.Post("/slots/confirm", a.confirmSlotHandler)
	r.Get("/reference-events", a.referenceEventsHandler)

	r.With(a.auth).Route("/", func(r chi.Router) {
		r.Post("/slots", a.createSlotHandler)

		r.Route("/events/{type}/{name}", func(r chi.Router) {
			r.Post("/cancel", a.cancelHandler)
			r.Post("/reschedule", a.rescheduleHandler)
		})
		r.Patch("/events/{name}", a.editEventHandler)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/events", a.syncEventsHandler)
			r.Post("/calendars", a.syncCalendarsHandler)
			r.Post("/users", a.syncUsersHandler)
			r.Post("/groups", a.syncGroupsHandler)
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
