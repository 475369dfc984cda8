package api

import (
	"net/http"

	"github.com/onecal/outlook-sync-backend/internal/pkg/jobs"
)

func (a *Api) writeTicket(w http.ResponseWriter, r *http.Request, ticket *jobs.Ticket, err error) {
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusAccepted, ticket, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) syncEventsHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := a.syncs.EnqueueSyncEvents()
	a.writeTicket(w, r, ticket, err)
}

func (a *Api) syncCalendarsHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := a.syncs.EnqueueSyncCalendars()
	a.writeTicket(w, r, ticket, err)
}

func (a *Api) syncUsersHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := a.syncs.EnqueueSyncUsers()
	a.writeTicket(w, r, ticket, err)
}

func (a *Api) syncGroupsHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := a.syncs.EnqueueSyncGroups()
	a.writeTicket(w, r, ticket, err)
}
