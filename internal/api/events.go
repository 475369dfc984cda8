package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/onecal/outlook-sync-backend/internal/business/lifecycle"
	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/validator"
)

type eventResponse struct {
	ID             int64  `json:"id"`
	Subject        string `json:"subject"`
	StartsOn       string `json:"starts_on"`
	EndsOn         string `json:"ends_on"`
	Status         string `json:"status"`
	OutlookEventID string `json:"outlook_event_id,omitempty"`
	EventLink      string `json:"event_link,omitempty"`
	MeetingLink    string `json:"meeting_link,omitempty"`
}

func toEventResponse(event *model.Event) *eventResponse {
	return &eventResponse{
		ID:             event.ID,
		Subject:        event.Subject,
		StartsOn:       event.StartsOn,
		EndsOn:         event.EndsOn,
		Status:         string(event.Status),
		OutlookEventID: event.OutlookEventID,
		EventLink:      event.EventLink,
		MeetingLink:    event.MeetingLink,
	}
}

type missingResponse struct {
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceDocname string `json:"reference_docname"`
	ParticipantName  string `json:"participant_name"`
}

func toMissingResponse(missing []translate.MissingEmailParticipant) []missingResponse {
	res := make([]missingResponse, 0, len(missing))
	for _, m := range missing {
		res = append(res, missingResponse{
			ReferenceDoctype: m.ReferenceDoctype,
			ReferenceDocname: m.ReferenceDocname,
			ParticipantName:  m.ParticipantName,
		})
	}
	return res
}

func (a *Api) recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "name"), 10, 64)
	if err != nil {
		a.notFoundResponse(w, r)
		return 0, false
	}
	return id, true
}

func (a *Api) cancelHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.recordID(w, r)
	if !ok {
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Reason != "", "reason", "must be provided")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	var err error
	switch chi.URLParam(r, "type") {
	case "event":
		err = a.lifecycle.CancelEvent(r.Context(), id, a.actor(r), input.Reason)
	case "slot":
		err = a.lifecycle.CancelSlot(r.Context(), id, a.actor(r), input.Reason)
	default:
		a.notFoundResponse(w, r)
		return
	}
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) rescheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.recordID(w, r)
	if !ok {
		return
	}

	var input struct {
		Reason    string          `json:"reason"`
		Proposals []proposalInput `json:"proposals"`
	}
	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Reason != "", "reason", "must be provided")
	v.Check(len(input.Proposals) > 0, "proposals", "must contain at least one time range")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	proposals := toProposals(input.Proposals)

	switch chi.URLParam(r, "type") {
	case "event":
		slot, err := a.lifecycle.RescheduleEvent(r.Context(), id, proposals, a.actor(r), input.Reason)
		if err != nil {
			a.serviceErrorResponse(w, r, err)
			return
		}

		res := map[string]interface{}{
			"slot":  slot.ID,
			"route": slot.Route,
		}
		if err := a.writeJSON(w, http.StatusCreated, res, nil); err != nil {
			a.serverErrorResponse(w, r, err)
		}
	case "slot":
		if err := a.lifecycle.RescheduleSlot(r.Context(), id, proposals, a.actor(r), input.Reason); err != nil {
			a.serviceErrorResponse(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		a.notFoundResponse(w, r)
	}
}

func (a *Api) editEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.recordID(w, r)
	if !ok {
		return
	}

	var input struct {
		Subject          string             `json:"subject"`
		Description      string             `json:"description"`
		AddOnlineMeeting bool               `json:"add_online_meeting"`
		Location         string             `json:"location"`
		Participants     []participantInput `json:"participants"`
	}
	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Subject != "", "subject", "must be provided")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	update := &lifecycle.EventUpdate{
		Subject:          input.Subject,
		Description:      input.Description,
		AddOnlineMeeting: input.AddOnlineMeeting,
		Location:         input.Location,
		Participants:     toParticipants(input.Participants),
	}

	missing, err := a.lifecycle.EditEvent(r.Context(), id, update)
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	res := map[string]interface{}{
		"missing_email_participants": toMissingResponse(missing),
	}
	if err := a.writeJSON(w, http.StatusOK, res, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

type timelineItemResponse struct {
	Type          string `json:"type"`
	Name          int64  `json:"name"`
	Subject       string `json:"subject"`
	StartsOn      string `json:"starts_on"`
	EndsOn        string `json:"ends_on"`
	Status        string `json:"status"`
	MeetingLink   string `json:"meeting_link,omitempty"`
	Description   string `json:"description,omitempty"`
	CanReschedule bool   `json:"can_reschedule"`
	CanCancel     bool   `json:"can_cancel"`
	IsCancelled   bool   `json:"is_cancelled"`
}

func (a *Api) referenceEventsHandler(w http.ResponseWriter, r *http.Request) {
	refDoctype := r.URL.Query().Get("reference_doctype")
	refDocname := r.URL.Query().Get("reference_docname")

	v := validator.New()
	v.Check(refDoctype != "", "reference_doctype", "must be provided")
	v.Check(refDocname != "", "reference_docname", "must be provided")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	items, err := a.lifecycle.GetReferenceEvents(r.Context(), refDoctype, refDocname)
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	res := make([]timelineItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, timelineItemResponse{
			Type:          item.Type,
			Name:          item.Name,
			Subject:       item.Subject,
			StartsOn:      item.StartsOn,
			EndsOn:        item.EndsOn,
			Status:        item.Status,
			MeetingLink:   item.MeetingLink,
			Description:   item.Description,
			CanReschedule: item.CanReschedule,
			CanCancel:     item.CanCancel,
			IsCancelled:   item.IsCancelled,
		})
	}

	if err := a.writeJSON(w, http.StatusOK, map[string]interface{}{"items": res}, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
