package api

import (
	"net/http"

	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/validator"
)

type proposalInput struct {
	ID       string `json:"id"`
	StartsOn string `json:"starts_on"`
	EndsOn   string `json:"ends_on"`
}

type participantInput struct {
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceDocname string `json:"reference_docname"`
	Email            string `json:"email"`
	ParticipantName  string `json:"participant_name"`
	Required         bool   `json:"required"`
}

type repeatInput struct {
	RepeatThisEvent bool   `json:"repeat_this_event"`
	RepeatOn        string `json:"repeat_on"`
	RepeatTill      string `json:"repeat_till"`
	Monday          bool   `json:"monday"`
	Tuesday         bool   `json:"tuesday"`
	Wednesday       bool   `json:"wednesday"`
	Thursday        bool   `json:"thursday"`
	Friday          bool   `json:"friday"`
	Saturday        bool   `json:"saturday"`
	Sunday          bool   `json:"sunday"`
}

func (in repeatInput) toModel() model.Repeat {
	return model.Repeat{
		RepeatThisEvent: in.RepeatThisEvent,
		RepeatOn:        in.RepeatOn,
		RepeatTill:      in.RepeatTill,
		Monday:          in.Monday,
		Tuesday:         in.Tuesday,
		Wednesday:       in.Wednesday,
		Thursday:        in.Thursday,
		Friday:          in.Friday,
		Saturday:        in.Saturday,
		Sunday:          in.Sunday,
	}
}

func toProposals(in []proposalInput) []*model.SlotProposal {
	res := make([]*model.SlotProposal, 0, len(in))
	for _, p := range in {
		res = append(res, &model.SlotProposal{
			ID:       p.ID,
			StartsOn: p.StartsOn,
			EndsOn:   p.EndsOn,
		})
	}
	return res
}

func toParticipants(in []participantInput) []*model.EventParticipant {
	res := make([]*model.EventParticipant, 0, len(in))
	for _, p := range in {
		res = append(res, &model.EventParticipant{
			ReferenceDoctype: p.ReferenceDoctype,
			ReferenceDocname: p.ReferenceDocname,
			Email:            p.Email,
			ParticipantName:  p.ParticipantName,
			Required:         p.Required,
		})
	}
	return res
}

func (a *Api) createSlotHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Subject          string             `json:"subject"`
		Description      string             `json:"description"`
		Color            string             `json:"color"`
		Organiser        string             `json:"organiser"`
		OrganiserName    string             `json:"organiser_name"`
		OutlookCalendar  string             `json:"outlook_calendar"`
		AddOnlineMeeting bool               `json:"add_online_meeting"`
		EventLocation    string             `json:"event_location"`
		EmailTemplate    string             `json:"email_template"`
		Repeat           repeatInput        `json:"repeat"`
		Proposals        []proposalInput    `json:"proposals"`
		Participants     []participantInput `json:"participants"`
		Users            []struct {
			User     string `json:"user"`
			Email    string `json:"email"`
			FullName string `json:"full_name"`
		} `json:"users"`
	}

	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Subject != "", "subject", "must be provided")
	v.Check(len(input.Proposals) > 0, "proposals", "must contain at least one time range")
	if input.Repeat.RepeatThisEvent {
		v.Check(validator.In(input.Repeat.RepeatOn,
			model.RepeatOnDaily, model.RepeatOnWeekly, model.RepeatOnMonthly, model.RepeatOnYearly),
			"repeat_on", "must be one of Daily, Weekly, Monthly, Yearly")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	slot := &model.EventSlot{
		Subject:          input.Subject,
		Description:      input.Description,
		Color:            input.Color,
		Repeat:           input.Repeat.toModel(),
		Organiser:        input.Organiser,
		OrganiserName:    input.OrganiserName,
		OutlookCalendar:  input.OutlookCalendar,
		AddOnlineMeeting: input.AddOnlineMeeting,
		EventLocation:    input.EventLocation,
		EmailTemplate:    input.EmailTemplate,
		Proposals:        toProposals(input.Proposals),
		Participants:     toParticipants(input.Participants),
	}
	for _, u := range input.Users {
		slot.Users = append(slot.Users, &model.SlotUser{
			User:     u.User,
			Email:    u.Email,
			FullName: u.FullName,
		})
	}

	id, err := a.lifecycle.CreateSlot(r.Context(), slot)
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	res := map[string]interface{}{
		"id":    id,
		"route": slot.Route,
	}
	if err := a.writeJSON(w, http.StatusCreated, res, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) confirmSlotHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Proposal string `json:"proposal"`
		Online   bool   `json:"online"`
	}

	if err := a.readJSON(w, r, &input); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Proposal != "", "proposal", "must be provided")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, missing, err := a.lifecycle.ConfirmSlot(r.Context(), input.Proposal, input.Online)
	if err != nil {
		a.serviceErrorResponse(w, r, err)
		return
	}

	res := map[string]interface{}{
		"event":                      toEventResponse(event),
		"missing_email_participants": toMissingResponse(missing),
	}
	if err := a.writeJSON(w, http.StatusOK, res, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
