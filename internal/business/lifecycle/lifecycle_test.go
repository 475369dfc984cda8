package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The db fakes embed the interfaces so only the transaction bookkeeping
// needs real implementations; query methods are never reached because the
// repositories are faked too.

type fakeTx struct {
	database.Tx
	committed  *int
	rolledBack *int
}

func (f *fakeTx) Commit(context.Context) error {
	*f.committed++
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	*f.rolledBack++
	return nil
}

type fakeDB struct {
	database.PGX
	committed  int
	rolledBack int
}

func (f *fakeDB) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	return &fakeTx{committed: &f.committed, rolledBack: &f.rolledBack}, nil
}

type fieldWrite struct {
	id              int64
	fields          map[string]interface{}
	refreshModified bool
}

type fakeEvents struct {
	byID   map[int64]*model.Event
	bySlot map[int64]*model.Event

	created     []*model.Event
	fieldWrites []fieldWrite
	history     []*model.RescheduleEntry
	addedParts  []*model.EventParticipant
	deleted     []int64
	nextID      int64
}

func (f *fakeEvents) GetEventByID(_ context.Context, _ database.Queryable, id int64) (*model.Event, error) {
	if ev, ok := f.byID[id]; ok {
		return ev, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeEvents) GetEventBySlot(_ context.Context, _ database.Queryable, slotID int64) (*model.Event, error) {
	if ev, ok := f.bySlot[slotID]; ok {
		return ev, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeEvents) CreateEvent(_ context.Context, _ database.Queryable, event *model.Event) (int64, error) {
	f.created = append(f.created, event)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeEvents) SetFields(_ context.Context, _ database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error {
	f.fieldWrites = append(f.fieldWrites, fieldWrite{id: id, fields: fields, refreshModified: refreshModified})
	return nil
}

func (f *fakeEvents) AddRescheduleEntry(_ context.Context, _ database.Queryable, _ int64, entry *model.RescheduleEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeEvents) CreateParticipant(_ context.Context, _ database.Queryable, _ int64, _ string, p *model.EventParticipant) (int64, error) {
	f.addedParts = append(f.addedParts, p)
	f.nextID++
	p.ID = f.nextID
	return f.nextID, nil
}

func (f *fakeEvents) SetParticipantFields(_ context.Context, _ database.Queryable, _ int64, _ map[string]interface{}) error {
	return nil
}

func (f *fakeEvents) DeleteParticipant(_ context.Context, _ database.Queryable, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEvents) GetReferenceEvents(context.Context, database.Queryable, string, string) ([]*model.ReferenceItem, error) {
	return nil, nil
}

type fakeSlots struct {
	byID       map[int64]*model.EventSlot
	byProposal map[string]*model.EventSlot

	created     []*model.EventSlot
	fieldWrites []fieldWrite
	history     []*model.RescheduleEntry
	replaced    [][]*model.SlotProposal
	nextID      int64
}

func (f *fakeSlots) GetSlotByID(_ context.Context, _ database.Queryable, id int64) (*model.EventSlot, error) {
	if slot, ok := f.byID[id]; ok {
		return slot, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeSlots) GetSlotByProposal(_ context.Context, _ database.Queryable, proposalID string) (*model.EventSlot, error) {
	if slot, ok := f.byProposal[proposalID]; ok {
		return slot, nil
	}
	return nil, model.ErrNoRecord
}

func (f *fakeSlots) CreateSlot(_ context.Context, _ database.Queryable, slot *model.EventSlot) (int64, error) {
	f.created = append(f.created, slot)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeSlots) SetFields(_ context.Context, _ database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error {
	f.fieldWrites = append(f.fieldWrites, fieldWrite{id: id, fields: fields, refreshModified: refreshModified})
	return nil
}

func (f *fakeSlots) ReplaceProposals(_ context.Context, _ database.Queryable, _ int64, proposals []*model.SlotProposal) error {
	f.replaced = append(f.replaced, proposals)
	return nil
}

func (f *fakeSlots) AddRescheduleEntry(_ context.Context, _ database.Queryable, _ int64, entry *model.RescheduleEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeSlots) GetReferenceSlots(context.Context, database.Queryable, string, string) ([]*model.ReferenceItem, error) {
	return nil, nil
}

type fakeCalendars struct{}

func (fakeCalendars) GetCalendarByRemoteID(context.Context, database.Queryable, string) (*model.Calendar, error) {
	return nil, model.ErrNoRecord
}

type remoteCall struct {
	userID  string
	eventID string
	comment string
}

type fakeGateway struct {
	creates []*graph.Event
	updates []remoteCall
	cancels []remoteCall

	createResult *graph.Event
}

func (f *fakeGateway) CreateEvent(_ context.Context, _ string, _ graph.ListEventsOptions, event *graph.Event) (*graph.Event, error) {
	f.creates = append(f.creates, event)
	return f.createResult, nil
}

func (f *fakeGateway) UpdateEvent(_ context.Context, userID string, _ graph.ListEventsOptions, eventID string, _ *graph.Event) (*graph.Event, error) {
	f.updates = append(f.updates, remoteCall{userID: userID, eventID: eventID})
	return f.createResult, nil
}

func (f *fakeGateway) CancelEvent(_ context.Context, userID string, _ graph.ListEventsOptions, eventID, comment string) error {
	f.cancels = append(f.cancels, remoteCall{userID: userID, eventID: eventID, comment: comment})
	return nil
}

type fakePublisher struct {
	published []interface{}
}

func (f *fakePublisher) Publish(_ context.Context, _ string, payload interface{}) error {
	f.published = append(f.published, payload)
	return nil
}

type fixture struct {
	db        *fakeDB
	events    *fakeEvents
	slots     *fakeSlots
	gateway   *fakeGateway
	publisher *fakePublisher
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		db:        &fakeDB{},
		events:    &fakeEvents{byID: map[int64]*model.Event{}, bySlot: map[int64]*model.Event{}},
		slots:     &fakeSlots{byID: map[int64]*model.EventSlot{}, byProposal: map[string]*model.EventSlot{}},
		gateway:   &fakeGateway{createResult: &graph.Event{ID: "remote-1", ChangeKey: "ck-1", ICalUID: "uid-1", WebLink: "https://outlook.example/e/1"}},
		publisher: &fakePublisher{},
	}
	f.service = NewService(f.db, zap.NewNop().Sugar(), f.events, f.slots, fakeCalendars{}, f.gateway, f.publisher, "changes")
	return f
}

func openEvent() *model.Event {
	return &model.Event{
		ID:               1,
		Subject:          "Review - Online",
		StartsOn:         "2026-03-02 10:00:00",
		EndsOn:           "2026-03-02 11:00:00",
		Status:           model.EventStatusOpen,
		SyncWithCalendar: true,
		Organiser:        "user-1",
		OutlookEventID:   "remote-1",
		RescheduleHistory: []*model.RescheduleEntry{
			{ID: 7, Idx: 1, Reason: "moved once"},
		},
	}
}

func TestCancelEventRequiresReason(t *testing.T) {
	f := newFixture()

	err := f.service.CancelEvent(context.Background(), 1, "actor", "")

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
	assert.Zero(t, f.db.committed)
}

func TestCancelEventNotOpen(t *testing.T) {
	f := newFixture()
	event := openEvent()
	event.Status = model.EventStatusCancelled
	f.events.byID[1] = event

	err := f.service.CancelEvent(context.Background(), 1, "actor", "conflict")

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.events.fieldWrites)
	assert.Empty(t, f.gateway.cancels)
	assert.Zero(t, f.db.committed)
	assert.Equal(t, 1, f.db.rolledBack)
}

func TestCancelEvent(t *testing.T) {
	f := newFixture()
	f.events.byID[1] = openEvent()

	err := f.service.CancelEvent(context.Background(), 1, "actor", "customer asked")
	require.NoError(t, err)

	require.Len(t, f.events.history, 1)
	entry := f.events.history[0]
	assert.Equal(t, 2, entry.Idx)
	assert.Equal(t, "2026-03-02 10:00:00", entry.StartsOn)
	assert.Equal(t, "actor", entry.RescheduledBy)
	assert.Equal(t, "customer asked", entry.Reason)

	require.Len(t, f.events.fieldWrites, 1)
	assert.Equal(t, map[string]interface{}{"status": "Cancelled"}, f.events.fieldWrites[0].fields)
	assert.True(t, f.events.fieldWrites[0].refreshModified)

	require.Len(t, f.gateway.cancels, 1)
	assert.Equal(t, "user-1", f.gateway.cancels[0].userID)
	assert.Equal(t, "remote-1", f.gateway.cancels[0].eventID)
	assert.Equal(t, "customer asked", f.gateway.cancels[0].comment)

	assert.Equal(t, 1, f.db.committed)
}

func TestCancelEventSkipsRemoteWithoutOutlookID(t *testing.T) {
	f := newFixture()
	event := openEvent()
	event.OutlookEventID = ""
	f.events.byID[1] = event

	err := f.service.CancelEvent(context.Background(), 1, "actor", "reason")
	require.NoError(t, err)
	assert.Empty(t, f.gateway.cancels)
	assert.Equal(t, 1, f.db.committed)
}

func TestRescheduleEventCarriesHistoryChain(t *testing.T) {
	f := newFixture()
	event := openEvent()
	event.Participants = []*model.EventParticipant{
		{ID: 3, Idx: 1, Email: "a@example.com", ParticipantName: "A", Required: true},
	}
	f.events.byID[1] = event

	proposals := []*model.SlotProposal{
		{StartsOn: "2026-03-09 10:00:00", EndsOn: "2026-03-09 11:00:00"},
	}

	slot, err := f.service.RescheduleEvent(context.Background(), 1, proposals, "actor", "clash")
	require.NoError(t, err)

	// The new slot carries the full audit chain: the old entry plus the
	// one recording this reschedule.
	require.Len(t, slot.RescheduleHistory, 2)
	assert.Equal(t, "moved once", slot.RescheduleHistory[0].Reason)
	assert.Zero(t, slot.RescheduleHistory[0].ID)
	assert.Equal(t, "clash", slot.RescheduleHistory[1].Reason)

	assert.Equal(t, model.SlotStatusUnconfirmed, slot.Status)
	assert.Equal(t, "Review - Online", slot.Subject)
	require.Len(t, slot.Participants, 1)
	assert.Zero(t, slot.Participants[0].ID)
	assert.True(t, slot.Published)
	assert.Equal(t, "slots/1", slot.Route)

	// The event is cancelled, pointed at the new slot and cancelled
	// remotely too.
	require.Len(t, f.events.history, 1)
	var eventWrite fieldWrite
	for _, w := range f.events.fieldWrites {
		if w.id == 1 {
			eventWrite = w
		}
	}
	assert.Equal(t, map[string]interface{}{"status": "Cancelled", "from_slot": int64(1)}, eventWrite.fields)
	require.Len(t, f.gateway.cancels, 1)
	assert.Equal(t, 1, f.db.committed)
	assert.NotEmpty(t, f.publisher.published)
}

func TestRescheduleEventValidatesRepeat(t *testing.T) {
	f := newFixture()
	event := openEvent()
	event.Repeat = model.Repeat{RepeatThisEvent: true, RepeatOn: model.RepeatOnWeekly}
	f.events.byID[1] = event

	proposals := []*model.SlotProposal{
		{StartsOn: "2026-03-09 10:00:00", EndsOn: "2026-03-09 11:00:00"},
	}

	_, err := f.service.RescheduleEvent(context.Background(), 1, proposals, "actor", "clash")

	// Weekly recurrence without a weekday is rejected before any write,
	// same as on slot creation.
	validationErr := &model.ValidationError{}
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.slots.created)
	assert.Empty(t, f.events.fieldWrites)
	assert.Zero(t, f.db.committed)
}

func TestConfirmSlotAlreadyConfirmed(t *testing.T) {
	f := newFixture()
	f.slots.byProposal["p-1"] = &model.EventSlot{
		ID:                2,
		SelectedSlotStart: "2026-03-02 10:00:00",
		Proposals:         []*model.SlotProposal{{ID: "p-1"}},
	}

	_, _, err := f.service.ConfirmSlot(context.Background(), "p-1", false)

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.events.created)
	assert.Zero(t, f.db.committed)
}

func TestConfirmSlotOnlineNotAllowed(t *testing.T) {
	f := newFixture()
	f.slots.byProposal["p-1"] = &model.EventSlot{
		ID:        2,
		Status:    model.SlotStatusUnconfirmed,
		DocStatus: model.DocStatusDraft,
		Proposals: []*model.SlotProposal{{ID: "p-1", StartsOn: "2026-03-02 10:00:00", EndsOn: "2026-03-02 11:00:00"}},
	}

	_, _, err := f.service.ConfirmSlot(context.Background(), "p-1", true)

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
}

func TestConfirmSlot(t *testing.T) {
	f := newFixture()
	f.slots.byProposal["p-1"] = &model.EventSlot{
		ID:               2,
		Subject:          "Demo",
		Status:           model.SlotStatusUnconfirmed,
		DocStatus:        model.DocStatusDraft,
		AddOnlineMeeting: true,
		Organiser:        "user-1",
		Proposals: []*model.SlotProposal{
			{ID: "p-1", StartsOn: "2026-03-02 10:00:00", EndsOn: "2026-03-02 11:00:00"},
			{ID: "p-2", StartsOn: "2026-03-03 10:00:00", EndsOn: "2026-03-03 11:00:00"},
		},
		Participants: []*model.EventParticipant{
			{ID: 4, Email: "a@example.com", ParticipantName: "A", Required: true},
		},
		Users: []*model.SlotUser{
			{User: "jane", Email: "jane@example.com", FullName: "Jane Doe"},
			{User: "dup", Email: "a@example.com", FullName: "Duplicate"},
		},
	}
	f.gateway.createResult.OnlineMeeting = &graph.OnlineMeeting{JoinURL: "https://teams.example/j/1"}

	event, missing, err := f.service.ConfirmSlot(context.Background(), "p-1", true)
	require.NoError(t, err)
	assert.Empty(t, missing)

	assert.Equal(t, "Demo - Online", event.Subject)
	assert.Equal(t, "2026-03-02 10:00:00", event.StartsOn)
	assert.Equal(t, model.EventStatusOpen, event.Status)
	assert.Equal(t, int64(2), event.FromSlot)
	assert.True(t, event.SyncWithCalendar)

	// Users merge into participants, deduplicated by email.
	require.Len(t, event.Participants, 2)
	assert.Equal(t, "a@example.com", event.Participants[0].Email)
	assert.Equal(t, "jane@example.com", event.Participants[1].Email)
	assert.Equal(t, "User", event.Participants[1].ReferenceDoctype)

	// Remote identifiers from the push are stored.
	assert.Equal(t, "remote-1", event.OutlookEventID)
	assert.Equal(t, "https://teams.example/j/1", event.MeetingLink)
	require.Len(t, f.gateway.creates, 1)

	// Confirmation is terminal for the slot.
	slot := f.slots.byProposal["p-1"]
	assert.Equal(t, model.SlotStatusConfirmed, slot.Status)
	assert.Equal(t, model.DocStatusSubmitted, slot.DocStatus)
	assert.Equal(t, "2026-03-02 10:00:00", slot.SelectedSlotStart)
	assert.True(t, slot.SelectedOnline)

	assert.Equal(t, 1, f.db.committed)
}

func TestConfirmSlotReusesEvent(t *testing.T) {
	f := newFixture()
	slot := &model.EventSlot{
		ID:        2,
		Subject:   "Demo",
		Status:    model.SlotStatusUnconfirmed,
		DocStatus: model.DocStatusDraft,
		Organiser: "user-1",
		Proposals: []*model.SlotProposal{
			{ID: "p-1", StartsOn: "2026-03-09 10:00:00", EndsOn: "2026-03-09 11:00:00"},
		},
	}
	f.slots.byProposal["p-1"] = slot

	existing := &model.Event{
		ID:             9,
		Subject:        "Demo - Online",
		Status:         model.EventStatusCancelled,
		FromSlot:       2,
		Organiser:      "user-1",
		OutlookEventID: "remote-9",
	}
	f.events.bySlot[2] = existing

	event, _, err := f.service.ConfirmSlot(context.Background(), "p-1", false)
	require.NoError(t, err)

	assert.Equal(t, int64(9), event.ID)
	assert.Empty(t, f.events.created)
	assert.Equal(t, "Demo - In Person", event.Subject)
	assert.Equal(t, model.EventStatusOpen, event.Status)

	// The push updates the existing remote event instead of creating one.
	assert.Empty(t, f.gateway.creates)
	require.Len(t, f.gateway.updates, 1)
	assert.Equal(t, "remote-9", f.gateway.updates[0].eventID)
}

func TestConfirmSlotReuseKeepsMaillessParticipantOnce(t *testing.T) {
	f := newFixture()
	slot := &model.EventSlot{
		ID:        2,
		Subject:   "Demo",
		Status:    model.SlotStatusUnconfirmed,
		DocStatus: model.DocStatusDraft,
		Proposals: []*model.SlotProposal{
			{ID: "p-1", StartsOn: "2026-03-09 10:00:00", EndsOn: "2026-03-09 11:00:00"},
		},
		Participants: []*model.EventParticipant{
			{Idx: 1, ReferenceDoctype: "Contact", ReferenceDocname: "CRM-0001", ParticipantName: "No Mail"},
		},
	}
	f.slots.byProposal["p-1"] = slot

	existing := &model.Event{
		ID:       9,
		Subject:  "Demo - Online",
		Status:   model.EventStatusCancelled,
		FromSlot: 2,
		Participants: []*model.EventParticipant{
			{ID: 30, Idx: 1, ReferenceDoctype: "Contact", ReferenceDocname: "CRM-0001", ParticipantName: "No Mail"},
		},
	}
	f.events.bySlot[2] = existing

	event, _, err := f.service.ConfirmSlot(context.Background(), "p-1", false)
	require.NoError(t, err)

	// The contact without an address is already on the event; a repeat
	// confirmation must not clone it into a second row.
	assert.Empty(t, f.events.addedParts)
	require.Len(t, event.Participants, 1)
	assert.Equal(t, int64(30), event.Participants[0].ID)
}

func TestCancelSlotDraftOnly(t *testing.T) {
	f := newFixture()
	f.slots.byID[2] = &model.EventSlot{
		ID:        2,
		Status:    model.SlotStatusConfirmed,
		DocStatus: model.DocStatusSubmitted,
	}

	err := f.service.CancelSlot(context.Background(), 2, "actor", "reason")

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.slots.fieldWrites)
}

func TestCancelSlot(t *testing.T) {
	f := newFixture()
	f.slots.byID[2] = &model.EventSlot{
		ID:        2,
		Status:    model.SlotStatusUnconfirmed,
		DocStatus: model.DocStatusDraft,
	}

	err := f.service.CancelSlot(context.Background(), 2, "actor", "no longer needed")
	require.NoError(t, err)

	require.Len(t, f.slots.fieldWrites, 1)
	assert.Equal(t, map[string]interface{}{
		"status":    "Cancelled",
		"docstatus": 2,
	}, f.slots.fieldWrites[0].fields)
	require.Len(t, f.slots.history, 1)
	assert.Equal(t, "no longer needed", f.slots.history[0].Reason)
	assert.Equal(t, 1, f.db.committed)
}

func TestRescheduleSlotReplacesProposals(t *testing.T) {
	f := newFixture()
	f.slots.byID[2] = &model.EventSlot{
		ID:        2,
		Status:    model.SlotStatusUnconfirmed,
		DocStatus: model.DocStatusDraft,
	}

	proposals := []*model.SlotProposal{
		{StartsOn: "2026-03-09 10:00:00", EndsOn: "2026-03-09 11:00:00"},
	}
	err := f.service.RescheduleSlot(context.Background(), 2, proposals, "actor", "new availability")
	require.NoError(t, err)

	require.Len(t, f.slots.replaced, 1)
	assert.Equal(t, proposals, f.slots.replaced[0])
	require.Len(t, f.slots.history, 1)
	assert.Equal(t, 1, f.db.committed)
}

func TestCreateSlotValidatesProposals(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateSlot(context.Background(), &model.EventSlot{
		Subject: "Demo",
		Proposals: []*model.SlotProposal{
			{StartsOn: "2026-03-02 11:00:00", EndsOn: "2026-03-02 10:00:00"},
		},
	})

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.slots.created)
}

func TestValidateRepeat(t *testing.T) {
	start := "2026-03-02 10:00:00"

	err := validateRepeat(model.Repeat{RepeatThisEvent: true, RepeatOn: model.RepeatOnWeekly}, start)
	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)

	err = validateRepeat(model.Repeat{RepeatThisEvent: true, RepeatOn: model.RepeatOnWeekly, Monday: true}, start)
	assert.NoError(t, err)

	err = validateRepeat(model.Repeat{RepeatThisEvent: true, RepeatOn: model.RepeatOnDaily, RepeatTill: "2026-02-01"}, start)
	assert.ErrorAs(t, err, &validationErr)

	err = validateRepeat(model.Repeat{RepeatThisEvent: true, RepeatOn: "Hourly"}, start)
	assert.ErrorAs(t, err, &validationErr)

	assert.NoError(t, validateRepeat(model.Repeat{}, "garbage"))
}

func TestGetReferenceEventsOrdering(t *testing.T) {
	// Sanity check on errors.Is usage in fakes.
	_, err := (&fakeEvents{byID: map[int64]*model.Event{}}).GetEventByID(context.Background(), nil, 99)
	assert.True(t, errors.Is(err, model.ErrNoRecord))
}
