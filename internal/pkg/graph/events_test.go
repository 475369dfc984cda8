package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	return client, srv
}

func TestEventsPath(t *testing.T) {
	path, err := eventsPath("user-1", ListEventsOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/users/user-1/calendar/events", path)

	path, err = eventsPath("user-1", ListEventsOptions{CalendarID: "cal-1"})
	require.NoError(t, err)
	assert.Equal(t, "/users/user-1/calendars/cal-1/events", path)

	path, err = eventsPath("user-1", ListEventsOptions{CalendarID: "cal-1", GroupID: "grp-1"})
	require.NoError(t, err)
	assert.Equal(t, "/users/user-1/calendarGroups/grp-1/calendars/cal-1/events", path)

	path, err = eventsPath("user 1", ListEventsOptions{CalendarID: "cal/1"})
	require.NoError(t, err)
	assert.Equal(t, "/users/user%201/calendars/cal%2F1/events", path)
}

func TestEventsPathGroupWithoutCalendar(t *testing.T) {
	_, err := eventsPath("user-1", ListEventsOptions{GroupID: "grp-1"})

	validationErr := &model.ValidationError{}
	assert.ErrorAs(t, err, &validationErr)
}

func TestListEventsPagination(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/user-1/calendar/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value":           []map[string]string{{"id": "e-1"}, {"id": "e-2"}},
			"@odata.nextLink": srvURL + "/page2",
		})
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{{"id": "e-3"}},
		})
	})

	client, srv := testClient(mux)
	defer srv.Close()
	srvURL = srv.URL

	events, err := client.ListEvents(context.Background(), "user-1", ListEventsOptions{})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, "e-1", events[0].ID)
	assert.Equal(t, "e-3", events[2].ID)
}

func TestListEventsNotFound(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	events, err := client.ListEvents(context.Background(), "user-1", ListEventsOptions{})
	require.NoError(t, err)
	assert.Nil(t, events)
}

func TestListEventsServerError(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.ListEvents(context.Background(), "user-1", ListEventsOptions{})

	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.False(t, IsNotFound(err))
}

func TestCreateEvent(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/user-1/calendars/cal-1/events", r.URL.Path)

		var in Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Demo", in.Subject)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Event{ID: "e-1", ChangeKey: "ck-1", Subject: in.Subject})
	}))
	defer srv.Close()

	created, err := client.CreateEvent(context.Background(), "user-1", ListEventsOptions{CalendarID: "cal-1"}, &Event{Subject: "Demo"})
	require.NoError(t, err)
	assert.Equal(t, "e-1", created.ID)
	assert.Equal(t, "ck-1", created.ChangeKey)
}

func TestUpdateEvent(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/user-1/calendar/events/e-1", r.URL.Path)
		json.NewEncoder(w).Encode(Event{ID: "e-1", ChangeKey: "ck-2"})
	}))
	defer srv.Close()

	updated, err := client.UpdateEvent(context.Background(), "user-1", ListEventsOptions{}, "e-1", &Event{Subject: "Demo"})
	require.NoError(t, err)
	assert.Equal(t, "ck-2", updated.ChangeKey)
}

func TestDeleteEvent(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res, err := client.DeleteEvent(context.Background(), "user-1", ListEventsOptions{}, "e-1")
	require.NoError(t, err)
	assert.Equal(t, DeleteResultDeleted, res)
}

func TestDeleteEventAlreadyGone(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	res, err := client.DeleteEvent(context.Background(), "user-1", ListEventsOptions{}, "e-1")
	require.NoError(t, err)
	assert.Equal(t, DeleteResultNotFound, res)
}

func TestCancelEvent(t *testing.T) {
	client, srv := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/user-1/calendar/events/e-1/cancel", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "meeting moved", body["comment"])

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := client.CancelEvent(context.Background(), "user-1", ListEventsOptions{}, "e-1", "meeting moved")
	require.NoError(t, err)
}
