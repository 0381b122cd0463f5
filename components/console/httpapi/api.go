package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-admin-console/components/console"
	"github.com/goliatone/go-admin-console/components/console/commands"
	"github.com/goliatone/go-admin-console/components/console/queries"
	gocommand "github.com/goliatone/go-command"
)

// UserResolver extracts the viewer id from a request.
type UserResolver func(*http.Request) string

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Dispatch   gocommand.Commander[commands.DispatchActionInput]
	HashChange gocommand.Commander[commands.HashChangeInput]
	Save       gocommand.Commander[commands.SavePreferenceInput]
	Reset      gocommand.Commander[commands.ResetPreferenceInput]
	State      gocommand.Querier[queries.StateInput, console.Snapshot]
	Grid       gocommand.Querier[queries.GridInput, console.GridRender]
	Chart      gocommand.Querier[queries.ChartInput, queries.ChartOutput]
	Users      UserResolver
}

// NewHandlers wires every endpoint to sessions.
func NewHandlers(sessions *console.Sessions, telemetry commands.Telemetry, users UserResolver) *Handlers {
	return &Handlers{
		Dispatch:   commands.NewDispatchActionCommand(sessions, telemetry),
		HashChange: commands.NewHashChangeCommand(sessions, telemetry),
		Save:       commands.NewSavePreferenceCommand(sessions, telemetry),
		Reset:      commands.NewResetPreferenceCommand(sessions, telemetry),
		State:      queries.NewStateQuery(sessions),
		Grid:       queries.NewGridQuery(sessions),
		Chart:      queries.NewChartQuery(sessions),
		Users:      users,
	}
}

// DefaultUserResolver reads X-User-ID, then the user query parameter.
func DefaultUserResolver(r *http.Request) string {
	return console.ViewerFromRequest(r)
}

func (h *Handlers) user(r *http.Request) string {
	if h.Users != nil {
		return h.Users(r)
	}
	return DefaultUserResolver(r)
}

// HashChangeRequest is the body of the hash change endpoint.
type HashChangeRequest struct {
	Fragment string `json:"fragment"`
}

// ResetRequest is the body of the preference reset endpoint.
type ResetRequest struct {
	Scope string `json:"scope"`
}

func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.State.Query(r.Context(), queries.StateInput{
		UserID:   h.user(r),
		Fragment: r.URL.Query().Get("fragment"),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) HandleAction(w http.ResponseWriter, r *http.Request) {
	var el console.Element
	if err := json.NewDecoder(r.Body).Decode(&el); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var out console.Outcome
	err := h.Dispatch.Execute(r.Context(), commands.DispatchActionInput{
		UserID:   h.user(r),
		Fragment: r.URL.Query().Get("fragment"),
		Element:  el,
		Result:   &out,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) HandleHashChange(w http.ResponseWriter, r *http.Request) {
	var payload HashChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var out console.Outcome
	if err := h.HashChange.Execute(r.Context(), commands.HashChangeInput{
		UserID:   h.user(r),
		Fragment: payload.Fragment,
		Result:   &out,
	}); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var pref console.Preference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var saved console.Preference
	if err := h.Save.Execute(r.Context(), commands.SavePreferenceInput{
		UserID:     h.user(r),
		Preference: pref,
		Result:     &saved,
	}); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

func (h *Handlers) HandleResetPreferences(w http.ResponseWriter, r *http.Request) {
	var payload ResetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := h.Reset.Execute(r.Context(), commands.ResetPreferenceInput{
		UserID: h.user(r),
		Scope:  payload.Scope,
	}); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleGrid(w http.ResponseWriter, r *http.Request, view string) {
	query := r.URL.Query()
	input := queries.GridInput{UserID: h.user(r), View: view}
	input.Page, _ = strconv.Atoi(query.Get("page"))
	input.PageSize, _ = strconv.Atoi(query.Get("page_size"))
	if query.Has("q") || query.Has("status") || query.Has("period") {
		input.Filters = &console.GridFilters{
			Query:  query.Get("q"),
			Status: query.Get("status"),
			Period: query.Get("period"),
		}
	}
	out, err := h.Grid.Query(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request, chartID string) {
	out, err := h.Chart.Query(r.Context(), queries.ChartInput{UserID: h.user(r), ChartID: chartID})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, console.ErrUnknownChart) {
			status = http.StatusNotFound
		}
		respondError(w, status, err)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(out.HTML))
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
