package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/auth"
)

// handleListAuditEvents returns authentication events visible to the caller.
//
// Query parameters: action, outcome, actor_id, limit, offset. Callers
// without manage rights only ever see their own events, whatever actor_id says.
func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	q := r.URL.Query()

	filter := audit.Filter{
		Action:  audit.Action(q.Get("action")),
		Outcome: audit.Outcome(q.Get("outcome")),
		ActorID: q.Get("actor_id"),
	}
	if !isValidAction(filter.Action) {
		writeBadRequest(w, "action must be login, refresh or register")
		return
	}
	if !isValidOutcome(filter.Outcome) {
		writeBadRequest(w, "outcome must be success or failure")
		return
	}

	var ok bool
	if filter.Limit, ok = queryInt(q.Get("limit")); !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, ok = queryInt(q.Get("offset")); !ok {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}

	can := s.auditACL.ForActor(actor)
	if !can.Can(acl.ActionManage, nil) {
		filter.ActorID = actor.ID
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	visible := make([]audit.Event, 0, len(result.Events))
	for i := range result.Events {
		if can.Can(acl.ActionRead, &result.Events[i]) {
			visible = append(visible, result.Events[i])
		}
	}
	result.Events = visible

	writeJSON(w, http.StatusOK, result)
}

func isValidAction(a audit.Action) bool {
	switch a {
	case "", audit.ActionLogin, audit.ActionRefresh, audit.ActionRegister:
		return true
	}
	return false
}

func isValidOutcome(o audit.Outcome) bool {
	switch o {
	case "", audit.OutcomeSuccess, audit.OutcomeFailure:
		return true
	}
	return false
}

// queryInt parses an optional non-negative integer query value.
func queryInt(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
