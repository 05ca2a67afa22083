package server

import (
	"net/http"

	json "github.com/goccy/go-json"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/eventmap/internal/eventmap"
	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
	"github.com/playperu/eventmap/internal/store"
	"github.com/playperu/eventmap/internal/validation"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// HealthResponse maps each dependency to its status.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type identityQuery struct {
	MapID       string `query:"mapId" description:"Map id; defaults to the active map."`
	Email       string `query:"email" description:"Visitor email, the join key for all analytics."`
	UserID      string `query:"user_id"`
	Name        string `query:"name"`
	PhoneNumber string `query:"phoneNumber"`
}

type mapIDPath struct {
	ID string `path:"id"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type heartbeatInput struct {
	sessionPath
	HeartbeatRequest
}

type quizLimitQuery struct {
	Limit int `query:"limit" description:"Number of questions, capped at 50."`
}

type catalogQuery struct {
	MapID string `query:"mapId" description:"Map id; defaults to the active map."`
}

type adminMapInput struct {
	mapIDPath
	AdminMapRequest
}

type adminEventsInput struct {
	mapIDPath
	AdminEventsRequest
}

type adminRoutesInput struct {
	mapIDPath
	AdminRoutesRequest
}

type adminMoveInput struct {
	mapIDPath
	EventID string `path:"eventID"`
	AdminPositionRequest
}

type adminQuestionStatusInput struct {
	ID string `path:"id"`
	AdminQuestionStatusRequest
}

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               []response
}

type response struct {
	status int
	body   any
	ctype  string
}

func ok(body any) response         { return response{status: http.StatusOK, body: body} }
func created(body any) response    { return response{status: http.StatusCreated, body: body} }
func failure(status int) response  { return response{status: status, body: ErrorResponse{}} }
func stream(ctype string) response { return response{status: http.StatusOK, ctype: ctype} }
func noContent() response          { return response{status: http.StatusNoContent} }

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Event Map API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the interactive event journey map.")

	admin := "Requires admin_session cookie."
	ops := []operation{
		{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", nil,
			[]response{ok(HealthResponse{}), {status: http.StatusServiceUnavailable, body: HealthResponse{}}}},

		{http.MethodGet, "/api/maps", "Map registry", "Lists all maps and the id of the one visitors see.", nil,
			[]response{ok(store.Registry{})}},
		{http.MethodGet, "/api/catalog", "Map catalog", "Returns a map with its events, routes and rendered route paths.", catalogQuery{},
			[]response{ok(CatalogResponse{}), failure(http.StatusNotFound)}},
		{http.MethodPost, "/api/interactions", "Commit a view", "Adds one open-to-close view of an event. When mapId is set the event must belong to that map, and fresh progress is returned.", InteractionRequest{},
			[]response{ok(progress.RecordResult{}), failure(http.StatusBadRequest), failure(http.StatusNotFound), failure(http.StatusTooManyRequests)}},
		{http.MethodGet, "/api/progress", "Visitor progress", "Per-group totals and completed events of the visitor on a map.", identityQuery{},
			[]response{ok(ProgressResponse{}), failure(http.StatusBadRequest), failure(http.StatusNotFound)}},
		{http.MethodGet, "/api/progress/events", "Progress stream", "Server-Sent Events stream of the visitor's progress on a map.", identityQuery{},
			[]response{stream("text/event-stream"), failure(http.StatusBadRequest)}},
		{http.MethodGet, "/api/visitor", "First-time visitor", "Whether the visitor has completed no event of the map yet.", identityQuery{},
			[]response{ok(VisitorResponse{})}},
		{http.MethodGet, "/api/celebration", "Celebration seen", "Whether the completion celebration was already shown.", identityQuery{},
			[]response{ok(CelebrationResponse{}), failure(http.StatusBadRequest)}},
		{http.MethodPost, "/api/celebration", "Mark celebration seen", "Idempotent; the flag is never cleared.", CelebrationRequest{},
			[]response{ok(CelebrationResponse{}), failure(http.StatusBadRequest)}},
		{http.MethodPut, "/api/sessions/{sessionID}", "Session heartbeat", "Upserts the running totals of a map session. Totals never decrease.", heartbeatInput{},
			[]response{noContent(), failure(http.StatusBadRequest)}},
		{http.MethodPost, "/api/sessions/{sessionID}", "Final session heartbeat", "Same as PUT. Accepts the beacon a closing page sends.", heartbeatInput{},
			[]response{noContent(), failure(http.StatusBadRequest)}},
		{http.MethodGet, "/api/sessions/{sessionID}", "Get session", "Returns the stored totals of a map session.", sessionPath{},
			[]response{ok(eventmap.MapSession{}), failure(http.StatusNotFound)}},
		{http.MethodGet, "/api/quiz/questions", "Quiz questions", "Random active questions without the answer key.", quizLimitQuery{},
			[]response{ok(QuizQuestionsResponse{}), failure(http.StatusBadRequest)}},
		{http.MethodPost, "/api/quiz/submissions", "Submit quiz", "Grades answers against the stored key and stores the submission.", quiz.Submission{},
			[]response{created(eventmap.QuizResult{}), failure(http.StatusBadRequest), failure(http.StatusServiceUnavailable)}},

		{http.MethodPost, "/api/admin/login", "Admin login", "Checks the shared admin secret and sets the admin_session cookie.", AdminLoginRequest{},
			[]response{ok(AdminMeResponse{}), failure(http.StatusUnauthorized), failure(http.StatusServiceUnavailable)}},
		{http.MethodPost, "/api/admin/logout", "Admin logout", "Clears the admin session.", nil,
			[]response{ok(nil)}},
		{http.MethodGet, "/api/admin/me", "Admin session", admin, nil,
			[]response{ok(AdminMeResponse{}), failure(http.StatusUnauthorized)}},
		{http.MethodGet, "/api/admin/maps", "List maps", admin, nil,
			[]response{ok([]eventmap.MapDefinition{}), failure(http.StatusUnauthorized)}},
		{http.MethodPost, "/api/admin/maps", "Create map", "Creates an inactive map. " + admin, AdminMapRequest{},
			[]response{created(eventmap.MapDefinition{}), failure(http.StatusBadRequest), failure(http.StatusUnauthorized)}},
		{http.MethodGet, "/api/admin/maps/{id}", "Get map", "Map with events, routes and rendered paths. " + admin, mapIDPath{},
			[]response{ok(CatalogResponse{}), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodPut, "/api/admin/maps/{id}", "Update map", admin, adminMapInput{},
			[]response{ok(eventmap.MapDefinition{}), failure(http.StatusBadRequest), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodDelete, "/api/admin/maps/{id}", "Delete map", "Deletes a map with its events and routes. " + admin, mapIDPath{},
			[]response{ok(nil), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodPost, "/api/admin/maps/{id}/activate", "Activate map", "Makes the map the only active one. " + admin, mapIDPath{},
			[]response{ok(store.Registry{}), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodPut, "/api/admin/maps/{id}/events", "Replace events", admin, adminEventsInput{},
			[]response{ok(AdminEventsRequest{}), failure(http.StatusBadRequest), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodPut, "/api/admin/maps/{id}/routes", "Replace routes", "Every route must connect two events of the map. " + admin, adminRoutesInput{},
			[]response{ok(AdminRoutesRequest{}), failure(http.StatusBadRequest), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodPatch, "/api/admin/maps/{id}/events/{eventID}/position", "Move event", "Stores a dragged marker position, clamped to 0-100. " + admin, adminMoveInput{},
			[]response{ok(eventmap.EventMarker{}), failure(http.StatusBadRequest), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodGet, "/api/admin/quiz/questions", "List questions", "All questions including the answer key. " + admin, nil,
			[]response{ok([]eventmap.QuizQuestion{}), failure(http.StatusUnauthorized)}},
		{http.MethodPost, "/api/admin/quiz/questions", "Create question", admin, AdminQuestionRequest{},
			[]response{created(eventmap.QuizQuestion{}), failure(http.StatusBadRequest), failure(http.StatusUnauthorized)}},
		{http.MethodPatch, "/api/admin/quiz/questions/{id}", "Retire or revive question", admin, adminQuestionStatusInput{},
			[]response{ok(eventmap.QuizQuestion{}), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
		{http.MethodDelete, "/api/admin/quiz/questions/{id}", "Delete question", admin, mapIDPath{},
			[]response{ok(nil), failure(http.StatusNotFound), failure(http.StatusUnauthorized)}},
	}

	for _, op := range ops {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.ctype != "" {
				opts = append(opts, openapi.WithContentType(resp.ctype))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
