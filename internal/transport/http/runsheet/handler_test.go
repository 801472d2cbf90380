package runsheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/dto"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
	"github.com/Additional-Code/fleet/internal/presentation/http/request"
	"github.com/Additional-Code/fleet/pkg/errorbank"
)

type stubEngine struct {
	summaries []dto.RunsheetSummary
	confirmed []string
	cancelled []string
	err       error
}

func (s *stubEngine) List(context.Context, string) ([]dto.RunsheetSummary, error) {
	return s.summaries, s.err
}

func (s *stubEngine) Get(_ context.Context, riderID, id string) (*dto.RunsheetDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.RunsheetDetail{ID: id, RiderID: riderID}, nil
}

func (s *stubEngine) Accept(context.Context, string) error { return s.err }

func (s *stubEngine) ConfirmOrder(_ context.Context, riderID, runsheetID, orderID, image, via string) error {
	s.confirmed = append(s.confirmed, riderID+"/"+runsheetID+"/"+orderID+"/"+image+"/"+via)
	return s.err
}

func (s *stubEngine) CancelOrder(_ context.Context, riderID, runsheetID, orderID, reason string) (string, error) {
	s.cancelled = append(s.cancelled, riderID+"/"+runsheetID+"/"+orderID+"/"+reason)
	if s.err != nil {
		return "", s.err
	}
	return entity.OrderStatusUndelivered, nil
}

type noStore struct{ cache.Store }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func newServer(t *testing.T, svc Engine) (*echo.Echo, string) {
	t.Helper()
	issuer := identity.NewTokenIssuer(config.Config{Auth: config.Auth{
		Issuer:        "fleet-test",
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	}}, noStore{})
	tokens, err := issuer.Issue(&entity.User{ID: "R1", Role: entity.RoleRider})
	require.NoError(t, err)

	e := echo.New()
	e.Validator = request.NewValidator()
	Register(e, NewHandler(svc), middleware.NewAuthorizer(issuer))
	return e, "Bearer " + tokens.AccessToken
}

func do(t *testing.T, e *echo.Echo, method, path, auth, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestList(t *testing.T) {
	t.Parallel()
	svc := &stubEngine{summaries: []dto.RunsheetSummary{{ID: "RS1", Orders: 2, DeliveredOrders: 1, PendingOrders: 1}}}
	e, auth := newServer(t, svc)

	code, env := do(t, e, http.MethodGet, "/rider/R1/runsheet", auth, "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	var items []dto.RunsheetSummary
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Equal(t, svc.summaries[0].ID, items[0].ID)
	require.Equal(t, 1, items[0].DeliveredOrders)
	require.EqualValues(t, 1, env.Meta["count"])

	code, _ = do(t, e, http.MethodGet, "/rider/R2/runsheet", auth, "")
	require.Equal(t, http.StatusForbidden, code)
}

func TestComplete(t *testing.T) {
	t.Parallel()
	svc := &stubEngine{}
	e, auth := newServer(t, svc)

	code, env := do(t, e, http.MethodPut, "/rider/R1/runsheet/RS1/order/O1/complete", auth, `{"image":"https://img.example/d.jpg","via":"upi"}`)
	require.Equal(t, http.StatusOK, code)
	require.True(t, env.Success)
	require.Equal(t, []string{"R1/RS1/O1/https://img.example/d.jpg/upi"}, svc.confirmed)

	code, env = do(t, e, http.MethodPut, "/rider/R1/runsheet/RS1/order/O1/complete", auth, `{"via":"upi"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "validation", env.Error.Kind)
	require.Len(t, svc.confirmed, 1)
}

func TestCancel(t *testing.T) {
	t.Parallel()
	svc := &stubEngine{}
	e, auth := newServer(t, svc)

	code, env := do(t, e, http.MethodPut, "/rider/R1/runsheet/RS1/order/O1/cancel", auth, `{"reason":"door locked"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, entity.OrderStatusUndelivered, env.Meta["status"])
	require.Equal(t, []string{"R1/RS1/O1/door locked"}, svc.cancelled)

	code, _ = do(t, e, http.MethodPut, "/rider/R1/runsheet/RS1/order/O1/cancel", auth, `{}`)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{errorbank.InvalidOperation("order doesnt exist in runsheet."), http.StatusBadRequest, "invalid_operation"},
		{errorbank.NotFound("runsheet not found"), http.StatusNotFound, "not_found"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		e, auth := newServer(t, &stubEngine{err: tt.err})
		code, env := do(t, e, http.MethodGet, "/rider/R1/runsheet/RS1", auth, "")
		require.Equal(t, tt.status, code)
		require.False(t, env.Success)
		require.Equal(t, tt.kind, env.Error.Kind)
	}
}

func TestAccept(t *testing.T) {
	t.Parallel()
	e, auth := newServer(t, &stubEngine{})

	code, env := do(t, e, http.MethodGet, "/rider/R1/runsheet/RS-anything/accept", auth, "")
	require.Equal(t, http.StatusOK, code)
	var msg dto.Message
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	require.Equal(t, "runsheet accepted", msg.Message)
}

func TestGetScopesToPathRider(t *testing.T) {
	t.Parallel()
	e, auth := newServer(t, &stubEngine{})

	code, env := do(t, e, http.MethodGet, "/rider/R1/runsheet/RS1", auth, "")
	require.Equal(t, http.StatusOK, code)
	var detail dto.RunsheetDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Equal(t, "RS1", detail.ID)
	require.Equal(t, "R1", detail.RiderID)
}
