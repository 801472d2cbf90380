package packer

import (
	"context"
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

type stubWorkflow struct {
	listedFor []string
	packed    []string
	packErr   error
}

func (s *stubWorkflow) ListOrders(_ context.Context, packerID string) ([]dto.PackerOrder, error) {
	s.listedFor = append(s.listedFor, packerID)
	return []dto.PackerOrder{{ID: "O1"}}, nil
}

func (s *stubWorkflow) PackOrder(_ context.Context, orderID, image string) error {
	s.packed = append(s.packed, orderID+" "+image)
	return s.packErr
}

type noStore struct{ cache.Store }

func newServer(t *testing.T, svc Workflow, role string) (*echo.Echo, string) {
	t.Helper()
	issuer := identity.NewTokenIssuer(config.Config{Auth: config.Auth{
		Issuer:        "fleet-test",
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
	}}, noStore{})
	tokens, err := issuer.Issue(&entity.User{ID: "PK1", Role: role})
	require.NoError(t, err)

	e := echo.New()
	e.Validator = request.NewValidator()
	Register(e, NewHandler(svc), middleware.NewAuthorizer(issuer))
	return e, "Bearer " + tokens.AccessToken
}

func serve(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, auth)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListOrders(t *testing.T) {
	t.Parallel()
	svc := &stubWorkflow{}
	e, auth := newServer(t, svc, entity.RolePacker)

	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/packer/order", auth, "").Code)
	require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/packer/order?packerId=PK9", auth, "").Code)
	require.Equal(t, []string{"", "PK9"}, svc.listedFor)
}

func TestPackOrder(t *testing.T) {
	t.Parallel()
	svc := &stubWorkflow{}
	e, auth := newServer(t, svc, entity.RolePacker)

	rec := serve(e, http.MethodPatch, "/packer/order/O1", auth, `{"action":"pack","image":"https://img.example/p.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"O1 https://img.example/p.jpg"}, svc.packed)

	rec = serve(e, http.MethodPatch, "/packer/order/O1", auth, `{"action":"ship","image":"https://img.example/p.jpg"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, svc.packed, 1)
}

func TestPackOrder_AlreadyPacked(t *testing.T) {
	t.Parallel()
	svc := &stubWorkflow{packErr: errorbank.InvalidOperation("order already packed.")}
	e, auth := newServer(t, svc, entity.RolePacker)

	rec := serve(e, http.MethodPatch, "/packer/order/O1", auth, `{"action":"pack","image":"https://img.example/p.jpg"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "order already packed.")
}

func TestRiderCannotPack(t *testing.T) {
	t.Parallel()
	svc := &stubWorkflow{}
	e, auth := newServer(t, svc, entity.RoleRider)

	rec := serve(e, http.MethodPatch, "/packer/order/O1", auth, `{"action":"pack","image":"https://img.example/p.jpg"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, svc.packed)
}
