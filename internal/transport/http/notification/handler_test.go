package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/config"
	"github.com/Additional-Code/fleet/internal/entity"
	"github.com/Additional-Code/fleet/internal/identity"
	"github.com/Additional-Code/fleet/internal/presentation/http/middleware"
)

type stubLister struct {
	items []entity.Notification
	err   error
	asked string
}

func (s *stubLister) List(_ context.Context, userID string) ([]entity.Notification, error) {
	s.asked = userID
	return s.items, s.err
}

type noStore struct{ cache.Store }

func newServer(t *testing.T, svc Lister) (*echo.Echo, string) {
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
	Register(e, NewHandler(svc), middleware.NewAuthorizer(issuer))
	return e, "Bearer " + tokens.AccessToken
}

func get(e *echo.Echo, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(echo.HeaderAuthorization, auth)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	t.Parallel()
	svc := &stubLister{items: []entity.Notification{
		{ID: "N2", UserID: "R1", Title: "Order delivered"},
		{ID: "N1", UserID: "R1", Title: "Order cancelled"},
	}}
	e, auth := newServer(t, svc)

	rec := get(e, "/rider/R1/notification", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "R1", svc.asked)

	var env struct {
		Data []entity.Notification `json:"data"`
		Meta map[string]any        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	require.Equal(t, "N2", env.Data[0].ID)
	require.EqualValues(t, 2, env.Meta["count"])
}

func TestList_OtherRider(t *testing.T) {
	t.Parallel()
	svc := &stubLister{}
	e, auth := newServer(t, svc)

	require.Equal(t, http.StatusForbidden, get(e, "/rider/R2/notification", auth).Code)
	require.Empty(t, svc.asked)
}

func TestList_Failure(t *testing.T) {
	t.Parallel()
	e, auth := newServer(t, &stubLister{err: errors.New("db down")})

	rec := get(e, "/rider/R1/notification", auth)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "db down")
}
