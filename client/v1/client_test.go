package v1

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	"fieldforce.com/fieldforce/fieldforce/web/handlers"
	"fieldforce.com/fieldforce/security"
	"fieldforce.com/fieldforce/utils"
	"fieldforce.com/fieldforce/web/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("client-test-secret"))

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	mem.PutBranch(model.Branch{ID: "b1", Name: "Downtown", Lat: 23.8103, Lng: 90.4125, Radius: 250})
	mem.PutProfile(model.Profile{ID: "ana", Name: "Ana", Role: model.RoleOfficer, BranchID: utils.Ptr("b1")})
	mem.PutVehicle(model.Vehicle{ID: "bike", Name: "Bike", Type: model.VehicleMotorcycle})

	now := func() time.Time { return time.Date(2025, 10, 13, 9, 0, 0, 0, utils.DhakaTZ) }
	positions := core.NewReportedPositions(now)
	opts := core.DefaultOptions()
	opts.PositionTimeout = 50 * time.Millisecond
	opts.SampleInterval = time.Hour

	svc := core.NewService(core.Dependencies{
		Stores: core.Stores{
			Attendance: mem.Attendance(),
			Locations:  mem.Locations(),
			Profiles:   mem.Profiles(),
			Branches:   mem.Branches(),
			Vehicles:   mem.Vehicles(),
			Expenses:   mem.Expenses(),
		},
		Positions: positions,
		Logger:    log.New(io.Discard, "", 0),
		Now:       now,
	}, opts)
	sessions := core.NewRegistry(svc)
	t.Cleanup(sessions.CloseAll)

	secret, err := security.DecodeSecret(testSecret)
	require.NoError(t, err)
	r := gin.New()
	api := r.Group("/api", middlewares.Authentication(secret, "fieldforce"))
	handlers.Register(api, common.Handler{Service: svc, Sessions: sessions, Positions: positions, Now: now})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem
}

func newClient(t *testing.T, srv *httptest.Server, userID string) *FieldforceClient {
	t.Helper()
	token, err := security.CreateIdentityToken(&model.Profile{ID: userID, Role: model.RoleOfficer, BranchID: utils.Ptr("b1")}, testSecret, "fieldforce", time.Hour)
	require.NoError(t, err)
	return NewFieldforceClient(srv.URL, token)
}

func TestFieldforceClient(t *testing.T) {
	srv, _ := newTestServer(t)
	client := newClient(t, srv, "ana")
	ctx := context.Background()

	me, err := client.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Profile.Name)
	require.NotNil(t, me.Geofence)
	assert.Equal(t, 250.0, me.Geofence.Radius)

	_, err = client.Attendance.CheckIn(ctx, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "timeout", apiErr.Kind)

	require.NoError(t, client.Positions.Report(ctx, Fix{Lat: 23.8103, Lng: 90.4125, Accuracy: utils.Ptr(5.0)}))
	rec, err := client.Attendance.CheckIn(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPresent, rec.Status)

	tracking, err := client.Tracking.Start(ctx, &Fix{Lat: 23.83, Lng: 90.4125})
	require.NoError(t, err)
	assert.True(t, tracking.Tracking)
	assert.Equal(t, model.StatusOnField, tracking.Record.Status)

	live, err := client.Live.Snapshot(ctx)
	require.NoError(t, err)
	for _, e := range live.Entries {
		assert.Equal(t, "ana", e.UserID)
	}

	_, err = client.Tracking.Stop(ctx, nil)
	require.NoError(t, err)

	rec, err = client.Attendance.CheckOut(ctx, &Fix{Lat: 23.8103, Lng: 90.4125})
	require.NoError(t, err)
	assert.NotNil(t, rec.CheckOut)

	e, err := client.Expenses.Create(ctx, core.ExpenseInput{Type: model.ExpenseToll, VehicleID: utils.Ptr("bike"), Amount: 60, Date: "2025-10-13"})
	require.NoError(t, err)
	assert.Equal(t, 60.0, e.Amount)

	expenses, err := client.Expenses.List(ctx, "2025-10")
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	require.NoError(t, client.Logout(ctx))
}

func TestTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain":
			http.Error(w, "gateway down", http.StatusBadGateway)
		case "/violation":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"you are 50 m outside the geo-fence","kind":"geofence_violation","overage":50}`))
		default:
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "2025-10", r.URL.Query().Get("month"))
			_, _ = w.Write([]byte(`{"data":[{"id":"e1","amount":5}]}`))
		}
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, "tok")
	ctx := context.Background()

	_, err := tr.Do(ctx, http.MethodGet, "/plain", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "gateway down")

	_, err = tr.Do(ctx, http.MethodPost, "/violation", Fix{}, nil)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "geofence_violation", apiErr.Kind)
	require.NotNil(t, apiErr.Overage)
	assert.Equal(t, 50.0, *apiErr.Overage)

	expenses, err := (&ExpenseEndpoint{transport: tr}).List(ctx, "2025-10")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "e1", expenses[0].ID)
}
