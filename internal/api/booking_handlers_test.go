package api

import (
	"bytes"
	"context"
	"curevet/internal/booking"
	"curevet/internal/db"
	"curevet/internal/entities"
	"curevet/internal/ratelimit"
	"curevet/internal/service"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu           sync.Mutex
	nextID       int64
	reservations map[string]db.Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{reservations: make(map[string]db.Reservation)}
}

func (f *fakeStore) Insert(_ context.Context, res *db.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%d", res.ServiceKey, res.BookingDate.Format("2006-01-02"), res.StartMinutes)
	if _, taken := f.reservations[key]; taken {
		return booking.ErrSlotTaken
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now().UTC()
	f.reservations[key] = *res
	return nil
}

func (f *fakeStore) ListReservedStarts(_ context.Context, serviceKey string, date time.Time) ([]booking.TimeOfDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var starts []booking.TimeOfDay
	for _, res := range f.reservations {
		if res.ServiceKey == serviceKey && res.BookingDate.Equal(date) {
			starts = append(starts, booking.TimeOfDay(res.StartMinutes))
		}
	}
	return starts, nil
}

func (f *fakeStore) GetByCode(_ context.Context, code, email string) (*db.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.reservations {
		if res.Code == code && res.UserEmail == email {
			r := res
			return &r, nil
		}
	}
	return nil, fmt.Errorf("reservation with code '%s' not found", code)
}

func (f *fakeStore) GetServiceByKey(_ context.Context, key string) (*db.Service, error) {
	if key == "vet-1" {
		return &db.Service{ID: 1, Key: "vet-1", Name: "General Checkup"}, nil
	}
	return nil, booking.ErrUnknownService
}

func (f *fakeStore) ListServices(_ context.Context) ([]db.Service, error) {
	return []db.Service{{ID: 1, Key: "vet-1", Name: "General Checkup"}}, nil
}

func fullWeekSchedule(t *testing.T) booking.WeekSchedule {
	t.Helper()
	open, err := booking.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	closeAt, err := booking.ParseTimeOfDay("17:00")
	require.NoError(t, err)
	hours := booking.BusinessHours{Open: open, Close: closeAt, SlotMinutes: 60}
	schedule := booking.WeekSchedule{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		schedule[day] = hours
	}
	return schedule
}

func newTestRouter(t *testing.T, limiterMax int64) (*mux.Router, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	limiter := ratelimit.NewFixedWindowLimiter(ratelimit.NewMemoryCounterStore(), limiterMax, time.Minute)
	svc := service.NewBookingService(store, limiter, nil, nil, fullWeekSchedule(t))
	handler := NewBookingHandler(svc)

	r := mux.NewRouter()
	r.HandleFunc("/api/services", handler.ListServices).Methods("GET")
	r.HandleFunc("/api/availability", handler.GetAvailability).Methods("GET")
	r.HandleFunc("/api/reservations", handler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", handler.GetReservation).Methods("GET")
	return r, store
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func postReservation(t *testing.T, router *mux.Router, body map[string]interface{}, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/reservations", bytes.NewReader(payload))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func reservationBody(start string) map[string]interface{} {
	return map[string]interface{}{
		"service":          "vet-1",
		"date":             futureDate(),
		"start":            start,
		"duration_minutes": 60,
		"name":             "Jordan Doe",
		"email":            "jordan@example.com",
	}
}

func TestBookingFlow_EndToEnd(t *testing.T) {
	router, _ := newTestRouter(t, 100)

	// First booking of 09:00 wins.
	rec := postReservation(t, router, reservationBody("09:00"), "10.0.0.1:1234")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created ReservedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Reserved)
	assert.NotZero(t, created.Reserved.ID)
	assert.Equal(t, "09:00", created.Reserved.Start)

	// Second booking of the same slot loses with a definite conflict.
	rec = postReservation(t, router, reservationBody("09:00"), "10.0.0.2:1234")
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict ConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.NotEmpty(t, conflict.Conflict)

	// Availability no longer lists 09:00 but still lists the rest of the day.
	req := httptest.NewRequest("GET", "/api/availability?service=vet-1&date="+futureDate(), nil)
	availRec := httptest.NewRecorder()
	router.ServeHTTP(availRec, req)
	require.Equal(t, http.StatusOK, availRec.Code)

	var avail entities.AvailabilityResponse
	require.NoError(t, json.Unmarshal(availRec.Body.Bytes(), &avail))
	assert.NotContains(t, avail.AvailableSlots, "09:00")
	assert.Equal(t, []string{"10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}, avail.AvailableSlots)

	// The winner can look up their reservation by code.
	req = httptest.NewRequest("GET", "/api/reservations/"+created.Reserved.Code+"?email=jordan@example.com", nil)
	lookupRec := httptest.NewRecorder()
	router.ServeHTTP(lookupRec, req)
	assert.Equal(t, http.StatusOK, lookupRec.Code)
}

func TestCreateReservation_Throttled(t *testing.T) {
	router, store := newTestRouter(t, 2)

	starts := []string{"09:00", "10:00", "11:00"}
	codes := make([]int, 0, len(starts))
	for _, start := range starts {
		rec := postReservation(t, router, reservationBody(start), "10.0.0.1:1234")
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	assert.Len(t, store.reservations, 2, "the throttled attempt must not book anything")

	// A different client identity still has its own budget.
	rec := postReservation(t, router, reservationBody("11:00"), "10.0.0.9:1234")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateReservation_InvalidInput(t *testing.T) {
	router, store := newTestRouter(t, 100)

	body := reservationBody("09:00")
	body["email"] = "not-an-email"
	delete(body, "name")

	rec := postReservation(t, router, body, "10.0.0.1:1234")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var invalid InvalidResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invalid))
	assert.Contains(t, invalid.Invalid, "useremail")
	assert.Contains(t, invalid.Invalid, "username")
	assert.Empty(t, store.reservations)
}

func TestCreateReservation_OffGridSlot(t *testing.T) {
	router, store := newTestRouter(t, 100)

	rec := postReservation(t, router, reservationBody("09:30"), "10.0.0.1:1234")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, store.reservations)
}

func TestCreateReservation_PastDate(t *testing.T) {
	router, store := newTestRouter(t, 100)

	body := reservationBody("09:00")
	body["date"] = "2020-01-06"

	rec := postReservation(t, router, body, "10.0.0.1:1234")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, store.reservations)
}

func TestCreateReservation_UnknownService(t *testing.T) {
	router, _ := newTestRouter(t, 100)

	body := reservationBody("09:00")
	body["service"] = "grooming"

	rec := postReservation(t, router, body, "10.0.0.1:1234")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAvailability_MissingParams(t *testing.T) {
	router, _ := newTestRouter(t, 100)

	req := httptest.NewRequest("GET", "/api/availability?service=vet-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientIdentity_StableAndOpaque(t *testing.T) {
	r1 := httptest.NewRequest("POST", "/api/reservations", nil)
	r1.RemoteAddr = "10.0.0.1:1111"
	r2 := httptest.NewRequest("POST", "/api/reservations", nil)
	r2.RemoteAddr = "10.0.0.1:2222"

	// Same host, different ports: one identity. The raw address never appears.
	assert.Equal(t, clientIdentity(r1), clientIdentity(r2))
	assert.NotContains(t, clientIdentity(r1), "10.0.0.1")

	r3 := httptest.NewRequest("POST", "/api/reservations", nil)
	r3.RemoteAddr = "10.0.0.1:1111"
	r3.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.NotEqual(t, clientIdentity(r1), clientIdentity(r3))
}
