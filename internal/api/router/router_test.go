package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/internal/chat"
	"github.com/haniwon/clinic-platform/internal/inventory"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/prescription"
	"github.com/haniwon/clinic-platform/internal/schedule"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// newTestServer wires the full in-memory stack behind the real router.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logging.Default()
	gate := ambiguity.NewGate([]string{"작약", "복령"})

	patientRepo := patients.NewInMemoryRepository()
	inventoryRepo := inventory.NewInMemoryRepository()
	prescriptionRepo := prescription.NewInMemoryRepository()
	scheduleRepo := schedule.NewInMemoryRepository()

	inventorySvc := inventory.NewService(inventoryRepo, logger, nil)

	hub := chat.NewHub()
	chatStore := chat.NewMemoryStore()
	chatSvc := chat.NewService(chatStore, hub, gate, inventorySvc, logger, "prescription", "관리자")

	prescriptionSvc := prescription.NewService(
		prescriptionRepo, patientRepo, scheduleRepo, chatSvc, nil,
		gate, nil, logger, "prescription",
	)

	handler := New(&Config{
		Logger:              logger,
		PatientsHandler:     patients.NewHandler(patientRepo, logger),
		InventoryHandler:    inventory.NewHandler(inventoryRepo, logger),
		PrescriptionHandler: prescription.NewHandler(prescriptionSvc, prescriptionRepo, logger),
		ScheduleHandler:     schedule.NewHandler(scheduleRepo, logger),
		ChatHandler:         chat.NewHandler(chatSvc, hub, 500, logger),
		CORSAllowedOrigins:  []string{"*"},
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// Seed a patient through the API itself.
	resp, err := http.Post(server.URL+"/api/patients/", "application/json",
		bytes.NewBufferString(`{"name":"김철수","phone":"010-1234-5678"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, inventoryRepo.Save(context.Background(),
		&inventory.Item{Name: "당귀", CurrentStock: 100, TargetStock: 100, Unit: "g"}))

	return server
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPrescriptionRegistrationEndToEnd(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/prescriptions/process",
		`{"text":"김철수님\n당귀 10g 천궁 8g\n물 1000ml\n식후 1시간","prescribedDate":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	// Follow-up appears on the calendar 15 days out.
	calResp, err := http.Get(server.URL + "/api/schedule?from=2024-03-16&to=2024-03-16")
	require.NoError(t, err)
	defer calResp.Body.Close()
	var cal map[string]any
	require.NoError(t, json.NewDecoder(calResp.Body).Decode(&cal))
	assert.EqualValues(t, 1, cal["count"])

	// Confirmation notice landed in the prescription room.
	histResp, err := http.Get(server.URL + "/api/chat/rooms/prescription/messages")
	require.NoError(t, err)
	defer histResp.Body.Close()
	var hist map[string]any
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&hist))
	assert.EqualValues(t, 1, hist["count"])
}

func TestPrescriptionDurationOverride(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/prescriptions/process",
		`{"text":"김철수님\n당귀 10g\n물 1000ml\n","prescribedDate":"2024-03-01","durationDays":30}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	// Follow-up lands 30 days out, not at the 15-day default.
	calResp, err := http.Get(server.URL + "/api/schedule?from=2024-03-31&to=2024-03-31")
	require.NoError(t, err)
	defer calResp.Body.Close()
	var cal map[string]any
	require.NoError(t, json.NewDecoder(calResp.Body).Decode(&cal))
	assert.EqualValues(t, 1, cal["count"])
}

func TestPrescriptionProcessBlocked(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/prescriptions/process",
		`{"text":"김철수님\n복령 10g\n물 1000ml\n","prescribedDate":"2024-03-01"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, []any{"복령"}, body["matches"])
	assert.Contains(t, body["rawText"], "복령 10g")
}

func TestPrescriptionProcessNeedsRegistration(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/prescriptions/process",
		`{"text":"이지은님\n당귀 10g\n물 1000ml\n","prescribedDate":"2024-03-01"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "needs_registration", body["status"])
	assert.Equal(t, "이지은", body["patientName"])
}

func TestChatSendBlockedInPrescriptionRoom(t *testing.T) {
	server := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/api/chat/rooms/prescription/messages",
		`{"sender":"원장","text":"김철수님\n작약 10g\n물\n"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, []any{"작약"}, body["matches"])
}

func TestChatSendDeductsInventory(t *testing.T) {
	server := newTestServer(t)

	resp, _ := postJSON(t, server.URL+"/api/chat/rooms/prescription/messages",
		`{"sender":"원장","text":"김철수님\n당귀 10g\n물 1000ml\n"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	invResp, err := http.Get(server.URL + "/api/inventory/")
	require.NoError(t, err)
	defer invResp.Body.Close()
	var inv struct {
		Items []inventory.Item `json:"items"`
	}
	require.NoError(t, json.NewDecoder(invResp.Body).Decode(&inv))
	require.Len(t, inv.Items, 1)
	assert.Equal(t, 90, inv.Items[0].CurrentStock)
}
