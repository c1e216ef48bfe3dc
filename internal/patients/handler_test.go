package patients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haniwon/clinic-platform/pkg/logging"
)

func TestCreatePatient_Success(t *testing.T) {
	repo := NewInMemoryRepository()
	handler := NewHandler(repo, logging.Default())

	reqBody := CreatePatientRequest{
		Name:  "김철수",
		Phone: "010-1234-5678",
		Memo:  "허리 통증",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/patients", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var patient Patient
	if err := json.NewDecoder(w.Body).Decode(&patient); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if patient.Name != reqBody.Name {
		t.Errorf("expected name %s, got %s", reqBody.Name, patient.Name)
	}
	if patient.ID == "" {
		t.Error("expected generated patient id")
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	handler := NewHandler(NewInMemoryRepository(), logging.Default())

	body, _ := json.Marshal(CreatePatientRequest{Phone: "010-0000-0000"})
	req := httptest.NewRequest(http.MethodPost, "/api/patients", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestListPatients(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, name := range []string{"김철수", "이영희"} {
		if _, err := repo.Create(ctx, &CreatePatientRequest{Name: name}); err != nil {
			t.Fatalf("seed patient: %v", err)
		}
	}
	handler := NewHandler(repo, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp struct {
		Patients []Patient `json:"patients"`
		Count    int       `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 patients, got %d", resp.Count)
	}
}

func TestFindByName(t *testing.T) {
	roster := []Patient{
		{ID: "p1", Name: "김철수"},
		{ID: "p2", Name: "이영희"},
	}

	if p := FindByName(roster, "이영희"); p == nil || p.ID != "p2" {
		t.Errorf("expected p2, got %+v", p)
	}
	if p := FindByName(roster, "이지은"); p != nil {
		t.Errorf("expected nil for unknown name, got %+v", p)
	}
	if p := FindByName(roster, ""); p != nil {
		t.Errorf("expected nil for empty name, got %+v", p)
	}
}
