package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/service"
)

func TestBatchHandlers(t *testing.T) {
	batches := &mockBatches{list: []models.Batch{
		{ID: "b2", Name: "Peas Run", TrayType: "Perforated"},
		{ID: "b1", Name: "Berries Run"},
	}}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Batches: batches})

	w := doRequest(r, http.MethodGet, "/api/v1/batches", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d", w.Code)
	}
	var list struct {
		Count   int            `json:"count"`
		Batches []models.Batch `json:"batches"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 2 || list.Batches[0].ID != "b2" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if w = doRequest(r, http.MethodGet, "/api/v1/batches/b1", ""); w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	if w = doRequest(r, http.MethodGet, "/api/v1/batches/zzz", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get missing status=%d", w.Code)
	}

	w = doRequest(r, http.MethodPatch, "/api/v1/batches/b1", `{"result_notes":"crisp"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status=%d body=%s", w.Code, w.Body.String())
	}
	if batches.lastID != "b1" || batches.lastNotes != "crisp" {
		t.Fatalf("notes call = %q %q", batches.lastID, batches.lastNotes)
	}
}

func TestBatchHandlers_PatchErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing batch", service.ErrBatchNotFound, http.StatusNotFound},
		{"storage failure", errors.New("readonly database"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: &mockAuth{}, Batches: &mockBatches{notesErr: tc.err}})
			if w := doRequest(r, http.MethodPatch, "/api/v1/batches/b1", `{"result_notes":"x"}`); w.Code != tc.want {
				t.Fatalf("status=%d, want %d", w.Code, tc.want)
			}
		})
	}
}
