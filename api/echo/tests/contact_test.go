package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/elimu/core/contact"
)

func Test_contactApi_submit(t *testing.T) {
	resetDB(t)

	t.Run("No auth needed", func(t *testing.T) {
		body := marchallObj(t, contact.NewMessage{
			Name:    "Jane Doe",
			Email:   "JANE@test.cd",
			Message: "Hello there",
		})
		req, rec := newRequest(http.MethodPost, "/api/contact", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var msg contact.Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Email != "jane@test.cd" {
			t.Errorf("email = %q; want it lowercased", msg.Email)
		}
		if msg.ID.IsZero() {
			t.Error("message not persisted")
		}
	})

	t.Run("Validation", func(t *testing.T) {
		body := marchallObj(t, contact.NewMessage{Name: "Jane", Email: "not-an-email", Message: "hi"})
		req, rec := newRequest(http.MethodPost, "/api/contact", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})
}
