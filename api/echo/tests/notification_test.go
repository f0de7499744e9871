package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/notification"
)

func notify(t *testing.T, userID, msg string) notification.Notification {
	t.Helper()
	err := notifSvc.Notify(context.Background(), notification.NewNotification{
		UserID:     userID,
		Type:       notification.TypeNewReply,
		SourceID:   primitive.NewObjectID(),
		SourceType: notification.SourceDiscussion,
		Message:    msg,
		Link:       "/discussions/abc",
	})
	if err != nil {
		t.Fatalf("notify(): %v", err)
	}
	notifs, err := notifSvc.QueryByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("notify(): %v", err)
	}
	return notifs[0] // newest first
}

func Test_notificationApi_query(t *testing.T) {
	resetDB(t)

	n1 := notify(t, "user_abc", "first")
	n2 := notify(t, "user_abc", "second")
	notify(t, "user_other", "not yours")

	tests := []httpTest{
		{
			name: "Auth required", path: "/api/notifications",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated),
		},
		{
			// newest first, scoped to the caller
			name: "Own notifications", path: "/api/notifications", token: getToken("user_abc"),
			wantCode: http.StatusOK, wantData: marchallList(t, n2, n1),
		},
		{
			name: "No notifications", path: "/api/notifications", token: getToken("user_quiet"),
			wantCode: http.StatusOK, wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_notificationApi_markRead(t *testing.T) {
	resetDB(t)

	n := notify(t, "user_abc", "read me")
	path := "/api/notifications/" + n.ID.Hex() + "/read"

	t.Run("Someone else's notification", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "notification not found"})}
		req, rec := newAuthRequest(http.MethodPut, path, getToken("user_other"))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Own notification", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken("user_abc"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got notification.Notification
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !got.IsRead {
			t.Error("notification not marked read")
		}
	})
}
