package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/discussion"
)

func createThread(t *testing.T, courseID primitive.ObjectID, author string) discussion.Thread {
	t.Helper()
	thread, err := discussionSvc.Create(context.Background(), author, discussion.NewThread{
		Title:    "How do goroutines work?",
		Content:  "Asking for a friend",
		Course:   courseID.Hex(),
		Category: discussion.CategoryQuestion,
	})
	if err != nil {
		t.Fatalf("createThread(): %v", err)
	}
	return thread
}

func Test_discussionApi_threadCreate(t *testing.T) {
	resetDB(t)

	c := createCourse(t, "user_instructor")
	enroll(t, c.ID, "user_student")
	body := marchallObj(t, discussion.NewThread{
		Title:   "First post",
		Content: "hello",
		Course:  c.ID.Hex(),
	})

	tests := []httpTest{
		{
			name: "Auth required", body: body,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated),
		},
		{
			name: "Participant required", body: body, token: getToken("user_rando"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "not enrolled in this course"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/discussions", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Created with default category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/discussions", getToken("user_student"), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var thread discussion.Thread
		if err := json.Unmarshal(rec.Body.Bytes(), &thread); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if thread.Author != "user_student" {
			t.Errorf("author = %q; want the verified caller", thread.Author)
		}
		if thread.Category != discussion.CategoryGeneral {
			t.Errorf("category = %q; want the default %q", thread.Category, discussion.CategoryGeneral)
		}
	})
}

func Test_discussionApi_replies(t *testing.T) {
	resetDB(t)

	c := createCourse(t, "user_instructor")
	enroll(t, c.ID, "user_student")
	enroll(t, c.ID, "user_other")
	thread := createThread(t, c.ID, "user_student")
	base := "/api/discussions/" + thread.ID.Hex()

	var replyID primitive.ObjectID
	t.Run("Reply", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, base+"/replies", getToken("user_other"),
			marchallObj(t, discussion.NewReply{Content: "lightweight threads"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got discussion.Thread
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got.Replies) != 1 || got.Replies[0].Author != "user_other" {
			t.Fatalf("replies = %+v; want one by user_other", got.Replies)
		}
		replyID = got.Replies[0].ID
	})

	t.Run("React toggles", func(t *testing.T) {
		path := base + "/replies/" + replyID.Hex() + "/reactions"
		body := marchallObj(t, discussion.ReactionInput{Type: discussion.ReactionLike})

		req, rec := newAuthRequest(http.MethodPost, path, getToken("user_student"), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got discussion.Thread
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got.Replies[0].Reactions) != 1 {
			t.Fatalf("reactions = %+v; want one", got.Replies[0].Reactions)
		}

		// same reaction again removes it
		req, rec = newAuthRequest(http.MethodPost, path, getToken("user_student"), body)
		app.ServeHTTP(rec, req)
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got.Replies[0].Reactions) != 0 {
			t.Errorf("reactions = %+v; want none after toggle", got.Replies[0].Reactions)
		}
	})

	t.Run("Accept answer is author-only", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "not the author"})}
		req, rec := newAuthRequest(http.MethodPost, base+"/replies/"+replyID.Hex()+"/accept", getToken("user_other"))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		req, rec = newAuthRequest(http.MethodPost, base+"/replies/"+replyID.Hex()+"/accept", getToken("user_student"))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got discussion.Thread
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !got.Replies[0].IsAcceptedAnswer {
			t.Error("reply not marked as accepted answer")
		}
	})

	t.Run("Locked thread rejects replies", func(t *testing.T) {
		locked := true
		req, rec := newAuthRequest(http.MethodPut, base, getToken("user_student"),
			marchallObj(t, discussion.UpdateThread{IsLocked: &locked}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("lock failed: %s", rec.Body.String())
		}

		tt := httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "thread is locked"})}
		req, rec = newAuthRequest(http.MethodPost, base+"/replies", getToken("user_other"),
			marchallObj(t, discussion.NewReply{Content: "too late"}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
