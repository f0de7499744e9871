package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	echoapi "github.com/trezcool/elimu/api/echo"
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/contact"
	"github.com/trezcool/elimu/core/course"
	"github.com/trezcool/elimu/core/discussion"
	"github.com/trezcool/elimu/core/notification"
	"github.com/trezcool/elimu/core/user"
	clerksvc "github.com/trezcool/elimu/services/clerk"
	emailsvc "github.com/trezcool/elimu/services/email"
	inmemdb "github.com/trezcool/elimu/storage/inmem"
)

const testAPIKey = "test-api-key"

var (
	db  *inmemdb.DB
	app echoapi.Server

	usrSvc        user.ServiceInterface
	courseSvc     course.ServiceInterface
	assignmentSvc assignment.ServiceInterface
	discussionSvc discussion.ServiceInterface
	notifSvc      notification.ServiceInterface

	errNotAuthenticated = httpErr{Error: "user not authenticated"}
)

// tokenStub accepts tokens of the form "valid:<subject>".
type tokenStub struct{}

func (tokenStub) Verify(token string) (string, error) {
	if sub, ok := strings.CutPrefix(token, "valid:"); ok && sub != "" {
		return sub, nil
	}
	return "", clerksvc.ErrInvalidToken
}

// webhookStub accepts deliveries carrying our test signature header.
type webhookStub struct{}

func (webhookStub) Verify(payload []byte, headers http.Header) error {
	if headers.Get("Svix-Signature") == "valid" {
		return nil
	}
	return errors.New("no matching signature found")
}

// profileStub mirrors the real client: lookups degrade to a placeholder.
type profileStub struct {
	profiles map[string]clerksvc.Profile
}

func (s *profileStub) GetProfile(_ context.Context, userID string) (clerksvc.Profile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return clerksvc.Profile{ID: userID}, nil
}

func TestMain(m *testing.M) {
	var err error

	// set up DB & repos
	if db, err = inmemdb.Open(); err != nil {
		fmt.Printf("inmemdb.Open(): %v", err)
		os.Exit(1)
	}

	// set up services
	conf := &core.Config{AppName: "Elimu", DefaultFromEmail: "noreply@test.cd"}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := core.NopLogger{}

	usrSvc = user.NewService(inmemdb.NewUserRepository(db))
	courseSvc = course.NewService(inmemdb.NewCourseRepository(db))
	notifSvc = notification.NewService(inmemdb.NewNotificationRepository(db))
	assignmentSvc = assignment.NewService(inmemdb.NewAssignmentRepository(db), courseSvc, notifSvc, nil, logger)
	discussionSvc = discussion.NewService(inmemdb.NewDiscussionRepository(db), courseSvc, notifSvc, logger)
	contactSvc := contact.NewService(inmemdb.NewContactRepository(db), mailSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	app = echoapi.NewServer(
		echoapi.Options{
			TestMode:       true,
			DisableReqLogs: true,
			CourseAPIKey:   testAPIKey,
		},
		&echoapi.Deps{
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			TokenVerifier:   tokenStub{},
			ProfileSvc:      &profileStub{profiles: map[string]clerksvc.Profile{}},
			WebhookVerifier: webhookStub{},
			UserSvc:         usrSvc,
			CourseSvc:       courseSvc,
			AssignmentSvc:   assignmentSvc,
			DiscussionSvc:   discussionSvc,
			NotificationSvc: notifSvc,
			ContactSvc:      contactSvc,
		},
	)

	os.Exit(m.Run())
}

func resetDB(t *testing.T) {
	t.Helper()
	db.Reset()
}

func getToken(userID string) string {
	return "valid:" + userID
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// fixtures

func createCourse(t *testing.T, instructorID string) course.Course {
	t.Helper()
	c, err := courseSvc.Create(context.Background(), instructorID, course.NewCourse{
		Title:       "Intro to Go",
		Description: "From zero to gopher",
		Category:    "programming",
		Level:       course.LevelBeginner,
		Status:      course.StatusPublished,
	})
	if err != nil {
		t.Fatalf("createCourse(): %v", err)
	}
	return c
}

func addLesson(t *testing.T, courseID primitive.ObjectID, instructorID, title string) course.Lesson {
	t.Helper()
	lesson, err := courseSvc.AddLesson(context.Background(), courseID, instructorID, course.LessonInput{
		Title:       title,
		ContentType: course.ContentText,
		Content:     "some content",
	})
	if err != nil {
		t.Fatalf("addLesson(): %v", err)
	}
	return lesson
}

func enroll(t *testing.T, courseID primitive.ObjectID, studentID string) {
	t.Helper()
	if err := courseSvc.Enroll(context.Background(), courseID, studentID); err != nil {
		t.Fatalf("enroll(): %v", err)
	}
}
