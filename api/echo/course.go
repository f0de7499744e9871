package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/elimu/core/assignment"
	"github.com/trezcool/elimu/core/course"
	clerksvc "github.com/trezcool/elimu/services/clerk"
)

type courseApi struct {
	validate      *validator.Validate
	service       course.ServiceInterface
	assignmentSvc assignment.ServiceInterface
	profileSvc    clerksvc.ProfileService
}

func registerCourseAPI(g *echo.Group, auth echo.MiddlewareFunc, apiKey string, deps *Deps) {
	api := courseApi{
		validate:      deps.Validate,
		service:       deps.CourseSvc,
		assignmentSvc: deps.AssignmentSvc,
		profileSvc:    deps.ProfileSvc,
	}

	cg := g.Group("/courses")

	// public endpoints
	cg.GET("", api.courseQuery)
	cg.GET("/:id", api.courseRetrieve)

	// course creation accepts the shared API key as an alternate credential
	cg.POST("", api.courseCreate, apiKeyOrBearerMiddleware(apiKey, deps.TokenVerifier))

	// authed endpoints
	cg.GET("/enrolled", api.courseEnrolledSummary, auth)
	cg.GET("/user/enrolled", api.courseQueryEnrolled, auth)
	cg.PUT("/:id", api.courseUpdate, auth)
	cg.DELETE("/:id", api.courseDestroy, auth)
	cg.POST("/:id/enroll", api.courseEnroll, auth)
	cg.POST("/:id/progress", api.courseProgress, auth)
	cg.POST("/:id/lessons", api.lessonCreate, auth)
	cg.PUT("/:id/lessons/:lessonId", api.lessonUpdate, auth)
	cg.DELETE("/:id/lessons/:lessonId", api.lessonDestroy, auth)
	cg.POST("/:id/ratings", api.courseRate, auth)
	cg.GET("/:id/certificate", api.courseCertificate, auth)
}

// courseDetail decorates a course with the instructor's display profile.
type courseDetail struct {
	course.Course
	InstructorName string `json:"instructor_name"`
}

func objectIDParam(ctx echo.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(name))
	if err != nil {
		return primitive.NilObjectID, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *courseApi) courseQuery(ctx echo.Context) error {
	courses, err := api.service.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) courseRetrieve(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := api.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	// provider lookup degrades to a placeholder, never errors
	profile, _ := api.profileSvc.GetProfile(ctx.Request().Context(), crs.Instructor)
	return ctx.JSON(http.StatusOK, courseDetail{Course: crs, InstructorName: profile.FullName()})
}

func (api *courseApi) courseCreate(ctx echo.Context) error {
	data := new(course.NewCourse)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// instructor comes from the verified credential; the payload value is
	// only honored on the API-key path.
	instructor := Caller(ctx)
	if instructor == "" {
		instructor = data.Instructor
	}

	crs, err := api.service.Create(ctx.Request().Context(), instructor, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) courseUpdate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(course.UpdateCourse)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.service.Update(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) courseDestroy(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.service.Delete(ctx.Request().Context(), id, Caller(ctx)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) courseEnroll(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.service.Enroll(ctx.Request().Context(), id, Caller(ctx)); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "enrolled"})
}

type progressRequest struct {
	LessonID string `json:"lesson_id" validate:"required"`
}

func (api *courseApi) courseProgress(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(progressRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	lessonID, err := primitive.ObjectIDFromHex(data.LessonID)
	if err != nil {
		return course.ErrLessonNotFound
	}

	es, err := api.service.CompleteLesson(ctx.Request().Context(), id, Caller(ctx), lessonID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, es)
}

func (api *courseApi) courseQueryEnrolled(ctx echo.Context) error {
	courses, err := api.service.QueryByStudent(ctx.Request().Context(), Caller(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

// courseEnrolledSummary is the student dashboard: per enrolled course, lesson
// completion counts and the average graded submission score.
func (api *courseApi) courseEnrolledSummary(ctx echo.Context) error {
	caller := Caller(ctx)
	reqCtx := ctx.Request().Context()

	courses, err := api.service.QueryByStudent(reqCtx, caller)
	if err != nil {
		return err
	}
	averages, err := api.assignmentSvc.StudentCourseAverages(reqCtx, caller)
	if err != nil {
		return err
	}

	summaries := make([]course.EnrolledSummary, 0, len(courses))
	for _, crs := range courses {
		summary := course.EnrolledSummary{
			CourseID:     crs.ID,
			Title:        crs.Title,
			Description:  crs.Description,
			TotalLessons: len(crs.Lessons),
		}
		for _, es := range crs.EnrolledStudents {
			if es.StudentID == caller {
				summary.CompletedLessons = len(es.CompletedLessons)
				break
			}
		}
		if avg, ok := averages[crs.ID]; ok {
			avg := avg
			summary.AverageGrade = &avg
		}
		summaries = append(summaries, summary)
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *courseApi) lessonCreate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(course.LessonInput)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.service.AddLesson(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lesson)
}

func (api *courseApi) lessonUpdate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	lessonID, err := objectIDParam(ctx, "lessonId")
	if err != nil {
		return err
	}
	data := new(course.LessonInput)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	lesson, err := api.service.UpdateLesson(ctx.Request().Context(), id, Caller(ctx), lessonID, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lesson)
}

func (api *courseApi) lessonDestroy(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	lessonID, err := objectIDParam(ctx, "lessonId")
	if err != nil {
		return err
	}
	if err = api.service.DeleteLesson(ctx.Request().Context(), id, Caller(ctx), lessonID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) courseRate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(course.NewRating)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.service.Rate(ctx.Request().Context(), id, Caller(ctx), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) courseCertificate(ctx echo.Context) error {
	id, err := objectIDParam(ctx, "id")
	if err != nil {
		return err
	}
	caller := Caller(ctx)

	profile, _ := api.profileSvc.GetProfile(ctx.Request().Context(), caller)
	name := profile.FullName()
	if name == "Unknown User" {
		name = "Student"
	}

	cert, err := api.service.Certificate(ctx.Request().Context(), id, caller, name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cert)
}
