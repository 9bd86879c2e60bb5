package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
)

const dateParamLayout = "2006-01-02"

type scheduleApi struct {
	svc    schedule.Service
	usrSvc user.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc schedule.Service, usrSvc user.Service) {
	api := scheduleApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/schedule", jwt)

	// sessions
	sg.POST("/sessions", api.create, teacherOrAdminMiddleware())
	sg.POST("/sessions/bulk", api.createBulk, teacherOrAdminMiddleware())
	sg.GET("/sessions", api.query)
	sg.DELETE("/sessions", api.destroyMultiple, adminMiddleware())
	sg.GET("/sessions/:id", api.retrieve)
	sg.PUT("/sessions/:id", api.update, teacherOrAdminMiddleware())
	sg.DELETE("/sessions/:id", api.destroy, adminMiddleware())
	sg.POST("/sessions/:id/complete", api.complete, teacherOrAdminMiddleware())
	sg.POST("/sessions/:id/cancel", api.cancel, teacherOrAdminMiddleware())

	// calendar views
	sg.GET("/calendar/day", api.day)
	sg.GET("/calendar/teachers/:id", api.teacherMonth)

	// reference data
	sg.GET("/class-templates", api.queryClassTemplates)
	sg.GET("/locations", api.queryLocations)
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.CreatedBy = claims.Subject

	sess, err := api.svc.ScheduleOne(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *scheduleApi) createBulk(ctx echo.Context) error {
	var data schedule.RecurrenceSpec
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecurrenceSpec")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.CreatedBy = claims.Subject

	res, err := api.svc.ScheduleRecurring(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	if res.Accepted == nil {
		res.Accepted = []schedule.Session{}
	}
	if res.Rejected == nil {
		res.Rejected = []schedule.RejectedCandidate{}
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *scheduleApi) query(ctx echo.Context) error {
	filter := new(schedule.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []schedule.Session{})
	}
	filter.Clean()

	sessions, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sess, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data schedule.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, err := api.svc.Edit(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) complete(ctx echo.Context) error {
	sess, err := api.svc.Complete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) cancel(ctx echo.Context) error {
	var data CancelSessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CancelSessionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sess, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"), data.Note)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) day(ctx echo.Context) error {
	date, err := time.Parse(dateParamLayout, ctx.QueryParam("date"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be of form YYYY-MM-DD"})
	}

	sessions, err := api.svc.ByDate(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "querying sessions by date")
	}
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) teacherMonth(ctx echo.Context) error {
	year, err := strconv.Atoi(ctx.QueryParam("year"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "year", Error: "a valid year is required"})
	}
	month, err := strconv.Atoi(ctx.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return core.NewValidationError(nil, core.FieldError{Field: "month", Error: "month must be between 1 and 12"})
	}

	// 404 unknown teachers rather than returning an empty schedule
	if _, err = api.usrSvc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}

	sessions, err := api.svc.TeacherMonth(ctx.Request().Context(), ctx.Param("id"), year, time.Month(month))
	if err != nil {
		return errors.Wrap(err, "querying teacher month")
	}
	if sessions == nil {
		sessions = []schedule.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *scheduleApi) queryClassTemplates(ctx echo.Context) error {
	templates, err := api.svc.QueryClassTemplates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying class templates")
	}
	if templates == nil {
		templates = []schedule.ClassTemplate{}
	}
	return ctx.JSON(http.StatusOK, templates)
}

func (api *scheduleApi) queryLocations(ctx echo.Context) error {
	locations, err := api.svc.QueryLocations(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying locations")
	}
	if locations == nil {
		locations = []schedule.Location{}
	}
	return ctx.JSON(http.StatusOK, locations)
}

type CancelSessionRequest struct {
	Note string `json:"note" validate:"required"`
}

func (cr *CancelSessionRequest) Validate() error {
	cr.Note = core.CleanString(cr.Note)
	return core.Validate.Struct(cr)
}
