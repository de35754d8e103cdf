package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/report"
)

type reportApi struct {
	svc report.ServiceInterface
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc report.ServiceInterface) {
	api := reportApi{svc: svc}

	rg := g.Group("/reports", jwt)
	rg.GET("/map-data", api.mapData)
	rg.GET("/org-activity", api.orgActivity, managerMiddleware())
	rg.GET("/daily", api.userDaily)
	rg.POST("/daily/send", api.sendUserDaily)
}

type mapDataRequest struct {
	report.Period
	BranchID null.Int `query:"branch_id"`
}

func (api *reportApi) mapData(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var query mapDataRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to mapDataRequest")
	}
	query.Period.Clean()

	rpt, err := api.svc.MapData(ctx.Request().Context(), claims.OrgID, query.BranchID, query.Period)
	if err != nil {
		return errors.Wrap(err, "generating map data report")
	}
	return respond(ctx, http.StatusOK, rpt)
}

func (api *reportApi) orgActivity(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var period report.Period
	if err := ctx.Bind(&period); err != nil {
		return errors.Wrap(err, "binding to Period")
	}
	period.Clean()

	rpt, err := api.svc.OrgActivity(ctx.Request().Context(), claims.OrgID, period)
	if err != nil {
		return errors.Wrap(err, "generating activity report")
	}
	return respond(ctx, http.StatusOK, rpt)
}

type dailyReportRequest struct {
	UserID int       `query:"user_id"`
	Day    time.Time `query:"day"`
}

// targetUser resolves the report subject: the caller by default, any
// same-org user for managers and admins.
func (q *dailyReportRequest) targetUser(claims Claims) (int, error) {
	if q.UserID == 0 || q.UserID == claims.UserID() {
		return claims.UserID(), nil
	}
	if !(claims.IsAdmin || claims.IsManager) {
		return 0, errHttpForbidden
	}
	return q.UserID, nil
}

func (q *dailyReportRequest) period() report.Period {
	if q.Day.IsZero() {
		return report.NewDayPeriod(time.Now())
	}
	return report.NewDayPeriod(q.Day)
}

func (api *reportApi) userDaily(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var query dailyReportRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to dailyReportRequest")
	}
	userID, err := query.targetUser(claims)
	if err != nil {
		return err
	}

	rpt, err := api.svc.UserDaily(ctx.Request().Context(), claims.OrgID, userID, query.period())
	if err != nil {
		return errors.Wrap(err, "generating daily report")
	}
	return respond(ctx, http.StatusOK, rpt)
}

func (api *reportApi) sendUserDaily(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// echo only binds query params on GET/DELETE
	var query dailyReportRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		return errors.Wrap(err, "binding to dailyReportRequest")
	}
	userID, err := query.targetUser(claims)
	if err != nil {
		return err
	}

	if err := api.svc.SendUserDaily(ctx.Request().Context(), claims.OrgID, userID, query.period()); err != nil {
		return errors.Wrap(err, "sending daily report")
	}
	return respond(ctx, http.StatusOK, nil)
}
