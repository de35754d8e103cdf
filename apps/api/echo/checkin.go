package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
)

type checkinApi struct {
	svc checkin.ServiceInterface
}

func registerCheckInAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc checkin.ServiceInterface) {
	api := checkinApi{svc: svc}

	cg := g.Group("/check-ins", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, managerMiddleware())
	cg.POST("/restore", api.restore, managerMiddleware())
	cg.DELETE("/purge", api.purge, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.POST("/:id/checkout", api.checkOut)
}

func (api *checkinApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data checkin.NewCheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCheckIn")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()
	data.UserID = claims.UserID()

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating check-in")
	}
	return respond(ctx, http.StatusCreated, c)
}

func (api *checkinApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(checkin.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []checkin.CheckIn{}, core.ListMeta{})
	}
	filter.Clean()
	filter.OrgID = claims.OrgID
	// agents only see their own visits
	if !(claims.IsAdmin || claims.IsManager) {
		filter.UserID = null.IntFrom(claims.UserID())
	}

	ordering := new(Ordering)
	ordering.Bind(ctx, "checked_in_at", "checked_out_at", "sale_amount", "created_at", "updated_at")

	checkins, total, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying check-ins")
	}
	return respondList(ctx, checkins, core.NewListMeta(filter.Pagination, total))
}

func (api *checkinApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.GetByID(ctx.Request().Context(), claims.OrgID, id)
	if err != nil {
		return errors.Wrap(err, "finding check-in")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *checkinApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data checkin.UpdateCheckIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCheckIn")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating check-in")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *checkinApi) checkOut(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data checkin.CheckOut
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckOut")
	}

	c, err := api.svc.CheckOut(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "checking out")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *checkinApi) destroyMultiple(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var query IDsRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to IDsRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.OrgID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting check-ins")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *checkinApi) restore(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var query IDsRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to IDsRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Restore(ctx.Request().Context(), claims.OrgID, query.IDs...); err != nil {
		return errors.Wrap(err, "restoring check-ins")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *checkinApi) purge(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var query IDsRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to IDsRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.HardDelete(ctx.Request().Context(), claims.OrgID, query.IDs...); err != nil {
		return errors.Wrap(err, "purging check-ins")
	}
	return ctx.NoContent(http.StatusNoContent)
}
