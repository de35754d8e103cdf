package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/lead"
)

type leadApi struct {
	svc lead.ServiceInterface
}

func registerLeadAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc lead.ServiceInterface) {
	api := leadApi{svc: svc}

	lg := g.Group("/leads", jwt)
	lg.POST("", api.create)
	lg.POST("/batch", api.batchCreate, managerMiddleware())
	lg.GET("", api.query)
	lg.DELETE("", api.destroyMultiple, managerMiddleware())
	lg.POST("/restore", api.restore, managerMiddleware())
	lg.DELETE("/purge", api.purge, adminMiddleware())
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update)
	lg.POST("/:id/assign", api.assign, managerMiddleware())
}

func (api *leadApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data lead.NewLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLead")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()
	if !data.OwnerID.Valid {
		data.OwnerID = null.IntFrom(claims.UserID())
	}

	l, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lead")
	}
	return respond(ctx, http.StatusCreated, l)
}

// batchCreate imports leads in bulk; the result reports success per chunk.
func (api *leadApi) batchCreate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data lead.BatchCreate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchCreate")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()

	res, err := api.svc.BatchCreate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "importing leads")
	}

	code := http.StatusCreated
	if res.Failed > 0 {
		code = http.StatusMultiStatus
	}
	return respond(ctx, code, res)
}

func (api *leadApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(lead.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []lead.Lead{}, core.ListMeta{})
	}
	filter.Clean()
	filter.OrgID = claims.OrgID

	ordering := new(Ordering)
	ordering.Bind(ctx, "name", "status", "value", "created_at", "updated_at")

	leads, total, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying leads")
	}
	return respondList(ctx, leads, core.NewListMeta(filter.Pagination, total))
}

func (api *leadApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	l, err := api.svc.GetByID(ctx.Request().Context(), claims.OrgID, id)
	if err != nil {
		return errors.Wrap(err, "finding lead")
	}
	return respond(ctx, http.StatusOK, l)
}

func (api *leadApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data lead.UpdateLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLead")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	l, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating lead")
	}
	return respond(ctx, http.StatusOK, l)
}

func (api *leadApi) assign(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data AssignRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignRequest")
	}

	l, err := api.svc.Assign(ctx.Request().Context(), claims.OrgID, id, data.OwnerID)
	if err != nil {
		return errors.Wrap(err, "assigning lead")
	}
	return respond(ctx, http.StatusOK, l)
}

func (api *leadApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting leads")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *leadApi) restore(ctx echo.Context) error {
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
		return errors.Wrap(err, "restoring leads")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *leadApi) purge(ctx echo.Context) error {
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
		return errors.Wrap(err, "purging leads")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// AssignRequest sets (or clears) a lead's owner.
type AssignRequest struct {
	OwnerID null.Int `json:"owner_id"`
}
