package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/competitor"
)

type competitorApi struct {
	svc competitor.ServiceInterface
}

func registerCompetitorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc competitor.ServiceInterface) {
	api := competitorApi{svc: svc}

	cg := g.Group("/competitors", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, managerMiddleware())
	cg.POST("/restore", api.restore, managerMiddleware())
	cg.DELETE("/purge", api.purge, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
}

func (api *competitorApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data competitor.NewCompetitor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompetitor")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating competitor")
	}
	return respond(ctx, http.StatusCreated, c)
}

func (api *competitorApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(competitor.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []competitor.Competitor{}, core.ListMeta{})
	}
	filter.Clean()
	filter.OrgID = claims.OrgID

	ordering := new(Ordering)
	ordering.Bind(ctx, "name", "industry", "created_at", "updated_at")

	comps, total, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying competitors")
	}
	return respondList(ctx, comps, core.NewListMeta(filter.Pagination, total))
}

func (api *competitorApi) retrieve(ctx echo.Context) error {
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
		return errors.Wrap(err, "finding competitor")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *competitorApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data competitor.UpdateCompetitor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCompetitor")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating competitor")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *competitorApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting competitors")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *competitorApi) restore(ctx echo.Context) error {
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
		return errors.Wrap(err, "restoring competitors")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *competitorApi) purge(ctx echo.Context) error {
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
		return errors.Wrap(err, "purging competitors")
	}
	return ctx.NoContent(http.StatusNoContent)
}
