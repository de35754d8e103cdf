package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/claim"
)

type claimApi struct {
	svc claim.ServiceInterface
}

func registerClaimAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc claim.ServiceInterface) {
	api := claimApi{svc: svc}

	cg := g.Group("/claims", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, managerMiddleware())
	cg.POST("/restore", api.restore, managerMiddleware())
	cg.DELETE("/purge", api.purge, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.POST("/:id/review", api.review, managerMiddleware())
}

func (api *claimApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data claim.NewClaim
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClaim")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()
	data.UserID = claims.UserID()

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating claim")
	}
	return respond(ctx, http.StatusCreated, c)
}

func (api *claimApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(claim.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []claim.Claim{}, core.ListMeta{})
	}
	filter.Clean()
	filter.OrgID = claims.OrgID
	// agents only see their own claims
	if !(claims.IsAdmin || claims.IsManager) {
		filter.UserID = null.IntFrom(claims.UserID())
	}

	ordering := new(Ordering)
	ordering.Bind(ctx, "amount", "category", "status", "reviewed_at", "created_at", "updated_at")

	cls, total, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying claims")
	}
	return respondList(ctx, cls, core.NewListMeta(filter.Pagination, total))
}

func (api *claimApi) retrieve(ctx echo.Context) error {
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
		return errors.Wrap(err, "finding claim")
	}
	// agents only see their own claims
	if !(claims.IsAdmin || claims.IsManager) && c.UserID != claims.UserID() {
		return errHttpNotFound
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *claimApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data claim.UpdateClaim
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClaim")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating claim")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *claimApi) review(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data claim.Review
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}
	data.ReviewerID = claims.UserID()

	c, err := api.svc.Review(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "reviewing claim")
	}
	return respond(ctx, http.StatusOK, c)
}

func (api *claimApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting claims")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *claimApi) restore(ctx echo.Context) error {
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
		return errors.Wrap(err, "restoring claims")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *claimApi) purge(ctx echo.Context) error {
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
		return errors.Wrap(err, "purging claims")
	}
	return ctx.NoContent(http.StatusNoContent)
}
