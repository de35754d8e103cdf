package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/org"
)

// orgApi manages the caller's own organisation; organisations themselves are
// provisioned through the admin CLI.
type orgApi struct {
	svc org.ServiceInterface
}

func registerOrgAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc org.ServiceInterface) {
	api := orgApi{svc: svc}

	og := g.Group("/org", jwt)
	og.GET("", api.retrieve)
	og.PUT("", api.update, adminMiddleware())

	bg := og.Group("/branches")
	bg.GET("", api.queryBranches)
	bg.POST("", api.createBranch, adminMiddleware())
	bg.GET("/:id", api.retrieveBranch)
	bg.PUT("/:id", api.updateBranch, adminMiddleware())
}

func (api *orgApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	o, err := api.svc.GetByID(ctx.Request().Context(), claims.OrgID)
	if err != nil {
		return errors.Wrap(err, "finding organisation")
	}
	return respond(ctx, http.StatusOK, o)
}

func (api *orgApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), claims.OrgID)
	if err != nil {
		return errors.Wrap(err, "finding organisation")
	}

	var data org.UpdateOrganisation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateOrganisation")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	o, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating organisation")
	}
	return respond(ctx, http.StatusOK, o)
}

func (api *orgApi) queryBranches(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(org.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respond(ctx, http.StatusOK, []org.Branch{})
	}
	filter.Clean()

	branches, err := api.svc.FilterBranches(ctx.Request().Context(), claims.OrgID, *filter)
	if err != nil {
		return errors.Wrap(err, "querying branches")
	}
	if branches == nil {
		branches = []org.Branch{}
	}
	return respond(ctx, http.StatusOK, branches)
}

func (api *orgApi) createBranch(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data org.NewBranch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBranch")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID

	b, err := api.svc.CreateBranch(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating branch")
	}
	return respond(ctx, http.StatusCreated, b)
}

func (api *orgApi) retrieveBranch(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	b, err := api.svc.GetBranchByID(ctx.Request().Context(), claims.OrgID, id)
	if err != nil {
		return errors.Wrap(err, "finding branch")
	}
	return respond(ctx, http.StatusOK, b)
}

func (api *orgApi) updateBranch(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetBranchByID(ctx.Request().Context(), claims.OrgID, id)
	if err != nil {
		return errors.Wrap(err, "finding branch")
	}

	var data org.UpdateBranch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBranch")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	b, err := api.svc.UpdateBranch(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating branch")
	}
	return respond(ctx, http.StatusOK, b)
}
