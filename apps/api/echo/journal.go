package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/journal"
)

type journalApi struct {
	svc journal.ServiceInterface
}

func registerJournalAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc journal.ServiceInterface) {
	api := journalApi{svc: svc}

	jg := g.Group("/journals", jwt)
	jg.POST("", api.create)
	jg.GET("", api.query)
	jg.DELETE("", api.destroyMultiple, managerMiddleware())
	jg.POST("/restore", api.restore, managerMiddleware())
	jg.DELETE("/purge", api.purge, adminMiddleware())
	jg.GET("/:id", api.retrieve)
	jg.PUT("/:id", api.update)
}

func (api *journalApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data journal.NewJournal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJournal")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	data.OrgID = claims.OrgID
	data.BranchID = claims.Branch()
	data.UserID = claims.UserID()

	j, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating journal")
	}
	return respond(ctx, http.StatusCreated, j)
}

func (api *journalApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(journal.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return respondList(ctx, []journal.Journal{}, core.ListMeta{})
	}
	filter.Clean()
	filter.OrgID = claims.OrgID

	ordering := new(Ordering)
	ordering.Bind(ctx, "kind", "title", "score", "created_at", "updated_at")

	journals, total, err := api.svc.Filter(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying journals")
	}
	return respondList(ctx, journals, core.NewListMeta(filter.Pagination, total))
}

func (api *journalApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	j, err := api.svc.GetByID(ctx.Request().Context(), claims.OrgID, id)
	if err != nil {
		return errors.Wrap(err, "finding journal")
	}
	return respond(ctx, http.StatusOK, j)
}

func (api *journalApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data journal.UpdateJournal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateJournal")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	j, err := api.svc.Update(ctx.Request().Context(), claims.OrgID, id, data)
	if err != nil {
		return errors.Wrap(err, "updating journal")
	}
	return respond(ctx, http.StatusOK, j)
}

func (api *journalApi) destroyMultiple(ctx echo.Context) error {
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
		return errors.Wrap(err, "deleting journals")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *journalApi) restore(ctx echo.Context) error {
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
		return errors.Wrap(err, "restoring journals")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *journalApi) purge(ctx echo.Context) error {
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
		return errors.Wrap(err, "purging journals")
	}
	return ctx.NoContent(http.StatusNoContent)
}
