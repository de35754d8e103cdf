package lead

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// ErrNotFound is returned when no live Lead matches.
var ErrNotFound = errors.New("lead not found")

// BatchChunkSize is the number of leads committed per import transaction.
// A failing chunk rolls back alone; the rest of the batch proceeds.
const BatchChunkSize = 200

type (
	Repository interface {
		CreateLead(ctx context.Context, l Lead) (Lead, error)
		// CreateLeads inserts all rows in one transaction; on error the whole
		// chunk is rolled back and none of the rows exist.
		CreateLeads(ctx context.Context, leads []Lead) ([]Lead, error)
		GetLeadByID(ctx context.Context, orgID, id int) (Lead, error)
		FilterLeads(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Lead, int, error)
		UpdateLead(ctx context.Context, l Lead) (Lead, error)
		SoftDeleteLeads(ctx context.Context, orgID int, ids ...int) error
		RestoreLeads(ctx context.Context, orgID int, ids ...int) error
		HardDeleteLeads(ctx context.Context, orgID int, ids ...int) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nl NewLead) (Lead, error)
		BatchCreate(ctx context.Context, bc BatchCreate) (BatchResult, error)
		GetByID(ctx context.Context, orgID, id int) (Lead, error)
		Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Lead, int, error)
		Update(ctx context.Context, orgID, id int, ul UpdateLead) (Lead, error)
		Assign(ctx context.Context, orgID, id int, ownerID null.Int) (Lead, error)
		Delete(ctx context.Context, orgID int, ids ...int) error
		Restore(ctx context.Context, orgID int, ids ...int) error
		HardDelete(ctx context.Context, orgID int, ids ...int) error
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func newLead(nl NewLead, now time.Time) Lead {
	return Lead{
		OrgID:     nl.OrgID,
		BranchID:  nl.BranchID,
		OwnerID:   nl.OwnerID,
		Name:      nl.Name,
		Company:   nl.Company,
		Phone:     nl.Phone,
		Email:     nl.Email,
		Source:    nl.Source,
		Status:    nl.Status,
		Value:     nl.Value,
		Lat:       nl.Lat,
		Lng:       nl.Lng,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (svc *Service) Create(ctx context.Context, nl NewLead) (Lead, error) {
	return svc.repo.CreateLead(ctx, newLead(nl, time.Now().UTC()))
}

// BatchCreate imports leads in chunks of BatchChunkSize, one transaction per
// chunk. A failing chunk is reported and rolled back without aborting the
// remaining chunks.
func (svc *Service) BatchCreate(ctx context.Context, bc BatchCreate) (BatchResult, error) {
	now := time.Now().UTC()
	res := BatchResult{
		BatchID: uuid.NewString(),
		Total:   len(bc.Leads),
	}

	for from := 0; from < len(bc.Leads); from += BatchChunkSize {
		to := from + BatchChunkSize
		if to > len(bc.Leads) {
			to = len(bc.Leads)
		}

		chunk := make([]Lead, 0, to-from)
		for _, nl := range bc.Leads[from:to] {
			nl.OrgID = bc.OrgID
			nl.BranchID = bc.BranchID
			chunk = append(chunk, newLead(nl, now))
		}

		cres := BatchChunkResult{FromIndex: from, ToIndex: to}
		if _, err := svc.repo.CreateLeads(ctx, chunk); err != nil {
			cres.Error = err.Error()
			res.Failed += to - from
			svc.logger.Warn("lead batch chunk failed", err, map[string]interface{}{
				"batch_id": res.BatchID, "from": from, "to": to,
			})
		} else {
			cres.Created = to - from
			res.Created += to - from
		}
		res.Chunks = append(res.Chunks, cres)
	}
	return res, nil
}

func (svc *Service) GetByID(ctx context.Context, orgID, id int) (Lead, error) {
	return svc.repo.GetLeadByID(ctx, orgID, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Lead, int, error) {
	return svc.repo.FilterLeads(ctx, filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orgID, id int, ul UpdateLead) (Lead, error) {
	orig, err := svc.repo.GetLeadByID(ctx, orgID, id)
	if err != nil {
		return Lead{}, err
	}
	if ul.OwnerID.Valid {
		orig.OwnerID = ul.OwnerID
	}
	if ul.Name != "" {
		orig.Name = ul.Name
	}
	if ul.Company.Valid {
		orig.Company = core.CleanString(ul.Company.String)
	}
	if ul.Phone.Valid {
		orig.Phone = core.CleanString(ul.Phone.String)
	}
	if ul.Email.Valid {
		orig.Email = core.CleanString(ul.Email.String, true /* lower */)
	}
	if ul.Source.Valid {
		orig.Source = core.CleanString(ul.Source.String, true /* lower */)
	}
	if ul.Status != "" {
		orig.Status = ul.Status
	}
	if ul.Value.Valid {
		orig.Value = ul.Value
	}
	if ul.Lat.Valid {
		orig.Lat = ul.Lat
	}
	if ul.Lng.Valid {
		orig.Lng = ul.Lng
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLead(ctx, orig)
}

func (svc *Service) Assign(ctx context.Context, orgID, id int, ownerID null.Int) (Lead, error) {
	orig, err := svc.repo.GetLeadByID(ctx, orgID, id)
	if err != nil {
		return Lead{}, err
	}
	orig.OwnerID = ownerID
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateLead(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.SoftDeleteLeads(ctx, orgID, ids...)
}

func (svc *Service) Restore(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.RestoreLeads(ctx, orgID, ids...)
}

func (svc *Service) HardDelete(ctx context.Context, orgID int, ids ...int) error {
	return svc.repo.HardDeleteLeads(ctx, orgID, ids...)
}
