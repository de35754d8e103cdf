package report

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/user"
)

const topPerformerCount = 5

// OrgActivity rolls up the organisation's activity over the period: per-user
// and per-branch counts, claim totals, the lead funnel, and growth against
// the previous period of equal length.
func (svc *Service) OrgActivity(ctx context.Context, orgID int, period Period) (OrgActivityReport, error) {
	period.Clean()

	key := orgActivityKey(orgID, period)
	var cached OrgActivityReport
	if svc.cachedGet(ctx, key, &cached) {
		return cached, nil
	}

	var (
		checkins     []checkin.CheckIn
		prevCheckins []checkin.CheckIn
		leads        []lead.Lead
		journals     []journal.Journal
		claims       []claim.Claim
		users        []user.User
		branches     []org.Branch
	)
	prev := period.Previous()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		checkins, _, err = svc.checkinRepo.FilterCheckIns(gctx, checkin.QueryFilter{
			OrgID: orgID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		prevCheckins, _, err = svc.checkinRepo.FilterCheckIns(gctx, checkin.QueryFilter{
			OrgID: orgID, DateFrom: prev.From, DateTo: prev.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		leads, _, err = svc.leadRepo.FilterLeads(gctx, lead.QueryFilter{
			OrgID: orgID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		journals, _, err = svc.journalRepo.FilterJournals(gctx, journal.QueryFilter{
			OrgID: orgID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		claims, _, err = svc.claimRepo.FilterClaims(gctx, claim.QueryFilter{
			OrgID: orgID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		users, err = svc.userRepo.FilterUsers(gctx, user.QueryFilter{OrgID: orgID})
		return err
	})
	g.Go(func() error {
		var err error
		branches, err = svc.orgRepo.FilterBranches(gctx, orgID, org.QueryFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return OrgActivityReport{}, err
	}

	rep := OrgActivityReport{
		OrgID:       orgID,
		Period:      period,
		CheckIns:    len(checkins),
		Leads:       len(leads),
		Journals:    len(journals),
		Claims:      sumClaims(claims),
		Funnel:      buildFunnel(leads),
		GeneratedAt: time.Now().UTC(),
	}

	var prevSales float64
	for _, c := range prevCheckins {
		prevSales += c.SaleAmount.Float64
	}
	for _, c := range checkins {
		rep.SalesSum += c.SaleAmount.Float64
	}
	rep.GrowthPct = GrowthRate(rep.SalesSum, prevSales)

	rep.Users = buildUserActivity(users, checkins, leads, journals)
	rep.Branches = buildBranchActivity(branches, checkins, leads)
	rep.TopPerformers = topPerformers(rep.Users)

	svc.cachedSet(ctx, key, rep, "activity")
	return rep, nil
}

func sumClaims(claims []claim.Claim) ClaimTotals {
	var ct ClaimTotals
	for _, c := range claims {
		switch c.Status {
		case claim.StatusPending:
			ct.PendingCount++
			ct.PendingSum += c.Amount
		case claim.StatusApproved:
			ct.ApprovedCount++
			ct.ApprovedSum += c.Amount
		case claim.StatusRejected:
			ct.RejectedCount++
			ct.RejectedSum += c.Amount
		}
	}
	return ct
}

// buildFunnel buckets leads by status; each stage's conversion is its share
// of the total lead count over the period.
func buildFunnel(leads []lead.Lead) []FunnelStage {
	counts := make(map[string]int, len(lead.FunnelStatuses))
	for _, l := range leads {
		counts[l.Status]++
	}

	funnel := make([]FunnelStage, 0, len(lead.FunnelStatuses))
	for _, status := range lead.FunnelStatuses {
		funnel = append(funnel, FunnelStage{
			Status:        status,
			Count:         counts[status],
			ConversionPct: ConversionRate(counts[status], len(leads)),
		})
	}
	return funnel
}

func buildUserActivity(
	users []user.User,
	checkins []checkin.CheckIn,
	leads []lead.Lead,
	journals []journal.Journal,
) []UserActivity {
	byID := make(map[int]*UserActivity, len(users))
	acts := make([]UserActivity, len(users))
	for i, u := range users {
		acts[i] = UserActivity{UserID: u.ID, Name: u.Name}
		byID[u.ID] = &acts[i]
	}

	for _, c := range checkins {
		if ua, ok := byID[c.UserID]; ok {
			ua.CheckIns++
			ua.SalesSum += c.SaleAmount.Float64
		}
	}
	for _, l := range leads {
		if ua, ok := byID[l.OwnerID.Int]; ok && l.OwnerID.Valid {
			ua.Leads++
		}
	}
	for _, j := range journals {
		if ua, ok := byID[j.UserID]; ok {
			ua.Journals++
		}
	}
	return acts
}

func buildBranchActivity(branches []org.Branch, checkins []checkin.CheckIn, leads []lead.Lead) []BranchActivity {
	byID := make(map[int]*BranchActivity, len(branches))
	acts := make([]BranchActivity, len(branches))
	for i, b := range branches {
		acts[i] = BranchActivity{BranchID: b.ID, Name: b.Name}
		byID[b.ID] = &acts[i]
	}

	for _, c := range checkins {
		if ba, ok := byID[c.BranchID.Int]; ok && c.BranchID.Valid {
			ba.CheckIns++
			ba.SalesSum += c.SaleAmount.Float64
		}
	}
	for _, l := range leads {
		if ba, ok := byID[l.BranchID.Int]; ok && l.BranchID.Valid {
			ba.Leads++
		}
	}
	return acts
}

// topPerformers ranks users by sales, then check-ins, keeping the busiest few.
func topPerformers(users []UserActivity) []UserActivity {
	top := make([]UserActivity, len(users))
	copy(top, users)
	sort.Slice(top, func(i, k int) bool {
		if top[i].SalesSum != top[k].SalesSum {
			return top[i].SalesSum > top[k].SalesSum
		}
		return top[i].CheckIns > top[k].CheckIns
	})
	if len(top) > topPerformerCount {
		top = top[:topPerformerCount]
	}
	return top
}
