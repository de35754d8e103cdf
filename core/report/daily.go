package report

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/user"
)

// UserDaily summarizes one user's day: visits, movement, sales, wellness and
// productivity scores, and the month-end target projection.
func (svc *Service) UserDaily(ctx context.Context, orgID, userID int, period Period) (UserDailyReport, error) {
	if period.From.IsZero() {
		period = NewDayPeriod(time.Now().UTC())
	}

	usr, err := svc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return UserDailyReport{}, err
	}
	if usr.OrgID != orgID {
		return UserDailyReport{}, user.ErrNotFound
	}

	monthStart := time.Date(period.From.Year(), period.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	uid := null.IntFrom(userID)

	var (
		visits    []checkin.CheckIn
		mtdVisits []checkin.CheckIn
		leads     []lead.Lead
		claims    []claim.Claim
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visits, _, err = svc.checkinRepo.FilterCheckIns(gctx, checkin.QueryFilter{
			OrgID: orgID, UserID: uid, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		mtdVisits, _, err = svc.checkinRepo.FilterCheckIns(gctx, checkin.QueryFilter{
			OrgID: orgID, UserID: uid, DateFrom: monthStart, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		leads, _, err = svc.leadRepo.FilterLeads(gctx, lead.QueryFilter{
			OrgID: orgID, OwnerID: uid, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		claims, _, err = svc.claimRepo.FilterClaims(gctx, claim.QueryFilter{
			OrgID: orgID, UserID: uid, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return UserDailyReport{}, err
	}

	rep := UserDailyReport{
		UserID:      userID,
		Name:        usr.Name,
		Day:         period.From,
		CheckIns:    len(visits),
		LeadsAdded:  len(leads),
		ClaimsFiled: len(claims),
		GeneratedAt: time.Now().UTC(),
	}

	var visitTime time.Duration
	var closed int
	fixes := make([]TimedPoint, 0, len(visits))
	for _, v := range visits {
		rep.SalesSum += v.SaleAmount.Float64
		fixes = append(fixes, TimedPoint{Point: v.Point(), At: v.CheckedInAt})
		if d := v.Duration(); d > 0 {
			visitTime += d
			closed++
		} else {
			rep.OpenCheckIns++
		}
		setActivityBounds(&rep, v)
	}
	if closed > 0 {
		rep.AvgVisitMins = round1(visitTime.Minutes() / float64(closed))
	}
	rep.DistanceKm = round2(SummarizeTrip(userID, fixes).TotalKm)

	var workSpan time.Duration
	if rep.FirstActivity.Valid && rep.LastActivity.Valid {
		workSpan = rep.LastActivity.Time.Sub(rep.FirstActivity.Time)
	}
	rep.Wellness = WellnessScore(workSpan, visitTime)

	var mtdSales float64
	for _, v := range mtdVisits {
		mtdSales += v.SaleAmount.Float64
	}
	rep.Target = ProjectTarget(mtdSales, usr.MonthlyTarget.Float64, period.From)

	daysInMonth := time.Date(period.From.Year(), period.From.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	dailyTarget := usr.MonthlyTarget.Float64 / float64(daysInMonth)
	rep.Productivity = ProductivityScore(rep.CheckIns, rep.SalesSum, dailyTarget, rep.LeadsAdded)

	return rep, nil
}

// SendUserDaily generates the daily report and emails it to the user.
func (svc *Service) SendUserDaily(ctx context.Context, orgID, userID int, period Period) error {
	rep, err := svc.UserDaily(ctx, orgID, userID, period)
	if err != nil {
		return err
	}
	usr, err := svc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("Daily report - %s", rep.Day.Format("Mon 02 Jan 2006")),
		TemplateName: "daily_report",
		TemplateData: rep,
	})
	return nil
}

func setActivityBounds(rep *UserDailyReport, v checkin.CheckIn) {
	if !rep.FirstActivity.Valid || v.CheckedInAt.Before(rep.FirstActivity.Time) {
		rep.FirstActivity = null.TimeFrom(v.CheckedInAt)
	}
	last := v.CheckedInAt
	if v.CheckedOutAt.Valid {
		last = v.CheckedOutAt.Time
	}
	if !rep.LastActivity.Valid || last.After(rep.LastActivity.Time) {
		rep.LastActivity = null.TimeFrom(last)
	}
}
