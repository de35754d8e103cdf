package report

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
)

// MapData assembles the heterogeneous marker collection plus per-user trip
// summaries and route suggestions for the map view.
func (svc *Service) MapData(ctx context.Context, orgID int, branchID null.Int, period Period) (MapDataReport, error) {
	period.Clean()

	key := mapDataKey(orgID, branchID, period)
	var cached MapDataReport
	if svc.cachedGet(ctx, key, &cached) {
		return cached, nil
	}

	var (
		checkins []checkin.CheckIn
		leads    []lead.Lead
		journals []journal.Journal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		checkins, _, err = svc.checkinRepo.FilterCheckIns(gctx, checkin.QueryFilter{
			OrgID: orgID, BranchID: branchID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		leads, _, err = svc.leadRepo.FilterLeads(gctx, lead.QueryFilter{
			OrgID: orgID, BranchID: branchID, DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	g.Go(func() error {
		var err error
		journals, _, err = svc.journalRepo.FilterJournals(gctx, journal.QueryFilter{
			OrgID: orgID, BranchID: branchID, Kind: journal.KindInspection,
			DateFrom: period.From, DateTo: period.To,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return MapDataReport{}, err
	}

	rep := MapDataReport{
		OrgID:       orgID,
		BranchID:    branchID,
		Period:      period,
		Markers:     svc.buildMarkers(ctx, checkins, leads, journals),
		GeneratedAt: time.Now().UTC(),
	}
	rep.Trips, rep.Suggestions = buildTrips(checkins)

	svc.cachedSet(ctx, key, rep, "mapdata")
	return rep, nil
}

func (svc *Service) buildMarkers(
	ctx context.Context,
	checkins []checkin.CheckIn,
	leads []lead.Lead,
	journals []journal.Journal,
) []Marker {
	markers := make([]Marker, 0, len(checkins)+len(leads)+len(journals))

	for _, c := range checkins {
		title := c.ContactName.String
		if title == "" {
			title = "Check-in"
		}
		markers = append(markers, Marker{
			Kind:    MarkerCheckIn,
			RefID:   c.ID,
			UserID:  null.IntFrom(c.UserID),
			Title:   title,
			Address: svc.resolveAddress(ctx, c.Address.String, c.Point()),
			Point:   c.Point(),
			At:      c.CheckedInAt,
		})
	}
	for _, l := range leads {
		if !l.HasLocation() {
			continue
		}
		markers = append(markers, Marker{
			Kind:    MarkerLead,
			RefID:   l.ID,
			UserID:  l.OwnerID,
			Title:   l.Name,
			Address: svc.resolveAddress(ctx, "", l.Point()),
			Point:   l.Point(),
			At:      l.CreatedAt,
		})
	}
	for _, j := range journals {
		if !j.HasLocation() {
			continue
		}
		markers = append(markers, Marker{
			Kind:    MarkerInspection,
			RefID:   j.ID,
			UserID:  null.IntFrom(j.UserID),
			Title:   j.Title,
			Address: svc.resolveAddress(ctx, "", j.Point()),
			Point:   j.Point(),
			At:      j.CreatedAt,
		})
	}

	sort.Slice(markers, func(i, k int) bool { return markers[i].At.Before(markers[k].At) })
	return markers
}

// resolveAddress falls back to reverse geocoding; the geocoder keeps its own
// cache and breaker, and a failed lookup just leaves the address empty.
func (svc *Service) resolveAddress(ctx context.Context, known string, pt core.Point) string {
	if known != "" || svc.geocoder == nil || pt.IsZero() {
		return known
	}
	addr, err := svc.geocoder.Reverse(ctx, pt)
	if err != nil {
		svc.logger.Debug("reverse geocoding marker", err)
		return ""
	}
	return addr
}

// buildTrips groups check-ins per user in visit order and derives the trip
// summary and route suggestion for each user with enough stops.
func buildTrips(checkins []checkin.CheckIn) ([]TripSummary, []RouteSuggestion) {
	byUser := make(map[int][]checkin.CheckIn)
	for _, c := range checkins {
		byUser[c.UserID] = append(byUser[c.UserID], c)
	}

	userIDs := make([]int, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Ints(userIDs)

	var trips []TripSummary
	var suggestions []RouteSuggestion
	for _, userID := range userIDs {
		visits := byUser[userID]
		sort.Slice(visits, func(i, k int) bool { return visits[i].CheckedInAt.Before(visits[k].CheckedInAt) })

		fixes := make([]TimedPoint, len(visits))
		stops := make([]core.Point, len(visits))
		for i, v := range visits {
			fixes[i] = TimedPoint{Point: v.Point(), At: v.CheckedInAt}
			stops[i] = v.Point()
		}

		trips = append(trips, SummarizeTrip(userID, fixes))
		if len(stops) >= 3 {
			suggestions = append(suggestions, SuggestRoute(userID, stops))
		}
	}
	return trips, suggestions
}
