package report

import (
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core"
)

// Marker kinds
const (
	MarkerCheckIn    = "checkin"
	MarkerLead       = "lead"
	MarkerInspection = "inspection"
)

type (
	// Period is a half-open UTC time range [From, To).
	Period struct {
		From time.Time `query:"from"`
		To   time.Time `query:"to"`
	}

	// Marker is one renderable map point, sourced from any of the
	// geo-tagged resources.
	Marker struct {
		Kind    string     `json:"kind"`
		RefID   int        `json:"ref_id"`
		UserID  null.Int   `json:"user_id,omitempty"`
		Title   string     `json:"title"`
		Address string     `json:"address,omitempty"`
		Point   core.Point `json:"point"`
		At      time.Time  `json:"at"`
	}

	// TimedPoint is one GPS fix in visit order.
	TimedPoint struct {
		core.Point
		At time.Time `json:"at"`
	}

	// TripSummary describes the day's movement derived from ordered check-ins.
	TripSummary struct {
		UserID      int           `json:"user_id"`
		Stops       int           `json:"stops"`
		TotalKm     float64       `json:"total_km"`
		AvgLegKm    float64       `json:"avg_leg_km"`
		Span        time.Duration `json:"span"`
		AvgSpeedKmh float64       `json:"avg_speed_kmh"`
	}

	// RouteSuggestion compares the actual visit order with a
	// nearest-neighbour reordering of the same stops.
	RouteSuggestion struct {
		UserID      int     `json:"user_id"`
		ActualKm    float64 `json:"actual_km"`
		OptimizedKm float64 `json:"optimized_km"`
		SavingKm    float64 `json:"saving_km"`
		SavingPct   float64 `json:"saving_pct"`
		VisitOrder  []int   `json:"visit_order"` // indexes into the actual stop sequence
	}

	// MapDataReport is the heterogeneous marker/analytics collection rendered
	// on the map view.
	MapDataReport struct {
		OrgID       int               `json:"org_id"`
		BranchID    null.Int          `json:"branch_id,omitempty"`
		Period      Period            `json:"period"`
		Markers     []Marker          `json:"markers"`
		Trips       []TripSummary     `json:"trips"`
		Suggestions []RouteSuggestion `json:"suggestions"`
		GeneratedAt time.Time         `json:"generated_at"`
	}

	// ClaimTotals sums claim amounts by status over the period.
	ClaimTotals struct {
		PendingCount  int     `json:"pending_count"`
		ApprovedCount int     `json:"approved_count"`
		RejectedCount int     `json:"rejected_count"`
		PendingSum    float64 `json:"pending_sum"`
		ApprovedSum   float64 `json:"approved_sum"`
		RejectedSum   float64 `json:"rejected_sum"`
	}

	// FunnelStage is one lead-status bucket with its conversion share.
	FunnelStage struct {
		Status        string  `json:"status"`
		Count         int     `json:"count"`
		ConversionPct float64 `json:"conversion_pct"`
	}

	// UserActivity is one user's activity line in the org report.
	UserActivity struct {
		UserID   int     `json:"user_id"`
		Name     string  `json:"name"`
		CheckIns int     `json:"check_ins"`
		Leads    int     `json:"leads"`
		Journals int     `json:"journals"`
		SalesSum float64 `json:"sales_sum"`
	}

	// BranchActivity is one branch's rollup in the org report.
	BranchActivity struct {
		BranchID int     `json:"branch_id"`
		Name     string  `json:"name"`
		CheckIns int     `json:"check_ins"`
		Leads    int     `json:"leads"`
		SalesSum float64 `json:"sales_sum"`
	}

	// OrgActivityReport is the org-wide activity/analytics rollup.
	OrgActivityReport struct {
		OrgID         int              `json:"org_id"`
		Period        Period           `json:"period"`
		CheckIns      int              `json:"check_ins"`
		Leads         int              `json:"leads"`
		Journals      int              `json:"journals"`
		SalesSum      float64          `json:"sales_sum"`
		GrowthPct     float64          `json:"growth_pct"` // vs previous period of equal length
		Claims        ClaimTotals      `json:"claims"`
		Funnel        []FunnelStage    `json:"funnel"`
		Branches      []BranchActivity `json:"branches"`
		Users         []UserActivity   `json:"users"`
		TopPerformers []UserActivity   `json:"top_performers"`
		GeneratedAt   time.Time        `json:"generated_at"`
	}

	// TargetProjection extrapolates month-to-date sales to month end.
	TargetProjection struct {
		MonthlyTarget  float64 `json:"monthly_target"`
		MonthToDate    float64 `json:"month_to_date"`
		Projected      float64 `json:"projected"`
		AchievementPct float64 `json:"achievement_pct"` // projected vs target
	}

	// UserDailyReport summarizes one user's day for the daily email.
	UserDailyReport struct {
		UserID        int              `json:"user_id"`
		Name          string           `json:"name"`
		Day           time.Time        `json:"day"`
		CheckIns      int              `json:"check_ins"`
		OpenCheckIns  int              `json:"open_check_ins"`
		AvgVisitMins  float64          `json:"avg_visit_mins"`
		FirstActivity null.Time        `json:"first_activity,omitempty"`
		LastActivity  null.Time        `json:"last_activity,omitempty"`
		DistanceKm    float64          `json:"distance_km"`
		SalesSum      float64          `json:"sales_sum"`
		LeadsAdded    int              `json:"leads_added"`
		ClaimsFiled   int              `json:"claims_filed"`
		Wellness      int              `json:"wellness"`     // 0-100
		Productivity  int              `json:"productivity"` // 0-100
		Target        TargetProjection `json:"target"`
		GeneratedAt   time.Time        `json:"generated_at"`
	}
)

// NewDayPeriod returns the UTC day [00:00, 24:00) containing t.
func NewDayPeriod(t time.Time) Period {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Period{From: from, To: from.Add(24 * time.Hour)}
}

func (p *Period) Clean() {
	now := time.Now().UTC()
	if p.To.IsZero() {
		p.To = now
	}
	if p.From.IsZero() {
		p.From = p.To.Add(-24 * time.Hour)
	}
	p.From, p.To = p.From.UTC(), p.To.UTC()
}

// Previous returns the period of equal length immediately before p.
func (p Period) Previous() Period {
	length := p.To.Sub(p.From)
	return Period{From: p.From.Add(-length), To: p.From}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

func (p Period) CacheKey() string {
	return fmt.Sprintf("%d:%d", p.From.Unix(), p.To.Unix())
}
