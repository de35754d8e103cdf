package report

import (
	"math"
	"time"

	"github.com/trezcool/kazi/core"
)

const earthRadiusKm = 6371.0

// scoring norms
const (
	normWorkDay       = 8 * time.Hour
	overworkThreshold = 9 * time.Hour
	minBreakRatio     = 0.1

	normDailyVisits = 8
	normDailyLeads  = 3
)

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(a, b core.Point) float64 {
	lat1, lng1 := a.Lat*math.Pi/180, a.Lng*math.Pi/180
	lat2, lng2 := b.Lat*math.Pi/180, b.Lng*math.Pi/180

	dLat, dLng := lat2-lat1, lng2-lng1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// PathKm sums the leg distances of a point sequence in visit order.
func PathKm(points []core.Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Haversine(points[i-1], points[i])
	}
	return total
}

// SummarizeTrip derives a GPS trip summary from time-ordered fixes.
func SummarizeTrip(userID int, fixes []TimedPoint) TripSummary {
	ts := TripSummary{UserID: userID, Stops: len(fixes)}
	if len(fixes) < 2 {
		return ts
	}

	points := make([]core.Point, len(fixes))
	for i, f := range fixes {
		points[i] = f.Point
	}
	ts.TotalKm = PathKm(points)
	ts.AvgLegKm = ts.TotalKm / float64(len(fixes)-1)
	ts.Span = fixes[len(fixes)-1].At.Sub(fixes[0].At)
	if hours := ts.Span.Hours(); hours > 0 {
		ts.AvgSpeedKmh = ts.TotalKm / hours
	}
	return ts
}

// SuggestRoute reorders the stops by nearest neighbour from the first stop
// and reports the potential saving against the actual order. Fewer than three
// stops cannot be improved.
func SuggestRoute(userID int, stops []core.Point) RouteSuggestion {
	rs := RouteSuggestion{UserID: userID, ActualKm: PathKm(stops)}
	if len(stops) < 3 {
		rs.OptimizedKm = rs.ActualKm
		rs.VisitOrder = identityOrder(len(stops))
		return rs
	}

	visited := make([]bool, len(stops))
	order := make([]int, 0, len(stops))
	order = append(order, 0)
	visited[0] = true
	curr := 0

	for len(order) < len(stops) {
		next, best := -1, math.MaxFloat64
		for i, seen := range visited {
			if seen {
				continue
			}
			if d := Haversine(stops[curr], stops[i]); d < best {
				next, best = i, d
			}
		}
		order = append(order, next)
		visited[next] = true
		curr = next
	}

	ordered := make([]core.Point, len(order))
	for i, idx := range order {
		ordered[i] = stops[idx]
	}
	rs.OptimizedKm = PathKm(ordered)

	// keep the actual order when the reordering is no better
	if rs.OptimizedKm >= rs.ActualKm {
		rs.OptimizedKm = rs.ActualKm
		rs.VisitOrder = identityOrder(len(stops))
		return rs
	}

	rs.VisitOrder = order
	rs.SavingKm = rs.ActualKm - rs.OptimizedKm
	if rs.ActualKm > 0 {
		rs.SavingPct = round1(rs.SavingKm / rs.ActualKm * 100)
	}
	return rs
}

// GrowthRate is the percentage change from previous to current.
// A zero previous period reports 100% growth when anything happened at all.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1((current - previous) / previous * 100)
}

// ConversionRate is part as a percentage of whole.
func ConversionRate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// WellnessScore scores a workday on a 0-100 scale: long days past the
// overwork threshold and days without breaks both cost points.
func WellnessScore(workSpan, visitTime time.Duration) int {
	if workSpan <= 0 {
		return 100
	}
	score := 100.0

	// overwork: -10 per hour past the threshold
	if workSpan > overworkThreshold {
		score -= (workSpan - overworkThreshold).Hours() * 10
	}

	// breaks: time not spent in visits, as a share of the day
	breakRatio := 1 - float64(visitTime)/float64(workSpan)
	if breakRatio < 0 {
		breakRatio = 0
	}
	if breakRatio < minBreakRatio {
		score -= 15
	}

	return clampScore(score)
}

// ProductivityScore blends visit count, sales against the daily target and
// leads added into a 0-100 score (40/40/20 weights). A zero target shifts its
// weight onto visits.
func ProductivityScore(visits int, sales, dailyTarget float64, leadsAdded int) int {
	visitRatio := capRatio(float64(visits) / normDailyVisits)
	leadRatio := capRatio(float64(leadsAdded) / normDailyLeads)

	var score float64
	if dailyTarget > 0 {
		salesRatio := capRatio(sales / dailyTarget)
		score = visitRatio*40 + salesRatio*40 + leadRatio*20
	} else {
		score = visitRatio*80 + leadRatio*20
	}
	return clampScore(score)
}

// ProjectTarget extrapolates month-to-date sales linearly to month end and
// compares against the monthly target.
func ProjectTarget(monthToDate, monthlyTarget float64, day time.Time) TargetProjection {
	day = day.UTC()
	daysInMonth := time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	elapsed := day.Day()

	tp := TargetProjection{MonthlyTarget: monthlyTarget, MonthToDate: monthToDate}
	if elapsed > 0 {
		tp.Projected = round2(monthToDate / float64(elapsed) * float64(daysInMonth))
	}
	if monthlyTarget > 0 {
		tp.AchievementPct = round1(tp.Projected / monthlyTarget * 100)
	}
	return tp
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func capRatio(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func clampScore(s float64) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return int(math.Round(s))
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
