package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kazi/core"
)

var (
	kinshasa = core.Point{Lat: -4.4419, Lng: 15.2663}
	lubum    = core.Point{Lat: -11.6876, Lng: 27.5026}
	matadi   = core.Point{Lat: -5.8167, Lng: 13.4500}
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name   string
		a, b   core.Point
		wantKm float64
	}{
		{name: "same point", a: kinshasa, b: kinshasa, wantKm: 0},
		{name: "kinshasa-lubumbashi", a: kinshasa, b: lubum, wantKm: 1569},
		{name: "symmetric", a: lubum, b: kinshasa, wantKm: 1569},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, Haversine(tt.a, tt.b), 10)
		})
	}
}

func TestPathKm(t *testing.T) {
	assert.Zero(t, PathKm(nil))
	assert.Zero(t, PathKm([]core.Point{kinshasa}))

	// a round trip doubles the one-way distance
	oneWay := Haversine(kinshasa, lubum)
	assert.InDelta(t, 2*oneWay, PathKm([]core.Point{kinshasa, lubum, kinshasa}), 0.001)
}

func TestSummarizeTrip(t *testing.T) {
	start := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	t.Run("too few fixes", func(t *testing.T) {
		ts := SummarizeTrip(1, []TimedPoint{{Point: kinshasa, At: start}})
		assert.Equal(t, 1, ts.Stops)
		assert.Zero(t, ts.TotalKm)
	})

	t.Run("multi-leg trip", func(t *testing.T) {
		fixes := []TimedPoint{
			{Point: kinshasa, At: start},
			{Point: matadi, At: start.Add(2 * time.Hour)},
			{Point: lubum, At: start.Add(5 * time.Hour)},
		}
		ts := SummarizeTrip(1, fixes)
		assert.Equal(t, 3, ts.Stops)
		assert.Equal(t, 5*time.Hour, ts.Span)
		assert.InDelta(t, PathKm([]core.Point{kinshasa, matadi, lubum}), ts.TotalKm, 0.001)
		assert.InDelta(t, ts.TotalKm/2, ts.AvgLegKm, 0.001)
		assert.InDelta(t, ts.TotalKm/5, ts.AvgSpeedKmh, 0.001)
	})
}

func TestSuggestRoute(t *testing.T) {
	t.Run("too few stops", func(t *testing.T) {
		rs := SuggestRoute(1, []core.Point{kinshasa, lubum})
		assert.Equal(t, rs.ActualKm, rs.OptimizedKm)
		assert.Equal(t, []int{0, 1}, rs.VisitOrder)
		assert.Zero(t, rs.SavingKm)
	})

	t.Run("detour gets reordered", func(t *testing.T) {
		// visiting the far stop in the middle wastes distance
		stops := []core.Point{kinshasa, lubum, matadi}
		rs := SuggestRoute(1, stops)
		assert.Less(t, rs.OptimizedKm, rs.ActualKm)
		assert.Equal(t, []int{0, 2, 1}, rs.VisitOrder)
		assert.InDelta(t, rs.ActualKm-rs.OptimizedKm, rs.SavingKm, 0.001)
		assert.Greater(t, rs.SavingPct, 0.0)
	})

	t.Run("already optimal keeps order", func(t *testing.T) {
		stops := []core.Point{kinshasa, matadi, lubum}
		rs := SuggestRoute(1, stops)
		assert.Equal(t, rs.ActualKm, rs.OptimizedKm)
		assert.Equal(t, []int{0, 1, 2}, rs.VisitOrder)
		assert.Zero(t, rs.SavingKm)
	})
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name string
		curr float64
		prev float64
		want float64
	}{
		{name: "both zero", curr: 0, prev: 0, want: 0},
		{name: "from zero", curr: 5, prev: 0, want: 100},
		{name: "doubled", curr: 10, prev: 5, want: 100},
		{name: "halved", curr: 5, prev: 10, want: -50},
		{name: "rounded", curr: 1, prev: 3, want: -66.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GrowthRate(tt.curr, tt.prev))
		})
	}
}

func TestConversionRate(t *testing.T) {
	assert.Zero(t, ConversionRate(3, 0))
	assert.Equal(t, 25.0, ConversionRate(1, 4))
	assert.Equal(t, 33.3, ConversionRate(1, 3))
}

func TestWellnessScore(t *testing.T) {
	tests := []struct {
		name      string
		workSpan  time.Duration
		visitTime time.Duration
		want      int
	}{
		{name: "no work", workSpan: 0, visitTime: 0, want: 100},
		{name: "normal day with breaks", workSpan: 8 * time.Hour, visitTime: 6 * time.Hour, want: 100},
		{name: "no breaks", workSpan: 8 * time.Hour, visitTime: 8 * time.Hour, want: 85},
		{name: "overworked", workSpan: 11 * time.Hour, visitTime: 8 * time.Hour, want: 80},
		{name: "overworked no breaks", workSpan: 11 * time.Hour, visitTime: 11 * time.Hour, want: 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WellnessScore(tt.workSpan, tt.visitTime))
		})
	}
}

func TestProductivityScore(t *testing.T) {
	tests := []struct {
		name        string
		visits      int
		sales       float64
		dailyTarget float64
		leads       int
		want        int
	}{
		{name: "idle day", visits: 0, sales: 0, dailyTarget: 100, leads: 0, want: 0},
		{name: "full marks", visits: 8, sales: 100, dailyTarget: 100, leads: 3, want: 100},
		{name: "over-performance capped", visits: 20, sales: 500, dailyTarget: 100, leads: 10, want: 100},
		{name: "half visits only", visits: 4, sales: 0, dailyTarget: 100, leads: 0, want: 20},
		{name: "no target shifts weight", visits: 8, sales: 0, dailyTarget: 0, leads: 0, want: 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductivityScore(tt.visits, tt.sales, tt.dailyTarget, tt.leads))
		})
	}
}

func TestProjectTarget(t *testing.T) {
	// 10th of a 30-day month, 100 sold so far: projects to 300
	day := time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
	tp := ProjectTarget(100, 600, day)
	assert.Equal(t, 300.0, tp.Projected)
	assert.Equal(t, 50.0, tp.AchievementPct)

	t.Run("no target", func(t *testing.T) {
		tp := ProjectTarget(100, 0, day)
		assert.Equal(t, 300.0, tp.Projected)
		assert.Zero(t, tp.AchievementPct)
	})
}

func TestPeriod(t *testing.T) {
	t.Run("clean defaults to last 24h", func(t *testing.T) {
		var p Period
		p.Clean()
		assert.Equal(t, 24*time.Hour, p.To.Sub(p.From))
	})

	t.Run("previous", func(t *testing.T) {
		p := Period{
			From: time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, time.April, 11, 0, 0, 0, 0, time.UTC),
		}
		prev := p.Previous()
		assert.Equal(t, p.From, prev.To)
		assert.Equal(t, 24*time.Hour, prev.To.Sub(prev.From))
	})

	t.Run("contains", func(t *testing.T) {
		p := NewDayPeriod(time.Date(2025, time.April, 10, 15, 30, 0, 0, time.UTC))
		assert.True(t, p.Contains(p.From))
		assert.False(t, p.Contains(p.To))
	})
}
