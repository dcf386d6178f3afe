package timeseries

import (
	"reflect"
	"testing"
	"time"

	"ratetool/rates"
)

func rec(code, program, rate, date string) rates.RateRecord {
	return rates.RateRecord{
		Dimensions: rates.Dimensions{
			State:           "TEXAS",
			ServiceCategory: "Behavioral Health",
			ServiceCode:     code,
			Program:         program,
			DurationUnit:    "15 MINUTES",
		},
		Rate:          rate,
		EffectiveDate: date,
	}
}

func day(y, m, d int) rates.Date {
	return rates.Date{Year: y, Month: time.Month(m), Day: d}
}

func rateAt(t *testing.T, p Point) float64 {
	t.Helper()
	if p.Rate == nil {
		t.Fatalf("point %s has no rate", p.Date)
	}
	return *p.Rate
}

func TestAssembleAxisUnion(t *testing.T) {
	a := rec("H2019", "A", "10", "01/01/2022")
	b := rec("H2019", "B", "20", "03/01/2022")
	population := []rates.RateRecord{
		a,
		rec("H2019", "A", "11", "06/01/2022"),
		b,
	}
	today := day(2024, 1, 1)

	chart := Assemble([]rates.RateRecord{a, b}, population, today)

	want := []rates.Date{day(2022, 1, 1), day(2022, 3, 1), day(2022, 6, 1), today}
	if !reflect.DeepEqual(chart.Axis, want) {
		t.Fatalf("axis: got %v, want %v", chart.Axis, want)
	}
	if len(chart.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(chart.Series))
	}

	sb := chart.Series[1].Points
	if sb[0].Rate != nil {
		t.Errorf("series B must have no point before its first date, got %v", *sb[0].Rate)
	}
	if !sb[1].Observed || rateAt(t, sb[1]) != 20 {
		t.Errorf("series B at 3/1/22: got %+v", sb[1])
	}
	if sb[2].Observed || rateAt(t, sb[2]) != 20 {
		t.Errorf("series B at 6/1/22 should carry 20 forward, got %+v", sb[2])
	}

	sa := chart.Series[0].Points
	if rateAt(t, sa[1]) != 10 || sa[1].Observed {
		t.Errorf("series A at 3/1/22 should carry 10 forward, got %+v", sa[1])
	}
	if rateAt(t, sa[3]) != 11 || sa[3].Observed {
		t.Errorf("series A at today should carry 11 forward, got %+v", sa[3])
	}
	if sa[0].Meta == nil || sa[0].Meta.Program != "A" {
		t.Errorf("points must carry series metadata")
	}
}

func TestAssembleNoTodayWhenCurrent(t *testing.T) {
	e := rec("H2019", "", "10", "2024-01-01")
	chart := Assemble([]rates.RateRecord{e}, []rates.RateRecord{e}, day(2024, 1, 1))
	if len(chart.Axis) != 1 {
		t.Errorf("axis should not repeat today, got %v", chart.Axis)
	}
}

func TestAssembleSameDateKeepsHigherRate(t *testing.T) {
	e := rec("H2019", "", "10", "2022-03-01")
	population := []rates.RateRecord{e, rec("H2019", "", "12", "03/01/2022")}
	chart := Assemble([]rates.RateRecord{e}, population, day(2022, 3, 1))
	pts := chart.Series[0].Points
	if len(pts) != 1 || rateAt(t, pts[0]) != 12 {
		t.Errorf("expected single point at 12, got %+v", pts)
	}
}

func TestAssembleMultiCodeMembership(t *testing.T) {
	entry := rec("H2019, H2017", "", "10", "2022-01-01")
	population := []rates.RateRecord{
		rec("H2019", "", "10", "2022-01-01"),
		rec("H2017", "", "11", "2022-02-01"),
		rec("H0004", "", "99", "2022-03-01"),
	}
	chart := Assemble([]rates.RateRecord{entry}, population, day(2022, 2, 1))
	if len(chart.Axis) != 2 {
		t.Errorf("expected membership match on two codes, got axis %v", chart.Axis)
	}
}

func TestAssembleSkipsOtherConfigurations(t *testing.T) {
	entry := rec("H2019", "STAR", "10", "2022-01-01")
	other := rec("H2019", "STAR", "50", "2022-02-01")
	other.Modifiers[0] = "HQ"
	chart := Assemble([]rates.RateRecord{entry}, []rates.RateRecord{entry, other}, day(2022, 1, 1))
	if len(chart.Axis) != 1 {
		t.Errorf("modifier variant leaked into series: %v", chart.Axis)
	}
}

// The end-to-end series for the H2019 configuration has one point per
// distinct date, plus today.
func TestAssemblePointCount(t *testing.T) {
	population := []rates.RateRecord{
		rec("H2019", "", "14.20", "01/01/2021"),
		rec("H2019", "", "14.20", "2021-01-01"),
		rec("H2019", "", "15.10", "2022-09-01"),
		rec("H2019", "", "15.75", "2024-03-01"),
		rec("H2019", "", "15.50", "03/01/2024"),
	}
	entry := population[3]
	chart := Assemble([]rates.RateRecord{entry}, population, day(2025, 5, 1))
	if got := len(chart.Series[0].Points); got != 4 {
		t.Errorf("expected 3 distinct dates + today = 4 points, got %d", got)
	}
	last := chart.Series[0].Points[3]
	if rateAt(t, last) != 15.75 {
		t.Errorf("today should carry 15.75, got %v", *last.Rate)
	}
}

func TestAssembleEmpty(t *testing.T) {
	chart := Assemble(nil, nil, day(2024, 1, 1))
	if len(chart.Axis) != 0 || len(chart.Series) != 0 {
		t.Errorf("expected empty chart, got %+v", chart)
	}
}
