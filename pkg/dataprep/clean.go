package dataprep

import (
	"fmt"
	"sort"

	"github.com/kakaka820/Titanic/pkg/data"
)

// Fill records how one column was imputed.
type Fill struct {
	Column   string
	Strategy string // "median", "constant" or "mode"
	Value    string
	Filled   int
}

// ImputationReport lists the fills applied by HandleMissingValues, in column order.
type ImputationReport struct {
	Fills []Fill
}

// Total returns the number of cells filled across all columns.
func (r *ImputationReport) Total() int {
	n := 0
	for _, f := range r.Fills {
		n += f.Filled
	}
	return n
}

// HandleMissingValues imputes every column the feature set depends on, in place:
//
//	Age                          -> median of observed ages
//	RoomService..VRDeck          -> 0
//	HomePlanet, CryoSleep,
//	Destination, VIP             -> per-column mode
//
// Cabin is left alone; the feature step maps a missing cabin to "Unknown".
func HandleMissingValues(ps []data.Passenger) (*ImputationReport, error) {
	report := &ImputationReport{}
	if len(ps) == 0 {
		return report, nil
	}

	// --- Age: median ---
	ages := make([]*float64, len(ps))
	for i := range ps {
		ages[i] = ps[i].Age
	}
	median, err := MedianOf(ages)
	if err != nil {
		return nil, columnErr(data.ColAge, err)
	}
	n := 0
	for i := range ps {
		if FillFloat(&ps[i].Age, median) {
			n++
		}
	}
	report.Fills = append(report.Fills, Fill{data.ColAge, "median", fmt.Sprintf("%g", median), n})

	// --- Spend columns: zero ---
	for j, col := range data.SpendColumns {
		n := 0
		for i := range ps {
			if FillFloat(ps[i].Spend()[j], 0) {
				n++
			}
		}
		report.Fills = append(report.Fills, Fill{col, "constant", "0", n})
	}

	// --- Categoricals: mode ---
	for _, c := range []struct {
		col string
		get func(*data.Passenger) **string
	}{
		{data.ColHomePlanet, func(p *data.Passenger) **string { return &p.HomePlanet }},
		{data.ColDestination, func(p *data.Passenger) **string { return &p.Destination }},
	} {
		vals := make([]*string, len(ps))
		for i := range ps {
			vals[i] = *c.get(&ps[i])
		}
		mode, err := ModeOf(vals)
		if err != nil {
			return nil, columnErr(c.col, err)
		}
		n := 0
		for i := range ps {
			if FillString(c.get(&ps[i]), mode) {
				n++
			}
		}
		report.Fills = append(report.Fills, Fill{c.col, "mode", mode, n})
	}

	for _, c := range []struct {
		col string
		get func(*data.Passenger) **bool
	}{
		{data.ColCryoSleep, func(p *data.Passenger) **bool { return &p.CryoSleep }},
		{data.ColVIP, func(p *data.Passenger) **bool { return &p.VIP }},
	} {
		vals := make([]*bool, len(ps))
		for i := range ps {
			vals[i] = *c.get(&ps[i])
		}
		mode, err := BoolModeOf(vals)
		if err != nil {
			return nil, columnErr(c.col, err)
		}
		n := 0
		for i := range ps {
			if FillBool(c.get(&ps[i]), mode) {
				n++
			}
		}
		report.Fills = append(report.Fills, Fill{c.col, "mode", data.FormatBool(mode), n})
	}

	order := map[string]int{}
	for i, c := range data.RequiredColumns {
		order[c] = i
	}
	sort.SliceStable(report.Fills, func(a, b int) bool {
		return order[report.Fills[a].Column] < order[report.Fills[b].Column]
	})
	return report, nil
}
