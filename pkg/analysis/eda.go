package analysis

import (
	"math"
	"sort"
	"strconv"

	"github.com/kakaka820/Titanic/pkg/data"
	"github.com/kakaka820/Titanic/pkg/dataprep"
)

// LabelStats counts outcomes for one value (or bucket) of a feature.
type LabelStats struct {
	Label          string  `json:"label"`
	Transported    int     `json:"transported"`
	NotTransported int     `json:"notTransported"`
	Total          int     `json:"total"`
	Rate           float64 `json:"rate"`
}

// FeatureStats is the breakdown of one feature.
type FeatureStats struct {
	Feature string       `json:"feature"`
	Data    []LabelStats `json:"data"`
}

// Summary is the exploratory overview of a processed passenger list.
type Summary struct {
	TotalPassengers  int            `json:"totalPassengers"`
	TransportedCount int            `json:"transportedCount"`
	TransportedRate  float64        `json:"transportedRate"`
	Features         []FeatureStats `json:"features"`
}

const (
	ageBucket   = 10
	spendBucket = 1000
)

// Summarize computes per-feature transport rates. Passengers must already be
// imputed and engineered.
func Summarize(ps []data.Passenger) *Summary {
	s := &Summary{TotalPassengers: len(ps), Features: []FeatureStats{}}
	for i := range ps {
		if ps[i].Transported {
			s.TransportedCount++
		}
	}
	if s.TotalPassengers > 0 {
		s.TransportedRate = float64(s.TransportedCount) / float64(s.TotalPassengers)
	}

	optBool := func(b *bool) string {
		if b == nil {
			return "null"
		}
		return data.FormatBool(*b)
	}
	optString := func(v *string) string {
		if v == nil {
			return "null"
		}
		return *v
	}
	optFloat := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}

	s.Features = append(s.Features,
		categorical(ps, "CryoSleep", func(p *data.Passenger) string { return optBool(p.CryoSleep) }),
		categorical(ps, "HomePlanet", func(p *data.Passenger) string { return optString(p.HomePlanet) }),
		categorical(ps, "Destination", func(p *data.Passenger) string { return optString(p.Destination) }),
		categorical(ps, "VIP", func(p *data.Passenger) string { return optBool(p.VIP) }),
		bucketed(ps, "Age", ageBucket, func(p *data.Passenger) float64 { return optFloat(p.Age) }),
		categorical(ps, "GroupSize", func(p *data.Passenger) string { return strconv.Itoa(p.GroupSize) }),
		categorical(ps, "CabinDeck", func(p *data.Passenger) string { return p.Deck }),
		categorical(ps, "CabinSide", func(p *data.Passenger) string { return p.Side }),
		categorical(ps, "SpendingFlag", func(p *data.Passenger) string { return data.FormatBool(p.SpendingFlag) }),
		bucketed(ps, "TotalSpent", spendBucket, func(p *data.Passenger) float64 { return p.TotalSpent }),
	)
	return s
}

type tally struct {
	label string
	key   float64 // sort key
	yes   int
	total int
}

// categorical groups by label. Integer labels sort numerically and come
// first; the rest keep first-appearance order.
func categorical(ps []data.Passenger, name string, label func(*data.Passenger) string) FeatureStats {
	var order []*tally
	byLabel := map[string]*tally{}
	for i := range ps {
		l := label(&ps[i])
		t, ok := byLabel[l]
		if !ok {
			t = &tally{label: l, key: math.Inf(1)}
			if v, err := strconv.Atoi(l); err == nil && v >= 0 {
				t.key = float64(v)
			}
			byLabel[l] = t
			order = append(order, t)
		}
		t.total++
		if ps[i].Transported {
			t.yes++
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].key < order[b].key })
	return FeatureStats{Feature: name, Data: rows(order)}
}

// bucketed groups numeric values into [lo, lo+width) bins ordered by lo.
func bucketed(ps []data.Passenger, name string, width float64, value func(*data.Passenger) float64) FeatureStats {
	var order []*tally
	byLabel := map[string]*tally{}
	for i := range ps {
		v := value(&ps[i])
		l := dataprep.BucketLabel(v, width)
		t, ok := byLabel[l]
		if !ok {
			t = &tally{label: l, key: dataprep.Bucket(v, width)}
			byLabel[l] = t
			order = append(order, t)
		}
		t.total++
		if ps[i].Transported {
			t.yes++
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].key < order[b].key })
	return FeatureStats{Feature: name, Data: rows(order)}
}

func rows(ts []*tally) []LabelStats {
	out := make([]LabelStats, len(ts))
	for i, t := range ts {
		out[i] = LabelStats{
			Label:          t.label,
			Transported:    t.yes,
			NotTransported: t.total - t.yes,
			Total:          t.total,
			Rate:           round2(float64(t.yes) / float64(t.total)),
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
