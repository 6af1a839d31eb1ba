package dataprep

import (
	"fmt"
	"math"
	"strings"

	"github.com/kakaka820/Titanic/pkg/data"
)

// Unknown stands in for a cabin component that is not present.
const Unknown = "Unknown"

// EngineerFeatures derives TotalSpent, SpendingFlag, GroupSize and the cabin
// parts for every passenger. Spend columns must already be imputed.
func EngineerFeatures(ps []data.Passenger) error {
	groups := GroupSizes(ps)
	for i := range ps {
		p := &ps[i]

		total := 0.0
		for j, v := range p.Spend() {
			if *v == nil {
				return fmt.Errorf("dataprep: row %d: %s not imputed", i, data.SpendColumns[j])
			}
			total += **v
		}
		p.TotalSpent = total
		p.SpendingFlag = total > 0
		p.GroupSize = groups[p.GroupID()]
		p.Deck, p.CabinNum, p.Side = SplitCabin(p.Cabin)
	}
	return nil
}

// GroupSizes counts passengers per group id.
func GroupSizes(ps []data.Passenger) map[string]int {
	counts := make(map[string]int)
	for i := range ps {
		counts[ps[i].GroupID()]++
	}
	return counts
}

// SplitCabin splits "deck/num/side". Missing cabins and missing components
// come back as Unknown.
func SplitCabin(cabin *string) (deck, num, side string) {
	deck, num, side = Unknown, Unknown, Unknown
	if cabin == nil {
		return
	}
	parts := strings.Split(*cabin, "/")
	if len(parts) > 0 {
		deck = parts[0]
	}
	if len(parts) > 1 {
		num = parts[1]
	}
	if len(parts) > 2 {
		side = parts[2]
	}
	return
}

// Bucket returns the lower edge of the width-sized bin containing v.
func Bucket(v, width float64) float64 {
	return math.Floor(v/width) * width
}

// BucketLabel renders the bin containing v as "lo-hi".
func BucketLabel(v, width float64) string {
	lo := Bucket(v, width)
	return fmt.Sprintf("%g-%g", lo, lo+width)
}
