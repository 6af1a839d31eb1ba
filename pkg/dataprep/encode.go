package dataprep

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kakaka820/Titanic/pkg/core"
	"github.com/kakaka820/Titanic/pkg/data"
	"github.com/kakaka820/Titanic/pkg/pipeline"
)

// NumericValue reads a numeric passenger attribute by column name.
func NumericValue(p *data.Passenger, col string) (float64, error) {
	var v *float64
	switch col {
	case "Age":
		v = p.Age
	case "TotalSpent":
		return p.TotalSpent, nil
	case "GroupSize":
		return float64(p.GroupSize), nil
	case data.ColRoomService:
		v = p.RoomService
	case data.ColFoodCourt:
		v = p.FoodCourt
	case data.ColShoppingMall:
		v = p.ShoppingMall
	case data.ColSpa:
		v = p.Spa
	case data.ColVRDeck:
		v = p.VRDeck
	default:
		return 0, fmt.Errorf("dataprep: %q is not a numeric attribute", col)
	}
	if v == nil {
		return 0, fmt.Errorf("dataprep: passenger %s: %s is missing", p.PassengerID, col)
	}
	return *v, nil
}

// CategoryValue reads a categorical passenger attribute as its level string.
func CategoryValue(p *data.Passenger, col string) (string, error) {
	switch col {
	case "HomePlanet":
		return deref(p, col, p.HomePlanet)
	case "Destination":
		return deref(p, col, p.Destination)
	case "CryoSleep":
		return derefBool(p, col, p.CryoSleep)
	case "VIP":
		return derefBool(p, col, p.VIP)
	case "SpendingFlag":
		return data.FormatBool(p.SpendingFlag), nil
	case "Deck":
		return p.Deck, nil
	case "CabinNum":
		return p.CabinNum, nil
	case "Side":
		return p.Side, nil
	case "GroupSize":
		return strconv.Itoa(p.GroupSize), nil
	}
	return "", fmt.Errorf("dataprep: %q is not a categorical attribute", col)
}

func deref(p *data.Passenger, col string, v *string) (string, error) {
	if v == nil {
		return "", fmt.Errorf("dataprep: passenger %s: %s is missing", p.PassengerID, col)
	}
	return *v, nil
}

func derefBool(p *data.Passenger, col string, v *bool) (string, error) {
	if v == nil {
		return "", fmt.Errorf("dataprep: passenger %s: %s is missing", p.PassengerID, col)
	}
	return data.FormatBool(*v), nil
}

// EncodeCategorical one-hot encodes a slice of string categories. Levels are
// sorted ascending so the column order never depends on row order.
func EncodeCategorical(values []string) ([][]float64, []string) {
	seen := map[string]struct{}{}
	for _, v := range values {
		seen[v] = struct{}{}
	}
	levels := make([]string, 0, len(seen))
	for v := range seen {
		levels = append(levels, v)
	}
	sort.Strings(levels)

	pos := make(map[string]int, len(levels))
	for i, l := range levels {
		pos[l] = i
	}
	out := make([][]float64, len(values))
	for i, v := range values {
		vec := make([]float64, len(levels))
		vec[pos[v]] = 1
		out[i] = vec
	}
	return out, levels
}

// Encode builds the feature matrix and label vector described by schema.
// Columns: schema.Numeric as-is, then "<Column>_<Level>" for every observed
// level of each schema.Categorical column.
func Encode(ps []data.Passenger, schema pipeline.Schema) (*core.Dataset, error) {
	n := len(ps)
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, 0, len(schema.Numeric))
	}
	var features []string

	for _, col := range schema.Numeric {
		for i := range ps {
			v, err := NumericValue(&ps[i], col)
			if err != nil {
				return nil, err
			}
			X[i] = append(X[i], v)
		}
		features = append(features, col)
	}

	for _, col := range schema.Categorical {
		values := make([]string, n)
		for i := range ps {
			v, err := CategoryValue(&ps[i], col)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		oh, levels := EncodeCategorical(values)
		for i := range X {
			X[i] = append(X[i], oh[i]...)
		}
		for _, l := range levels {
			features = append(features, col+"_"+l)
		}
	}

	y := make([]int, n)
	for i := range ps {
		if ps[i].Transported {
			y[i] = 1
		}
	}
	return core.NewDataset(features, X, y)
}
