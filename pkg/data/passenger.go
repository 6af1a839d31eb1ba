package data

import (
	"fmt"
	"strconv"
	"strings"
)

// Source column names.
const (
	ColPassengerID  = "PassengerId"
	ColHomePlanet   = "HomePlanet"
	ColCryoSleep    = "CryoSleep"
	ColCabin        = "Cabin"
	ColDestination  = "Destination"
	ColAge          = "Age"
	ColVIP          = "VIP"
	ColRoomService  = "RoomService"
	ColFoodCourt    = "FoodCourt"
	ColShoppingMall = "ShoppingMall"
	ColSpa          = "Spa"
	ColVRDeck       = "VRDeck"
	ColName         = "Name"
	ColTransported  = "Transported"
)

// SpendColumns lists the five on-board spend columns in source order.
var SpendColumns = []string{ColRoomService, ColFoodCourt, ColShoppingMall, ColSpa, ColVRDeck}

// RequiredColumns must all be present in the input header.
var RequiredColumns = []string{
	ColPassengerID, ColHomePlanet, ColCryoSleep, ColCabin, ColDestination, ColAge, ColVIP,
	ColRoomService, ColFoodCourt, ColShoppingMall, ColSpa, ColVRDeck, ColTransported,
}

// Passenger is one row of the source table. Nil pointers are missing values.
type Passenger struct {
	PassengerID string   `json:"passengerId" db:"passenger_id"`
	HomePlanet  *string  `json:"homePlanet" db:"home_planet"`
	CryoSleep   *bool    `json:"cryoSleep" db:"cryo_sleep"`
	Cabin       *string  `json:"cabin" db:"cabin"`
	Destination *string  `json:"destination" db:"destination"`
	Age         *float64 `json:"age" db:"age"`
	VIP         *bool    `json:"vip" db:"vip"`

	RoomService  *float64 `json:"roomService" db:"room_service"`
	FoodCourt    *float64 `json:"foodCourt" db:"food_court"`
	ShoppingMall *float64 `json:"shoppingMall" db:"shopping_mall"`
	Spa          *float64 `json:"spa" db:"spa"`
	VRDeck       *float64 `json:"vrDeck" db:"vr_deck"`

	Name        *string `json:"name" db:"name"`
	Transported bool    `json:"transported" db:"transported"`

	// Engineered
	TotalSpent   float64 `json:"totalSpent" db:"total_spent"`
	SpendingFlag bool    `json:"spendingFlag" db:"spending_flag"`
	Deck         string  `json:"cabinDeck" db:"cabin_deck"`
	CabinNum     string  `json:"cabinNum" db:"cabin_num"`
	Side         string  `json:"cabinSide" db:"cabin_side"`
	GroupSize    int     `json:"groupSize" db:"group_size"`
}

// Spend returns pointers to the five spend fields in SpendColumns order.
func (p *Passenger) Spend() []**float64 {
	return []**float64{&p.RoomService, &p.FoodCourt, &p.ShoppingMall, &p.Spa, &p.VRDeck}
}

// GroupID is the PassengerId prefix before the first underscore.
func (p *Passenger) GroupID() string {
	if i := strings.IndexByte(p.PassengerID, '_'); i >= 0 {
		return p.PassengerID[:i]
	}
	return p.PassengerID
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "NA", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

// ParsePassengers converts a table into typed records.
func ParsePassengers(t *Table) ([]Passenger, error) {
	if t == nil || t.Len() == 0 {
		return nil, ErrEmptyTable
	}
	idx := make(map[string]int, len(RequiredColumns)+1)
	for _, c := range RequiredColumns {
		j, err := t.ColumnIndex(c)
		if err != nil {
			return nil, err
		}
		idx[c] = j
	}
	nameIdx := -1
	if t.HasColumn(ColName) {
		nameIdx, _ = t.ColumnIndex(ColName)
	}

	out := make([]Passenger, 0, t.Len())
	for r, row := range t.Rows {
		line := r + 2 // header is line 1
		cell := func(c string) string { return strings.TrimSpace(row[idx[c]]) }

		p := Passenger{PassengerID: cell(ColPassengerID)}
		if p.PassengerID == "" {
			return nil, fmt.Errorf("data: row %d: empty %s", line, ColPassengerID)
		}
		p.HomePlanet = optString(cell(ColHomePlanet))
		p.Cabin = optString(cell(ColCabin))
		p.Destination = optString(cell(ColDestination))
		if nameIdx >= 0 {
			p.Name = optString(strings.TrimSpace(row[nameIdx]))
		}

		var err error
		if p.CryoSleep, err = optBool(cell(ColCryoSleep)); err != nil {
			return nil, fmt.Errorf("data: row %d column %s: %w", line, ColCryoSleep, err)
		}
		if p.VIP, err = optBool(cell(ColVIP)); err != nil {
			return nil, fmt.Errorf("data: row %d column %s: %w", line, ColVIP, err)
		}
		if p.Age, err = optFloat(cell(ColAge)); err != nil {
			return nil, fmt.Errorf("data: row %d column %s: %w", line, ColAge, err)
		}
		for i, dst := range p.Spend() {
			if *dst, err = optFloat(cell(SpendColumns[i])); err != nil {
				return nil, fmt.Errorf("data: row %d column %s: %w", line, SpendColumns[i], err)
			}
		}

		// Empty label reads as not transported.
		if v := cell(ColTransported); !IsMissing(v) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("data: row %d column %s: %w", line, ColTransported, err)
			}
			p.Transported = b
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadPassengers reads path and parses its rows.
func LoadPassengers(path string) ([]Passenger, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return ParsePassengers(t)
}

func optString(v string) *string {
	if IsMissing(v) {
		return nil
	}
	return &v
}

func optFloat(v string) (*float64, error) {
	if IsMissing(v) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optBool(v string) (*bool, error) {
	if IsMissing(v) {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FormatBool renders booleans the way the source data spells them.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
