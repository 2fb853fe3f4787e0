package zone

import "fmt"

// District is a residential area that hosts player housing.
type District string

const (
	Mist         District = "Mist"
	LavenderBeds District = "Lavender Beds"
	Goblet       District = "The Goblet"
	Shirogane    District = "Shirogane"
	Empyreum     District = "Empyreum"
)

// Tier is the size class of a housing interior.
type Tier string

const (
	Small     Tier = "small"
	Medium    Tier = "medium"
	Large     Tier = "large"
	Chamber   Tier = "chamber"
	Apartment Tier = "apartment"
)

// Territory describes a qualifying housing interior zone.
type Territory struct {
	ID       uint16
	District District
	Tier     Tier
}

func (t Territory) String() string {
	return fmt.Sprintf("%s %s (%d)", t.District, t.Tier, t.ID)
}

var tiers = [...]Tier{Small, Medium, Large, Chamber, Apartment}

// houseIDs lists interior territory ids per district, ordered by tiers.
var houseIDs = map[District][len(tiers)]uint16{
	Mist:         {282, 283, 284, 384, 608},
	LavenderBeds: {342, 343, 344, 385, 609},
	Goblet:       {345, 346, 347, 386, 610},
	Shirogane:    {649, 650, 651, 652, 655},
	Empyreum:     {980, 981, 982, 983, 999},
}

var territories = func() map[uint16]Territory {
	m := make(map[uint16]Territory, len(houseIDs)*len(tiers))
	for district, ids := range houseIDs {
		for i, id := range ids {
			m[id] = Territory{ID: id, District: district, Tier: tiers[i]}
		}
	}
	return m
}()

// Lookup returns the housing territory for id.
func Lookup(id uint16) (Territory, bool) {
	t, ok := territories[id]
	return t, ok
}

// IsHouse reports whether id is a housing interior where presence tracking
// is active.
func IsHouse(id uint16) bool {
	_, ok := territories[id]
	return ok
}

// Count returns the number of qualifying territories.
func Count() int {
	return len(territories)
}
