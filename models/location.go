package models

// Location is a named place at the retreat where sessions happen.
type Location struct {
	Name   string `bson:"name" json:"name"`
	IsOpen bool   `bson:"is_open" json:"is_open"`
}

// DefaultLocations seeds a fresh store.
func DefaultLocations() []Location {
	return []Location{
		{Name: "Sauna", IsOpen: true},
		{Name: "Rescue Station", IsOpen: true},
		{Name: "Glamping", IsOpen: false},
	}
}
