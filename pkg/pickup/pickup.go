// Package pickup exposes the pickup-point catalog shown on the map view.
package pickup

// Point is a pickup location with its map coordinates.
type Point struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Coordinates [2]float64 `json:"coordinates"`
	WorkHours   string     `json:"workHours"`
}

var points = []Point{
	{ID: 1, Name: "Pickup point on Lenina", Address: "Lenina st. 10", Coordinates: [2]float64{55.751574, 37.573856}, WorkHours: "09:00-21:00"},
	{ID: 2, Name: "Pickup point on Mira", Address: "Mira ave. 25", Coordinates: [2]float64{55.762374, 37.583856}, WorkHours: "10:00-22:00"},
	{ID: 3, Name: "Pickup point on Tverskaya", Address: "Tverskaya st. 15", Coordinates: [2]float64{55.759574, 37.563856}, WorkHours: "08:00-20:00"},
}

// Points returns the full catalog.
func Points() []Point {
	return append([]Point(nil), points...)
}

// Find returns the point with the given id.
func Find(id int) (Point, bool) {
	for _, p := range points {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}
