package models

type RouteType string

const (
	RouteOutbound RouteType = "ida"
	RouteReturn   RouteType = "vuelta"
	RouteFull     RouteType = "completa"
)

type Route struct {
	ID        int64 `gorm:"primaryKey"`
	VehicleID *int64
	Vehicle   *Vehicle  `gorm:"foreignKey:VehicleID"`
	Type      RouteType `gorm:"size:20;default:ida"`
	// Stops is a comma-separated list of localities.
	Stops     string `gorm:"size:500"`
	StartTime string `gorm:"size:5"`
	EndTime   string `gorm:"size:5"`
}
