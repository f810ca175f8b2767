// Package passenger serves the passenger screens of the mobile client:
// dashboard, live tracking, trips, notifications and profile. Service and
// trip data come from an embedded catalog; per-user state (account details,
// notification reads) comes from storage.
package passenger

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripUpcoming   TripStatus = "upcoming"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// ReservationStatus is the state of a seat reservation.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
)

// NotificationType selects the notification icon and filter tab.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
)

// Trip is one ride in the passenger history.
type Trip struct {
	ID           string     `yaml:"id" json:"id"`
	From         string     `yaml:"from" json:"from"`
	To           string     `yaml:"to" json:"to"`
	Date         string     `yaml:"date" json:"date"`
	Time         string     `yaml:"time" json:"time"`
	Status       TripStatus `yaml:"status" json:"status"`
	DriverName   string     `yaml:"driver_name" json:"driverName"`
	DriverRating float64    `yaml:"driver_rating" json:"driverRating"`
	Price        float64    `yaml:"price" json:"price"`
	VehiclePlate string     `yaml:"vehicle_plate" json:"vehiclePlate"`
}

// Reservation is a booked seat on a recurring route.
type Reservation struct {
	ID          string            `yaml:"id" json:"id"`
	ReferenceNo string            `yaml:"reference_no" json:"referenceNo"`
	TripID      string            `yaml:"trip_id" json:"tripId"`
	Status      ReservationStatus `yaml:"status" json:"status"`
	CreatedAt   string            `yaml:"created_at" json:"createdAt"`
	SeatCount   int               `yaml:"seat_count" json:"seatCount"`
}

// Profile is the passenger account screen.
type Profile struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Initials    string  `yaml:"-" json:"initials"`
	Email       string  `yaml:"email" json:"email"`
	Phone       string  `yaml:"phone" json:"phone"`
	Department  string  `yaml:"department" json:"department"`
	MemberSince string  `yaml:"member_since" json:"memberSince"`
	TotalTrips  int     `yaml:"total_trips" json:"totalTrips"`
	Rating      float64 `yaml:"rating" json:"rating"`
}

// QuickStat is one tile of the dashboard summary row.
type QuickStat struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
	Icon  string `yaml:"icon" json:"icon"`
	Color string `yaml:"color" json:"color"`
}

// UpcomingService is the next shuttle the passenger is booked on.
type UpcomingService struct {
	ID               string  `yaml:"id" json:"id"`
	Status           string  `yaml:"status" json:"status"`
	StatusLabel      string  `yaml:"status_label" json:"statusLabel"`
	CountdownMinutes int     `yaml:"countdown_minutes" json:"countdownMinutes"`
	Progress         float64 `yaml:"progress" json:"progress"`
	RouteFrom        string  `yaml:"route_from" json:"routeFrom"`
	RouteTo          string  `yaml:"route_to" json:"routeTo"`
	DepartureTime    string  `yaml:"departure_time" json:"departureTime"`
	StopName         string  `yaml:"stop_name" json:"stopName"`
	VehiclePlate     string  `yaml:"vehicle_plate" json:"vehiclePlate"`
	DriverName       string  `yaml:"driver_name" json:"driverName"`
	DriverInitials   string  `yaml:"driver_initials" json:"driverInitials"`
	DriverRole       string  `yaml:"driver_role" json:"driverRole"`
	DriverRating     float64 `yaml:"driver_rating" json:"driverRating"`
}

// StopInfo is the passenger boarding stop.
type StopInfo struct {
	Name         string `yaml:"name" json:"name"`
	DistanceText string `yaml:"distance_text" json:"distanceText"`
}

// WeatherInfo is the weather at the boarding stop.
type WeatherInfo struct {
	City        string `yaml:"city" json:"city"`
	Temperature string `yaml:"temperature" json:"temperature"`
	Condition   string `yaml:"condition" json:"condition"`
}

// Notification is one entry of the feed.
type Notification struct {
	ID      string           `yaml:"id" json:"id"`
	Title   string           `yaml:"title" json:"title"`
	Body    string           `yaml:"body" json:"body"`
	Type    NotificationType `yaml:"type" json:"type"`
	TimeAgo string           `yaml:"time_ago" json:"timeAgo"`
	Read    bool             `yaml:"read" json:"read"`
	Group   string           `yaml:"group" json:"group"`
}

// TrackingStop is one stop on the live tracking timeline.
type TrackingStop struct {
	Name   string `yaml:"name" json:"name"`
	Passed bool   `yaml:"passed" json:"passed"`
}

type trackingFixture struct {
	ETAMinutes  int            `yaml:"eta_minutes"`
	StatusLabel string         `yaml:"status_label"`
	Stops       []TrackingStop `yaml:"stops"`
}

// Catalog is the read-only data set behind the passenger screens.
type Catalog struct {
	Profile         Profile         `yaml:"profile"`
	UpcomingService UpcomingService `yaml:"upcoming_service"`
	Stop            StopInfo        `yaml:"stop"`
	Weather         WeatherInfo     `yaml:"weather"`
	QuickStats      []QuickStat     `yaml:"quick_stats"`
	Notifications   []Notification  `yaml:"notifications"`
	Trips           []Trip          `yaml:"trips"`
	Reservations    []Reservation   `yaml:"reservations"`
	Tracking        trackingFixture `yaml:"tracking"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(fixturesYAML)
}

// ParseCatalog decodes and checks a catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Notifications))
	for _, n := range c.Notifications {
		if n.ID == "" {
			return nil, errors.New("notification without id")
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("duplicate notification id %q", n.ID)
		}
		seen[n.ID] = true
		switch n.Type {
		case NotificationInfo, NotificationWarning, NotificationSuccess:
		default:
			return nil, fmt.Errorf("notification %s: unknown type %q", n.ID, n.Type)
		}
		if n.Group != GroupToday && n.Group != GroupEarlier {
			return nil, fmt.Errorf("notification %s: unknown group %q", n.ID, n.Group)
		}
	}
	for _, t := range c.Trips {
		switch t.Status {
		case TripUpcoming, TripInProgress, TripCompleted, TripCancelled:
		default:
			return nil, fmt.Errorf("trip %s: unknown status %q", t.ID, t.Status)
		}
	}
	return &c, nil
}
