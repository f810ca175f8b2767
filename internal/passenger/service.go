package passenger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartshuttle/shuttle/internal/storage"
	"go.uber.org/zap"
)

// Notification groups, in display order.
const (
	GroupToday   = "today"
	GroupEarlier = "earlier"
)

// Filter values accepted by Notifications.
const (
	FilterAll     = "all"
	FilterInfo    = "info"
	FilterWarning = "warning"
	FilterSuccess = "success"
)

// ErrUnknownFilter is returned for a filter outside FilterAll and the
// notification types.
var ErrUnknownFilter = errors.New("unknown notification filter")

var groupTitles = map[string]string{
	GroupToday:   "BUGÜN",
	GroupEarlier: "DAHA ÖNCE",
}

// FilterTab is one of the tabs above the notification list.
type FilterTab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var filterTabs = []FilterTab{
	{Key: FilterAll, Label: "Tümü"},
	{Key: FilterInfo, Label: "Bilgi"},
	{Key: FilterWarning, Label: "Uyarı"},
	{Key: FilterSuccess, Label: "Başarılı"},
}

// Viewer identifies the signed-in passenger.
type Viewer struct {
	UserID string
	Name   string
}

// LatestNotification is the newest notification as shown on the dashboard.
type LatestNotification struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	TimeAgo  string `json:"timeAgo"`
}

// Dashboard is the passenger home screen.
type Dashboard struct {
	Greeting           string              `json:"greeting"`
	FirstName          string              `json:"firstName"`
	Initials           string              `json:"initials"`
	Date               string              `json:"date"`
	UpcomingService    UpcomingService     `json:"upcomingService"`
	Stop               StopInfo            `json:"stop"`
	Weather            WeatherInfo         `json:"weather"`
	LatestNotification *LatestNotification `json:"latestNotification,omitempty"`
	UnreadCount        int                 `json:"unreadCount"`
	QuickStats         []QuickStat         `json:"quickStats"`
}

// NotificationSection is one titled group of the notification feed.
type NotificationSection struct {
	Key   string         `json:"key"`
	Title string         `json:"title"`
	Items []Notification `json:"items"`
}

// NotificationFeed is the filtered notification list with its tabs.
type NotificationFeed struct {
	Filter      string                `json:"filter"`
	Tabs        []FilterTab           `json:"tabs"`
	UnreadCount int                   `json:"unreadCount"`
	Sections    []NotificationSection `json:"sections"`
}

// Trips is the trip history split into upcoming and past, plus
// reservations.
type Trips struct {
	Upcoming     []Trip        `json:"upcoming"`
	Past         []Trip        `json:"past"`
	Reservations []Reservation `json:"reservations"`
}

// Tracking is the live view of the active service.
type Tracking struct {
	Service     UpcomingService `json:"service"`
	ETAMinutes  int             `json:"etaMinutes"`
	StatusLabel string          `json:"statusLabel"`
	Stops       []TrackingStop  `json:"stops"`
}

// Service builds the passenger screens for a viewer.
type Service struct {
	catalog *Catalog
	users   storage.UserStore
	reads   storage.NotificationReadStore
	logger  *zap.Logger
}

// NewService creates the service.
func NewService(catalog *Catalog, users storage.UserStore, reads storage.NotificationReadStore, logger *zap.Logger) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if users == nil || reads == nil {
		return nil, errors.New("storage is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{catalog: catalog, users: users, reads: reads, logger: logger}, nil
}

// Dashboard assembles the home screen as seen at now.
func (s *Service) Dashboard(ctx context.Context, v Viewer, now time.Time) (Dashboard, error) {
	items, err := s.notifications(ctx, v.UserID)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		Greeting:        Greeting(now),
		FirstName:       FirstName(v.Name),
		Initials:        Initials(v.Name),
		Date:            FormatDate(now),
		UpcomingService: s.catalog.UpcomingService,
		Stop:            s.catalog.Stop,
		Weather:         s.catalog.Weather,
		UnreadCount:     unread(items),
		QuickStats:      append([]QuickStat(nil), s.catalog.QuickStats...),
	}
	if len(items) > 0 {
		d.LatestNotification = &LatestNotification{
			Title:    items[0].Title,
			Subtitle: items[0].Body,
			TimeAgo:  items[0].TimeAgo,
		}
	}
	return d, nil
}

// Notifications returns the feed for filter, split into today and earlier.
// Empty sections are omitted. The unread count ignores the filter.
func (s *Service) Notifications(ctx context.Context, userID, filter string) (NotificationFeed, error) {
	if filter == "" {
		filter = FilterAll
	}
	if !validFilter(filter) {
		return NotificationFeed{}, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
	items, err := s.notifications(ctx, userID)
	if err != nil {
		return NotificationFeed{}, err
	}

	feed := NotificationFeed{
		Filter:      filter,
		Tabs:        append([]FilterTab(nil), filterTabs...),
		UnreadCount: unread(items),
		Sections:    []NotificationSection{},
	}
	for _, group := range []string{GroupToday, GroupEarlier} {
		var section []Notification
		for _, n := range items {
			if n.Group != group {
				continue
			}
			if filter != FilterAll && string(n.Type) != filter {
				continue
			}
			section = append(section, n)
		}
		if len(section) > 0 {
			feed.Sections = append(feed.Sections, NotificationSection{
				Key:   group,
				Title: groupTitles[group],
				Items: section,
			})
		}
	}
	return feed, nil
}

// MarkAllRead records every notification as read for userID.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	ids := make([]string, 0, len(s.catalog.Notifications))
	for _, n := range s.catalog.Notifications {
		ids = append(ids, n.ID)
	}
	if err := s.reads.MarkNotificationsRead(ctx, userID, ids); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	s.logger.Debug("notifications marked read", zap.String("user", userID), zap.Int("count", len(ids)))
	return nil
}

// Trips splits the trip history into upcoming and past.
func (s *Service) Trips() Trips {
	out := Trips{
		Upcoming:     []Trip{},
		Past:         []Trip{},
		Reservations: append([]Reservation{}, s.catalog.Reservations...),
	}
	for _, t := range s.catalog.Trips {
		switch t.Status {
		case TripUpcoming, TripInProgress:
			out.Upcoming = append(out.Upcoming, t)
		default:
			out.Past = append(out.Past, t)
		}
	}
	return out
}

// Tracking returns the live view of the active service.
func (s *Service) Tracking() Tracking {
	return Tracking{
		Service:     s.catalog.UpcomingService,
		ETAMinutes:  s.catalog.Tracking.ETAMinutes,
		StatusLabel: s.catalog.Tracking.StatusLabel,
		Stops:       append([]TrackingStop(nil), s.catalog.Tracking.Stops...),
	}
}

// Profile merges the stored account into the catalog profile.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p := s.catalog.Profile
	p.ID = u.ID
	p.Name = u.Name
	p.Email = u.Email
	p.Initials = Initials(u.Name)
	return p, nil
}

func (s *Service) notifications(ctx context.Context, userID string) ([]Notification, error) {
	read, err := s.reads.ReadNotificationIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load notification reads: %w", err)
	}
	items := append([]Notification(nil), s.catalog.Notifications...)
	for i := range items {
		if read[items[i].ID] {
			items[i].Read = true
		}
	}
	return items, nil
}

func unread(items []Notification) int {
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}

func validFilter(f string) bool {
	for _, tab := range filterTabs {
		if tab.Key == f {
			return true
		}
	}
	return false
}
