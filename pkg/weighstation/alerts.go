package weighstation

import "sync"

type AlertType string

const (
	AlertApproaching AlertType = "approaching"
	AlertCleared     AlertType = "cleared"
)

type Alert struct {
	Type   AlertType
	Status StationStatus
}

// AlertTracker turns status changes into approaching/cleared alerts, each at most once per
// station for the life of the session
type AlertTracker struct {
	mutex       sync.Mutex
	approaching map[string]bool
	cleared     map[string]bool
}

func NewAlertTracker() *AlertTracker {
	return &AlertTracker{
		approaching: map[string]bool{},
		cleared:     map[string]bool{},
	}
}

func (a *AlertTracker) Observe(statuses []StationStatus) []Alert {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var alerts []Alert
	for _, status := range statuses {
		id := status.Station.ID

		switch status.Status {
		case StatusApproaching:
			if !a.approaching[id] && !a.cleared[id] {
				a.approaching[id] = true
				alerts = append(alerts, Alert{Type: AlertApproaching, Status: status})
			}
		case StatusPassed:
			if !a.cleared[id] {
				a.cleared[id] = true
				alerts = append(alerts, Alert{Type: AlertCleared, Status: status})
			}
		}
	}

	return alerts
}

func (a *AlertTracker) Reset() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.approaching = map[string]bool{}
	a.cleared = map[string]bool{}
}
