package checkpoint

import (
	"fmt"
	"time"
)

type SoundKind string

const (
	SoundSuccess   SoundKind = "success"
	SoundMilestone SoundKind = "milestone"
	SoundArrival   SoundKind = "arrival"
	SoundAlert     SoundKind = "alert"
)

type Checkpoint struct {
	Threshold float64   `json:"threshold" groups:"basic"`
	Label     string    `json:"label" groups:"basic"`
	Icon      string    `json:"icon" groups:"basic"`
	Sound     SoundKind `json:"sound" groups:"detailed"`
}

func (c Checkpoint) IsArrival() bool {
	return c.Threshold >= 100
}

var DefaultCatalog = []Checkpoint{
	{Threshold: 0, Label: "Shipment departed", Icon: "truck", Sound: SoundSuccess},
	{Threshold: 25, Label: "Quarter of the way", Icon: "milestone", Sound: SoundMilestone},
	{Threshold: 50, Label: "Halfway there", Icon: "milestone", Sound: SoundMilestone},
	{Threshold: 75, Label: "Final stretch", Icon: "milestone", Sound: SoundMilestone},
	{Threshold: 100, Label: "Delivered", Icon: "flag", Sound: SoundArrival},
}

type NotificationKind string

const (
	NotificationKindCheckpoint         NotificationKind = "checkpoint"
	NotificationKindStationApproaching NotificationKind = "station_approaching"
	NotificationKindStationCleared     NotificationKind = "station_cleared"
)

type Notification struct {
	ID        string           `json:"id" groups:"basic"`
	Kind      NotificationKind `json:"kind" groups:"basic"`
	Title     string           `json:"title" groups:"basic"`
	Message   string           `json:"message" groups:"basic"`
	Icon      string           `json:"icon" groups:"basic"`
	Sound     SoundKind        `json:"sound" groups:"detailed"`
	Threshold float64          `json:"threshold,omitempty" groups:"detailed"`
	CreatedAt time.Time        `json:"created_at" groups:"basic"`
}

func checkpointMessage(c Checkpoint, totalMiles float64) string {
	if c.IsArrival() {
		if totalMiles > 0 {
			return fmt.Sprintf("Your shipment has arrived at its destination after %.1f mi", totalMiles)
		}
		return "Your shipment has arrived at its destination"
	}

	if totalMiles > 0 {
		delivered := totalMiles * c.Threshold / 100
		return fmt.Sprintf("%.0f%% of the route complete, %.1f of %.1f mi covered", c.Threshold, delivered, totalMiles)
	}

	return fmt.Sprintf("%.0f%% of the route complete", c.Threshold)
}
