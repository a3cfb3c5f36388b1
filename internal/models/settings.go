package models

// Desktop notification permission states, mirroring the browser Notification
// API. The server never flips "default" to "granted" on its own; the client
// must report the grant from an explicit user gesture.
const (
	PermissionDefault = "default"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// NotificationSettings controls how notifications reach a user outside the
// in-app center.
type NotificationSettings struct {
	Desktop           bool       `bson:"desktop" json:"desktop"`
	DesktopPermission string     `bson:"desktop_permission" json:"desktop_permission"`
	Sound             bool       `bson:"sound" json:"sound"`
	QuietHours        QuietHours `bson:"quiet_hours" json:"quiet_hours"`
}

// QuietHours is a daily window during which desktop delivery is suppressed.
// Times are "HH:MM" in the user's local time. A window with Start > End
// wraps past midnight.
type QuietHours struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Start   string `bson:"start" json:"start"`
	End     string `bson:"end" json:"end"`
}

// DefaultSettings are applied to newly registered users.
func DefaultSettings() NotificationSettings {
	return NotificationSettings{
		Desktop:           false,
		DesktopPermission: PermissionDefault,
		Sound:             true,
		QuietHours:        QuietHours{Enabled: false, Start: "22:00", End: "08:00"},
	}
}
