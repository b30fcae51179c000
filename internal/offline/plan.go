package offline

import (
	"net"
	"net/url"
	"strings"
	"time"
)

const (
	SNAPSHOT_KEY      = "ZappyGames-cache"
	SnapshotInterval  = 30 * time.Minute
	ReminderTimeOfDay = "19:00"
)

type Mode string

const (
	ModeWorker     Mode = "worker"
	ModeForeground Mode = "foreground"
)

// Capabilities is what a client reports about its platform.
type Capabilities struct {
	ServiceWorker bool   `json:"serviceWorker"`
	Push          bool   `json:"push"`
	Origin        string `json:"origin"      validate:"omitempty,url"`
}

// Plan tells a client which offline strategy to run.
type Plan struct {
	Mode             Mode   `json:"mode"`
	SecureOrigin     bool   `json:"secureOrigin"`
	PreviewHost      bool   `json:"previewHost"`
	Snapshots        bool   `json:"snapshots"`
	SnapshotKey      string `json:"snapshotKey,omitempty"`
	SnapshotInterval string `json:"snapshotInterval,omitempty"`
	DailyReminder    bool   `json:"dailyReminder"`
	ReminderAt       string `json:"reminderAt,omitempty"`
	ReminderTag      string `json:"reminderTag,omitempty"`
}

// PlanFor picks the worker when the platform supports it on a secure
// origin. Otherwise the client snapshots catalog data locally and gets a
// locally scheduled daily reminder. A worker without push, or a preview
// host, keeps the worker but falls back to the daily reminder.
func PlanFor(capabilities Capabilities) Plan {
	secure := IsSecureOrigin(capabilities.Origin)
	plan := Plan{
		Mode:         ModeWorker,
		SecureOrigin: secure,
		PreviewHost:  IsPreviewHost(capabilities.Origin),
	}

	if !capabilities.ServiceWorker || !secure {
		plan.Mode = ModeForeground
		plan.Snapshots = true
		plan.SnapshotKey = SNAPSHOT_KEY
		plan.SnapshotInterval = SnapshotInterval.String()
	}

	if plan.Mode == ModeForeground || !capabilities.Push || plan.PreviewHost {
		plan.DailyReminder = true
		plan.ReminderAt = ReminderTimeOfDay
		plan.ReminderTag = REMINDER_TAG
	}

	return plan
}

// IsSecureOrigin reports https origins and loopback hosts.
func IsSecureOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	if u.Scheme == "https" {
		return true
	}

	host := u.Hostname()
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

var previewHostMarkers = []string{"preview-", "vusercontent.net", "vercel.app"}

// IsPreviewHost reports hosted preview deployments, where push
// subscriptions are not set up.
func IsPreviewHost(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := u.Hostname()
	for _, marker := range previewHostMarkers {
		if strings.Contains(host, marker) {
			return true
		}
	}
	return false
}
