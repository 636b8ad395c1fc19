// Package platform delivers desktop notifications through the host's
// notification service.
package platform

// AppName is the application name notifications are attributed to.
const AppName = "CropDesk"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// IconPath, when non-empty, points to an image file shown with the
	// notification where supported.
	IconPath string
	// TimeoutMillis is how long the notification stays visible. Zero uses
	// DefaultTimeoutMillis.
	TimeoutMillis int32
}

// DefaultTimeoutMillis is the display time used when Options leaves it unset.
const DefaultTimeoutMillis = 5000

func (o Options) timeout() int32 {
	if o.TimeoutMillis > 0 {
		return o.TimeoutMillis
	}
	return DefaultTimeoutMillis
}
