package timer

import "github.com/gen2brain/beeep"

// Notifier plays the completion alert. Failures are logged and ignored.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier raises a desktop notification with a sound.
type DesktopNotifier struct {
	AppName string
}

func (n DesktopNotifier) Notify(title, message string) error {
	if n.AppName != "" {
		beeep.AppName = n.AppName
	}
	return beeep.Alert(title, message, "")
}

// NopNotifier is used when sound is turned off.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string) error { return nil }
