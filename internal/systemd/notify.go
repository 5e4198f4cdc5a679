// Package systemd reports service state to systemd when running under
// Type=notify supervision.
package systemd

import "github.com/coreos/go-systemd/v22/daemon"

// NotifyReady tells systemd the service finished starting. Returns
// false when not running under systemd notify supervision; that is not
// an error.
func NotifyReady() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyReady)
}

// NotifyStopping tells systemd the service has begun shutting down.
func NotifyStopping() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyStopping)
}

// NotifyStatus updates the free-form status line shown by systemctl.
func NotifyStatus(status string) (bool, error) {
	return daemon.SdNotify(false, "STATUS="+status)
}
