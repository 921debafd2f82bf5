package storage

// Mode is one of the two static backend variants. It never changes after startup.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	default:
		return "local"
	}
}

// SelectMode decides the backend from the two presence flags: remote must be
// both enabled and have a usable handle, anything else forces local mode.
func SelectMode(remoteEnabled, handleReady bool) Mode {
	if remoteEnabled && handleReady {
		return ModeRemote
	}
	return ModeLocal
}
