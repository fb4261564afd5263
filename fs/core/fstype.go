package core

// FSType classifies the storage behind a Provider.
type FSType int

const (
	FSTypeUnknown FSType = iota
	// FSTypeLocal is a directory on a mounted filesystem.
	FSTypeLocal
	// FSTypeMemory is process memory; contents vanish on exit.
	FSTypeMemory
	// FSTypeRemote is reached over the network (S3, SMB).
	FSTypeRemote
)

var fsTypeNames = [...]string{
	FSTypeUnknown: "unknown",
	FSTypeLocal:   "local",
	FSTypeMemory:  "memory",
	FSTypeRemote:  "remote",
}

func (t FSType) String() string {
	if t < 0 || int(t) >= len(fsTypeNames) {
		return "unknown"
	}
	return fsTypeNames[t]
}
