package core

import (
	"strings"
)

// Capability is a single named operation a Provider may support.
type Capability uint16

const (
	// CapReadBytes reads a whole file (ByteReader).
	CapReadBytes Capability = 1 << iota
	// CapWriteBytes writes a whole file (ByteWriter).
	CapWriteBytes
	// CapOpenRead opens a read stream (StreamReader).
	CapOpenRead
	// CapOpenWrite opens a write stream (StreamWriter).
	CapOpenWrite
	// CapExists checks for any entry (Exister).
	CapExists
	// CapIsDir checks for a directory (DirChecker).
	CapIsDir
	// CapIsFile checks for a file (FileChecker).
	CapIsFile
	// CapStat returns metadata (Stater).
	CapStat
	// CapListDir lists entry names (Lister).
	CapListDir
	// CapMakeDirs creates a directory and its parents (DirMaker).
	CapMakeDirs
	// CapRemove deletes a file (Remover).
	CapRemove
	// CapRmdir deletes an empty directory (DirRemover).
	CapRmdir
	// CapRmtree deletes a directory recursively (TreeRemover).
	CapRmtree
	// CapRename moves a file or directory (Renamer).
	CapRename

	capSentinel
)

// capabilities lists every capability in declaration order.
var capabilities = []Capability{
	CapReadBytes, CapWriteBytes, CapOpenRead, CapOpenWrite,
	CapExists, CapIsDir, CapIsFile, CapStat,
	CapListDir, CapMakeDirs, CapRemove, CapRmdir, CapRmtree, CapRename,
}

var capabilityNames = map[Capability]string{
	CapReadBytes:  "read_bytes",
	CapWriteBytes: "write_bytes",
	CapOpenRead:   "open_read",
	CapOpenWrite:  "open_write",
	CapExists:     "exists",
	CapIsDir:      "is_dir",
	CapIsFile:     "is_file",
	CapStat:       "stat",
	CapListDir:    "listdir",
	CapMakeDirs:   "makedirs",
	CapRemove:     "remove",
	CapRmdir:      "rmdir",
	CapRmtree:     "rmtree",
	CapRename:     "rename",
}

// String returns the snake_case name of the capability.
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCapability returns the capability with the given name.
func ParseCapability(name string) (Capability, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range capabilityNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// Capabilities returns every known capability in declaration order.
func Capabilities() []Capability {
	out := make([]Capability, len(capabilities))
	copy(out, capabilities)
	return out
}

// CapabilitySet is the set of capabilities a Provider declares.
type CapabilitySet uint16

// NewCapabilitySet returns a set holding caps.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// AllCapabilities returns the full set.
func AllCapabilities() CapabilitySet {
	return CapabilitySet(capSentinel - 1)
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return c != 0 && s&CapabilitySet(c) == CapabilitySet(c)
}

// With returns the set with caps added.
func (s CapabilitySet) With(caps ...Capability) CapabilitySet {
	return s | NewCapabilitySet(caps...)
}

// Without returns the set with caps removed.
func (s CapabilitySet) Without(caps ...Capability) CapabilitySet {
	return s &^ NewCapabilitySet(caps...)
}

// List returns the members in declaration order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for _, c := range capabilities {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Missing returns the capabilities not in the set, in declaration order.
func (s CapabilitySet) Missing() []Capability {
	return (AllCapabilities() &^ s).List()
}

// String renders the set as a comma-separated list of names.
func (s CapabilitySet) String() string {
	list := s.List()
	if len(list) == 0 {
		return "none"
	}
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}
