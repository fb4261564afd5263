package filestore

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmgilman/go/filestore/fs/core"
)

// Support describes how a Store provides a capability.
type Support int

const (
	// SupportAbsent means calls fail with errors.CodeUnsupported.
	SupportAbsent Support = iota
	// SupportNative means the provider declares the capability.
	SupportNative
	// SupportFallback means the Store synthesizes it from other primitives.
	SupportFallback
)

// String returns "absent", "native" or "fallback".
func (s Support) String() string {
	switch s {
	case SupportNative:
		return "native"
	case SupportFallback:
		return "fallback"
	default:
		return "absent"
	}
}

// CapabilityStatus pairs a capability with how the Store provides it.
type CapabilityStatus struct {
	Capability core.Capability
	Support    Support
}

// Capabilities returns the capability set the provider declares.
func (s *Store) Capabilities() core.CapabilitySet {
	return s.caps
}

// Supports reports whether calls needing c will be attempted, natively or
// through a fallback.
func (s *Store) Supports(c core.Capability) bool {
	return s.caps.Has(c) || s.synthesizable(c)
}

// CapabilityReport returns the support level of every capability in
// declaration order.
func (s *Store) CapabilityReport() []CapabilityStatus {
	all := core.Capabilities()
	out := make([]CapabilityStatus, 0, len(all))
	for _, c := range all {
		st := CapabilityStatus{Capability: c, Support: SupportAbsent}
		switch {
		case s.caps.Has(c):
			st.Support = SupportNative
		case s.synthesizable(c):
			st.Support = SupportFallback
		}
		out = append(out, st)
	}
	return out
}

// DebugPrintCapabilities writes a human-readable capability table to w.
func (s *Store) DebugPrintCapabilities(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "provider:\t%s (%s)\n", s.provider.Name(), s.provider.Type())
	fmt.Fprintf(tw, "declared:\t%s\n", s.caps)
	for _, st := range s.CapabilityReport() {
		fmt.Fprintf(tw, "  %s\t%s\n", st.Capability, st.Support)
	}
	return tw.Flush()
}

// synthesizable reports whether the fallback table can provide c from the
// declared capabilities.
func (s *Store) synthesizable(c core.Capability) bool {
	has := s.caps.Has
	switch c {
	case core.CapReadBytes:
		return has(core.CapOpenRead)
	case core.CapWriteBytes:
		return has(core.CapOpenWrite)
	case core.CapOpenRead:
		return has(core.CapReadBytes)
	case core.CapOpenWrite:
		return has(core.CapWriteBytes)
	case core.CapExists, core.CapIsFile:
		return s.canInspect()
	case core.CapIsDir:
		return has(core.CapStat)
	case core.CapRmtree:
		return s.canInspect() && has(core.CapListDir) && has(core.CapRemove) && has(core.CapRmdir)
	case core.CapRename:
		return s.Supports(core.CapReadBytes) && s.Supports(core.CapWriteBytes) &&
			s.canInspect() && has(core.CapListDir) && has(core.CapMakeDirs) &&
			has(core.CapRemove) && s.Supports(core.CapRmtree)
	}
	return false
}
