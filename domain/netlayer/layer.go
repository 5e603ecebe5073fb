package netlayer

// Layer selects the framing of a virtual interface: whole Ethernet frames
// (L2, TAP-style) or raw IP packets (L3, TUN-style).
type Layer int

const (
	L3 Layer = iota
	L2
)

func (l Layer) String() string {
	switch l {
	case L2:
		return "L2"
	case L3:
		return "L3"
	default:
		return "unknown"
	}
}
