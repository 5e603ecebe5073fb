package settings

const (
	DefaultEthernetMTU = 1500

	// DefaultRingCapacity is 8 MiB, within wintun's RingCapacityMin..Max.
	DefaultRingCapacity = 8 << 20
)
