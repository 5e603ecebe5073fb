package settings

func ResolveMTU(mtu int) int {
	if mtu <= 0 {
		return DefaultEthernetMTU
	}
	return mtu
}

func ResolveRingCapacity(capacity int) int {
	if capacity <= 0 {
		return DefaultRingCapacity
	}
	return capacity
}
