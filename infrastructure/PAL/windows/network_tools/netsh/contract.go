package netsh

type Contract interface {
	// InterfaceSetAddressStatic assigns a static address without a gateway (on-link).
	InterfaceSetAddressStatic(interfaceName, ip, mask string) error
	InterfaceIPDeleteAddress(interfaceName, ip string) error
	InterfaceSetMTU(interfaceName string, mtu int) error
}
