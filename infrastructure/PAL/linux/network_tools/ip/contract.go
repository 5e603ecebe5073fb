package ip

type Contract interface {
	LinkSetDevUp(devName string) error
	LinkSetDevMTU(devName string, mtu int) error
	AddrAddDev(devName string, cidr string) error
	LinkDelete(devName string) error
}
