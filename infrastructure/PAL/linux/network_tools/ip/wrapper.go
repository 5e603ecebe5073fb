package ip

import (
	"fmt"
	"strconv"

	"tunio/infrastructure/PAL"
)

// Wrapper drives the ip command from the iproute2 tool collection.
type Wrapper struct {
	commander PAL.Commander
}

func NewWrapper(commander PAL.Commander) Contract {
	return &Wrapper{commander: commander}
}

func (i *Wrapper) LinkSetDevUp(devName string) error {
	output, err := i.commander.CombinedOutput("ip", "link", "set", "dev", devName, "up")
	if err != nil {
		return fmt.Errorf("failed to bring %v up: %v, output: %s", devName, err, output)
	}
	return nil
}

func (i *Wrapper) LinkSetDevMTU(devName string, mtu int) error {
	output, err := i.commander.CombinedOutput("ip", "link", "set", "dev", devName, "mtu", strconv.Itoa(mtu))
	if err != nil {
		return fmt.Errorf("failed to set MTU %d on %v: %v, output: %s", mtu, devName, err, output)
	}
	return nil
}

func (i *Wrapper) AddrAddDev(devName string, cidr string) error {
	output, err := i.commander.CombinedOutput("ip", "addr", "add", cidr, "dev", devName)
	if err != nil {
		return fmt.Errorf("failed to assign %v to %v: %v, output: %s", cidr, devName, err, output)
	}
	return nil
}

func (i *Wrapper) LinkDelete(devName string) error {
	output, err := i.commander.CombinedOutput("ip", "link", "delete", devName)
	if err != nil {
		return fmt.Errorf("failed to delete interface %v: %v, output: %s", devName, err, output)
	}
	return nil
}
