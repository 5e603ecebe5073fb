package netsh

import (
	"fmt"
	"strconv"

	"tunio/infrastructure/PAL"
)

type Wrapper struct {
	commander PAL.Commander
}

func NewWrapper(commander PAL.Commander) Contract {
	return &Wrapper{commander: commander}
}

func (w *Wrapper) InterfaceSetAddressStatic(interfaceName, ip, mask string) error {
	output, err := w.commander.CombinedOutput("netsh", "interface", "ip", "set", "address",
		"name="+`"`+interfaceName+`"`, "static", ip, mask)
	if err != nil {
		return fmt.Errorf("InterfaceSetAddressStatic error: %v, output: %s", err, output)
	}
	return nil
}

func (w *Wrapper) InterfaceIPDeleteAddress(interfaceName, ip string) error {
	output, err := w.commander.CombinedOutput("netsh", "interface", "ip", "delete", "address",
		"name="+`"`+interfaceName+`"`, "addr="+ip)
	if err != nil {
		return fmt.Errorf("InterfaceIPDeleteAddress error: %v, output: %s", err, output)
	}
	return nil
}

func (w *Wrapper) InterfaceSetMTU(interfaceName string, mtu int) error {
	output, err := w.commander.CombinedOutput("netsh", "interface", "ipv4", "set", "subinterface",
		`"`+interfaceName+`"`, "mtu="+strconv.Itoa(mtu), "store=persistent")
	if err != nil {
		return fmt.Errorf("InterfaceSetMTU error: %v, output: %s", err, output)
	}
	return nil
}
