package PAL

// Commander abstracts platform command execution so wrappers around
// iproute2/netsh stay testable without shelling out.
type Commander interface {
	CombinedOutput(name string, args ...string) ([]byte, error)
	Output(name string, args ...string) ([]byte, error)
}
