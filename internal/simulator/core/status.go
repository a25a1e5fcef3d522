package core

import "fmt"

// Status is the externally visible lifecycle state of a vehicle. The numeric
// values are part of the wire protocol.
type Status int

const (
	StatusLoading    Status = 1
	StatusUnloading  Status = 2
	StatusDelivering Status = 3
	StatusReturning  Status = 4
	StatusWaiting    Status = 5
	StatusRepairing  Status = 6
	StatusAlert      Status = 7
)

var statusNames = map[Status]string{
	StatusLoading:    "loading",
	StatusUnloading:  "unloading",
	StatusDelivering: "delivering",
	StatusReturning:  "returning",
	StatusWaiting:    "waits",
	StatusRepairing:  "repairing",
	StatusAlert:      "alert",
}

// AllStatuses lists every status in wire order.
var AllStatuses = []Status{
	StatusLoading, StatusUnloading, StatusDelivering, StatusReturning,
	StatusWaiting, StatusRepairing, StatusAlert,
}

// String returns the wire name.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps a wire name back to its Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}
