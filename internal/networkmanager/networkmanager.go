package networkmanager

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	nmcliExecutable  = "nmcli"
	rfkillExecutable = "rfkill"
)

var (
	ErrorCommandFailure      = errors.New("failed running command")
	ErrorUnknownManagedState = errors.New("unknown managed state returned")
)

type ManagedState int

const (
	Unknown ManagedState = iota
	Managed
	Unmanaged
)

// Tool wraps the nmcli and rfkill binaries on the host. NetworkManager must
// release the adapter before the cloudcutter container can drive it in AP
// mode, and must take it back once flashing is over.
type Tool struct {
	executable string
	rfkill     string
}

func New() (*Tool, error) {
	executable, err := exec.LookPath(nmcliExecutable)
	if err != nil {
		return nil, err
	}
	rfkill, err := exec.LookPath(rfkillExecutable)
	if err != nil {
		return nil, err
	}
	return &Tool{
		executable: executable,
		rfkill:     rfkill,
	}, nil
}

func (t *Tool) WifiAdapters() ([]string, error) {
	resp, err := t.command([]string{"-t", "-f", "DEVICE,TYPE", "device"})
	if err != nil {
		return nil, err
	}
	return parseWifiAdapters(string(resp)), nil
}

func (t *Tool) IsWifiAdapter(name string) (bool, error) {
	adapters, err := t.WifiAdapters()
	if err != nil {
		return false, err
	}
	for _, adapter := range adapters {
		if adapter == name {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tool) SetManaged(name string, managed bool) error {
	value := "no"
	if managed {
		value = "yes"
	}
	_, err := t.command([]string{"device", "set", name, "managed", value})
	if err != nil {
		return err
	}
	return nil
}

func (t *Tool) GetManagedState(name string) (ManagedState, error) {
	resp, err := t.command([]string{"-t", "-f", "GENERAL.STATE", "device", "show", name})
	if err != nil {
		return Unknown, err
	}
	return parseManagedState(string(resp))
}

// Unblock lifts a soft rfkill block on wifi. Adapted host preparation step;
// a blocked radio makes the AP setup inside the container fail with no
// useful diagnostics.
func (t *Tool) Unblock() error {
	cmd := exec.Command(t.rfkill, "unblock", "wifi")
	data, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %v: %v", ErrorCommandFailure, err, strings.TrimSpace(string(data)))
	}
	return nil
}

func (t *Tool) command(args []string) ([]byte, error) {
	cmd := exec.Command(t.executable, args...)
	data, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrorCommandFailure, err, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func parseWifiAdapters(output string) []string {
	var adapters []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 2 {
			continue
		}
		if fields[1] == "wifi" {
			adapters = append(adapters, fields[0])
		}
	}
	return adapters
}

func parseManagedState(output string) (ManagedState, error) {
	// Terse output looks like "GENERAL.STATE:100 (connected)" or
	// "GENERAL.STATE:10 (unmanaged)".
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "GENERAL.STATE:") {
			continue
		}
		if strings.Contains(line, "unmanaged") {
			return Unmanaged, nil
		}
		return Managed, nil
	}
	return Unknown, fmt.Errorf("%w: %q", ErrorUnknownManagedState, strings.TrimSpace(output))
}
