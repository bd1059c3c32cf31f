package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-arp/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	// ErrNoOutput is returned at acquisition time when no output port can be opened
	ErrNoOutput = errors.New("no MIDI output available")
	// ErrScanTimeout means the MIDI driver didn't answer in time (CoreMIDI can hang)
	ErrScanTimeout = errors.New("MIDI port scan timed out")
	// ErrUnknownPort is returned when selecting a port that isn't open
	ErrUnknownPort = errors.New("unknown MIDI port")
)

// DefaultScanTimeout bounds a port enumeration
const DefaultScanTimeout = 3 * time.Second

// Port is an opened output
type Port struct {
	Name string
	Send Sender
}

// Outputs is the set of opened output ports and the selected one
type Outputs struct {
	mu       sync.RWMutex
	ports    []Port
	selected int
}

// NewOutputs selects the first of ports
func NewOutputs(ports ...Port) (*Outputs, error) {
	if len(ports) == 0 {
		return nil, ErrNoOutput
	}
	return &Outputs{ports: ports}, nil
}

// scanPorts enumerates ports with a timeout
func scanPorts(timeout time.Duration) ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		inPorts := gomidi.GetInPorts()
		outPorts := gomidi.GetOutPorts()
		ch <- portsResult{inPorts: inPorts, outPorts: outPorts}
	}()

	select {
	case r := <-ch:
		return r.inPorts, r.outPorts, nil
	case <-time.After(timeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

// ListOutputs returns the names of the available output ports
func ListOutputs(timeout time.Duration) ([]string, error) {
	_, outs, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}
	return names, nil
}

// ListInputs returns the names of the available input ports
func ListInputs(timeout time.Duration) ([]string, error) {
	ins, _, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.String()
	}
	return names, nil
}

// OpenOutputs opens every output port and selects the first, or the one
// whose name contains preferred. Ports that fail to open are skipped.
func OpenOutputs(preferred string, timeout time.Duration) (*Outputs, error) {
	_, outs, err := scanPorts(timeout)
	if err != nil {
		return nil, err
	}

	var ports []Port
	for _, op := range outs {
		send, err := gomidi.SendTo(op)
		if err != nil {
			debug.Log("ports", "open %q: %v", op.String(), err)
			continue
		}
		ports = append(ports, Port{Name: op.String(), Send: send})
	}

	o, err := NewOutputs(ports...)
	if err != nil {
		return nil, err
	}
	if preferred != "" {
		if err := o.SelectByName(preferred); err != nil {
			debug.Log("ports", "preferred port %q not found, using %q", preferred, o.Selected().Name)
		}
	}
	return o, nil
}

// Names returns the port names in order
func (o *Outputs) Names() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, len(o.ports))
	for i, p := range o.ports {
		names[i] = p.Name
	}
	return names
}

// Selected returns the current port
func (o *Outputs) Selected() Port {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.ports[o.selected]
}

func (o *Outputs) SelectedIndex() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selected
}

// Select makes port i current
func (o *Outputs) Select(i int) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i < 0 || i >= len(o.ports) {
		return Port{}, fmt.Errorf("select port %d: %w", i, ErrUnknownPort)
	}
	o.selected = i
	return o.ports[i], nil
}

// SelectByName selects the first port whose name contains name (case-insensitive)
func (o *Outputs) SelectByName(name string) error {
	want := strings.ToLower(name)
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, p := range o.ports {
		if strings.Contains(strings.ToLower(p.Name), want) {
			o.selected = i
			return nil
		}
	}
	return fmt.Errorf("select port %q: %w", name, ErrUnknownPort)
}

// Next cycles to the following port
func (o *Outputs) Next() Port {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = (o.selected + 1) % len(o.ports)
	return o.ports[o.selected]
}
