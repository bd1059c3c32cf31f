package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go-arp/midi"
)

var pollPorts bool

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if pollPorts {
			return pollDevices(cmd, w)
		}
		ins, err := midi.ListInputs(midi.DefaultScanTimeout)
		if err != nil {
			return err
		}
		outs, err := midi.ListOutputs(midi.DefaultScanTimeout)
		if err != nil {
			return err
		}
		printPorts(w, ins, outs)
		return nil
	},
}

func printPorts(w io.Writer, ins, outs []string) {
	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Fprintf(w, "  %d: %s\n", i, p)
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Fprintf(w, "  %d: %s\n", i, p)
	}
	if len(outs) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
}

// pollDevices reports port changes until interrupted
func pollDevices(cmd *cobra.Command, w io.Writer) error {
	fmt.Fprintln(w, "Polling for device changes every 2 seconds... Ctrl+C to exit.")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	last := ""
	for {
		ins, err := midi.ListInputs(midi.DefaultScanTimeout)
		if err != nil {
			return err
		}
		outs, err := midi.ListOutputs(midi.DefaultScanTimeout)
		if err != nil {
			return err
		}

		current := strings.Join(ins, ",") + "|" + strings.Join(outs, ",")
		if current != last {
			fmt.Fprintf(w, "\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			printPorts(w, ins, outs)
			last = current
		}

		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

func init() {
	portsCmd.Flags().BoolVar(&pollPorts, "poll", false, "Keep polling and report changes")
}
