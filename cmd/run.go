package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/tui"
)

var (
	noOutput    bool
	palettePath string
	portName    string
	inputName   string
)

// drainTimeout bounds the wait for pending note-offs on exit
const drainTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play the arpeggiator with the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		pal := theme.Plasma()
		if palettePath != "" {
			p, err := theme.LoadGPL(palettePath)
			if err != nil {
				return err
			}
			pal = p
		}
		th := theme.New(pal)

		manager := sequencer.NewManager(sequencer.DemoPattern(), settingsFromConfig())
		sched := midi.NewNoteScheduler(nil,
			midi.WithChannel(uint8(cfg.Output.Channel-1)),
			midi.WithObserver(manager.Observe),
		)
		manager.SetScheduler(sched)

		// Device failures surface here, once, not per tick
		if !noOutput {
			preferred := cfg.Output.PortName
			if portName != "" {
				preferred = portName
			}
			outs, err := midi.OpenOutputs(preferred, midi.DefaultScanTimeout)
			if err != nil {
				if errors.Is(err, midi.ErrNoOutput) {
					return fmt.Errorf("%w (use --no-output to run silently)", err)
				}
				return err
			}
			manager.SetOutputs(outs)
			debug.Log("ports", "output %s", outs.Selected().Name)
		}

		in := cfg.Input.PortName
		if inputName != "" {
			in = inputName
		}
		if in != "" {
			ti, err := midi.OpenTriggerInput(in, midi.DefaultScanTimeout)
			if err != nil {
				return err
			}
			defer ti.Close()
			manager.ListenInput(ti)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go manager.Run(ctx)

		m := tui.NewModel(manager, th)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return err
		}

		manager.Stop()
		drainNoteOffs(sched)
		return nil
	},
}

// drainNoteOffs lets scheduled note-offs fire so nothing is left sounding
func drainNoteOffs(sched *midi.NoteScheduler) {
	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		debug.Log("sched", "gave up waiting for %d note-offs", sched.Pending())
	}
}

func settingsFromConfig() sequencer.Settings {
	t := cfg.Transport
	return sequencer.Settings{
		Tempo:       t.Tempo,
		Gate:        t.Gate,
		Dividend:    t.Dividend,
		Denominator: t.Denominator,
		RootNote:    t.RootNote,
		InputBase:   uint8(cfg.Input.BaseNote),
	}
}

func init() {
	runCmd.Flags().BoolVar(&noOutput, "no-output", false, "Run without a MIDI output")
	runCmd.Flags().StringVar(&palettePath, "palette", "", "GIMP .gpl palette for the UI")
	runCmd.Flags().StringVar(&portName, "port", "", "Output port name (substring match)")
	runCmd.Flags().StringVar(&inputName, "input", "", "Input port used to queue notes live")
}
