package cmd

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"go-arp/sequencer"
)

var (
	previewNotes  string
	previewMode   string
	previewTicks  int
	previewRepeat int
	previewWrap   bool
	previewSeed   int64
	previewRoot   int
	previewQueue  []string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the notes a step would play, without MIDI",
	Example: `  go-arp preview --mode BOTH --notes 0,3,7,12 --ticks 12
  go-arp preview --mode DRUNK --wrap=false --seed 7 --notes 0,2,4,5,7
  go-arp preview --notes 0,-,7 --repeat 2 --queue 4:2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes, err := parseNotes(previewNotes)
		if err != nil {
			return err
		}
		mode, ok := sequencer.ParseMode(previewMode)
		if !ok {
			return fmt.Errorf("unknown mode %q", previewMode)
		}
		queue, err := parseQueue(previewQueue)
		if err != nil {
			return err
		}

		seed := previewSeed
		if !cmd.Flags().Changed("seed") {
			seed = time.Now().UnixNano()
		}
		step := sequencer.NewStep(notes, mode, sequencer.Options{
			Repeat: sequencer.Int(previewRepeat),
			Wrap:   sequencer.Bool(previewWrap),
		}, sequencer.WithRand(rand.New(rand.NewSource(seed))))

		w := cmd.OutOrStdout()
		head := lipgloss.NewStyle().Bold(true)
		fmt.Fprintln(w, head.Render(fmt.Sprintf("%-5s %-5s %-5s %s", "tick", "index", "note", "name")))
		for t := 0; t < previewTicks; t++ {
			if idx, ok := queue[t]; ok {
				step.Queue(idx)
			}
			n, err := step.Advance()
			if err != nil {
				return err
			}
			name := ""
			if n.OK {
				name = sequencer.NoteName(n.Num + previewRoot)
			}
			fmt.Fprintf(w, "%-5d %-5d %-5s %s\n", t, step.Index(), n, name)
		}
		return nil
	},
}

// parseNotes reads "0,3,7,-" where "-" or "r" is a rest
func parseNotes(s string) ([]sequencer.Note, error) {
	var notes []sequencer.Note
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		switch f {
		case "":
			continue
		case "-", "r", "R":
			notes = append(notes, sequencer.Rest)
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("note %q: %w", f, err)
		}
		notes = append(notes, sequencer.N(v))
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %q", s)
	}
	return notes, nil
}

// parseQueue reads "tick:index" pairs
func parseQueue(pairs []string) (map[int]int, error) {
	out := make(map[int]int, len(pairs))
	for _, p := range pairs {
		tick, idx, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("queue %q: want tick:index", p)
		}
		t, err := strconv.Atoi(tick)
		if err != nil {
			return nil, fmt.Errorf("queue %q: %w", p, err)
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("queue %q: %w", p, err)
		}
		out[t] = i
	}
	return out, nil
}

func init() {
	f := previewCmd.Flags()
	f.StringVar(&previewNotes, "notes", "0,4,7,12", "Comma separated notes, - for a rest")
	f.StringVar(&previewMode, "mode", string(sequencer.ModeDown), "Traversal mode")
	f.IntVar(&previewTicks, "ticks", 16, "Ticks to advance")
	f.IntVar(&previewRepeat, "repeat", 1, "Ticks each note holds")
	f.BoolVar(&previewWrap, "wrap", true, "Let DRUNK wrap around the ends")
	f.Int64Var(&previewSeed, "seed", 0, "Random seed (default: time based)")
	f.IntVar(&previewRoot, "root", 60, "Root note used for note names")
	f.StringSliceVar(&previewQueue, "queue", nil, "Queue overrides as tick:index")
}
