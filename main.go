package main

import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-arp/cmd"
)

func main() {
	cmd.Execute()
}
