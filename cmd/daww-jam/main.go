// daww-jam opens a MIDI input device and auditions the notes played on it
// through the audio device, using the playback clock's preview path.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"go.uber.org/zap"

	"github.com/daww-tracker/daww"
	"github.com/daww-tracker/daww/midi"
	"github.com/daww-tracker/daww/oto"
	"github.com/daww-tracker/daww/tracker"
	"github.com/daww-tracker/daww/version"
)

type (
	// jamSource serializes access to the player: the MIDI driver previews
	// notes from its listener goroutine while the audio device pulls
	// samples from its own.
	jamSource struct {
		mu     sync.Mutex
		player *tracker.Player
	}
)

func (j *jamSource) Sample() float32 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.player.Sample()
}

func (j *jamSource) NoteOn(pitch daww.Pitch, velocity byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.player.PreviewNote(pitch)
}

func (j *jamSource) NoteOff(pitch daww.Pitch) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.player.ClearPreview()
}

func main() {
	device := flag.String("midi", "", "Prefix of the name of the MIDI input device to open. By default, the first device is opened.")
	list := flag.Bool("l", false, "List the available MIDI input devices and exit.")
	sampleRate := flag.Int("rate", 44100, "Sample rate to play at.")
	bpm := flag.Int("bpm", 120, "Tempo of the playback clock.")
	debug := flag.Bool("d", false, "Write a debug log to daww.log in the working directory.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	logger := zap.NewNop()
	if *debug {
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"daww.log"}
		var err error
		if logger, err = config.Build(); err != nil {
			fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}
	score := daww.NewSharedScore(daww.NewScore())
	player, err := tracker.NewPlayer(score, *sampleRate, *bpm, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create player: %v\n", err)
		os.Exit(1)
	}
	source := &jamSource{player: player}
	midiContext := midi.NewContext(source, logger)
	defer midiContext.Close()
	if *list {
		for _, name := range midiContext.InputDevices() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	if err := midiContext.TryToOpenBy(*device, *device == ""); err != nil {
		fmt.Fprintf(os.Stderr, "could not open MIDI input: %v\n", err)
		os.Exit(1)
	}
	audioContext, err := oto.NewContext(*sampleRate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not acquire oto audio context: %v\n", err)
		os.Exit(1)
	}
	defer audioContext.Close()
	otoPlayer := audioContext.Play(source)
	defer otoPlayer.Close()
	fmt.Println("Playing MIDI input; press Ctrl-C to quit.")
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Daww command line utility for auditioning MIDI input.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
