// Command operator is a line-oriented control surface over the engine:
// it parses whitespace-separated commands from stdin and calls straight
// through to a Session. Key-to-note mapping and any graphical rendering
// are left to an external UI collaborator; this binary only proves the
// core's public operations wire together end to end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/branchpanic/operator/internal/clipstore"
	"github.com/branchpanic/operator/internal/instrument"
	"github.com/branchpanic/operator/internal/project"
	"github.com/branchpanic/operator/internal/session"
	"github.com/branchpanic/operator/internal/telemetry"
	"github.com/branchpanic/operator/internal/track"
)

func main() {
	var projectDir string
	var oscHost string
	var oscPort int
	var noTelemetry bool
	flag.StringVar(&projectDir, "project", "", "project directory to load on startup; empty starts a fresh project")
	flag.StringVar(&oscHost, "osc-host", "localhost", "host to send transport telemetry to")
	flag.IntVar(&oscPort, "osc-port", 57120, "OSC port for transport telemetry")
	flag.BoolVar(&noTelemetry, "no-telemetry", false, "disable OSC transport telemetry")
	flag.Parse()

	var proj *project.Project
	var err error
	if projectDir != "" {
		proj, err = project.Load(projectDir)
		if err != nil {
			log.Fatalf("failed to load project %s: %v", projectDir, err)
		}
	} else {
		proj = project.New(project.DefaultSampleRate)
	}

	var notifier *telemetry.Notifier
	if !noTelemetry {
		notifier = telemetry.New(oscHost, oscPort)
	}

	sess, err := session.Open(proj, session.Options{Telemetry: notifier})
	if err != nil {
		log.Fatalf("failed to open audio session: %v", err)
	}

	setupCleanupOnExit(sess)

	fmt.Println("operator ready. type 'help' for commands.")
	repl(sess)
}

func repl(sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := dispatch(sess, line); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func dispatch(sess *session.Session, line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help":
		printHelp()
		return nil

	case "play":
		sess.Play()
		return nil

	case "pause":
		sess.Pause()
		return nil

	case "seek":
		if len(args) != 1 {
			return fmt.Errorf("usage: seek <samples>")
		}
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		sess.Seek(track.Time(n))
		return nil

	case "time":
		fmt.Println(sess.Time())
		return nil

	case "record":
		if len(args) != 2 {
			return fmt.Errorf("usage: record <on|off> <track>")
		}
		on := args[0] == "on"
		trackIdx, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return sess.SetRecording(on, trackIdx)

	case "loadclip":
		if len(args) != 1 {
			return fmt.Errorf("usage: loadclip <wav path>")
		}
		id, err := sess.LoadClip(args[0])
		if err != nil {
			return err
		}
		fmt.Println("loaded clip id", id)
		return nil

	case "project":
		if len(args) != 2 || args[0] != "load" {
			return fmt.Errorf("usage: project load <dir>")
		}
		return sess.Load(args[1])

	case "place":
		if len(args) != 3 {
			return fmt.Errorf("usage: place <clipId> <track> <time>")
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return err
		}
		trackIdx, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		t, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return err
		}
		return sess.PlaceClip(trackIdx, track.Time(t), clipstore.ID(id))

	case "note":
		if len(args) != 3 {
			return fmt.Errorf("usage: note <on|off> <key> <velocity>")
		}
		key, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		velocity, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		kind := instrument.NoteOn
		if args[0] == "off" {
			kind = instrument.NoteOff
		}
		sess.HandleNote(instrument.Event{Kind: kind, Key: key, Velocity: velocity})
		return nil

	case "instrument":
		if len(args) < 1 {
			return fmt.Errorf("usage: instrument sine | instrument midi <device> [channel]")
		}
		switch args[0] {
		case "sine":
			if len(args) != 1 {
				return fmt.Errorf("usage: instrument sine")
			}
			sine := instrument.NewSine()
			sine.Init(sess.SampleRate())
			sess.SetInstrument(sine)
			return nil

		case "midi":
			if len(args) < 2 || len(args) > 3 {
				return fmt.Errorf("usage: instrument midi <device> [channel]")
			}
			channel := 0
			if len(args) == 3 {
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return err
				}
				channel = n
			}
			out, err := instrument.NewMidiOut(args[1], uint8(channel))
			if err != nil {
				return err
			}
			sess.SetInstrument(out)
			return nil

		default:
			return fmt.Errorf("usage: instrument sine | instrument midi <device> [channel]")
		}

	case "save":
		if len(args) != 1 {
			return fmt.Errorf("usage: save <dir>")
		}
		return sess.Save(args[0])

	case "export":
		if len(args) != 1 {
			return fmt.Errorf("usage: export <wav path>")
		}
		return sess.ExportWav(args[0])

	case "quit", "exit":
		os.Exit(0)
		return nil

	default:
		return fmt.Errorf("unknown command: %s (type 'help')", cmd)
	}
}

func printHelp() {
	fmt.Println(`commands:
  play
  pause
  seek <samples>
  time
  record <on|off> <track>
  loadclip <wav path>
  project load <dir>
  place <clipId> <track> <time>
  note <on|off> <key> <velocity>
  instrument sine
  instrument midi <device> [channel]
  save <dir>
  export <wav path>
  quit`)
}

func setupCleanupOnExit(sess *session.Session) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-c
		if err := sess.Close(); err != nil {
			log.Printf("error closing session: %v", err)
		}
		os.Exit(0)
	}()
}
