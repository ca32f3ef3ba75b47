// ABOUTME: Translates soundstage-ctl arguments into protocol commands
// ABOUTME: Also formats command results for the terminal
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sendspin/soundstage/pkg/protocol"
)

const usage = `usage: soundstage-ctl [flags] <command> [args]

commands:
  state                         print the player snapshot
  load <path>...                queue assets for loading
  create <path>                 create a sound from a loaded asset
  destroy <sound>               destroy a sound
  remove-all                    destroy every sound
  play <sound> [loop]           start playback
  stop <sound>                  stop playback
  playing <sound>               report whether a sound is playing
  position <sound> [x y z]      get or set a sound position
  volume [v [seconds]]          get or ramp the master volume
  gain <sound> <g>              set a playing sound's gain
  listener <x> <y> <z>          move the listener
  orient <fx> <fy> <fz> <ux> <uy> <uz>
                                orient the listener
  watch                         print events until interrupted
`

// buildCommands parses a command line into one or more protocol commands.
// load takes several paths and yields one command each.
func buildCommands(args []string) ([]protocol.PlayerCommand, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command")
	}
	name, rest := args[0], args[1:]

	switch name {
	case "state":
		return one(protocol.PlayerCommand{Op: protocol.OpState}, rest, 0)
	case "load":
		if len(rest) == 0 {
			return nil, fmt.Errorf("load needs at least one path")
		}
		cmds := make([]protocol.PlayerCommand, 0, len(rest))
		for _, path := range rest {
			cmds = append(cmds, protocol.PlayerCommand{Op: protocol.OpLoad, Path: path})
		}
		return cmds, nil
	case "create":
		if len(rest) != 1 {
			return nil, fmt.Errorf("create needs a path")
		}
		return []protocol.PlayerCommand{{Op: protocol.OpCreate, Path: rest[0]}}, nil
	case "destroy", "stop", "playing":
		if len(rest) != 1 {
			return nil, fmt.Errorf("%s needs a sound id", name)
		}
		op := map[string]string{
			"destroy": protocol.OpDestroy,
			"stop":    protocol.OpStop,
			"playing": protocol.OpIsPlaying,
		}[name]
		return []protocol.PlayerCommand{{Op: op, Sound: rest[0]}}, nil
	case "remove-all":
		return one(protocol.PlayerCommand{Op: protocol.OpRemoveAll}, rest, 0)
	case "play":
		if len(rest) < 1 || len(rest) > 2 {
			return nil, fmt.Errorf("play needs a sound id and optional 'loop'")
		}
		cmd := protocol.PlayerCommand{Op: protocol.OpPlay, Sound: rest[0]}
		if len(rest) == 2 {
			if rest[1] != "loop" {
				return nil, fmt.Errorf("unexpected argument %q", rest[1])
			}
			cmd.Loop = true
		}
		return []protocol.PlayerCommand{cmd}, nil
	case "position":
		switch len(rest) {
		case 1:
			return []protocol.PlayerCommand{{Op: protocol.OpGetPosition, Sound: rest[0]}}, nil
		case 4:
			v, err := floats(rest[1:])
			if err != nil {
				return nil, err
			}
			return []protocol.PlayerCommand{{
				Op: protocol.OpSetPosition, Sound: rest[0],
				X: protocol.Float(v[0]), Y: protocol.Float(v[1]), Z: protocol.Float(v[2]),
			}}, nil
		}
		return nil, fmt.Errorf("position needs a sound id and optionally x y z")
	case "volume":
		if len(rest) == 0 {
			return []protocol.PlayerCommand{{Op: protocol.OpGetVolume}}, nil
		}
		if len(rest) > 2 {
			return nil, fmt.Errorf("volume takes a value and optional seconds")
		}
		v, err := floats(rest)
		if err != nil {
			return nil, err
		}
		cmd := protocol.PlayerCommand{Op: protocol.OpSetVolume, Volume: protocol.Float(v[0])}
		if len(v) == 2 {
			cmd.Time = protocol.Float(v[1])
		}
		return []protocol.PlayerCommand{cmd}, nil
	case "gain":
		if len(rest) != 2 {
			return nil, fmt.Errorf("gain needs a sound id and a value")
		}
		v, err := floats(rest[1:])
		if err != nil {
			return nil, err
		}
		return []protocol.PlayerCommand{{Op: protocol.OpUpdateVolume, Sound: rest[0], Gain: protocol.Float(v[0])}}, nil
	case "listener":
		if len(rest) != 3 {
			return nil, fmt.Errorf("listener needs x y z")
		}
		v, err := floats(rest)
		if err != nil {
			return nil, err
		}
		return []protocol.PlayerCommand{{
			Op: protocol.OpSetListenerPosition,
			X:  protocol.Float(v[0]), Y: protocol.Float(v[1]), Z: protocol.Float(v[2]),
		}}, nil
	case "orient":
		if len(rest) != 6 {
			return nil, fmt.Errorf("orient needs fx fy fz ux uy uz")
		}
		v, err := floats(rest)
		if err != nil {
			return nil, err
		}
		return []protocol.PlayerCommand{{
			Op:      protocol.OpSetListenerOrientation,
			Forward: &protocol.Vector{X: v[0], Y: v[1], Z: v[2]},
			Up:      &protocol.Vector{X: v[3], Y: v[4], Z: v[5]},
		}}, nil
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

func one(cmd protocol.PlayerCommand, rest []string, want int) ([]protocol.PlayerCommand, error) {
	if len(rest) != want {
		return nil, fmt.Errorf("%s takes no arguments", cmd.Op)
	}
	return []protocol.PlayerCommand{cmd}, nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

// formatResult renders the interesting part of a result for op
func formatResult(op string, res protocol.PlayerResult) string {
	switch op {
	case protocol.OpCreate:
		return res.Sound
	case protocol.OpIsPlaying:
		if res.Playing != nil {
			return strconv.FormatBool(*res.Playing)
		}
	case protocol.OpGetVolume:
		if res.Volume != nil {
			return strconv.FormatFloat(*res.Volume, 'f', 3, 64)
		}
	case protocol.OpGetPosition:
		if res.X != nil && res.Y != nil && res.Z != nil {
			return fmt.Sprintf("%g %g %g", *res.X, *res.Y, *res.Z)
		}
	case protocol.OpState:
		if res.State != nil {
			return formatState(*res.State)
		}
	}
	return "ok"
}

func formatState(st protocol.PlayerState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "volume   %.3f\n", st.Volume)
	l := st.Listener
	fmt.Fprintf(&b, "listener %g %g %g  forward %g %g %g  up %g %g %g\n",
		l.Position.X, l.Position.Y, l.Position.Z,
		l.Forward.X, l.Forward.Y, l.Forward.Z,
		l.Up.X, l.Up.Y, l.Up.Z)
	fmt.Fprintf(&b, "pending  %d\n", st.Pending)
	for _, s := range st.Sounds {
		state := "idle"
		if s.Playing {
			state = "playing"
			if s.Loop {
				state = "looping"
			}
		}
		fmt.Fprintf(&b, "%-10s %-8s %-24s %g %g %g\n", s.ID, state, s.Path, s.Position.X, s.Position.Y, s.Position.Z)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEvent(ev protocol.PlayerEvent) string {
	switch ev.Kind {
	case protocol.EventLoadStart:
		return fmt.Sprintf("load_start %s", ev.Path)
	case protocol.EventLoadError:
		return fmt.Sprintf("load_error %s [%s] %s", ev.Path, ev.Code, ev.Error)
	case protocol.EventEnded:
		return fmt.Sprintf("ended %s", ev.Sound)
	}
	return ev.Kind
}
