// ABOUTME: Command dispatch for the control server
// ABOUTME: Translates protocol commands into Player operations and results
package server

import (
	"fmt"

	"github.com/Sendspin/soundstage/pkg/protocol"
	"github.com/Sendspin/soundstage/pkg/soundstage"
)

// execute runs one command and builds its result
func (s *Server) execute(cmd protocol.PlayerCommand) protocol.PlayerResult {
	res := protocol.PlayerResult{RequestID: cmd.RequestID}

	p := s.getPlayer()
	if p == nil {
		res.Error = "no player attached"
		res.Code = "internal"
		return res
	}

	id := soundstage.SoundID(cmd.Sound)
	var err error

	switch cmd.Op {
	case protocol.OpLoad:
		err = p.Load(cmd.Path)

	case protocol.OpCreate:
		var created soundstage.SoundID
		created, err = p.Create(cmd.Path)
		res.Sound = string(created)

	case protocol.OpDestroy:
		err = p.Destroy(id)

	case protocol.OpRemoveAll:
		p.RemoveAllSounds()

	case protocol.OpPlay:
		err = p.Play(id, cmd.Loop, func() {
			s.Notify(protocol.PlayerEvent{Kind: protocol.EventEnded, Sound: cmd.Sound})
		})

	case protocol.OpStop:
		p.Stop(id)

	case protocol.OpIsPlaying:
		var playing bool
		playing, err = p.IsPlaying(id)
		if err == nil {
			res.Playing = protocol.Bool(playing)
		}

	case protocol.OpSetPosition:
		err = setPosition(p, id, cmd)

	case protocol.OpGetPosition:
		var x, y, z float64
		x, y, z, err = p.Position(id)
		if err == nil {
			res.X, res.Y, res.Z = protocol.Float(x), protocol.Float(y), protocol.Float(z)
		}

	case protocol.OpSetVolume:
		if cmd.Volume == nil {
			err = missing("volume")
			break
		}
		seconds := soundstage.DefaultRampTime
		if cmd.Time != nil {
			seconds = *cmd.Time
		}
		err = p.SetVolume(*cmd.Volume, seconds)

	case protocol.OpGetVolume:
		res.Volume = protocol.Float(p.Volume())

	case protocol.OpUpdateVolume:
		if cmd.Gain == nil {
			err = missing("gain")
			break
		}
		err = p.UpdateVolume(id, *cmd.Gain)

	case protocol.OpSetListenerPosition:
		l := p.Listener()
		err = p.SetListenerPosition(or(cmd.X, l.X), or(cmd.Y, l.Y), or(cmd.Z, l.Z))

	case protocol.OpSetListenerOrientation:
		if cmd.Forward == nil || cmd.Up == nil {
			err = missing("forward and up")
			break
		}
		f, u := cmd.Forward, cmd.Up
		err = p.SetListenerOrientation(f.X, f.Y, f.Z, u.X, u.Y, u.Z)

	case protocol.OpState:
		state := Snapshot(p)
		res.State = &state

	default:
		res.Error = fmt.Sprintf("unknown op %q", cmd.Op)
		res.Code = protocol.CodeUnknownOp
		return res
	}

	if err != nil {
		res.Error = err.Error()
		res.Code = soundstage.ErrorCode(err)
	}
	return res
}

// setPosition applies whichever coordinates the command carries
func setPosition(p *soundstage.Player, id soundstage.SoundID, cmd protocol.PlayerCommand) error {
	if cmd.X == nil && cmd.Y == nil && cmd.Z == nil {
		return missing("x, y or z")
	}
	if cmd.X != nil && cmd.Y != nil && cmd.Z != nil {
		return p.SetPosition(id, *cmd.X, *cmd.Y, *cmd.Z)
	}
	if cmd.X != nil {
		if err := p.SetX(id, *cmd.X); err != nil {
			return err
		}
	}
	if cmd.Y != nil {
		if err := p.SetY(id, *cmd.Y); err != nil {
			return err
		}
	}
	if cmd.Z != nil {
		if err := p.SetZ(id, *cmd.Z); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot converts the player's state to its wire form
func Snapshot(p *soundstage.Player) protocol.PlayerState {
	l := p.Listener()
	state := protocol.PlayerState{
		Volume: p.Volume(),
		Listener: protocol.ListenerState{
			Position: protocol.Vector{X: l.X, Y: l.Y, Z: l.Z},
			Forward:  protocol.Vector{X: l.Forward[0], Y: l.Forward[1], Z: l.Forward[2]},
			Up:       protocol.Vector{X: l.Up[0], Y: l.Up[1], Z: l.Up[2]},
		},
		Sounds:  []protocol.SoundState{},
		Pending: p.Pending(),
	}
	for _, snd := range p.Sounds() {
		state.Sounds = append(state.Sounds, protocol.SoundState{
			ID:       string(snd.ID),
			Path:     snd.Path,
			Position: protocol.Vector{X: snd.X, Y: snd.Y, Z: snd.Z},
			Playing:  snd.Playing,
			Loop:     snd.Loop,
			Gain:     snd.Gain,
		})
	}
	return state
}

func missing(field string) error {
	return fmt.Errorf("%w: %s required", soundstage.ErrInvalidArgument, field)
}

func or(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
