package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Name is the root slash command.
const Name = "/doorbell"

// HelpMessage is shown in the host's command list.
const HelpMessage = "Toggle the Doorbell config window, or silence alerts."

// ErrUsage indicates input the command surface does not understand.
var ErrUsage = errors.New("invalid doorbell command")

// Action is what a parsed command asks for.
type Action int

const (
	// ToggleSettings opens or closes the settings window.
	ToggleSettings Action = iota + 1
	// ToggleSilence silences alerts until zone exit, or unsilences them.
	ToggleSilence
	// SilenceFor silences alerts for Duration.
	SilenceFor
)

// Command is a parsed /doorbell invocation.
type Command struct {
	Action   Action
	Duration time.Duration
}

// Usage is printed to the error sink for unrecognised input.
var Usage = []string{
	"Doorbell commands:",
	"  /doorbell - toggle the config window",
	"  /doorbell silence - silence alerts until you leave the house, or unsilence them",
	"  /doorbell silence <minutes> - silence alerts for a number of minutes",
}

// Parse interprets the arguments following the root command.
func Parse(args string) (Command, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return Command{Action: ToggleSettings}, nil
	}

	if !strings.EqualFold(fields[0], "silence") {
		return Command{}, fmt.Errorf("%w: unknown subcommand %q", ErrUsage, fields[0])
	}

	switch len(fields) {
	case 1:
		return Command{Action: ToggleSilence}, nil
	case 2:
		minutes, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
			return Command{}, fmt.Errorf("%w: %q is not a positive number of minutes", ErrUsage, fields[1])
		}
		d := time.Duration(minutes * float64(time.Minute))
		if d <= 0 {
			return Command{}, fmt.Errorf("%w: %q is too short", ErrUsage, fields[1])
		}
		return Command{Action: SilenceFor, Duration: d}, nil
	default:
		return Command{}, fmt.Errorf("%w: too many arguments", ErrUsage)
	}
}
