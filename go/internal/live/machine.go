package live

import (
	"fmt"

	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Command names a timer mutation.
type Command string

const (
	CommandStart    Command = "start_phase"
	CommandPause    Command = "pause"
	CommandResume   Command = "resume"
	CommandSnooze   Command = "snooze"
	CommandMute     Command = "toggle_mute"
	CommandComplete Command = "complete_phase"

	CommandSetSlide       Command = "set_active_slide"
	CommandSetDisplayMode Command = "set_display_mode"
)

// NextPhase returns the persisted phase a timer moves to when cmd is applied.
//
// Pausing keeps BUILD/DISCUSS and only stops the clock, so the phase being
// paused is remembered by the record itself. A PAUSED record (written by
// older tooling) resumes into its kind. COMPLETE and TRANSITION cannot be
// paused or resumed; only a new start or complete moves them.
func NextPhase(current models.Phase, kind models.PhaseKind, cmd Command) (models.Phase, error) {
	switch cmd {
	case CommandStart:
		return kind.Phase(), nil

	case CommandComplete:
		return models.PhaseComplete, nil

	case CommandPause:
		switch current {
		case models.PhaseBuild, models.PhaseDiscuss, models.PhasePaused:
			return current, nil
		}
		return "", fmt.Errorf("%w: cannot pause a timer in phase %s", ErrValidation, current)

	case CommandResume:
		switch current {
		case models.PhaseBuild, models.PhaseDiscuss:
			return current, nil
		case models.PhasePaused:
			return kind.Phase(), nil
		}
		return "", fmt.Errorf("%w: cannot resume a timer in phase %s", ErrValidation, current)

	case CommandSnooze, CommandMute:
		return current, nil
	}

	return "", fmt.Errorf("%w: unknown command %q", ErrValidation, cmd)
}
