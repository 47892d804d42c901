// Package render turns a reconciled LiveState into what a screen shows.
package render

import (
	"fmt"
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// View is everything a presenter or viewer screen draws for one tick.
type View struct {
	Mode       models.DisplayMode
	Phase      models.DisplayPhase
	PhaseLabel string
	Clock      string
	Remaining  int
	Total      int
	// Progress is the elapsed fraction of the phase, 0 to 1.
	Progress   float64
	Running    bool
	Slide      *models.Slide
	SlideCount int

	AlarmActive bool
	// AlarmAudible is false while muted or snoozed.
	AlarmAudible bool
}

var phaseLabels = map[models.DisplayPhase]string{
	models.DisplayPhaseIdle:       "Waiting to start",
	models.DisplayPhaseBuild:      "Build",
	models.DisplayPhaseDiscuss:    "Discuss",
	models.DisplayPhasePaused:     "Paused",
	models.DisplayPhaseTransition: "Transition",
	models.DisplayPhaseComplete:   "Time's up",
}

// Build computes the view for state at now. It is pure.
func Build(state models.LiveState, now time.Time) View {
	v := View{
		Mode:        state.DisplayMode,
		Phase:       state.Phase,
		PhaseLabel:  phaseLabels[state.Phase],
		Clock:       FormatClock(state.RemainingSeconds),
		Remaining:   state.RemainingSeconds,
		Total:       state.TotalSeconds,
		Running:     state.TimerRunning,
		Slide:       state.ActiveSlide(),
		SlideCount:  len(state.Slides),
		AlarmActive: state.Alarm.Active,
	}
	if v.Mode == "" {
		v.Mode = models.DisplayModeStandard
	}
	if v.PhaseLabel == "" {
		v.PhaseLabel = string(state.Phase)
	}

	if state.TotalSeconds > 0 {
		v.Progress = 1 - float64(state.RemainingSeconds)/float64(state.TotalSeconds)
		v.Progress = clamp(v.Progress, 0, 1)
	}

	snoozed := state.Alarm.SnoozeUntil != nil && now.Before(*state.Alarm.SnoozeUntil)
	v.AlarmAudible = state.Alarm.Active && !state.Alarm.Muted && !snoozed
	return v
}

// FormatClock renders seconds as MM:SS. Minutes are not wrapped into hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
