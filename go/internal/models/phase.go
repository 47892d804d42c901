package models

import (
	"fmt"
	"strings"
)

// Phase is the persisted phase of a session timer.
type Phase string

const (
	PhaseBuild      Phase = "BUILD"
	PhaseDiscuss    Phase = "DISCUSS"
	PhasePaused     Phase = "PAUSED"
	PhaseTransition Phase = "TRANSITION"
	PhaseComplete   Phase = "COMPLETE"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseBuild, PhaseDiscuss, PhasePaused, PhaseTransition, PhaseComplete:
		return true
	}
	return false
}

// PhaseKind is the kind of timed phase a session can run.
type PhaseKind string

const (
	PhaseKindBuild   PhaseKind = "build"
	PhaseKindDiscuss PhaseKind = "discuss"
)

// ParsePhaseKind maps any letter case of "build" or "discuss" to a PhaseKind.
func ParsePhaseKind(s string) (PhaseKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PhaseKindBuild):
		return PhaseKindBuild, nil
	case string(PhaseKindDiscuss):
		return PhaseKindDiscuss, nil
	default:
		return "", fmt.Errorf("invalid phase kind: %q", s)
	}
}

// Phase returns the running phase for this kind.
func (k PhaseKind) Phase() Phase {
	if k == PhaseKindDiscuss {
		return PhaseDiscuss
	}
	return PhaseBuild
}

// DisplayPhase is the phase presented to clients. It adds idle (no active
// session) and folds a stopped BUILD/DISCUSS timer into paused.
type DisplayPhase string

const (
	DisplayPhaseIdle       DisplayPhase = "idle"
	DisplayPhaseBuild      DisplayPhase = "build"
	DisplayPhaseDiscuss    DisplayPhase = "discuss"
	DisplayPhasePaused     DisplayPhase = "paused"
	DisplayPhaseTransition DisplayPhase = "transition"
	DisplayPhaseComplete   DisplayPhase = "complete"
)

// DisplayMode selects the presenter layout.
type DisplayMode string

const (
	DisplayModeStandard DisplayMode = "STANDARD"
	DisplayModeFocus    DisplayMode = "FOCUS"
	DisplayModePause    DisplayMode = "PAUSE"
)

// ParseDisplayMode is the one boundary where display modes arrive in
// arbitrary letter case (query strings, CLI flags, legacy rows).
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch DisplayMode(strings.ToUpper(strings.TrimSpace(s))) {
	case DisplayModeStandard:
		return DisplayModeStandard, nil
	case DisplayModeFocus:
		return DisplayModeFocus, nil
	case DisplayModePause:
		return DisplayModePause, nil
	default:
		return "", fmt.Errorf("invalid display mode: %q", s)
	}
}
