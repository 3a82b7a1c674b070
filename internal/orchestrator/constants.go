package orchestrator

import "time"

// Menu choices.
const (
	ChoiceIngest = "1"
	ChoiceText   = "2"
	ChoiceAudio  = "3"
	ChoiceScreen = "4"
	ChoiceExit   = "5"
)

var choices = []string{ChoiceIngest, ChoiceText, ChoiceAudio, ChoiceScreen, ChoiceExit}

const (
	// DoneSentinel ends ingestion when typed alone on a line.
	DoneSentinel = "DONE"

	// DefaultOutput is the screen recording file.
	DefaultOutput = "screen_analysis.avi"

	DefaultCalibration   = time.Second
	DefaultWaitTimeout   = 5 * time.Second
	DefaultPhraseLimit   = 15 * time.Second
	DefaultScreenSeconds = 5

	// EventBuffer is the per-subscriber event buffer.
	EventBuffer = 64
)

const (
	bannerTitle    = "ARTIFICIAL INTELLIGENCE BEHAVIOURAL ANALYSIS"
	bannerSubtitle = "System v1.0"
)
