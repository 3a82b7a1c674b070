// Package orchestrator runs the interactive menu and the four AIBA handlers.
package orchestrator

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/GriffinCanCode/aiba/internal/audio"
	"github.com/GriffinCanCode/aiba/internal/console"
	"github.com/GriffinCanCode/aiba/internal/memory"
	"github.com/GriffinCanCode/aiba/internal/speech"
	"github.com/GriffinCanCode/aiba/internal/summarize"
	"github.com/GriffinCanCode/aiba/internal/trace"
	"github.com/GriffinCanCode/aiba/internal/vision"
)

// Microphone is an open capture device.
type Microphone interface {
	audio.Source
	Close() error
}

// MicOpener opens the microphone for one listening session.
type MicOpener func() (Microphone, error)

// PhraseListener calibrates against ambient noise and captures one phrase.
type PhraseListener interface {
	Calibrate(ctx context.Context, src audio.Source, d time.Duration) error
	Listen(ctx context.Context, src audio.Source, waitTimeout, phraseLimit time.Duration) (audio.Clip, error)
}

// ScreenRecorder records the screen to a video file.
type ScreenRecorder interface {
	Record(ctx context.Context, duration time.Duration, path string) (vision.Report, error)
}

// Settings holds handler timings and paths.
type Settings struct {
	Calibration     time.Duration
	WaitTimeout     time.Duration
	PhraseLimit     time.Duration
	DefaultDuration int
	Output          string
}

func (s Settings) withDefaults() Settings {
	if s.Calibration <= 0 {
		s.Calibration = DefaultCalibration
	}
	if s.WaitTimeout <= 0 {
		s.WaitTimeout = DefaultWaitTimeout
	}
	if s.PhraseLimit <= 0 {
		s.PhraseLimit = DefaultPhraseLimit
	}
	if s.DefaultDuration <= 0 {
		s.DefaultDuration = DefaultScreenSeconds
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	return s
}

// Deps are the collaborators of a Manager. Transcriber, OpenMic and Recorder
// may be nil when the capability failed to initialize.
type Deps struct {
	Console     *console.Console
	Prompter    *console.Prompter
	Memory      *memory.Store
	Delegate    *summarize.Delegate
	Transcriber speech.Transcriber
	OpenMic     MicOpener
	Listener    PhraseListener
	Recorder    ScreenRecorder
	Bus         *Bus
}

// Manager owns the dispatch loop.
type Manager struct {
	Deps
	settings Settings
}

// New creates a manager.
func New(deps Deps, settings Settings) *Manager {
	if deps.Memory == nil {
		deps.Memory = memory.NewStore()
	}
	if deps.Bus == nil {
		deps.Bus = NewBus()
	}
	if deps.Delegate == nil {
		deps.Delegate = summarize.NewDelegate(nil, summarize.DefaultBounds, summarize.DefaultShortThreshold)
	}
	if deps.Listener == nil {
		deps.Listener = audio.NewListener(audio.DefaultListenerConfig())
	}
	return &Manager{Deps: deps, settings: settings.withDefaults()}
}

// Capability is one line of the initialization report.
type Capability struct {
	Label  string
	Detail string
	Err    error
}

// ReportInit prints the initialization report. Failures are shown, never fatal.
func (m *Manager) ReportInit(caps []Capability) {
	for _, c := range caps {
		if c.Err != nil {
			m.Console.Error("Initialization Error: %s: %v", c.Label, c.Err)
			continue
		}
		m.Console.Success(c.Label, c.Detail)
	}
}

// Run prints the banner and serves menu commands until exit, end of input or
// cancellation.
func (m *Manager) Run(ctx context.Context) error {
	m.Console.Banner(bannerTitle, bannerSubtitle)

	for {
		m.Console.Menu("SELECT MODULE:", []console.MenuItem{
			{Key: ChoiceIngest, Label: "Feed Data (Train)", Accent: console.AccentCyan},
			{Key: ChoiceText, Label: "Analyze Text", Accent: console.AccentBlue},
			{Key: ChoiceAudio, Label: "Analyze Audio (Listen)", Accent: console.AccentRed},
			{Key: ChoiceScreen, Label: "Analyze Screen (Vision)", Accent: console.AccentMagenta},
			{Key: ChoiceExit, Label: "Exit", Dim: true},
		})

		choice, err := m.Prompter.Choose(ctx, "Enter Command", choices)
		if err != nil {
			return m.stop(err)
		}
		if choice == ChoiceExit {
			m.Console.Heading(console.AccentRed, "Shutting down AIBA...")
			return nil
		}
		if err := m.dispatch(ctx, choice); err != nil {
			if isInputEnd(err) {
				return m.stop(err)
			}
			m.Console.Panel("ERROR", err.Error(), console.AccentRed)
		}
	}
}

// stop translates input-end conditions into a clean return.
func (m *Manager) stop(err error) error {
	if isInputEnd(err) {
		m.Console.Print("")
		m.Console.Heading(console.AccentRed, "Shutting down AIBA...")
		return nil
	}
	return err
}

func isInputEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}

func (m *Manager) dispatch(ctx context.Context, choice string) error {
	ctx, span := trace.StartSpan(ctx, "command")
	defer span.End()
	span.SetAttr("choice", choice)

	var err error
	switch choice {
	case ChoiceIngest:
		_, err = m.Ingest(ctx)
	case ChoiceText:
		err = m.textCommand(ctx)
	case ChoiceAudio:
		err = m.AnalyzeAudio(ctx)
	case ChoiceScreen:
		err = m.screenCommand(ctx)
	}
	if err != nil && !isInputEnd(err) {
		span.SetAttr("error", err.Error())
		trace.Logger(ctx).Error("command failed", "choice", choice, "error", err)
	}
	return err
}
