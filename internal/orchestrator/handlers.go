package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/aiba/internal/audio"
	"github.com/GriffinCanCode/aiba/internal/console"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/memory"
	"github.com/GriffinCanCode/aiba/internal/summarize"
	"github.com/GriffinCanCode/aiba/internal/trace"
	"github.com/GriffinCanCode/aiba/internal/vision"
)

// IngestedPayload is published with memory.ingested.
type IngestedPayload struct {
	Entry memory.Entry `json:"entry"`
	Count int          `json:"count"`
}

// TranscribedPayload is published with audio.transcribed.
type TranscribedPayload struct {
	Text     string        `json:"text"`
	Backend  string        `json:"backend"`
	Duration time.Duration `json:"duration"`
}

// Ingest reads lines until DONE and appends them to memory as one entry.
func (m *Manager) Ingest(ctx context.Context) (memory.Entry, error) {
	m.Console.Print("")
	m.Console.Heading(console.AccentYellow, ">> TRAINING MODE INITIATED")
	m.Console.Print("Feed data to AIBA. Type '%s' on a new line to finish.", DoneSentinel)

	lines, err := m.Prompter.ReadUntil(ctx, DoneSentinel)
	if err != nil {
		return memory.Entry{}, err
	}

	entry, n := m.Memory.Append(strings.Join(lines, " "))
	m.Console.Success("Data Ingested.", fmt.Sprintf("Memory Nodes Updated: %d", n))
	trace.Logger(ctx).Debug("memory entry appended", "id", entry.ID, "count", n)
	m.Bus.Publish(ctx, EventMemoryIngested, IngestedPayload{Entry: entry, Count: n})
	return entry, nil
}

func (m *Manager) textCommand(ctx context.Context) error {
	text, err := m.Prompter.Ask(ctx, "Enter text to analyze (or leave empty to use Memory)", "")
	if err != nil {
		return err
	}
	_, err = m.AnalyzeText(ctx, text)
	return err
}

// AnalyzeText summarizes text, falling back to the latest memory entry when
// text is empty. It returns a zero Result when there is nothing to analyze.
func (m *Manager) AnalyzeText(ctx context.Context, text string) (summarize.Result, error) {
	return m.analyze(ctx, text, summarize.SourceArgument)
}

func (m *Manager) analyze(ctx context.Context, text string, src summarize.Source) (summarize.Result, error) {
	if text == "" {
		if latest, ok := m.Memory.Latest(); ok {
			m.Console.Dim("Analyzing latest memory block...")
			text, src = latest.Text, summarize.SourceMemory
		}
	}
	if text == "" {
		m.Console.Error("No data to analyze.")
		return summarize.Result{}, nil
	}

	m.Console.Heading(console.AccentBlue, "Processing Textual Behaviour...")
	res, err := m.Delegate.Analyze(ctx, text, src)
	if err != nil {
		return res, fmt.Errorf("failed to analyze text: %w", err)
	}

	if res.Short {
		m.Console.Panel("Analysis (Short Input)", m.Console.Theme().Italic.Render(res.Summary), console.AccentBlue)
	} else {
		m.Console.Panel("BEHAVIOURAL SUMMARY (TEXT)", res.Summary, console.AccentCyan)
	}
	m.Bus.Publish(ctx, EventTextAnalyzed, res)
	return res, nil
}

// AnalyzeAudio captures one phrase, transcribes it and analyzes the
// transcript. Capture and transcription failures are reported on the console;
// only a microphone that cannot be opened is returned as an error.
func (m *Manager) AnalyzeAudio(ctx context.Context) error {
	if m.Transcriber == nil {
		return m.reportAudio(apperrors.New(apperrors.SpeechNotConfigured, "no speech backend configured"))
	}
	if m.OpenMic == nil {
		return apperrors.New(apperrors.AudioDevice, "no microphone available")
	}

	mic, err := m.OpenMic()
	if err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}
	defer func() {
		if err := mic.Close(); err != nil {
			trace.Logger(ctx).Warn("failed to close microphone", "error", err)
		}
	}()

	m.Console.Heading(console.AccentRed, ">> LISTENING... (Speak now)")
	return m.reportAudio(m.listen(ctx, mic))
}

func (m *Manager) listen(ctx context.Context, mic Microphone) error {
	if err := m.Listener.Calibrate(ctx, mic, m.settings.Calibration); err != nil {
		return err
	}
	clip, err := m.Listener.Listen(ctx, mic, m.settings.WaitTimeout, m.settings.PhraseLimit)
	if err != nil {
		return err
	}

	m.Console.Dim("Processing audio signal...")
	wav, err := audio.EncodeWAV(clip)
	if err != nil {
		return apperrors.Wrap(err, apperrors.AudioDevice, "failed to encode captured audio")
	}
	text, err := m.Transcriber.Transcribe(ctx, wav)
	if err != nil {
		return err
	}

	m.Console.Labeled("Detected Speech:", text)
	m.Bus.Publish(ctx, EventAudioTranscribed, TranscribedPayload{
		Text:     text,
		Backend:  m.Transcriber.Name(),
		Duration: clip.Duration(),
	})

	_, err = m.analyze(ctx, text, summarize.SourceSpeech)
	return err
}

// reportAudio prints the outcome of a listening session. Only input-end
// conditions pass through.
func (m *Manager) reportAudio(err error) error {
	switch {
	case err == nil:
	case isInputEnd(err):
		return err
	case apperrors.IsCode(err, apperrors.AudioWaitTimeout):
		m.Console.Warn("No speech detected.")
	case apperrors.IsCode(err, apperrors.AudioUnrecognized):
		m.Console.Error("Could not understand audio.")
	default:
		m.Console.Error("Audio Error: %v", err)
	}
	return nil
}

func (m *Manager) screenCommand(ctx context.Context) error {
	answer, err := m.Prompter.Ask(ctx, "Duration in seconds", strconv.Itoa(m.settings.DefaultDuration))
	if err != nil {
		return err
	}
	// A negative duration is accepted and records no frames.
	secs, err := strconv.Atoi(answer)
	if err != nil {
		m.Console.Error("Invalid number.")
		return nil
	}
	_, err = m.AnalyzeScreen(ctx, secs)
	return err
}

// AnalyzeScreen records the screen for secs seconds and prints the report.
func (m *Manager) AnalyzeScreen(ctx context.Context, secs int) (vision.Report, error) {
	if m.Recorder == nil {
		return vision.Report{}, apperrors.New(apperrors.ScreenCaptureFailed, "no screen capture backend available")
	}

	m.Console.Heading(console.AccentMagenta, ">> ANALYSING SCREEN BEHAVIOUR (%ds)", secs)
	rep, err := m.Recorder.Record(ctx, time.Duration(secs)*time.Second, m.settings.Output)
	if err != nil {
		return rep, fmt.Errorf("failed to record screen: %w", err)
	}

	m.Console.Panel("VISUAL MODULE OUTPUT", m.visualReport(rep, secs), console.AccentMagenta)
	trace.Logger(ctx).Info("screen recorded", "frames", rep.Frames, "elapsed", rep.Elapsed, "path", rep.OutputPath)
	m.Bus.Publish(ctx, EventScreenRecorded, rep)
	return rep, nil
}

func (m *Manager) visualReport(rep vision.Report, secs int) string {
	theme := m.Console.Theme()
	rows := console.KeyValues([][2]string{
		{"Total Frames Scanned", strconv.Itoa(rep.Frames)},
		{"Duration", fmt.Sprintf("%d seconds", secs)},
		{"Resolution", rep.Resolution()},
		{"Active Frames", strconv.Itoa(rep.ChangedFrames)},
	})
	return theme.Title.Render("Visual Stream Analysis") + "\n" +
		strings.Repeat("-", 27) + "\n" +
		rows + "\n\n" +
		theme.Italic.Render("Inference:") +
		fmt.Sprintf(" Screen activity successfully captured. Video data has been archived to '%s' for deep-layer processing.", rep.OutputPath)
}
