package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"github.com/GriffinCanCode/aiba/internal/audio"
	"github.com/GriffinCanCode/aiba/internal/config"
	"github.com/GriffinCanCode/aiba/internal/console"
	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
	"github.com/GriffinCanCode/aiba/internal/memory"
	"github.com/GriffinCanCode/aiba/internal/orchestrator"
	"github.com/GriffinCanCode/aiba/internal/screen"
	"github.com/GriffinCanCode/aiba/internal/server"
	"github.com/GriffinCanCode/aiba/internal/speech"
	"github.com/GriffinCanCode/aiba/internal/summarize"
	"github.com/GriffinCanCode/aiba/internal/trace"
	"github.com/GriffinCanCode/aiba/internal/vision"
)

// run wires every component from cfg and serves the menu until exit.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	con := console.New(out)
	con.Heading(console.AccentCyan, "Initializing Neural Pathways (Downloading/Loading Models)...")

	deps, caps, cleanup := build(ctx, cfg, con)
	defer cleanup()
	deps.Prompter = console.NewPrompter(in, con)

	if cfg.Server.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Server.Listen)
		if err != nil {
			return fmt.Errorf("failed to start event feed: %w", err)
		}
		srv := server.New(deps.Bus, deps.Memory)
		go func() {
			if err := srv.Serve(ctx, ln); err != nil {
				trace.Logger(ctx).Error("event feed stopped", "error", err)
			}
		}()
	}

	m := orchestrator.New(deps, orchestrator.Settings{
		Calibration:     cfg.Audio.Calibration,
		WaitTimeout:     cfg.Audio.WaitTimeout,
		PhraseLimit:     cfg.Audio.PhraseLimit,
		DefaultDuration: cfg.Screen.DefaultDuration,
		Output:          cfg.Screen.Output,
	})
	m.ReportInit(caps)
	return m.Run(ctx)
}

// build creates the capabilities. Failures are recorded in the returned
// report and leave the dependency unset.
func build(ctx context.Context, cfg *config.Config, con *console.Console) (orchestrator.Deps, []orchestrator.Capability, func()) {
	deps := orchestrator.Deps{
		Console: con,
		Memory:  memory.NewStore(),
		Bus:     orchestrator.NewBus(),
	}
	var caps []orchestrator.Capability
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				trace.Logger(ctx).Warn("failed to release capability", "error", err)
			}
		}
	}

	backend, err := newSummarizer(cfg.Summarizer)
	deps.Delegate = summarize.NewDelegate(backend, summarize.BoundsFrom(cfg.Summarizer), cfg.Summarizer.ShortThreshold)
	caps = append(caps, capability("NLP Core Online", nameOf(backend), err))

	transcriber, err := newTranscriber(cfg.Speech)
	deps.Transcriber = transcriber
	if c, ok := transcriber.(io.Closer); ok {
		closers = append(closers, c)
	}
	caps = append(caps, capability("Speech Decoder Online", nameOf(transcriber), err))

	micCfg := audio.MicConfig{
		Device:     cfg.Audio.Device,
		Excluded:   cfg.Audio.ExcludedDevices,
		SampleRate: cfg.Audio.SampleRate,
	}
	device, err := audio.Probe(micCfg)
	deps.OpenMic = func() (orchestrator.Microphone, error) {
		mic, err := audio.Open(micCfg)
		if err != nil {
			return nil, err
		}
		return mic, nil
	}
	caps = append(caps, capability("Audio Sensors Calibrated", "("+device+")", err))

	lcfg := audio.DefaultListenerConfig()
	lcfg.EnergyThreshold = cfg.Audio.EnergyThreshold
	lcfg.DynamicEnergy = cfg.Audio.DynamicEnergy
	if cfg.Audio.PauseThreshold > 0 {
		lcfg.PauseThreshold = cfg.Audio.PauseThreshold
	}
	deps.Listener = audio.NewListener(lcfg)

	capturer, err := screen.New(cfg.Screen.Backend)
	if err != nil {
		caps = append(caps, capability("Vision Modules Ready", "", err))
		return deps, caps, cleanup
	}
	closers = append(closers, capturer)
	deps.Recorder = vision.NewRecorder(capturer, vision.Config{
		FPS:             cfg.Screen.FPS,
		Quality:         cfg.Screen.Quality,
		ChangeThreshold: cfg.Screen.ChangeThreshold,
		Progress:        con.Writer(),
	})
	bounds, err := capturer.Bounds(ctx)
	caps = append(caps, capability("Vision Modules Ready", fmt.Sprintf("(%s, %dx%d)", capturer.Name(), bounds.Dx(), bounds.Dy()), err))

	return deps, caps, cleanup
}

func newSummarizer(cfg config.SummarizerConfig) (summarize.Summarizer, error) {
	s, err := summarize.New(cfg, summarize.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err == nil && s == nil {
		err = apperrors.New(apperrors.SummarizerNotConfigured, "summarizer disabled")
	}
	return s, err
}

func newTranscriber(cfg config.SpeechConfig) (speech.Transcriber, error) {
	t, err := speech.New(cfg,
		speech.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		speech.WithClientOptions(option.WithGRPCDialOption(grpc.WithUnaryInterceptor(trace.UnaryClientInterceptor()))),
	)
	if err == nil && t == nil {
		err = apperrors.New(apperrors.SpeechNotConfigured, "speech recognition disabled")
	}
	return t, err
}

type named interface{ Name() string }

func nameOf(n named) string {
	if n == nil {
		return ""
	}
	return "(" + n.Name() + ")"
}

func capability(label, detail string, err error) orchestrator.Capability {
	if err != nil {
		detail = ""
	}
	return orchestrator.Capability{Label: label, Detail: detail, Err: err}
}
