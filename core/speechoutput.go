package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/koscakluka/ema-voice/core/audio"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Strategy is how an answer is rendered as speech.
type Strategy string

const (
	// StrategyLocal speaks on the device without network access.
	StrategyLocal Strategy = "local"
	// StrategyRemote plays remotely synthesized audio, falling back to
	// StrategyLocal when synthesis or playback fails.
	StrategyRemote Strategy = "remote"
)

// playbackHandle is one in-flight rendering. Releasing it stops the
// rendering, including a synthesis request that has not returned yet.
type playbackHandle struct {
	cancel      context.CancelFunc
	releaseOnce sync.Once
}

func (h *playbackHandle) release() {
	h.releaseOnce.Do(h.cancel)
}

type speechOutput struct {
	remote         texttospeech.RemoteSynthesizer
	local          texttospeech.LocalSynthesizer
	player         audio.ClipPlayer
	localLanguage  language.Tag
	requestTimeout time.Duration

	mu     sync.Mutex
	active *playbackHandle
}

// strategyFor picks the rendering strategy for a language. Languages the
// device speaks natively never touch the network.
func (o *speechOutput) strategyFor(tag language.Tag) Strategy {
	if tag == o.localLanguage || o.remote == nil || o.player == nil {
		return StrategyLocal
	}
	return StrategyRemote
}

// speak renders text in the background, interrupting any previous rendering
// first. onComplete is called once rendering ends on its own, successfully
// or not. It is never called for interrupted renderings.
func (o *speechOutput) speak(ctx context.Context, text string, tag language.Tag, onComplete func()) Strategy {
	o.interrupt()

	ctx, cancel := context.WithCancel(ctx)
	handle := &playbackHandle{cancel: cancel}
	strategy := o.strategyFor(tag)

	o.mu.Lock()
	o.active = handle
	o.mu.Unlock()

	go func() {
		err := o.render(ctx, text, tag, strategy)
		cancelled := ctx.Err() != nil
		current := o.finish(handle)
		handle.release()

		if cancelled || !current {
			return
		}
		if err != nil {
			logger.Warn("speech output failed", "error", err, "strategy", string(strategy))
		}
		if onComplete != nil {
			onComplete()
		}
	}()

	return strategy
}

// interrupt stops the active rendering, if any, and reports whether there
// was one. It is idempotent.
func (o *speechOutput) interrupt() bool {
	o.mu.Lock()
	handle := o.active
	o.active = nil
	o.mu.Unlock()

	if handle == nil {
		return false
	}

	handle.release()
	return true
}

func (o *speechOutput) isActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.active != nil
}

func (o *speechOutput) finish(handle *playbackHandle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != handle {
		return false
	}
	o.active = nil
	return true
}

func (o *speechOutput) render(ctx context.Context, text string, tag language.Tag, strategy Strategy) error {
	ctx, span := tracer.Start(ctx, "render speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("speech.strategy", string(strategy)),
		attribute.String("speech.language", tag.String()),
	)

	if strategy == StrategyRemote {
		err := o.renderRemote(ctx, text, tag)
		if err == nil || ctx.Err() != nil {
			return err
		}

		span.RecordError(err)
		span.SetAttributes(attribute.Bool("speech.fallback", true))
		logger.Debug("remote speech unavailable, falling back to on-device synthesis", "error", err, "language", tag.String())
	}

	if err := o.renderLocal(ctx, text, tag); err != nil {
		if ctx.Err() == nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	return nil
}

func (o *speechOutput) renderRemote(ctx context.Context, text string, tag language.Tag) error {
	if o.remote == nil || o.player == nil {
		return errNoRemoteSynthesizer
	}

	requestCtx, cancel := withRequestTimeout(ctx, o.requestTimeout)
	clip, err := o.remote.Synthesize(requestCtx, text, texttospeech.WithLanguage(tag))
	cancel()
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if clip == nil || len(clip.PCM) == 0 {
		return errEmptyClip
	}

	if err := o.player.Play(ctx, clip); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("failed to play synthesized speech: %w", err)
	}
	return nil
}

func (o *speechOutput) renderLocal(ctx context.Context, text string, tag language.Tag) error {
	if o.local == nil {
		return errNoLocalSynthesizer
	}

	if err := o.local.Speak(ctx, text, texttospeech.WithLanguage(tag)); err != nil {
		return fmt.Errorf("failed to speak on device: %w", err)
	}
	return nil
}

func withRequestTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
