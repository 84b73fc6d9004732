// Package assessor orchestrates one conversational MBTI assessment: it owns
// the session state, drives the LLM gateway and decides when to run the
// final analysis.
package assessor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hxl333/mbti-bot/llm"
	"github.com/hxl333/mbti-bot/prompt/mbti"
	"github.com/hxl333/mbti-bot/session"
)

// ErrNotReady is returned when the service started without a usable model
// configuration (e.g. missing credential).
var ErrNotReady = errors.New("assessor: model not ready")

// welcomeFallback is shown when the opening gateway call fails.
const welcomeFallback = "你好！我是你的 MBTI 性格测评顾问。接下来我们轻松聊几个日常话题，" +
	"帮你了解自己的性格类型。先说说看，周末你一般喜欢怎么安排？"

// Options tunes the trigger heuristic.
type Options struct {
	MinQuestionsBeforeAnalysis int
	Keywords                   Keywords
}

// Reply is what one SendMessage round returns to the UI.
type Reply struct {
	Message    string           `json:"message"`
	Analysis   *mbti.Assessment `json:"analysis"`
	IsComplete bool             `json:"isComplete"`
}

// Assessor runs a single logical session. It is not a general-purpose
// concurrent object: the only guarded race is two overlapping analysis
// attempts, which the reentrancy flag collapses into one.
type Assessor struct {
	gw    llm.Gateway
	store *session.Store
	opts  Options
	log   *slog.Logger

	mu        sync.Mutex
	analyzing bool
}

func New(gw llm.Gateway, opts Options, log *slog.Logger) *Assessor {
	if opts.MinQuestionsBeforeAnalysis <= 0 {
		opts.MinQuestionsBeforeAnalysis = 4
	}
	if opts.Keywords.Axes == nil {
		opts.Keywords = DefaultKeywords()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assessor{
		gw:    gw,
		store: session.NewStore(),
		opts:  opts,
		log:   log,
	}
}

// Ready reports whether the assessor can reach the model.
func (a *Assessor) Ready() bool {
	return a.gw != nil
}

// SendMessage appends the user turn, obtains the assistant reply and, when
// the trigger fires, runs the final analysis. A primary-reply gateway
// failure is returned to the caller; analysis failures are always masked by
// the default result.
func (a *Assessor) SendMessage(ctx context.Context, text string) (*Reply, error) {
	if !a.Ready() {
		return nil, ErrNotReady
	}

	a.store.AppendUser(text)

	info := a.store.Info()
	systemPrompt, err := mbti.RenderSystem(ctx, info.QuestionsAsked, a.opts.MinQuestionsBeforeAnalysis)
	if err != nil {
		return nil, err
	}

	replyText, err := a.gw.Invoke(ctx, systemPrompt, a.store.Snapshot())
	if err != nil {
		a.log.Error("primary chat call failed", "error", err)
		return nil, err
	}

	a.store.AppendAssistant(replyText)
	a.store.IncrementQuestions()

	info = a.store.Info()
	turns := a.store.Snapshot()
	triggered := ShouldAnalyze(replyText, info.QuestionsAsked, a.opts.MinQuestionsBeforeAnalysis, turns, a.opts.Keywords)
	a.log.Debug("analysis trigger evaluated",
		"questions_asked", info.QuestionsAsked,
		"min_questions", a.opts.MinQuestionsBeforeAnalysis,
		"trigger_phrase", a.opts.Keywords.hasTriggerPhrase(replyText),
		"covered_axes", a.opts.Keywords.CoveredAxes(turns),
		"triggered", triggered,
	)
	if !triggered {
		return &Reply{Message: replyText}, nil
	}

	analysis := a.runAnalysis(ctx, turns)
	if analysis == nil {
		// Another analysis is already in flight; this attempt is dropped.
		return &Reply{Message: replyText}, nil
	}

	a.store.SetMBTIType(analysis.MBTIType)
	return &Reply{Message: replyText, Analysis: analysis, IsComplete: true}, nil
}

// runAnalysis performs the second gateway call and the tolerant parse. It
// never fails: gateway errors and parser exhaustion both yield the default
// result. Returns nil only when an analysis is already in progress.
func (a *Assessor) runAnalysis(ctx context.Context, turns []session.Turn) *mbti.Assessment {
	if !a.beginAnalysis() {
		a.log.Warn("analysis already in progress, dropping duplicate attempt")
		return nil
	}
	defer a.endAnalysis()

	analysisPrompt, err := mbti.RenderAnalysis(ctx, turns)
	if err != nil {
		a.log.Error("analysis prompt render failed", "error", err)
		return mbti.DefaultAssessment()
	}

	raw, err := a.gw.Invoke(ctx, analysisPrompt, nil)
	if err != nil {
		a.log.Error("analysis chat call failed, using default result", "error", err)
		return mbti.DefaultAssessment()
	}

	if res := mbti.ParseAssessment(raw); res != nil {
		return res
	}
	a.log.Warn("analysis output unparseable, using default result")
	return mbti.DefaultAssessment()
}

func (a *Assessor) beginAnalysis() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.analyzing {
		return false
	}
	a.analyzing = true
	return true
}

func (a *Assessor) endAnalysis() {
	a.mu.Lock()
	a.analyzing = false
	a.mu.Unlock()
}

// WelcomeMessage asks the model for an opening question. Falls back to a
// fixed greeting when the gateway call fails, so the UI always has a first
// assistant turn to show.
func (a *Assessor) WelcomeMessage(ctx context.Context) string {
	if !a.Ready() {
		return welcomeFallback
	}
	systemPrompt, err := mbti.RenderSystem(ctx, 0, a.opts.MinQuestionsBeforeAnalysis)
	if err != nil {
		return welcomeFallback
	}
	opening := []session.Turn{{Role: session.RoleUser, Text: "你好，我想做一次 MBTI 性格测评。"}}
	text, err := a.gw.Invoke(ctx, systemPrompt, opening)
	if err != nil {
		a.log.Warn("welcome call failed, using fallback greeting", "error", err)
		return welcomeFallback
	}
	return text
}

// Reset discards the session state so a fresh assessment can start.
func (a *Assessor) Reset() {
	a.store.Reset()
}

// History returns a copy of the conversation so far.
func (a *Assessor) History() []session.Turn {
	return a.store.Snapshot()
}

// UserInfo returns the session's progress view.
func (a *Assessor) UserInfo() session.UserInfo {
	return a.store.Info()
}
