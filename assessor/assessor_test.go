package assessor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/hxl333/mbti-bot/llm"
	"github.com/hxl333/mbti-bot/session"
)

// mockGateway treats calls with an empty turn list as analysis calls, which
// is how the assessor issues them.
type mockGateway struct {
	mu            sync.Mutex
	chatReply     string
	chatErr       error
	analysisOut   string
	analysisErr   error
	chatCalls     int
	analysisCalls int

	analysisStarted chan struct{}
	analysisRelease chan struct{}
}

func (m *mockGateway) Invoke(_ context.Context, _ string, turns []session.Turn) (string, error) {
	isAnalysis := len(turns) == 0

	m.mu.Lock()
	if isAnalysis {
		m.analysisCalls++
	} else {
		m.chatCalls++
	}
	m.mu.Unlock()

	if isAnalysis {
		if m.analysisStarted != nil {
			m.analysisStarted <- struct{}{}
		}
		if m.analysisRelease != nil {
			<-m.analysisRelease
		}
		if m.analysisErr != nil {
			return "", m.analysisErr
		}
		return m.analysisOut, nil
	}

	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.chatReply, nil
}

func (m *mockGateway) counts() (chat, analysis int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatCalls, m.analysisCalls
}

const analysisJSON = `{
  "mbtiType": "INTJ",
  "confidence": 0.8,
  "dimensions": {
    "EI": {"pole": "I", "confidence": 0.8, "reason": "r"},
    "SN": {"pole": "N", "confidence": 0.8, "reason": "r"},
    "TF": {"pole": "T", "confidence": 0.8, "reason": "r"},
    "JP": {"pole": "J", "confidence": 0.8, "reason": "r"}
  },
  "description": "d"
}`

func TestSendMessageOrdinaryRound(t *testing.T) {
	gw := &mockGateway{chatReply: "先聊聊你的周末一般怎么过？"}
	a := New(gw, Options{}, nil)

	reply, err := a.SendMessage(context.Background(), "你好")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Message != gw.chatReply {
		t.Fatalf("unexpected reply: %q", reply.Message)
	}
	if reply.Analysis != nil || reply.IsComplete {
		t.Fatal("no analysis expected on the first round")
	}
	if got := a.UserInfo().QuestionsAsked; got != 1 {
		t.Fatalf("expected 1 question asked, got %d", got)
	}
	if turns := a.History(); len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
}

func TestQuestionCounterTracksAssistantReplies(t *testing.T) {
	gw := &mockGateway{chatReply: "再多说说？"}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 100}, nil)

	for i := 0; i < 5; i++ {
		if _, err := a.SendMessage(context.Background(), "嗯"); err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
	}
	if got := a.UserInfo().QuestionsAsked; got != 5 {
		t.Fatalf("expected 5 questions asked, got %d", got)
	}
}

func TestAnalysisTriggeredAndParsed(t *testing.T) {
	gw := &mockGateway{
		chatReply:   "我觉得信息够了，可以进入分析阶段。",
		analysisOut: analysisJSON,
	}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 1}, nil)

	reply, err := a.SendMessage(context.Background(), "我喜欢安静地独处")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !reply.IsComplete || reply.Analysis == nil {
		t.Fatalf("expected completed analysis, got %+v", reply)
	}
	if reply.Analysis.MBTIType != "INTJ" {
		t.Fatalf("expected INTJ, got %q", reply.Analysis.MBTIType)
	}
	if got := a.UserInfo().MBTIType; got != "INTJ" {
		t.Fatalf("expected session marked INTJ, got %q", got)
	}
	if _, analysisCalls := gw.counts(); analysisCalls != 1 {
		t.Fatalf("expected exactly 1 analysis call, got %d", analysisCalls)
	}
}

func TestAnalysisGatewayFailureMaskedByDefault(t *testing.T) {
	gw := &mockGateway{
		chatReply:   "可以开始分析了。",
		analysisErr: &llm.GatewayError{Err: errors.New("rate limited")},
	}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 1}, nil)

	reply, err := a.SendMessage(context.Background(), "你好")
	if err != nil {
		t.Fatalf("analysis failure must not surface: %v", err)
	}
	if !reply.IsComplete || reply.Analysis == nil {
		t.Fatal("expected default analysis result")
	}
	if reply.Analysis.MBTIType != "ENFP" || reply.Analysis.Confidence != 0.6 {
		t.Fatalf("expected ENFP/0.6 default, got %s/%v", reply.Analysis.MBTIType, reply.Analysis.Confidence)
	}
}

func TestAnalysisUnparseableMaskedByDefault(t *testing.T) {
	gw := &mockGateway{
		chatReply:   "可以开始分析了。",
		analysisOut: "抱歉，我说不好。\n我们再聊聊吧。",
	}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 1}, nil)

	reply, err := a.SendMessage(context.Background(), "你好")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply.Analysis == nil || reply.Analysis.MBTIType != "ENFP" {
		t.Fatalf("expected ENFP default on parser exhaustion, got %+v", reply.Analysis)
	}
}

func TestPrimaryGatewayFailureSurfaces(t *testing.T) {
	gw := &mockGateway{chatErr: &llm.GatewayError{Err: errors.New("boom")}}
	a := New(gw, Options{}, nil)

	_, err := a.SendMessage(context.Background(), "你好")
	if err == nil {
		t.Fatal("expected primary gateway failure to surface")
	}
	var gwErr *llm.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected *llm.GatewayError, got %T", err)
	}
}

func TestAnalysisReentrancyDropsDuplicate(t *testing.T) {
	gw := &mockGateway{
		chatReply:       "可以开始分析了。",
		analysisOut:     analysisJSON,
		analysisStarted: make(chan struct{}, 2),
		analysisRelease: make(chan struct{}),
	}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 1}, nil)

	firstDone := make(chan *Reply, 1)
	go func() {
		reply, err := a.SendMessage(context.Background(), "第一条")
		if err != nil {
			t.Errorf("first SendMessage failed: %v", err)
		}
		firstDone <- reply
	}()

	<-gw.analysisStarted // first analysis now in flight

	second, err := a.SendMessage(context.Background(), "第二条")
	if err != nil {
		t.Fatalf("second SendMessage failed: %v", err)
	}
	if second.IsComplete || second.Analysis != nil {
		t.Fatal("duplicate analysis attempt must be dropped, not served")
	}

	close(gw.analysisRelease)
	first := <-firstDone
	if first == nil || !first.IsComplete {
		t.Fatalf("first analysis should complete, got %+v", first)
	}

	if _, analysisCalls := gw.counts(); analysisCalls != 1 {
		t.Fatalf("expected exactly 1 analysis gateway call, got %d", analysisCalls)
	}
}

func TestReplySerializesNullAnalysis(t *testing.T) {
	data, err := json.Marshal(&Reply{Message: "继续聊聊？"})
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	if !strings.Contains(string(data), `"analysis":null`) {
		t.Fatalf("expected explicit null analysis on the wire, got %s", data)
	}
	if !strings.Contains(string(data), `"isComplete":false`) {
		t.Fatalf("expected explicit isComplete, got %s", data)
	}
}

func TestWelcomeMessageFallback(t *testing.T) {
	gw := &mockGateway{chatErr: &llm.GatewayError{Err: errors.New("down")}}
	a := New(gw, Options{}, nil)

	msg := a.WelcomeMessage(context.Background())
	if msg != welcomeFallback {
		t.Fatalf("expected fallback greeting, got %q", msg)
	}

	ok := &mockGateway{chatReply: "你好呀！先聊聊你平时的周末？"}
	a2 := New(ok, Options{}, nil)
	if msg := a2.WelcomeMessage(context.Background()); msg != ok.chatReply {
		t.Fatalf("expected model greeting, got %q", msg)
	}
	if turns := a2.History(); len(turns) != 0 {
		t.Fatalf("welcome must not pollute the stored history, got %d turns", len(turns))
	}
}

func TestResetClearsSession(t *testing.T) {
	gw := &mockGateway{chatReply: "问题？"}
	a := New(gw, Options{MinQuestionsBeforeAnalysis: 100}, nil)

	if _, err := a.SendMessage(context.Background(), "你好"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	a.Reset()

	if turns := a.History(); len(turns) != 0 {
		t.Fatalf("expected empty history after reset, got %d turns", len(turns))
	}
	if info := a.UserInfo(); info.QuestionsAsked != 0 || info.MBTIType != "" {
		t.Fatalf("expected zeroed info after reset, got %+v", info)
	}
}

func TestNotReadyWithoutGateway(t *testing.T) {
	a := New(nil, Options{}, nil)

	if a.Ready() {
		t.Fatal("assessor without a gateway must not be ready")
	}
	if _, err := a.SendMessage(context.Background(), "你好"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if msg := a.WelcomeMessage(context.Background()); !strings.Contains(msg, "MBTI") {
		t.Fatalf("expected fallback greeting, got %q", msg)
	}
}
