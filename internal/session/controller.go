// Package session runs analysis and chat requests against the external
// model, one active session at a time. Each user-initiated run gets a
// fresh session id; a result is applied only if its session is still
// current when the call resolves. Cancellation is cooperative: in-flight
// work is not forcibly aborted, its result is simply discarded on
// resume. A context cancellation is additionally propagated to the
// superseded call so it can stop early when the transport honors it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paperlens/paperlens/internal/analyzer"
	"github.com/paperlens/paperlens/internal/fault"
	"github.com/paperlens/paperlens/internal/models"
	"github.com/paperlens/paperlens/internal/quota"
	"github.com/paperlens/paperlens/internal/raster"
	"github.com/paperlens/paperlens/internal/storage"
)

// State of the controller.
type State int

const (
	Idle State = iota
	ProcessingDocuments
	Analyzing
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ProcessingDocuments:
		return "processing_documents"
	case Analyzing:
		return "analyzing"
	case Complete:
		return "complete"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

const welcomeMessage = "System Initialized. Upload a PDF or paste text to begin multimodal analysis."

// noSession is the sentinel generation. Real session ids start at 1 and
// only increase, so the sentinel never equals one.
const noSession int64 = 0

// Controller owns the current session identity and all mutable analysis
// state. All fields behind mu; the lock is never held across a model or
// rasterizer call.
type Controller struct {
	analyzer analyzer.Analyzer
	renderer raster.Renderer
	tracker  *quota.Tracker
	archive  *storage.Archive

	// MaxPages caps rasterization per file.
	MaxPages int

	mu         sync.Mutex
	generation int64 // current session id, noSession when idle/cancelled
	lastIssued int64 // monotonic allocator, never reset
	state      State
	analysis   *models.PaperAnalysis
	lastError  string
	transcript []models.Message
	chatting   int // in-flight chat calls; >1 when submissions overlap
	msgSeq     int64
	inflight   context.CancelFunc

	now func() time.Time
}

// New creates a controller. The archive may be nil when completed
// analyses do not need to be retained.
func New(a analyzer.Analyzer, r raster.Renderer, t *quota.Tracker, arch *storage.Archive) *Controller {
	c := &Controller{
		analyzer: a,
		renderer: r,
		tracker:  t,
		archive:  arch,
		MaxPages: raster.DefaultMaxPages,
		now:      time.Now,
	}
	c.transcript = []models.Message{c.systemMessage("welcome", welcomeMessage)}
	return c
}

// Snapshot is a point-in-time view of the controller for the API surface.
type Snapshot struct {
	State      string                `json:"state"`
	Session    int64                 `json:"session,omitempty"`
	Analysis   *models.PaperAnalysis `json:"analysis,omitempty"`
	Error      string                `json:"error,omitempty"`
	Chatting   bool                  `json:"chatting"`
	Transcript []models.Message      `json:"transcript"`
}

// Snapshot returns the current state, artifact, and transcript.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript := make([]models.Message, len(c.transcript))
	copy(transcript, c.transcript)

	return Snapshot{
		State:      c.state.String(),
		Session:    c.generation,
		Analysis:   c.analysis,
		Error:      c.lastError,
		Chatting:   c.chatting > 0,
		Transcript: transcript,
	}
}

// AnalyzeText runs a full text analysis. It blocks until the result is
// applied, discarded, or failed. The boolean reports whether the result
// was applied; a superseded run returns (false, nil) because staleness
// is not an error.
func (c *Controller) AnalyzeText(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, fault.New(fault.KindInvalidInput, "no text to analyze")
	}

	gen, runCtx, err := c.begin(ctx, Analyzing, "Submitted text for analysis.", "Analyzing text content...")
	if err != nil {
		return false, err
	}

	result, err := c.analyzer.Analyze(runCtx, analyzer.Input{Text: text})
	return c.finish(gen, quota.KindText, 0, result, err)
}

// AnalyzeFiles rasterizes the given PDF documents concurrently, merges
// the page images in selection order, and runs a multimodal analysis
// over the combined sequence.
func (c *Controller) AnalyzeFiles(ctx context.Context, files [][]byte) (bool, error) {
	if len(files) == 0 {
		return false, fault.New(fault.KindInvalidInput, "no files to analyze")
	}

	gen, runCtx, err := c.begin(ctx, ProcessingDocuments,
		fmt.Sprintf("Uploaded %d document(s).", len(files)),
		fmt.Sprintf("Processing %d document(s) for multimodal analysis...", len(files)))
	if err != nil {
		return false, err
	}

	pages, err := raster.Merge(runCtx, c.renderer, files, c.MaxPages)

	// Re-check identity before the expensive model call so a cancelled
	// batch stops here instead of spending the upstream request.
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		slog.Debug("Discarding rasterization result for superseded session", "session", gen)
		return false, nil
	}
	if err != nil {
		c.failLocked(err)
		c.mu.Unlock()
		return false, err
	}
	c.state = Analyzing
	c.appendLocked(models.RoleAssistant, fmt.Sprintf("Rendered %d page(s). Interpreting text and visuals...", len(pages)))
	c.mu.Unlock()

	result, err := c.analyzer.Analyze(runCtx, analyzer.Input{Images: pages})
	return c.finish(gen, quota.KindPDF, len(pages), result, err)
}

// Chat answers a follow-up question about the completed analysis. Chats
// do not allocate sessions and do not supersede one another: overlapping
// submissions all complete, and answers append to the transcript in
// completion order.
func (c *Controller) Chat(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fault.New(fault.KindInvalidInput, "empty question")
	}

	c.mu.Lock()
	if c.state != Complete || c.analysis == nil {
		c.mu.Unlock()
		return "", fault.New(fault.KindInvalidInput, "no completed analysis to chat about")
	}
	analysis := c.analysis
	transcript := make([]models.Message, len(c.transcript))
	copy(transcript, c.transcript)
	c.chatting++
	c.appendLocked(models.RoleUser, question)
	c.mu.Unlock()

	answer, err := c.analyzer.Chat(ctx, analysis, question, transcript)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatting--

	if err != nil {
		c.appendLocked(models.RoleAssistant, "Error: "+err.Error())
		return "", fault.Wrap(fault.KindCollaborator, "chat failed", err)
	}
	c.appendLocked(models.RoleAssistant, answer)
	return answer, nil
}

// Cancel invalidates the current session and returns to Idle. In-flight
// work runs to completion; its result fails the identity comparison and
// is dropped.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidateLocked()
	c.appendLocked(models.RoleSystem, "Analysis process cancelled by user.")
	slog.Info("Session cancelled")
}

// Reset cancels like Cancel and additionally clears the transcript.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidateLocked()
	c.transcript = []models.Message{c.systemMessage(c.nextMsgID(), "Context cleared. Ready for new input.")}
	slog.Info("Session reset")
}

// begin gates on the quota, allocates a new session, and moves to the
// initial state. Returns the session id and the run context tied to it.
func (c *Controller) begin(ctx context.Context, initial State, userMsg, assistantMsg string) (int64, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	decision, err := c.tracker.CheckLimit(c.now())
	if err != nil {
		return 0, nil, fmt.Errorf("quota check failed: %w", err)
	}
	if !decision.Allowed {
		c.appendLocked(models.RoleSystem, decision.Reason)
		slog.Info("Request denied by quota", "reason", decision.Reason)
		return 0, nil, &fault.Fault{
			Kind:        fault.KindQuotaExceeded,
			Msg:         decision.Reason,
			WaitSeconds: decision.WaitSeconds,
		}
	}

	// Supersede whatever was running.
	if c.inflight != nil {
		c.inflight()
	}

	c.lastIssued++
	c.generation = c.lastIssued
	c.state = initial
	c.analysis = nil
	c.lastError = ""

	runCtx, cancel := context.WithCancel(ctx)
	c.inflight = cancel

	c.appendLocked(models.RoleUser, userMsg)
	c.appendLocked(models.RoleAssistant, assistantMsg)

	slog.Info("Session started", "session", c.generation, "state", c.state.String())
	return c.generation, runCtx, nil
}

// finish applies an analysis outcome if and only if the session is still
// current.
func (c *Controller) finish(gen int64, kind string, pages int, result *models.PaperAnalysis, err error) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		slog.Debug("Discarding result for superseded session", "session", gen, "current", c.generation)
		return false, nil
	}

	// The run this context belonged to has resolved; release it.
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}

	if err != nil {
		wrapped := err
		if fault.KindOf(err) == fault.KindUnknown {
			wrapped = fault.Wrap(fault.KindCollaborator, "analysis failed", err)
		}
		c.failLocked(wrapped)
		return false, wrapped
	}

	if recErr := c.tracker.RecordUsage(kind, c.now()); recErr != nil {
		slog.Warn("Failed to record usage", "error", recErr)
	}

	c.analysis = result
	c.state = Complete
	c.appendLocked(models.RoleAssistant, "Analysis complete. You can now ask questions about the paper below.")

	if c.archive != nil {
		c.archive.Set(gen, &storage.Record{
			Session:   gen,
			Source:    kind,
			Pages:     pages,
			Analysis:  result,
			CreatedAt: c.now(),
		})
	}

	slog.Info("Analysis applied", "session", gen, "kind", kind, "title", result.PaperTitle)
	return true, nil
}

func (c *Controller) failLocked(err error) {
	c.state = Error
	c.lastError = err.Error()
	c.appendLocked(models.RoleAssistant, "Error processing input: "+err.Error())
	slog.Error("Analysis failed", "session", c.generation, "error", err)
}

func (c *Controller) invalidateLocked() {
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.generation = noSession
	c.state = Idle
	c.analysis = nil
	c.lastError = ""
}

func (c *Controller) appendLocked(role models.Role, content string) {
	c.transcript = append(c.transcript, models.Message{
		ID:        c.nextMsgID(),
		Role:      role,
		Content:   content,
		Timestamp: c.now(),
	})
}

func (c *Controller) nextMsgID() string {
	c.msgSeq++
	return "msg_" + strconv.FormatInt(c.msgSeq, 10)
}

func (c *Controller) systemMessage(id, content string) models.Message {
	return models.Message{
		ID:        id,
		Role:      models.RoleSystem,
		Content:   content,
		Timestamp: c.now(),
	}
}
