// ABOUTME: Conversation loop driving operator input, model turns, and tool dispatch.
// ABOUTME: Persists every exchanged message to the session transcript.

package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/quill-cli/quill/internal/llm"
	"github.com/quill-cli/quill/internal/protocol"
	"github.com/quill-cli/quill/internal/store"
	"github.com/quill-cli/quill/internal/tools"
)

// toolTimeout bounds one tool invocation.
const toolTimeout = 10 * time.Second

// titleLimit caps the session title derived from the first user input,
// counted in runes.
const titleLimit = 80

// Model generates one reply from the system instruction and transcript turns.
// *llm.Client satisfies this; tests substitute scripted implementations.
type Model interface {
	Generate(ctx context.Context, system string, turns []llm.Turn) (string, error)
}

// Options configures an Engine.
type Options struct {
	Store    store.Store
	Registry *tools.Registry
	Model    Model
	System   string
	Session  *store.Session

	// HistoryWindow caps transcript turns sent per model call. 0 sends all.
	HistoryWindow int
	// MaxSteps caps model turns per operator input.
	MaxSteps int

	Input  io.Reader
	Output io.Writer
	Logger *slog.Logger
}

// Engine owns one chat session's conversation loop.
type Engine struct {
	st     store.Store
	reg    *tools.Registry
	model  Model
	system string

	session *store.Session
	history []llm.Turn
	seq     int

	window   int
	maxSteps int

	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	planColor   *color.Color
	outputColor *color.Color
	errorColor  *color.Color
}

// New creates an Engine for the given session. The session must already
// exist in the store; any prior transcript is replayed into the model window
// on the first Run.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil || opts.Registry == nil || opts.Model == nil {
		return nil, fmt.Errorf("engine requires a store, a registry, and a model")
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("engine requires a session")
	}
	if opts.MaxSteps <= 0 {
		return nil, fmt.Errorf("max steps must be positive, got %d", opts.MaxSteps)
	}

	e := &Engine{
		st:       opts.Store,
		reg:      opts.Registry,
		model:    opts.Model,
		system:   opts.System,
		session:  opts.Session,
		window:   opts.HistoryWindow,
		maxSteps: opts.MaxSteps,
		in:       opts.Input,
		out:      opts.Output,
		logger:   opts.Logger,

		planColor:   color.New(color.Faint),
		outputColor: color.New(color.FgCyan),
		errorColor:  color.New(color.FgRed),
	}
	if e.in == nil {
		e.in = os.Stdin
	}
	if e.out == nil {
		e.out = os.Stdout
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("session_id", opts.Session.ID)

	return e, nil
}

// Run reads operator input until EOF, a quit command, or context
// cancellation. Each non-empty line is processed as one user message.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.restore(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(e.in)
	for {
		fmt.Fprint(e.out, ">> ")

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			fmt.Fprintln(e.out)
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		if err := e.ProcessInput(ctx, input); err != nil {
			e.errorColor.Fprintf(e.out, "[error] %v\n", err)
		}
	}
}

// ProcessInput records one operator message and drives model turns until the
// model produces an output message or the step cap is reached.
func (e *Engine) ProcessInput(ctx context.Context, text string) error {
	if err := e.append(ctx, store.RoleUser, protocol.NewUser(text)); err != nil {
		return err
	}

	// The first input names the session.
	if e.session.Title == "" {
		title := text
		if runes := []rune(title); len(runes) > titleLimit {
			title = string(runes[:titleLimit])
		}
		if err := e.st.SetSessionTitle(ctx, e.session.ID, title); err != nil {
			return fmt.Errorf("setting session title: %w", err)
		}
		e.session.Title = title
	}

	retried := false
	for step := 0; step < e.maxSteps; step++ {
		reply, err := e.model.Generate(ctx, e.system, e.windowTurns())
		if err != nil {
			return fmt.Errorf("model call failed: %w", err)
		}

		msg, perr := protocol.Parse(reply)
		if perr != nil {
			e.logger.Warn("malformed model reply", "error", perr, "reply_bytes", len(reply))
			if retried {
				return fmt.Errorf("model reply still malformed after retry: %w", perr)
			}
			retried = true
			feedback := protocol.NewErrorObservation(
				"your last reply was not a valid message: " + perr.Error() +
					"; reply with exactly one JSON object of type plan, action, or output")
			if err := e.append(ctx, store.RoleUser, feedback); err != nil {
				return err
			}
			continue
		}

		if err := e.append(ctx, store.RoleModel, msg); err != nil {
			return err
		}

		switch msg.Type {
		case protocol.TypePlan:
			e.planColor.Fprintf(e.out, "[plan] %s\n", msg.Plan)

		case protocol.TypeAction:
			obs := e.dispatch(ctx, msg)
			if err := e.append(ctx, store.RoleUser, obs); err != nil {
				return err
			}

		case protocol.TypeOutput:
			e.outputColor.Fprintln(e.out, msg.Output)
			return nil

		default:
			// Valid shape, wrong direction: user and observation messages
			// only flow toward the model.
			feedback := protocol.NewErrorObservation(fmt.Sprintf(
				"message type %q is not allowed in a model reply; reply with plan, action, or output", msg.Type))
			if err := e.append(ctx, store.RoleUser, feedback); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("no output after %d model turns; giving up on this input", e.maxSteps)
}

// dispatch runs one action against the registry. Every failure mode becomes
// an error observation so the conversation survives bad model output.
func (e *Engine) dispatch(ctx context.Context, msg *protocol.Message) *protocol.Message {
	tool, err := e.reg.Get(msg.Function)
	if err != nil {
		e.logger.Warn("action named unknown tool", "function", msg.Function)
		return protocol.NewErrorObservation(err.Error())
	}

	bound, err := tools.BindArgs(tool.Definition, msg.Input)
	if err != nil {
		e.logger.Warn("action arguments rejected", "function", msg.Function, "error", err)
		return protocol.NewErrorObservation(err.Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	start := time.Now()
	result, err := tool.Handler(callCtx, bound)
	if err != nil {
		e.logger.Warn("tool returned error", "function", msg.Function, "error", err)
		return protocol.NewErrorObservation(err.Error())
	}

	e.logger.Debug("tool dispatched",
		"function", msg.Function,
		"elapsed", time.Since(start),
	)
	return protocol.NewObservation(result)
}

// append persists a message to the session transcript and adds it to the
// in-memory model window.
func (e *Engine) append(ctx context.Context, role string, msg *protocol.Message) error {
	payload, err := msg.Encode()
	if err != nil {
		return err
	}

	e.seq++
	if err := e.st.AppendTranscript(ctx, &store.TranscriptMessage{
		SessionID: e.session.ID,
		Seq:       e.seq,
		Role:      role,
		Payload:   payload,
	}); err != nil {
		return fmt.Errorf("persisting transcript message: %w", err)
	}
	if err := e.st.TouchSession(ctx, e.session.ID); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	e.history = append(e.history, llm.Turn{Role: role, Text: payload})
	return nil
}

// restore loads any existing transcript so a resumed session keeps its
// context window.
func (e *Engine) restore(ctx context.Context) error {
	msgs, err := e.st.GetTranscript(ctx, e.session.ID)
	if err != nil {
		return fmt.Errorf("loading transcript: %w", err)
	}

	e.history = e.history[:0]
	e.seq = 0
	for _, m := range msgs {
		e.history = append(e.history, llm.Turn{Role: m.Role, Text: m.Payload})
		if m.Seq > e.seq {
			e.seq = m.Seq
		}
	}

	if len(msgs) > 0 {
		e.logger.Info("resumed session transcript", "messages", len(msgs))
	}
	return nil
}

// windowTurns returns the transcript slice sent to the model, bounded by the
// configured history window.
func (e *Engine) windowTurns() []llm.Turn {
	if e.window <= 0 || len(e.history) <= e.window {
		return e.history
	}
	return e.history[len(e.history)-e.window:]
}
