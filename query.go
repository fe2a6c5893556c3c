package agentcli

import (
	"context"
	"fmt"
	"iter"
)

// Result is the terminal outcome of a single-shot Query: the assistant's
// final text alongside the full message stream it emitted.
type Result struct {
	// Text is the concatenated text of every assistant message in the
	// turn.
	Text string
	// Messages is every Regular message observed during the turn, in
	// emission order, including the terminal ResultMessage.
	Messages []Message
	// SessionID is the id reported by the CLI's init system message.
	SessionID string
}

// newQuerySession is the seam Query, OpenSession, and StreamQuery use to
// obtain a Session. Tests swap it to inject a Session backed by a
// MockSubprocessRunner instead of spawning a real CLI.
var newQuerySession = func(options *Options) (*Session, error) {
	return NewSession(options, nil)
}

// Query runs prompt to completion against a freshly spawned CLI and
// returns the assembled Result. It spawns a subprocess, performs
// whatever handshake the configured options require, writes the
// prompt, and closes the session once the turn's ResultMessage arrives.
//
// The launch ordering fixes a defect in the predecessor design, which
// slept a fixed 50ms after starting the read loop before writing the
// first prompt and hoped initialize had landed by then: here the read
// loop is started, initialize is awaited to completion (if needed), and
// only then is the prompt written — no sleep, no race.
func Query(ctx context.Context, prompt string, opts ...Option) (*Result, error) {
	options := NewOptions()
	for _, opt := range opts {
		opt(options)
	}

	session, err := newQuerySession(options)
	if err != nil {
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}

	if err := session.Start(ctx); err != nil {
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}
	if err := session.Initialize(ctx); err != nil {
		session.Close()
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}

	if err := session.WritePrompt(ctx, newUserMessage(session.SessionID(), prompt)); err != nil {
		session.Close()
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}

	result := &Result{}
	for item := range session.Messages() {
		if item.Err != nil {
			session.Close()
			return nil, item.Err
		}

		result.Messages = append(result.Messages, item.Message)

		switch m := item.Message.(type) {
		case AssistantMessage:
			result.Text += m.ContentText()
		case SystemMessage:
			if m.Subtype == "init" {
				result.SessionID = m.SessionID
			}
		case ResultMessage:
			session.Close()
			return result, nil
		}
	}

	session.Close()
	return result, fmt.Errorf("agentcli: stream ended before a result message arrived")
}

// OpenSession spawns a CLI subprocess and performs any required
// handshake, returning a live Session the caller drives directly
// (WritePrompt, Messages, Interrupt, SetModel, ...). The caller owns
// the Session's lifetime and must call Close when done with it.
func OpenSession(ctx context.Context, opts ...Option) (*Session, error) {
	options := NewOptions()
	for _, opt := range opts {
		opt(options)
	}

	session, err := newQuerySession(options)
	if err != nil {
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}
	if err := session.Start(ctx); err != nil {
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}
	if err := session.Initialize(ctx); err != nil {
		session.Close()
		return nil, &ErrQueryLaunchFailed{Cause: err}
	}
	return session, nil
}

// StreamQuery drives a session with a sequence of prompts pulled from
// prompts, yielding every Regular message the CLI emits across the
// whole exchange. Iteration ends, and the session is closed, once
// prompts is exhausted and the CLI's stream drains, once the context is
// cancelled, or once the consumer stops pulling (the standard iter.Seq2
// early-return contract).
//
// Each prompt is written only after the previous one's ResultMessage
// has been observed: the session's message stream has exactly one
// consumer (this function), which both yields messages to the caller
// and watches for the ResultMessage boundary that paces the next write,
// so prompts are never interleaved on the wire.
func StreamQuery(ctx context.Context, prompts iter.Seq[string], opts ...Option) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		options := NewOptions()
		for _, opt := range opts {
			opt(options)
		}

		session, err := newQuerySession(options)
		if err != nil {
			yield(nil, &ErrQueryLaunchFailed{Cause: err})
			return
		}
		defer session.Close()

		if err := session.Start(ctx); err != nil {
			yield(nil, &ErrQueryLaunchFailed{Cause: err})
			return
		}
		if err := session.Initialize(ctx); err != nil {
			yield(nil, &ErrQueryLaunchFailed{Cause: err})
			return
		}

		next, stopPull := iter.Pull(prompts)
		defer stopPull()

		writeNextPrompt := func() bool {
			prompt, ok := next()
			if !ok {
				session.EndInput()
				return true
			}
			if err := session.WritePrompt(ctx, newUserMessage(session.SessionID(), prompt)); err != nil {
				yield(nil, err)
				return false
			}
			return true
		}

		if !writeNextPrompt() {
			return
		}

		for item := range session.Messages() {
			if !yield(item.Message, item.Err) {
				return
			}
			if item.Err != nil {
				return
			}
			if _, ok := item.Message.(ResultMessage); ok {
				if !writeNextPrompt() {
					return
				}
			}
		}
	}
}

// newUserMessage builds the wire UserMessage envelope for a plain text
// prompt.
func newUserMessage(sessionID, prompt string) UserMessage {
	return UserMessage{
		Type:      "user",
		SessionID: sessionID,
		Message: APIUserMessage{
			Role: "user",
			Content: []UserContentBlock{
				{Type: "text", Text: prompt},
			},
		},
	}
}
