package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultHookTimeoutSeconds is used for a registration that doesn't
// specify its own timeout.
const DefaultHookTimeoutSeconds = 60

// hookEntry is one registered (event, matcher, handler) triple.
type hookEntry struct {
	event      HookType
	matcher    string
	timeout    int
	callbackID string
	handler    HookCallback
}

// HookRegistry stores user-registered event callbacks keyed by event
// kind plus an optional matcher, and generates the stable callback_id
// each registration is addressed by on the wire.
//
// Multiple entries may be registered for the same event; all of them
// are advertised to the CLI and all of them are eligible to fire. The
// registry is the single owner of the callback_id counter, guarded by
// one mutex alongside the entry table itself.
type HookRegistry struct {
	mu      sync.Mutex
	entries map[string]*hookEntry // callback_id -> entry
	order   []string              // registration order, for GetHookConfig's matcher grouping
	counter atomic.Uint64
}

// NewHookRegistry creates an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{entries: make(map[string]*hookEntry)}
}

// Register adds a callback for event, optionally scoped to tool names
// matching matcher (a regex; empty matches everything). timeoutSeconds
// of 0 uses DefaultHookTimeoutSeconds. Returns the stable callback_id
// the CLI will use to invoke this registration.
func (r *HookRegistry) Register(event HookType, matcher string, timeoutSeconds int, handler HookCallback) string {
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultHookTimeoutSeconds
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("hook_%d", r.counter.Add(1))
	r.entries[id] = &hookEntry{
		event:      event,
		matcher:    matcher,
		timeout:    timeoutSeconds,
		callbackID: id,
		handler:    handler,
	}
	r.order = append(r.order, id)
	return id
}

// RegisterFromOptions populates the registry from an Options.Hooks map,
// the shape functional-options callers build with WithHooks.
func (r *HookRegistry) RegisterFromOptions(hooks map[HookType][]HookConfig) {
	for event, configs := range hooks {
		for _, cfg := range configs {
			timeout := cfg.Timeout
			r.Register(event, cfg.Matcher, timeout, cfg.Callback)
		}
	}
}

// GetHookConfig produces the event-name -> matcher-list mapping handed
// to the CLI at initialize, in registration order.
func (r *HookRegistry) GetHookConfig() map[string][]HookMatcher {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return nil
	}

	out := make(map[string][]HookMatcher)
	for _, id := range r.order {
		e := r.entries[id]
		out[string(e.event)] = append(out[string(e.event)], HookMatcher{
			Matcher:         e.matcher,
			HookCallbackIDs: []string{id},
			Timeout:         e.timeout,
		})
	}
	return out
}

// Dispatch decodes rawInput into the input shape recorded for
// callbackID's event kind and invokes its handler.
//
// Returns ErrHookCallbackNotFound for an unregistered id.
func (r *HookRegistry) Dispatch(ctx context.Context, callbackID string, rawInput json.RawMessage) (HookOutput, error) {
	r.mu.Lock()
	entry, ok := r.entries[callbackID]
	r.mu.Unlock()
	if !ok {
		return HookOutput{}, &ErrHookCallbackNotFound{CallbackID: callbackID}
	}

	input, err := decodeHookInput(entry.event, rawInput)
	if err != nil {
		return HookOutput{}, &ErrHookInvalidInput{Event: string(entry.event), Reason: err.Error()}
	}

	out, err := entry.handler(ctx, input)
	if err != nil {
		return HookOutput{}, err
	}
	return out, nil
}

// decodeHookInput decodes the raw control-request payload into the
// concrete HookInput implementation matching event. The base fields
// (session_id, cwd, ...) are always present regardless of event-specific
// fields, so decoding is a single json.Unmarshal into the matching
// struct per event.
func decodeHookInput(event HookType, raw json.RawMessage) (HookInput, error) {
	switch event {
	case HookTypePreToolUse:
		var in PreToolUseInput
		return in, json.Unmarshal(raw, &in)
	case HookTypePostToolUse:
		var in PostToolUseInput
		return in, json.Unmarshal(raw, &in)
	case HookTypePostToolUseFailure:
		var in PostToolUseFailureInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeUserPromptSubmit:
		var in UserPromptSubmitInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeStop:
		var in StopInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeSubagentStart:
		var in SubagentStartInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeSubagentStop:
		var in SubagentStopInput
		return in, json.Unmarshal(raw, &in)
	case HookTypePreCompact:
		var in PreCompactInput
		return in, json.Unmarshal(raw, &in)
	case HookTypePermissionRequest:
		var in PermissionRequestInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeSessionStart:
		var in SessionStartInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeSessionEnd:
		var in SessionEndInput
		return in, json.Unmarshal(raw, &in)
	case HookTypeNotification:
		var in NotificationInput
		return in, json.Unmarshal(raw, &in)
	default:
		return nil, &ErrHookUnsupportedEvent{Event: string(event)}
	}
}

// buildHookResponse converts a HookOutput into the response map sent
// back to the CLI for a hook_callback request.
//
// continue gets special handling: when Decision is set (Stop/SubagentStop
// hooks), continue is dropped from the map entirely, since the CLI
// short-circuits the session before it honors a block decision if a
// continue field accompanies it. Otherwise continue is always included
// explicitly, even when false, so a blocking HookStop is distinguishable
// on the wire from the unset default — a plain json struct tag can't do
// this, since omitempty treats an explicit false the same as unset.
func buildHookResponse(out HookOutput) (map[string]interface{}, error) {
	resp, err := marshalToMap(out)
	if err != nil {
		return nil, err
	}
	if out.Decision != "" {
		delete(resp, "continue")
	} else {
		resp["continue"] = out.Continue
	}
	return resp, nil
}

// HookContinue lets the event proceed unmodified.
func HookContinue() HookOutput { return HookOutput{Continue: true} }

// HookStop halts the session loop with reason.
func HookStop(reason string) HookOutput {
	return HookOutput{Continue: false, StopReason: reason}
}

// HookAllow authorizes a PreToolUse tool call, optionally rewriting its
// input and/or attaching additional context for the model.
func HookAllow(updatedInput map[string]interface{}, additionalContext string) HookOutput {
	return HookOutput{
		Continue:          true,
		AdditionalContext: additionalContext,
		UpdatedInput:      updatedInput,
		HookSpecificOutput: map[string]interface{}{
			"hookEventName":      string(HookTypePreToolUse),
			"permissionDecision": "allow",
		},
	}
}

// HookDeny blocks a PreToolUse tool call with reason.
func HookDeny(reason string) HookOutput {
	return HookOutput{
		Continue: true,
		Reason:   reason,
		HookSpecificOutput: map[string]interface{}{
			"hookEventName":            string(HookTypePreToolUse),
			"permissionDecision":       "deny",
			"permissionDecisionReason": reason,
		},
	}
}

// HookAsk defers a PreToolUse decision back to the user/CLI for manual
// confirmation.
func HookAsk(reason string) HookOutput {
	return HookOutput{
		Continue: true,
		Reason:   reason,
		HookSpecificOutput: map[string]interface{}{
			"hookEventName":            string(HookTypePreToolUse),
			"permissionDecision":       "ask",
			"permissionDecisionReason": reason,
		},
	}
}

// permissionDecision extracts the "permissionDecision" field a
// PreToolUse-specific HookOutput carries, if any.
func permissionDecision(out HookOutput) string {
	if out.HookSpecificOutput == nil {
		return ""
	}
	d, _ := out.HookSpecificOutput["permissionDecision"].(string)
	return d
}

// CombineHookOutputs applies the multi-match conflict-resolution policy
// to a set of PreToolUse HookOutputs gathered for the same tool call, in
// registration order: the first "deny" short-circuits with that
// decision; otherwise the last UpdatedInput seen wins; additional
// contexts concatenate in registration order.
func CombineHookOutputs(outputs []HookOutput) HookOutput {
	var (
		combined          = HookContinue()
		contexts          []string
		sawAllow          bool
		updatedInput      map[string]interface{}
	)

	for _, out := range outputs {
		if permissionDecision(out) == "deny" {
			return out
		}
		if permissionDecision(out) == "allow" {
			sawAllow = true
			if out.UpdatedInput != nil {
				updatedInput = out.UpdatedInput
			}
		}
		if out.AdditionalContext != "" {
			contexts = append(contexts, out.AdditionalContext)
		}
	}

	if sawAllow {
		combined = HookAllow(updatedInput, joinContexts(contexts))
	} else if len(contexts) > 0 {
		combined.AdditionalContext = joinContexts(contexts)
	}
	return combined
}

func joinContexts(contexts []string) string {
	out := ""
	for i, c := range contexts {
		if i > 0 {
			out += "\n"
		}
		out += c
	}
	return out
}
