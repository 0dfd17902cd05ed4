package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/pkg/log"
)

// Listener observes every state change of a slot. It runs synchronously on
// the goroutine that changed the state and must not call back into Run*.
type Listener func(slot core.Slot, state core.RequestState)

// UploadAcknowledged is delivered to upload hooks once the server has
// received a document. Indexing may still be running or may later fail.
type UploadAcknowledged struct {
	FileName  string
	Namespace string
	UserID    string
	Ack       core.UploadAck
}

type UploadHook func(ctx context.Context, ev UploadAcknowledged)

// Orchestrator tracks one request slot per operation. Each slot allows at
// most one request in flight; the chat and upload slots are independent.
type Orchestrator struct {
	chat     core.ChatSender
	uploader core.DocumentUploader

	mu      sync.Mutex
	states  map[core.Slot]*core.RequestState
	subs    map[int]Listener
	nextSub int
	hooks   []UploadHook
}

func New(chat core.ChatSender, uploader core.DocumentUploader) *Orchestrator {
	return &Orchestrator{
		chat:     chat,
		uploader: uploader,
		states:   make(map[core.Slot]*core.RequestState),
		subs:     make(map[int]Listener),
	}
}

// State returns a snapshot of the slot. A slot that was never used is idle.
func (o *Orchestrator) State(slot core.Slot) core.RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.states[slot]
	if !ok {
		return core.RequestState{}
	}
	return snapshot(st)
}

// Subscribe registers fn for all future state changes and returns a func
// that removes it.
func (o *Orchestrator) Subscribe(fn Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// OnUploadAcknowledged attaches a hook that runs after every successful
// upload acknowledgement.
func (o *Orchestrator) OnUploadAcknowledged(hook UploadHook) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hooks = append(o.hooks, hook)
}

func (o *Orchestrator) RunChat(ctx context.Context, message, namespace, sessionID string) (resp core.ChatResponse, err error) {
	if err := o.acquire(ctx, core.SlotChat); err != nil {
		return core.ChatResponse{}, err
	}
	defer o.recoverSlot(ctx, core.SlotChat)

	resp, err = o.chat.SendMessage(ctx, core.ChatRequest{
		SessionID: sessionID,
		Message:   message,
		Namespace: namespace,
	})

	o.release(ctx, core.SlotChat, func(st *core.RequestState) {
		if err != nil {
			// keep the previous answer on screen
			st.LastError = err
			return
		}
		result := resp
		result.Sources = slices.Clone(resp.Sources)
		st.LastResult = &result
		st.LastError = nil
	})

	return resp, err
}

func (o *Orchestrator) RunUpload(ctx context.Context, file core.UploadFile, namespace, userID string) (ack core.UploadAck, err error) {
	if err := o.acquire(ctx, core.SlotUpload); err != nil {
		return core.UploadAck{}, err
	}
	defer o.recoverSlot(ctx, core.SlotUpload)

	ack, err = o.uploader.Upload(ctx, core.UploadRequest{
		File:      file,
		Namespace: namespace,
		UserID:    userID,
	})

	o.release(ctx, core.SlotUpload, func(st *core.RequestState) {
		if err != nil {
			st.LastError = err
			return
		}
		result := ack
		st.LastAck = &result
		st.LastError = nil
	})

	if err == nil {
		o.fireUploadHooks(ctx, UploadAcknowledged{
			FileName:  file.Name,
			Namespace: namespace,
			UserID:    userID,
			Ack:       ack,
		})
	}

	return ack, err
}

func (o *Orchestrator) acquire(ctx context.Context, slot core.Slot) error {
	o.mu.Lock()
	st, ok := o.states[slot]
	if !ok {
		st = &core.RequestState{}
		o.states[slot] = st
	}
	if st.Pending {
		o.mu.Unlock()
		log.FromCtx(ctx).Debug().Str("slot", string(slot)).Msg("rejected request, slot busy")
		return fmt.Errorf("%s: %w", slot, core.ErrConcurrentRequest)
	}
	st.Pending = true
	snap, listeners := snapshot(st), o.listeners()
	o.mu.Unlock()

	log.FromCtx(ctx).Debug().Str("slot", string(slot)).Msg("request pending")
	notify(listeners, slot, snap)
	return nil
}

func (o *Orchestrator) release(ctx context.Context, slot core.Slot, apply func(*core.RequestState)) {
	o.mu.Lock()
	st := o.states[slot]
	if !st.Pending {
		// already released by recoverSlot
		o.mu.Unlock()
		return
	}
	st.Pending = false
	apply(st)
	snap, listeners := snapshot(st), o.listeners()
	o.mu.Unlock()

	log.FromCtx(ctx).Debug().
		Str("slot", string(slot)).
		Str("error_kind", string(core.KindOf(snap.LastError))).
		Msg("request settled")
	notify(listeners, slot, snap)
}

// recoverSlot clears the pending flag if the client panicked, then lets the
// panic continue.
func (o *Orchestrator) recoverSlot(ctx context.Context, slot core.Slot) {
	r := recover()
	if r == nil {
		return
	}
	o.release(ctx, slot, func(st *core.RequestState) {
		st.LastError = fmt.Errorf("%s request aborted: %v", slot, r)
	})
	panic(r)
}

func (o *Orchestrator) fireUploadHooks(ctx context.Context, ev UploadAcknowledged) {
	o.mu.Lock()
	hooks := make([]UploadHook, len(o.hooks))
	copy(hooks, o.hooks)
	o.mu.Unlock()

	for _, hook := range hooks {
		hook(ctx, ev)
	}
}

// listeners must be called with o.mu held.
func (o *Orchestrator) listeners() []Listener {
	ids := make([]int, 0, len(o.subs))
	for id := range o.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, o.subs[id])
	}
	return out
}

func notify(listeners []Listener, slot core.Slot, st core.RequestState) {
	for _, fn := range listeners {
		fn(slot, st)
	}
}

func snapshot(st *core.RequestState) core.RequestState {
	out := core.RequestState{
		Pending:   st.Pending,
		LastError: st.LastError,
	}
	if st.LastResult != nil {
		r := *st.LastResult
		r.Sources = slices.Clone(r.Sources)
		out.LastResult = &r
	}
	if st.LastAck != nil {
		a := *st.LastAck
		a.Raw = slices.Clone(a.Raw)
		out.LastAck = &a
	}
	return out
}
