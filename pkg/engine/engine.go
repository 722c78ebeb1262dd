// Package engine implements the record-operation orchestration core: it
// resolves each requested record to a concrete backend identity, applies
// create/update/delete/append semantics with their fallback rules, and
// aggregates per-record outcomes into a single response Message.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/message"
)

// recordState tracks one record through its processing lifecycle.
type recordState int

const (
	statePending recordState = iota
	stateIdentifying
	stateExecuting
	stateCommitted
	stateFailed
)

func (s recordState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateIdentifying:
		return "identifying"
	case stateExecuting:
		return "executing"
	case stateCommitted:
		return "committed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine drives one backend collaborator. Instances are cheap; use one per
// request, since the backend handle is a stateful session-scoped resource.
type Engine struct {
	backend backend.Backend
	log     zerolog.Logger
}

// New creates an Engine over a backend collaborator.
func New(b backend.Backend, log zerolog.Logger) *Engine {
	return &Engine{backend: b, log: log}
}

// Create inserts every requested record in request order and returns the
// response Message. In bulk scope a failed record becomes a multistatus entry
// referencing its request index and the batch continues.
func (e *Engine) Create(ctx context.Context, req *message.Message, opts Options) (*message.Message, error) {
	resp := message.New()
	cache := &schemaCache{}
	for i := 0; i < req.RecordCount(); i++ {
		rec := req.RecordByIndex(i)
		e.trace("create", i, stateExecuting)
		err := e.createOne(ctx, rec, resp, cache, opts)
		if err != nil {
			e.trace("create", i, stateFailed)
			if !opts.Bulk {
				return nil, err
			}
			// No id exists for a failed create; reference the request index.
			resp.AddMultistatus(failureEntry(err, message.ByIndex(i)))
			continue
		}
		e.trace("create", i, stateCommitted)
	}
	return resp, nil
}

func (e *Engine) createOne(ctx context.Context, rec *message.Record, resp *message.Message, cache *schemaCache, opts Options) error {
	created, err := e.backend.Create(ctx, opts.Layout, rec.Row().FieldSet(), opts.Hooks.Take())
	if err != nil {
		return err
	}
	if opts.SuppressData {
		out := message.NewRecordWithID(created.ID)
		out.SetHref(recordHref(opts.Layout, created.ID))
		resp.AddRecord(out)
		return nil
	}
	return e.parseRecord(ctx, created, resp, cache, opts)
}

// Read resolves a literal id or "field=value" unique key and parses the
// matching record into the response.
func (e *Engine) Read(ctx context.Context, id string, opts Options) (*message.Message, error) {
	resp := message.New()
	cache := &schemaCache{}

	e.trace("read", 0, stateIdentifying)
	resolved, fetched, err := e.resolve(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	e.trace("read", 0, stateExecuting)
	if fetched == nil {
		rec, err := e.backend.FindByID(ctx, opts.Layout, resolved)
		if err != nil {
			if backend.IsNoMatch(err) {
				return nil, fmt.Errorf("%w: id %s", ErrNotFound, resolved)
			}
			return nil, err
		}
		fetched = &rec
	}
	if err := e.parseRecord(ctx, *fetched, resp, cache, opts); err != nil {
		return nil, err
	}
	e.trace("read", 0, stateCommitted)
	return resp, nil
}

// Update writes every requested record in request order. Records are
// addressed by their recordID, which may be a literal id or a "field=value"
// unique key. Append and update-else-create semantics per Options.
func (e *Engine) Update(ctx context.Context, req *message.Message, opts Options) (*message.Message, error) {
	resp := message.New()
	cache := &schemaCache{}
	for i := 0; i < req.RecordCount(); i++ {
		rec := req.RecordByIndex(i)
		err := e.updateOne(ctx, rec, resp, cache, opts)
		if err != nil {
			e.trace("update", i, stateFailed)
			if !opts.Bulk {
				return nil, err
			}
			resp.AddMultistatus(failureEntry(err, requestRef(rec, i)))
			continue
		}
		e.trace("update", i, stateCommitted)
	}
	return resp, nil
}

func (e *Engine) updateOne(ctx context.Context, rec *message.Record, resp *message.Message, cache *schemaCache, opts Options) error {
	id := rec.RecordID()
	if id == "" {
		return ErrNoIdentifier
	}

	resolved, fetched, err := e.resolve(ctx, id, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) && opts.UpdateElseCreate {
			// Zero unique-key matches: fall back to create. The fallback flag
			// is structural here — createOne never dispatches back to update.
			return e.createOne(ctx, rec, resp, cache, opts)
		}
		return err
	}

	fields := rec.Row().FieldSet()
	if opts.Append {
		if fetched == nil {
			// Append needs the current values; identity resolution by literal
			// id did not fetch them, so one extra read round-trip.
			cur, err := e.backend.FindByID(ctx, opts.Layout, resolved)
			if err != nil {
				if backend.IsNoMatch(err) && opts.UpdateElseCreate {
					return e.createOne(ctx, rec, resp, cache, opts)
				}
				return err
			}
			fetched = &cur
		}
		for name, reps := range fields {
			for idx, v := range reps {
				if old, ok := fetched.Fields[name][idx]; ok {
					reps[idx] = old + v
				}
			}
		}
	}

	if err := e.backend.Update(ctx, opts.Layout, resolved, fields, opts.Hooks.Take()); err != nil {
		if backend.IsNoMatch(err) && opts.UpdateElseCreate {
			// Valid identifier but the write found no record. The hooks token
			// was already consumed above, so the fallback cannot re-fire them.
			return e.createOne(ctx, rec, resp, cache, opts)
		}
		return err
	}

	out := message.NewRecordWithID(resolved)
	out.SetHref(recordHref(opts.Layout, resolved))
	resp.AddRecord(out)
	return nil
}

// Delete removes every requested record in request order, resolving
// identifiers the same way Update does.
func (e *Engine) Delete(ctx context.Context, req *message.Message, opts Options) (*message.Message, error) {
	resp := message.New()
	for i := 0; i < req.RecordCount(); i++ {
		rec := req.RecordByIndex(i)
		err := e.deleteOne(ctx, rec, opts)
		if err != nil {
			e.trace("delete", i, stateFailed)
			if !opts.Bulk {
				return nil, err
			}
			resp.AddMultistatus(failureEntry(err, requestRef(rec, i)))
			continue
		}
		e.trace("delete", i, stateCommitted)
	}
	return resp, nil
}

func (e *Engine) deleteOne(ctx context.Context, rec *message.Record, opts Options) error {
	id := rec.RecordID()
	if id == "" {
		return ErrNoIdentifier
	}
	resolved, _, err := e.resolve(ctx, id, opts)
	if err != nil {
		return err
	}
	if err := e.backend.Delete(ctx, opts.Layout, resolved, opts.Hooks.Take()); err != nil {
		if backend.IsNoMatch(err) {
			return fmt.Errorf("%w: id %s", ErrNotFound, resolved)
		}
		return err
	}
	return nil
}

// RunScript executes a named backend procedure with at most one opaque
// parameter and parses whatever records it returned. No result semantics
// beyond "zero or more parseable records" are assumed.
func (e *Engine) RunScript(ctx context.Context, script, param string, opts Options) (*message.Message, error) {
	recs, err := e.backend.RunScript(ctx, opts.Layout, script, param)
	if err != nil {
		return nil, err
	}
	resp := message.New()
	cache := &schemaCache{}
	for _, br := range recs {
		if err := e.parseRecord(ctx, br, resp, cache, opts); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// resolve maps a request identifier to a concrete backend id. An identifier
// containing "=" is a unique-key lookup; exactly one match resolves and the
// fetched record is returned so callers can reuse it. A literal id resolves
// to itself without a round-trip.
func (e *Engine) resolve(ctx context.Context, id string, opts Options) (string, *backend.Record, error) {
	field, value, ok := splitUniqueKey(id)
	if !ok {
		return id, nil, nil
	}
	matches, err := e.backend.FindByUniqueKey(ctx, opts.Layout, field, value)
	if err != nil {
		return "", nil, err
	}
	switch len(matches) {
	case 0:
		return "", nil, fmt.Errorf("%w: %s=%s", ErrNotFound, field, value)
	case 1:
		m := matches[0]
		return m.ID, &m, nil
	default:
		return "", nil, fmt.Errorf("%w: %s=%s matched %d", ErrConflict, field, value, len(matches))
	}
}

// splitUniqueKey parses a "field=value" identifier. An identifier without "="
// or with an empty field name is literal.
func splitUniqueKey(id string) (field, value string, ok bool) {
	field, value, ok = strings.Cut(id, "=")
	if field == "" {
		return id, "", false
	}
	return field, value, ok
}

// requestRef picks the multistatus reference for a failed record: its literal
// identifier when it has one, else its position in the request.
func requestRef(rec *message.Record, index int) message.Ref {
	id := rec.RecordID()
	if id != "" && !strings.Contains(id, "=") {
		return message.ByID(id)
	}
	return message.ByIndex(index)
}

func failureEntry(err error, ref message.Ref) message.MultistatusEntry {
	return message.MultistatusEntry{
		Status: statusFor(err),
		Reason: err.Error(),
		Ref:    ref,
	}
}

func recordHref(layout, id string) string {
	return layout + "/record/" + id
}

func (e *Engine) trace(op string, index int, state recordState) {
	e.log.Debug().Str("op", op).Int("record", index).Stringer("state", state).Msg("record transition")
}
