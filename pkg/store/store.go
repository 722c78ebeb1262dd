// Package store is an embedded, pebble-backed implementation of the
// backend.Backend interface, letting the gateway run standalone. Records are
// flat field/repetition tuples stored as JSON per layout; layouts carry a
// declared field catalog.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/message"
)

// Backend-native error codes beyond backend.CodeNoMatch.
const (
	codeFieldMissing  = 102
	codeScriptMissing = 104
	codeLayoutMissing = 105
)

// Config holds store configuration.
type Config struct {
	DataDir string
}

// ScriptFunc is a registered backend-side procedure. It may query the store
// and return zero or more records.
type ScriptFunc func(ctx context.Context, s *Store, layout, param string) ([]backend.Record, error)

// Store is a pebble-backed record database. It is a session-scoped handle:
// safe for sequential use, not for concurrent sharing.
type Store struct {
	db      *pebble.DB
	scripts map[string]ScriptFunc
}

// Open opens or creates the store under cfg.DataDir.
func Open(cfg Config) (*Store, error) {
	db, err := pebble.Open(cfg.DataDir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &Store{db: db, scripts: make(map[string]ScriptFunc)}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RegisterScript makes a named procedure available to RunScript and to
// script hooks.
func (s *Store) RegisterScript(name string, fn ScriptFunc) {
	s.scripts[name] = fn
}

// DefineLayout declares a layout and its field catalog. Redefining a layout
// replaces the catalog.
func (s *Store) DefineLayout(layout string, meta []backend.FieldMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return s.db.Set(catalogKey(layout), data, pebble.Sync)
}

// PutContainer stores container bytes under an opaque reference.
func (s *Store) PutContainer(ref, filename string, data []byte) error {
	blob, err := json.Marshal(containerBlob{Filename: filename, Data: data})
	if err != nil {
		return err
	}
	return s.db.Set(blobKey(ref), blob, pebble.Sync)
}

type containerBlob struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// FindByUniqueKey scans the layout for records whose field matches value in
// any repetition. Zero matches returns an empty slice, not an error.
func (s *Store) FindByUniqueKey(ctx context.Context, layout, field, value string) ([]backend.Record, error) {
	meta, err := s.catalog(layout)
	if err != nil {
		return nil, err
	}
	prefix := recordPrefix(layout)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: append(append([]byte{}, prefix...), 0xff),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan layout %s: %w", layout, err)
	}
	defer iter.Close()

	var out []backend.Record
	for iter.First(); iter.Valid(); iter.Next() {
		var fields message.FieldSet
		if err := json.Unmarshal(iter.Value(), &fields); err != nil {
			return nil, fmt.Errorf("corrupt record %s: %w", iter.Key(), err)
		}
		if !repetitionMatches(fields[field], value) {
			continue
		}
		id := string(iter.Key()[len(prefix):])
		out = append(out, backend.Record{ID: id, Fields: fields, Meta: meta})
	}
	return out, iter.Error()
}

func repetitionMatches(reps message.Repetitions, value string) bool {
	for _, v := range reps {
		if v == value {
			return true
		}
	}
	return false
}

// FindByID returns the record with the given identifier.
func (s *Store) FindByID(ctx context.Context, layout, id string) (backend.Record, error) {
	meta, err := s.catalog(layout)
	if err != nil {
		return backend.Record{}, err
	}
	fields, err := s.readFields(layout, id)
	if err != nil {
		return backend.Record{}, err
	}
	return backend.Record{ID: id, Fields: fields, Meta: meta}, nil
}

// Create validates the fields against the layout catalog, assigns a ksuid
// identifier and stores the record. Hooks fire around the write.
func (s *Store) Create(ctx context.Context, layout string, fields message.FieldSet, hooks *backend.HookSet) (backend.Record, error) {
	meta, err := s.catalog(layout)
	if err != nil {
		return backend.Record{}, err
	}
	if err := validateFields(meta, fields); err != nil {
		return backend.Record{}, err
	}
	if err := s.runHook(ctx, layout, hookPre(hooks)); err != nil {
		return backend.Record{}, err
	}
	id := ksuid.New().String()
	if err := s.writeFields(layout, id, fields); err != nil {
		return backend.Record{}, err
	}
	if err := s.runHook(ctx, layout, hookPost(hooks)); err != nil {
		return backend.Record{}, err
	}
	return backend.Record{ID: id, Fields: fields, Meta: meta}, nil
}

// Update merges the given fields into an existing record.
func (s *Store) Update(ctx context.Context, layout, id string, fields message.FieldSet, hooks *backend.HookSet) error {
	meta, err := s.catalog(layout)
	if err != nil {
		return err
	}
	if err := validateFields(meta, fields); err != nil {
		return err
	}
	current, err := s.readFields(layout, id)
	if err != nil {
		return err
	}
	if err := s.runHook(ctx, layout, hookPre(hooks)); err != nil {
		return err
	}
	for name, reps := range fields {
		if current[name] == nil {
			current[name] = make(message.Repetitions)
		}
		for i, v := range reps {
			current[name][i] = v
		}
	}
	if err := s.writeFields(layout, id, current); err != nil {
		return err
	}
	return s.runHook(ctx, layout, hookPost(hooks))
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, layout, id string, hooks *backend.HookSet) error {
	if _, err := s.readFields(layout, id); err != nil {
		return err
	}
	if err := s.runHook(ctx, layout, hookPre(hooks)); err != nil {
		return err
	}
	if err := s.db.Delete(recordKey(layout, id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return s.runHook(ctx, layout, hookPost(hooks))
}

// RunScript executes a registered procedure.
func (s *Store) RunScript(ctx context.Context, layout, name, param string) ([]backend.Record, error) {
	fn, ok := s.scripts[name]
	if !ok {
		return nil, backend.NewError(codeScriptMissing, "script %q is missing", name)
	}
	return fn(ctx, s, layout, param)
}

// ReadContainer materializes a stored container reference.
func (s *Store) ReadContainer(ctx context.Context, ref string) (string, []byte, error) {
	data, closer, err := s.db.Get(blobKey(ref))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", nil, backend.NewError(backend.CodeNoMatch, "no matching container %q", ref)
		}
		return "", nil, err
	}
	defer closer.Close()
	var blob containerBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return "", nil, fmt.Errorf("corrupt container %q: %w", ref, err)
	}
	return blob.Filename, blob.Data, nil
}

func (s *Store) catalog(layout string) ([]backend.FieldMeta, error) {
	data, closer, err := s.db.Get(catalogKey(layout))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, backend.NewError(codeLayoutMissing, "layout %q is missing", layout)
		}
		return nil, err
	}
	defer closer.Close()
	var meta []backend.FieldMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("corrupt catalog for layout %q: %w", layout, err)
	}
	return meta, nil
}

func validateFields(meta []backend.FieldMeta, fields message.FieldSet) error {
	known := make(map[string]bool, len(meta))
	for _, fm := range meta {
		known[fm.Name] = true
	}
	for name := range fields {
		if !known[name] {
			return backend.NewError(codeFieldMissing, "field %q is missing", name)
		}
	}
	return nil
}

func (s *Store) readFields(layout, id string) (message.FieldSet, error) {
	data, closer, err := s.db.Get(recordKey(layout, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, backend.NewError(backend.CodeNoMatch, "no matching records")
		}
		return nil, err
	}
	defer closer.Close()
	var fields message.FieldSet
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("corrupt record %s/%s: %w", layout, id, err)
	}
	return fields, nil
}

func (s *Store) writeFields(layout, id string, fields message.FieldSet) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.db.Set(recordKey(layout, id), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// runHook executes one attached hook script, discarding any records it
// returns; hook results are incidental.
func (s *Store) runHook(ctx context.Context, layout string, h *backend.Hook) error {
	if h == nil {
		return nil
	}
	_, err := s.RunScript(ctx, layout, h.Script, h.Param)
	return err
}

func hookPre(h *backend.HookSet) *backend.Hook {
	if h == nil {
		return nil
	}
	return h.Pre
}

func hookPost(h *backend.HookSet) *backend.Hook {
	if h == nil {
		return nil
	}
	return h.Post
}

func catalogKey(layout string) []byte {
	return []byte("cat!" + layout)
}

func recordPrefix(layout string) []byte {
	return []byte("rec!" + layout + "!")
}

func recordKey(layout, id string) []byte {
	return append(recordPrefix(layout), id...)
}

func blobKey(ref string) []byte {
	return []byte("blob!" + ref)
}
