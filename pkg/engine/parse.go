package engine

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"

	"github.com/recordgate/recordgate/pkg/backend"
	"github.com/recordgate/recordgate/pkg/message"
)

// schemaCache marks whether field metadata has been captured for the current
// engine invocation. Field schema is assumed stable for the duration of one
// response, so the metaField section is populated from the first parsed
// record and never again.
type schemaCache struct {
	populated bool
}

// parseRecord converts a backend record into a response Record, expanding
// repetitions into "name[i]" pseudo-fields in ascending index order and
// encoding container fields per the active policy. The first parse of an
// invocation also populates the response's metaField rows.
func (e *Engine) parseRecord(ctx context.Context, brec backend.Record, resp *message.Message, cache *schemaCache, opts Options) error {
	rec := message.NewRecordWithID(brec.ID)
	rec.SetHref(recordHref(opts.Layout, brec.ID))

	if !cache.populated && len(brec.Meta) > 0 {
		for _, fm := range brec.Meta {
			resp.SetMetaField(fm.Name, metaFieldRow(fm))
		}
		cache.populated = true
	}

	metaByName := make(map[string]backend.FieldMeta, len(brec.Meta))
	order := make([]string, 0, len(brec.Fields))
	for _, fm := range brec.Meta {
		metaByName[fm.Name] = fm
		if _, ok := brec.Fields[fm.Name]; ok {
			order = append(order, fm.Name)
		}
	}
	var rest []string
	for name := range brec.Fields {
		if _, ok := metaByName[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	for _, name := range order {
		reps := brec.Fields[name]
		fm := metaByName[name]
		if fm.ResultType == backend.TypeContainer {
			encoded, err := e.encodeContainers(ctx, reps, opts.Containers)
			if err != nil {
				return err
			}
			reps = encoded
		}
		rec.Row().ExpandField(name, reps, fm.MaxRepeat)
	}

	resp.AddRecord(rec)
	return nil
}

// encodeContainers applies the request's container policy to every repetition
// of a container field. Empty references stay empty.
func (e *Engine) encodeContainers(ctx context.Context, reps message.Repetitions, policy ContainerPolicy) (message.Repetitions, error) {
	out := make(message.Repetitions, len(reps))
	for idx, ref := range reps {
		if ref == "" || policy == ContainerURL {
			out[idx] = ref
			continue
		}
		filename, data, err := e.backend.ReadContainer(ctx, ref)
		if err != nil {
			return nil, err
		}
		switch policy {
		case ContainerRaw:
			out[idx] = string(data)
		default:
			out[idx] = filename + ";" + base64.StdEncoding.EncodeToString(data)
		}
	}
	return out, nil
}

func metaFieldRow(fm backend.FieldMeta) *message.Row {
	row := message.NewRow()
	row.Set("name", fm.Name)
	row.Set("autoEntered", strconv.FormatBool(fm.AutoEntered))
	row.Set("global", strconv.FormatBool(fm.Global))
	row.Set("maxRepeat", strconv.Itoa(fm.MaxRepeat))
	row.Set("resultType", fm.ResultType)
	return row
}
