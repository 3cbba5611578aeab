package services

import (
	"context"
	"fmt"

	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

// Codec converts between catalog records and domain values.
type Codec[T any] interface {
	Decode(rec catalog.Record) (*T, error)
	Encode(v *T) (catalog.Record, error)
}

// RecordPage is one page of encoded records.
type RecordPage struct {
	Items    []catalog.Record
	Count    int
	Page     int
	PageSize int
}

func (p RecordPage) HasNext() bool     { return p.Page*p.PageSize < p.Count }
func (p RecordPage) HasPrevious() bool { return p.Page > 1 }

// Resource is the record-level use-case boundary shared by the JSON API and
// the HTML views. Input records are raw (decoded JSON or form values) and
// are normalized against the entity metadata before reaching storage.
type Resource interface {
	Entity() *catalog.Entity
	List(ctx context.Context, q ports.ListQuery) (RecordPage, error)
	Count(ctx context.Context, filters map[string]string) (int, error)
	Get(ctx context.Context, id int64) (catalog.Record, error)
	Create(ctx context.Context, raw catalog.Record) (catalog.Record, error)
	// Update replaces every writable field.
	Update(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error)
	// Patch overlays raw onto the stored record and revalidates the result.
	Patch(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error)
	Delete(ctx context.Context, id int64) error
}

type storeResource[T any] struct {
	entity *catalog.Entity
	store  ports.Store[T]
	codec  Codec[T]
}

// NewResource exposes a typed store through catalog records.
func NewResource[T any](entity *catalog.Entity, store ports.Store[T], codec Codec[T]) Resource {
	return &storeResource[T]{entity: entity, store: store, codec: codec}
}

func (r *storeResource[T]) Entity() *catalog.Entity { return r.entity }

func (r *storeResource[T]) List(ctx context.Context, q ports.ListQuery) (RecordPage, error) {
	page, err := r.store.List(ctx, q)
	if err != nil {
		return RecordPage{}, err
	}

	out := RecordPage{Items: make([]catalog.Record, 0, len(page.Items)), Count: page.Count, Page: page.Page, PageSize: page.PageSize}
	for _, v := range page.Items {
		rec, err := r.codec.Encode(v)
		if err != nil {
			return RecordPage{}, fmt.Errorf("list %s: %w", r.entity.Name, err)
		}
		out.Items = append(out.Items, rec)
	}
	return out, nil
}

func (r *storeResource[T]) Count(ctx context.Context, filters map[string]string) (int, error) {
	return r.store.Count(ctx, filters)
}

func (r *storeResource[T]) Get(ctx context.Context, id int64) (catalog.Record, error) {
	v, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.codec.Encode(v)
}

func (r *storeResource[T]) Create(ctx context.Context, raw catalog.Record) (catalog.Record, error) {
	v, err := r.decode(raw, 0)
	if err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return r.codec.Encode(v)
}

func (r *storeResource[T]) Update(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error) {
	if _, err := r.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return r.write(ctx, id, raw)
}

func (r *storeResource[T]) Patch(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.write(ctx, id, catalog.Merge(current, raw))
}

func (r *storeResource[T]) write(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error) {
	v, err := r.decode(raw, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.Update(ctx, v); err != nil {
		return nil, err
	}
	return r.codec.Encode(v)
}

func (r *storeResource[T]) Delete(ctx context.Context, id int64) error {
	return r.store.Delete(ctx, id)
}

func (r *storeResource[T]) decode(raw catalog.Record, id int64) (*T, error) {
	rec, problems := r.entity.Normalize(raw)
	if problems != nil {
		return nil, domain.FieldErrors(problems)
	}
	if id != 0 {
		rec["id"] = id
	}
	return r.codec.Decode(rec)
}

// Resources indexes resources by entity name.
type Resources map[string]Resource

// Lookup returns the resource of an entity name.
func (rs Resources) Lookup(name string) (Resource, bool) {
	r, ok := rs[name]
	return r, ok
}
