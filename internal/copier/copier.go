// Package copier applies partial updates: it copies every exported field
// that exists on both source and target with the same name and an
// assignable type, leaving all other target fields untouched. The field
// plan is compiled once per (source, target) type pair and cached, so the
// copy is cheap enough to run on every write.
package copier

import (
	"fmt"
	"reflect"
	"sync"
)

type pairKey struct {
	src, dst reflect.Type
}

type fieldPlan struct {
	name string
	src  []int
	dst  []int
}

var plans sync.Map // pairKey -> []fieldPlan

// Copy copies matching fields from src to dst. Both arguments must be
// non-nil pointers to structs. Fields named in skip are left untouched on
// dst even when they match.
func Copy(src, dst any, skip ...string) error {
	sv, err := structValue(src, "source")
	if err != nil {
		return err
	}
	dv, err := structValue(dst, "target")
	if err != nil {
		return err
	}

	plan := planFor(sv.Type(), dv.Type())

	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[name] = struct{}{}
	}

	for _, f := range plan {
		if _, ok := skipped[f.name]; ok {
			continue
		}
		dv.FieldByIndex(f.dst).Set(sv.FieldByIndex(f.src))
	}
	return nil
}

func structValue(v any, role string) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("copier: %s must be a non-nil struct pointer, got %T", role, v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("copier: %s must point to a struct, got %T", role, v)
	}
	return rv, nil
}

func planFor(src, dst reflect.Type) []fieldPlan {
	key := pairKey{src: src, dst: dst}
	if cached, ok := plans.Load(key); ok {
		return cached.([]fieldPlan)
	}

	var plan []fieldPlan
	for _, sf := range reflect.VisibleFields(src) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		df, ok := dst.FieldByName(sf.Name)
		if !ok || !df.IsExported() {
			continue
		}
		if !sf.Type.AssignableTo(df.Type) {
			continue
		}
		plan = append(plan, fieldPlan{name: sf.Name, src: sf.Index, dst: df.Index})
	}

	plans.Store(key, plan)
	return plan
}
