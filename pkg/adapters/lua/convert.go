package lua

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const maxDepth = 32

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
	bytesType      = reflect.TypeOf([]byte(nil))
)

// toBindings turns a payload into the free variables of a template.
// The payload must be nil, a map with string keys, or a struct (or a pointer to one).
// A key explicitly set to nil is bound and renders as an empty string.
func toBindings(L *lua.LState, data any) (map[string]lua.LValue, error) {
	bindings := make(map[string]lua.LValue)
	if data == nil {
		return bindings, nil
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return bindings, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("payload map keys must be strings, got %s", v.Type().Key())
		}
		iter := v.MapRange()
		for iter.Next() {
			lv, err := toLValue(L, iter.Value(), 1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Key().String(), err)
			}
			bindings[iter.Key().String()] = lv
		}
	case reflect.Struct:
		if v.Type() == timeType {
			return nil, fmt.Errorf("payload must be a map or struct, got %s", v.Type())
		}
		err := eachField(v, func(name string, field reflect.Value) error {
			lv, err := toLValue(L, field, 1)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			bindings[name] = lv
			return nil
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("payload must be a map or struct, got %s", v.Type())
	}

	return bindings, nil
}

func toLValue(L *lua.LState, v reflect.Value, depth int) (lua.LValue, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("payload nesting exceeds %d levels", maxDepth)
	}
	if !v.IsValid() {
		return lua.LNil, nil
	}

	switch v.Type() {
	case timeType:
		return lua.LString(v.Interface().(time.Time).Format(time.RFC3339)), nil
	case jsonNumberType:
		f, err := v.Interface().(json.Number).Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v.String())
		}
		return lua.LNumber(f), nil
	case bytesType:
		return lua.LString(v.Bytes()), nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return lua.LNil, nil
		}
		return toLValue(L, v.Elem(), depth+1)
	case reflect.String:
		return lua.LString(v.String()), nil
	case reflect.Bool:
		return lua.LBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return lua.LNumber(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(v.Float()), nil
	case reflect.Slice, reflect.Array:
		// A nil slice is still a list; templates iterate it without a guard.
		tbl := L.CreateTable(v.Len(), 0)
		for i := 0; i < v.Len(); i++ {
			item, err := toLValue(L, v.Index(i), depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			tbl.RawSetInt(i+1, item)
		}
		return tbl, nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", v.Type().Key())
		}
		tbl := L.CreateTable(0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			item, err := toLValue(L, iter.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Key().String(), err)
			}
			tbl.RawSetString(iter.Key().String(), item)
		}
		return tbl, nil
	case reflect.Struct:
		tbl := L.NewTable()
		err := eachField(v, func(name string, field reflect.Value) error {
			item, err := toLValue(L, field, depth+1)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			tbl.RawSetString(name, item)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return tbl, nil
	}

	return nil, fmt.Errorf("unsupported value of type %s", v.Type())
}

// eachField visits exported struct fields under their json names. Untagged embedded
// structs are flattened, and fields tagged "-" are skipped.
func eachField(v reflect.Value, fn func(name string, field reflect.Value) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			if err := eachField(v.Field(i), fn); err != nil {
				return err
			}
			continue
		}

		if name == "" {
			name = sf.Name
		}
		if err := fn(name, v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}
