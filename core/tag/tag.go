package tag

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrTargetMustBePointer = errors.New("tag: target must be a non-nil pointer to struct")
	ErrUnsupportedType     = errors.New("tag: unsupported type")
	ErrMaxDepthExceeded    = errors.New("tag: max recursion depth exceeded")
)

const maxDepth = 16

// FieldError reports which field's default could not be applied.
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag: field %q (default %q): %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ApplyDefaults fills zero-valued fields of the struct pointed to by target
// from their `default` struct tag. Nested structs and pointers to structs are
// walked, non-zero fields are left untouched.
//
//	type Config struct {
//	    Dir  string        `default:"keys"`
//	    Bits int           `default:"2048"`
//	    TTL  time.Duration `default:"5s"`
//	}
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrTargetMustBePointer
	}
	return applyStruct(v.Elem(), "", 0)
}

func applyStruct(v reflect.Value, prefix string, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		if err := applyField(fv, field.Tag.Get("default"), path, depth); err != nil {
			return err
		}
	}
	return nil
}

func applyField(fv reflect.Value, def, path string, depth int) error {
	switch fv.Kind() {
	case reflect.Struct:
		return applyStruct(fv, path, depth+1)

	case reflect.Pointer:
		elem := fv.Type().Elem()
		if elem.Kind() == reflect.Struct {
			if fv.IsNil() {
				fv.Set(reflect.New(elem))
			}
			return applyStruct(fv.Elem(), path, depth+1)
		}
		if !fv.IsNil() || def == "" {
			return nil
		}
		nv := reflect.New(elem)
		if err := parse(nv.Elem(), def); err != nil {
			return &FieldError{Path: path, Value: def, Err: err}
		}
		fv.Set(nv)
		return nil

	case reflect.Slice:
		if fv.Len() > 0 {
			for i := 0; i < fv.Len(); i++ {
				item := fv.Index(i)
				if item.Kind() == reflect.Pointer && !item.IsNil() {
					item = item.Elem()
				}
				if item.Kind() == reflect.Struct {
					if err := applyStruct(item, fmt.Sprintf("%s[%d]", path, i), depth+1); err != nil {
						return err
					}
				}
			}
			return nil
		}
	}

	if def == "" || !fv.IsZero() {
		return nil
	}
	if err := parse(fv, def); err != nil {
		return &FieldError{Path: path, Value: def, Err: err}
	}
	return nil
}

// splitList splits a comma separated default into trimmed items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
