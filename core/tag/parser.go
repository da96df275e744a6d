package tag

import (
	"encoding"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeFor[time.Duration]()

// parse sets v from its string form.
func parse(v reflect.Value, s string) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(s))
		}
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)

	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return nil
		}
		items := splitList(s)
		slice := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			if err := parse(slice.Index(i), item); err != nil {
				return err
			}
		}
		v.Set(slice)

	case reflect.Map:
		m := reflect.MakeMap(v.Type())
		for _, pair := range splitList(s) {
			k, val, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			kv := reflect.New(v.Type().Key()).Elem()
			if err := parse(kv, strings.TrimSpace(k)); err != nil {
				return err
			}
			vv := reflect.New(v.Type().Elem()).Elem()
			if err := parse(vv, strings.TrimSpace(val)); err != nil {
				return err
			}
			m.SetMapIndex(kv, vv)
		}
		v.Set(m)

	default:
		return ErrUnsupportedType
	}
	return nil
}
