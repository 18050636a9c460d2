package ctyconv

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Typed accessors for handler arguments. Handlers receive arguments that
// already passed static type checking, so these fail only on genuine
// binding bugs; each returns a descriptive error rather than panicking.

// Int64Arg extracts an integral argument value.
func Int64Arg(args map[string]cty.Value, name string) (int64, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return 0, fmt.Errorf("argument %q is not set", name)
	}
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("argument %q is %s, want an integer", name, v.Type().FriendlyName())
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return 0, fmt.Errorf("argument %q is not integral", name)
	}
	i, _ := bf.Int64()
	return i, nil
}

// Float64Arg extracts a numeric argument value.
func Float64Arg(args map[string]cty.Value, name string) (float64, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return 0, fmt.Errorf("argument %q is not set", name)
	}
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("argument %q is %s, want a number", name, v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

// StringArg extracts a string argument value.
func StringArg(args map[string]cty.Value, name string) (string, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return "", fmt.Errorf("argument %q is not set", name)
	}
	if v.Type() != cty.String {
		return "", fmt.Errorf("argument %q is %s, want a string", name, v.Type().FriendlyName())
	}
	return v.AsString(), nil
}

// StringsArg extracts a sequence argument as a string slice.
func StringsArg(args map[string]cty.Value, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return nil, fmt.Errorf("argument %q is not set", name)
	}
	t := v.Type()
	if !t.IsTupleType() && !t.IsListType() && !t.IsSetType() {
		return nil, fmt.Errorf("argument %q is %s, want a list of strings", name, t.FriendlyName())
	}
	out := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.IsNull() || ev.Type() != cty.String {
			return nil, fmt.Errorf("argument %q contains a non-string element", name)
		}
		out = append(out, ev.AsString())
	}
	return out, nil
}

// StringMapArg extracts a mapping argument as a string-to-string map. A
// null or absent argument yields a nil map.
func StringMapArg(args map[string]cty.Value, name string) (map[string]string, error) {
	v, ok := args[name]
	if !ok || v.IsNull() {
		return nil, nil
	}
	t := v.Type()
	if !t.IsObjectType() && !t.IsMapType() {
		return nil, fmt.Errorf("argument %q is %s, want a string mapping", name, t.FriendlyName())
	}
	out := make(map[string]string, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		kv, ev := it.Element()
		if ev.IsNull() || ev.Type() != cty.String {
			return nil, fmt.Errorf("argument %q contains a non-string value", name)
		}
		out[kv.AsString()] = ev.AsString()
	}
	return out, nil
}
