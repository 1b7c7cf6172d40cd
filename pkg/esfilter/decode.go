package esfilter

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var (
	errNestedObject    = errors.New("nested objects are not supported")
	errNestedList      = errors.New("list values must contain scalars only")
	errTrailingContent = errors.New("unexpected content after the filter")
)

// ParseJSON decodes a JSON object into a Filter, keeping key order
func ParseJSON(data []byte) (Filter, error) {
	var f Filter
	if err := f.UnmarshalJSON(data); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers are kept
// as json.Number so they render back exactly as written.
func (f *Filter) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)

	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		if hasTrailingContent(iter) {
			return &DecodeError{Err: errTrailingContent}
		}
		*f = Filter{}
		return nil
	case jsoniter.ObjectValue:
	default:
		return &DecodeError{Err: errors.New("filter must be a JSON object")}
	}

	var (
		out       Filter
		decodeErr error
	)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		v, err := readJSONValue(it)
		if err != nil {
			decodeErr = &DecodeError{Key: key, Err: err}
			return false
		}
		out.Set(key, v)
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return &DecodeError{Err: iter.Error}
	}
	if hasTrailingContent(iter) {
		return &DecodeError{Err: errTrailingContent}
	}

	*f = out
	return nil
}

// hasTrailingContent reports whether anything but whitespace follows the
// value just read. The iterator only records io.EOF once the input is drained.
func hasTrailingContent(iter *jsoniter.Iterator) bool {
	iter.WhatIsNext()
	return iter.Error == nil
}

func readJSONValue(it *jsoniter.Iterator) (Value, error) {
	switch it.WhatIsNext() {
	case jsoniter.NilValue:
		it.ReadNil()
		return Null(), nil
	case jsoniter.ArrayValue:
		items := []interface{}{}
		var itemErr error
		it.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			v, err := readJSONScalar(it)
			if err != nil {
				itemErr = err
				return false
			}
			items = append(items, v)
			return true
		})
		if itemErr != nil {
			return Value{}, itemErr
		}
		return List(items...), it.Error
	case jsoniter.ObjectValue:
		it.Skip()
		return Value{}, errNestedObject
	}

	v, err := readJSONScalar(it)
	if err != nil {
		return Value{}, err
	}
	return Scalar(v), nil
}

func readJSONScalar(it *jsoniter.Iterator) (interface{}, error) {
	switch it.WhatIsNext() {
	case jsoniter.NilValue:
		it.ReadNil()
		return nil, nil
	case jsoniter.StringValue:
		return it.ReadString(), it.Error
	case jsoniter.NumberValue:
		return it.ReadNumber(), it.Error
	case jsoniter.BoolValue:
		return it.ReadBool(), it.Error
	case jsoniter.ArrayValue, jsoniter.ObjectValue:
		it.Skip()
		return nil, errNestedList
	}
	if it.Error != nil {
		return nil, it.Error
	}
	return nil, errors.New("invalid JSON value")
}

// UnmarshalYAML decodes a YAML mapping keeping key order
func (f *Filter) UnmarshalYAML(node *yaml.Node) error {
	node = resolveYAML(node)
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			*f = Filter{}
			return nil
		}
		node = resolveYAML(node.Content[0])
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*f = Filter{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &DecodeError{Err: fmt.Errorf("filter must be a YAML mapping, line %d", node.Line)}
	}

	var out Filter
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := yamlValue(resolveYAML(node.Content[i+1]))
		if err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		out.Set(key, v)
	}

	*f = out
	return nil
}

func resolveYAML(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func yamlValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]interface{}, 0, len(node.Content))
		for _, item := range node.Content {
			item = resolveYAML(item)
			if item.Kind != yaml.ScalarNode {
				return Value{}, errNestedList
			}
			v, err := yamlScalar(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	case yaml.MappingNode:
		return Value{}, errNestedObject
	case yaml.ScalarNode:
		v, err := yamlScalar(node)
		if err != nil {
			return Value{}, err
		}
		return Scalar(v), nil
	}
	return Value{}, fmt.Errorf("unsupported YAML node at line %d", node.Line)
}

func yamlScalar(node *yaml.Node) (interface{}, error) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
