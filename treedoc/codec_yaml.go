package treedoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML parses a single YAML document whose top level is a mapping.
func ParseYAML(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if node.Kind == 0 {
		// Empty input decodes to a zero node.
		return NewDocument(), nil
	}
	return docFromYAMLNode(&node)
}

// ParseYAMLStream parses a multi-document YAML stream into one Document per
// YAML document.
func ParseYAMLStream(data []byte) ([]*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []*Document
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml stream: %w", err)
		}
		doc, err := docFromYAMLNode(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func docFromYAMLNode(node *yaml.Node) (*Document, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return NewDocument(), nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse yaml: top-level value is not a mapping")
	}
	doc := NewDocument()
	if err := decodeYAMLMapping(node, doc.root); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}

func decodeYAMLMapping(node *yaml.Node, parent *Element) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("mapping key at line %d is not a scalar", key.Line)
		}
		child, err := decodeYAMLValue(node.Content[i+1], key.Value)
		if err != nil {
			return err
		}
		if err := parent.PushBack(child); err != nil {
			return err
		}
	}
	return nil
}

func decodeYAMLValue(node *yaml.Node, name string) (*Element, error) {
	switch node.Kind {
	case yaml.MappingNode:
		e := NewObject(name)
		return e, decodeYAMLMapping(node, e)
	case yaml.SequenceNode:
		e := NewArray(name)
		for _, item := range node.Content {
			child, err := decodeYAMLValue(item, "")
			if err != nil {
				return nil, err
			}
			if err := e.PushBack(child); err != nil {
				return nil, err
			}
		}
		return e, nil
	case yaml.AliasNode:
		return decodeYAMLValue(node.Alias, name)
	case yaml.ScalarNode:
		return decodeYAMLScalar(node, name)
	default:
		return nil, fmt.Errorf("unsupported yaml node kind %d at line %d", node.Kind, node.Line)
	}
}

func decodeYAMLScalar(node *yaml.Node, name string) (*Element, error) {
	switch node.Tag {
	case "!!null", "":
		return NewNull(name), nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %q at line %d", node.Value, node.Line)
		}
		return NewBool(name, b), nil
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q at line %d", node.Value, node.Line)
		}
		return NewInt(name, i), nil
	case "!!float":
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q at line %d", node.Value, node.Line)
		}
		return NewDouble(name, f), nil
	default:
		// Strings, timestamps, and anything else scalar are kept as strings.
		return NewString(name, node.Value), nil
	}
}

// MarshalYAML serializes the document as a YAML mapping in field order.
func MarshalYAML(d *Document) ([]byte, error) {
	node, err := yamlNodeFromElement(d.root)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}

func yamlNodeFromElement(e *Element) (*yaml.Node, error) {
	switch e.typ {
	case TypeNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case TypeBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(e.b)}, nil
	case TypeInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(e.i64, 10)}, nil
	case TypeDouble:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(e.f64, 'g', -1, 64)}, nil
	case TypeString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.str}, nil
	case TypeObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for c := e.firstChild; c != nil; c = c.next {
			val, err := yamlNodeFromElement(c)
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.name}
			node.Content = append(node.Content, key, val)
		}
		return node, nil
	case TypeArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for c := e.firstChild; c != nil; c = c.next {
			val, err := yamlNodeFromElement(c)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, val)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("cannot marshal element of type %d", e.typ)
	}
}
