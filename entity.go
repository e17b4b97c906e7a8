package d3dbsp

import (
	"io"
	"strings"
)

// KeyValue is one "key" "value" line of an entity.
type KeyValue struct {
	Key   string
	Value string
}

// Entity is an ordered list of key-value pairs. Entity 0 is the world.
type Entity struct {
	KeyValues []KeyValue
}

// Property returns the first value stored under key.
func (e *Entity) Property(key string) (string, bool) {
	for _, kv := range e.KeyValues {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// ClassName returns the classname property, or "" if it is missing.
func (e *Entity) ClassName() string {
	v, _ := e.Property("classname")
	return v
}

// HasBrushModel reports whether the entity carries its own brush model
// ("model" "*N") that must be written inline.
func (e *Entity) HasBrushModel() bool {
	c := e.ClassName()
	return c == "script_brushmodel" || strings.Contains(c, "trigger_")
}

const (
	depthRoot = iota
	depthEntity
)

// parseEntities reads the entity lump text:
//
//	{
//	"classname" "worldspawn"
//	}
//
// Brushes written inside an entity are not supported.
func parseEntities(s Stream) ([]Entity, error) {
	var entities []Entity
	depth := depthRoot
	for lineNum := 1; ; lineNum++ {
		line, err := readLine(s)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			continue
		}
		switch line[0] {
		case '{':
			if depth != depthRoot {
				return nil, &UnsupportedFeatureError{Feature: "brush block inside entity", Line: lineNum}
			}
			depth = depthEntity
			entities = append(entities, Entity{})
		case '}':
			if depth == depthRoot {
				return nil, formatErrorf(LumpEntities, "unbalanced '}' at line %d", lineNum)
			}
			depth = depthRoot
		case '(':
			return nil, &UnsupportedFeatureError{Feature: "inline brush definition", Line: lineNum}
		case '"':
			if depth != depthEntity {
				continue
			}
			kv, ok := parseKeyValue(line)
			if !ok {
				return nil, formatErrorf(LumpEntities, "malformed key-value pair at line %d", lineNum)
			}
			e := &entities[len(entities)-1]
			e.KeyValues = append(e.KeyValues, kv)
		}
	}
	if depth != depthRoot {
		logger.Warn().Int("entity", len(entities)-1).Msg("Entity text ends inside an entity")
	}
	return entities, nil
}

// parseKeyValue splits a line of the form "key" "value".
func parseKeyValue(line string) (KeyValue, bool) {
	var fields [2]string
	r := line
	for i := range fields {
		q := strings.IndexByte(r, '"')
		if q == -1 {
			return KeyValue{}, false
		}
		r = r[q+1:]
		q = strings.IndexByte(r, '"')
		if q == -1 {
			return KeyValue{}, false
		}
		fields[i] = r[:q]
		r = r[q+1:]
	}
	return KeyValue{Key: fields[0], Value: fields[1]}, true
}

// readLine returns the next line of s without its line ending. A NUL byte
// ends the text; io.EOF is returned once nothing is left.
func readLine(s Stream) (string, error) {
	if s.EOF() {
		return "", io.EOF
	}
	var sb strings.Builder
	var c [1]byte
	for {
		n, err := s.Read(c[:])
		if n == 0 || c[0] == 0 {
			if err != nil && err != io.EOF {
				return "", err
			}
			if n == 1 {
				// Nothing after the terminator is text
				if _, err := s.Seek(0, io.SeekEnd); err != nil {
					return "", err
				}
			}
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return sb.String(), nil
		}
		switch c[0] {
		case '\r':
		case '\n':
			return sb.String(), nil
		default:
			sb.WriteByte(c[0])
		}
	}
}
