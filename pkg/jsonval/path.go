package jsonval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment is a single step of a Path, either an object Key or an array Index.
type Segment interface {
	fmt.Stringer
	segment()
}

// Key addresses a value inside an object.
type Key string

func (Key) segment() {}

// String returns the key.
func (k Key) String() string { return string(k) }

// Index addresses an element inside an array.
type Index int

func (Index) segment() {}

// String returns the index in decimal form.
func (i Index) String() string { return strconv.Itoa(int(i)) }

// Path addresses a value inside a JSON document. It is never empty, and its
// first segment is always a Key, as documents are rooted at objects.
type Path []Segment

// String returns a dotted representation of the path, e.g. "user.tags.0".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, seg := range p {
		parts[i] = seg.String()
	}
	return strings.Join(parts, ".")
}

// ErrEmptyPath is returned when a path has no segments.
var ErrEmptyPath = errors.New("empty path")

// ErrLeadingIndex is returned when the first segment of a path is not a Key.
var ErrLeadingIndex = errors.New("path must begin with an object key")

// MissingKeyError is returned when a key is absent from an object.
type MissingKeyError struct{ Key string }

// Error returns the error message.
func (e *MissingKeyError) Error() string { return fmt.Sprintf("missing key %q", e.Key) }

// MissingIndexError is returned when an index is out of an array's range.
type MissingIndexError struct{ Index int }

// Error returns the error message.
func (e *MissingIndexError) Error() string { return fmt.Sprintf("missing index %d", e.Index) }

// TypeMismatchError is returned when a path traverses a container
// of the wrong shape.
type TypeMismatchError struct{ Want, Got Kind }

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// Resolve reads the value at the given path of the document. The document
// must be an object; it is never mutated. The returned value is the located
// subtree itself, callers that intend to keep it must Clone it.
func Resolve(path Path, doc *Value) (*Value, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if doc.Kind() != KindObject {
		return nil, &TypeMismatchError{Want: KindObject, Got: doc.Kind()}
	}

	key, ok := path[0].(Key)
	if !ok {
		return nil, ErrLeadingIndex
	}

	cur, ok := doc.Object().Get(string(key))
	if !ok {
		return nil, &MissingKeyError{Key: string(key)}
	}

	for _, seg := range path[1:] {
		switch seg := seg.(type) {
		case Key:
			if cur.Kind() != KindObject {
				return nil, &TypeMismatchError{Want: KindObject, Got: cur.Kind()}
			}
			if cur, ok = cur.Object().Get(string(seg)); !ok {
				return nil, &MissingKeyError{Key: string(seg)}
			}
		case Index:
			if cur.Kind() != KindArray {
				return nil, &TypeMismatchError{Want: KindArray, Got: cur.Kind()}
			}
			elems := cur.Array()
			if int(seg) >= len(elems) {
				return nil, &MissingIndexError{Index: int(seg)}
			}
			cur = elems[int(seg)]
		default:
			return nil, fmt.Errorf("unsupported path segment %T", seg)
		}
	}

	return cur, nil
}

// Materialize walks the path over the document, creating every missing
// intermediate container, and returns a mutable handle to the terminal
// location. Each created container is typed by the segment that follows it:
// a key means an object, an index means an array, and the terminal position
// is created as null for the caller to overwrite. Arrays are extended with
// null placeholders up to the target index; writing right past the current
// end of an array is a valid append.
func Materialize(path Path, doc *Value) (*Value, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if doc.Kind() != KindObject {
		return nil, &TypeMismatchError{Want: KindObject, Got: doc.Kind()}
	}

	key, ok := path[0].(Key)
	if !ok {
		return nil, ErrLeadingIndex
	}

	cur := getOrInsertKey(doc.Object(), string(key), peek(path, 1))

	for i, seg := range path[1:] {
		switch seg := seg.(type) {
		case Key:
			if cur.Kind() != KindObject {
				return nil, &TypeMismatchError{Want: KindObject, Got: cur.Kind()}
			}
			cur = getOrInsertKey(cur.Object(), string(seg), peek(path, i+2))
		case Index:
			if cur.Kind() != KindArray {
				return nil, &TypeMismatchError{Want: KindArray, Got: cur.Kind()}
			}
			cur = getOrInsertIndex(cur, int(seg), peek(path, i+2))
		default:
			return nil, fmt.Errorf("unsupported path segment %T", seg)
		}
	}

	return cur, nil
}

// peek returns the kind of the container to create at position idx-1,
// judging by the segment at idx.
func peek(path Path, idx int) Kind {
	if idx >= len(path) {
		return KindNull
	}
	switch path[idx].(type) {
	case Key:
		return KindObject
	case Index:
		return KindArray
	default:
		return KindNull
	}
}

func newContainer(kind Kind) *Value {
	switch kind {
	case KindObject:
		return NewObject()
	case KindArray:
		return NewArray()
	default:
		return Null()
	}
}

func getOrInsertKey(obj *Object, key string, kind Kind) *Value {
	if v, ok := obj.Get(key); ok {
		return v
	}
	v := newContainer(kind)
	obj.Set(key, v)
	return v
}

func getOrInsertIndex(arr *Value, idx int, kind Kind) *Value {
	// extending also when len == idx, so that appending the very
	// next element of the array does not fall out of range
	if len(arr.arr) <= idx {
		for len(arr.arr) < idx {
			arr.arr = append(arr.arr, Null())
		}
		arr.arr = append(arr.arr, newContainer(kind))
	}
	return arr.arr[idx]
}
