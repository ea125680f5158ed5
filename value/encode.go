// Copyright 2024 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeKey produces the byte encoding of a Tuple described by spec
// §4.2: a contract between the core and the storage layer, not
// otherwise interpreted by the core. Byte-lexicographic order over the
// result equals Tuple order. The encoding reserves an 8-byte prefix
// holding relationID, so every tuple belonging to one relation shares
// the contiguous range [relationID, relationID+1).
func EncodeKey(relationID uint64, t Tuple) ([]byte, error) {
	buf := make([]byte, 8, 32)
	binary.BigEndian.PutUint64(buf, relationID)
	for _, v := range t {
		var err error
		buf, err = appendValue(buf, v)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// RelationKeyRange returns the half-open byte range [lo, hi) covering
// every tuple encoded under EncodeKey(relationID, ...).
func RelationKeyRange(relationID uint64) (lo, hi []byte) {
	lo = make([]byte, 8)
	binary.BigEndian.PutUint64(lo, relationID)
	hi = make([]byte, 8)
	binary.BigEndian.PutUint64(hi, relationID+1)
	return lo, hi
}

// tags used inside the encoded byte stream. Ordered so that
// byte-lexicographic order of the tag byte matches Kind's case rank.
const (
	tagNull byte = iota
	tagBoolFalse
	tagBoolTrue
	tagNumInt
	tagNumFloat
	tagString
	tagBytes
	tagUUID
	tagRegex
	tagListOpen
	tagSetOpen
	tagVector
	tagBottom
)

// collContinue/collTerminate mark the element stream of a List, Set, or
// Vector: one collContinue byte precedes every element, and a single
// collTerminate byte ends the stream. collTerminate sorts below
// collContinue, so a tuple that is an exact prefix of another -- one
// list ending where the other still has more elements -- sorts first,
// matching compareColl/compareFloats's "shorter prefix is less" rule.
const (
	collTerminate byte = iota
	collContinue
)

// byteTerminator/byteEscapedZero delimit a variable-length byte string (used
// for String, Bytes, and Regex payloads) without a length prefix: every
// literal 0x00 in the payload is escaped as byteEscapedZero, and the
// string ends at the first unescaped 0x00. A length-prefixed encoding
// would compare the lengths before the bytes that actually differ,
// which breaks order preservation (spec §4.2) for any two strings where
// one is a proper prefix of the other; this escape scheme instead
// reaches the place the strings diverge before reaching the
// terminator, so byte order always matches Compare's strings.Compare.
const (
	byteTerminator  byte = 0x00
	byteEscapedZero byte = 0xFF
)

func appendValue(buf []byte, v Value) ([]byte, error) {
	switch v.Kind() {
	case KindNull:
		return append(buf, tagNull), nil
	case KindBool:
		b, _ := v.AsBool()
		if b {
			return append(buf, tagBoolTrue), nil
		}
		return append(buf, tagBoolFalse), nil
	case KindNumber:
		nk, _ := v.NumKind()
		if nk == NumInt {
			i, _ := v.AsInt()
			buf = append(buf, tagNumInt)
			var tmp [8]byte
			// Flip the sign bit so two's-complement order becomes the
			// unsigned byte order we want for negative/positive ints.
			binary.BigEndian.PutUint64(tmp[:], uint64(i)^(1<<63))
			return append(buf, tmp[:]...), nil
		}
		f, _ := v.AsFloat()
		buf = append(buf, tagNumFloat)
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], floatTotalOrderKey(f))
		return append(buf, tmp[:]...), nil
	case KindString:
		s, _ := v.AsString()
		return appendOrderedBytes(append(buf, tagString), []byte(s)), nil
	case KindBytes:
		b, _ := v.AsBytes()
		return appendOrderedBytes(append(buf, tagBytes), b), nil
	case KindUUID:
		u, _ := v.AsUUID()
		return append(append(buf, tagUUID), u[:]...), nil
	case KindRegex:
		re, _ := v.AsRegex()
		pattern := ""
		if re != nil {
			pattern = re.String()
		}
		return appendOrderedBytes(append(buf, tagRegex), []byte(pattern)), nil
	case KindList:
		coll, _ := v.AsColl()
		buf = append(buf, tagListOpen)
		return appendColl(buf, coll)
	case KindSet:
		coll, _ := v.AsColl()
		buf = append(buf, tagSetOpen)
		return appendColl(buf, coll)
	case KindVector:
		fs, _ := v.AsVector()
		buf = append(buf, tagVector)
		for _, f := range fs {
			buf = append(buf, collContinue)
			var tmp [8]byte
			binary.BigEndian.PutUint64(tmp[:], floatTotalOrderKey(f))
			buf = append(buf, tmp[:]...)
		}
		return append(buf, collTerminate), nil
	case KindBottom:
		return append(buf, tagBottom), nil
	default:
		return nil, fmt.Errorf("value: cannot encode kind %s as a key", v.Kind())
	}
}

// appendColl encodes a List or Set's elements as a collContinue-prefixed
// stream closed by collTerminate (see the const doc above); List and Set
// differ only in their open tag, already written by the caller.
func appendColl(buf []byte, coll []Value) ([]byte, error) {
	for _, e := range coll {
		buf = append(buf, collContinue)
		var err error
		buf, err = appendValue(buf, e)
		if err != nil {
			return nil, err
		}
	}
	return append(buf, collTerminate), nil
}

// appendOrderedBytes appends payload to buf so that byte-lexicographic
// order over the result matches bytes.Compare(payload, other) for any
// two payloads, including when one is a prefix of the other (see the
// byteTerminator/byteEscapedZero doc above).
func appendOrderedBytes(buf, payload []byte) []byte {
	for _, b := range payload {
		if b == byteTerminator {
			buf = append(buf, byteTerminator, byteEscapedZero)
		} else {
			buf = append(buf, b)
		}
	}
	return append(buf, byteTerminator, byteTerminator)
}

// DecodeKey is the inverse of EncodeKey: it strips the 8-byte relation
// id prefix and decodes arity values from the remaining bytes, returning
// the relation id and the decoded tuple.
func DecodeKey(buf []byte, arity int) (relationID uint64, t Tuple, err error) {
	if len(buf) < 8 {
		return 0, nil, fmt.Errorf("value: key too short to hold a relation id")
	}
	relationID = binary.BigEndian.Uint64(buf[:8])
	rest := buf[8:]
	t = make(Tuple, 0, arity)
	for i := 0; i < arity; i++ {
		var v Value
		v, rest, err = decodeValue(rest)
		if err != nil {
			return 0, nil, err
		}
		t = append(t, v)
	}
	return relationID, t, nil
}

func decodeValue(buf []byte) (Value, []byte, error) {
	if len(buf) == 0 {
		return Value{}, nil, fmt.Errorf("value: unexpected end of key")
	}
	tag, rest := buf[0], buf[1:]
	switch tag {
	case tagNull:
		return Null, rest, nil
	case tagBoolFalse:
		return Bool(false), rest, nil
	case tagBoolTrue:
		return Bool(true), rest, nil
	case tagNumInt:
		if len(rest) < 8 {
			return Value{}, nil, fmt.Errorf("value: truncated int")
		}
		u := binary.BigEndian.Uint64(rest[:8])
		return Int(int64(u ^ (1 << 63))), rest[8:], nil
	case tagNumFloat:
		if len(rest) < 8 {
			return Value{}, nil, fmt.Errorf("value: truncated float")
		}
		u := binary.BigEndian.Uint64(rest[:8])
		var bits uint64
		if u&(1<<63) != 0 {
			bits = u &^ (1 << 63)
		} else {
			bits = ^u
		}
		return Float(math.Float64frombits(bits)), rest[8:], nil
	case tagString:
		s, tail, err := decodeOrderedBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return String(string(s)), tail, nil
	case tagBytes:
		b, tail, err := decodeOrderedBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Bytes(b), tail, nil
	case tagUUID:
		if len(rest) < 16 {
			return Value{}, nil, fmt.Errorf("value: truncated uuid")
		}
		var u [16]byte
		copy(u[:], rest[:16])
		return UUID(u), rest[16:], nil
	case tagRegex:
		s, tail, err := decodeOrderedBytes(rest)
		if err != nil {
			return Value{}, nil, err
		}
		return Value{kind: KindRegex, s: string(s)}, tail, nil
	case tagListOpen, tagSetOpen:
		items, tail, err := decodeColl(rest)
		if err != nil {
			return Value{}, nil, err
		}
		if tag == tagSetOpen {
			return Set(items), tail, nil
		}
		return List(items), tail, nil
	case tagVector:
		var fs []float64
		cur := rest
		for {
			if len(cur) == 0 {
				return Value{}, nil, fmt.Errorf("value: unterminated vector")
			}
			marker := cur[0]
			cur = cur[1:]
			if marker == collTerminate {
				break
			}
			if marker != collContinue {
				return Value{}, nil, fmt.Errorf("value: invalid vector element marker %d", marker)
			}
			if len(cur) < 8 {
				return Value{}, nil, fmt.Errorf("value: truncated vector element")
			}
			u := binary.BigEndian.Uint64(cur[:8])
			var bits uint64
			if u&(1<<63) != 0 {
				bits = u &^ (1 << 63)
			} else {
				bits = ^u
			}
			fs = append(fs, math.Float64frombits(bits))
			cur = cur[8:]
		}
		return Vector(fs), cur, nil
	case tagBottom:
		return Bottom, rest, nil
	default:
		return Value{}, nil, fmt.Errorf("value: unknown key tag %d", tag)
	}
}

// decodeColl is the inverse of appendColl.
func decodeColl(buf []byte) ([]Value, []byte, error) {
	var items []Value
	cur := buf
	for {
		if len(cur) == 0 {
			return nil, nil, fmt.Errorf("value: unterminated collection")
		}
		marker := cur[0]
		cur = cur[1:]
		if marker == collTerminate {
			return items, cur, nil
		}
		if marker != collContinue {
			return nil, nil, fmt.Errorf("value: invalid collection element marker %d", marker)
		}
		var v Value
		var err error
		v, cur, err = decodeValue(cur)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, v)
	}
}

// decodeOrderedBytes is the inverse of appendOrderedBytes.
func decodeOrderedBytes(buf []byte) ([]byte, []byte, error) {
	var out []byte
	i := 0
	for {
		if i >= len(buf) {
			return nil, nil, fmt.Errorf("value: unterminated byte string")
		}
		if buf[i] != byteTerminator {
			out = append(out, buf[i])
			i++
			continue
		}
		if i+1 >= len(buf) {
			return nil, nil, fmt.Errorf("value: truncated byte string escape")
		}
		switch buf[i+1] {
		case byteTerminator:
			return out, buf[i+2:], nil
		case byteEscapedZero:
			out = append(out, byteTerminator)
			i += 2
		default:
			return nil, nil, fmt.Errorf("value: invalid byte string escape %d", buf[i+1])
		}
	}
}
