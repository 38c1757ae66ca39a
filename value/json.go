//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package value

import (
	"bytes"
	gojson "encoding/json"
	"io"
	"strconv"

	json "github.com/couchbase/go_json"

	"github.com/reqldb/query/errors"
)

/*
MarshalJSON emits the canonical JSON rendering. Object fields appear
in key order; binary data appears as its base64 pseudotype carrier.
*/
func (this Datum) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 1<<8))
	if err := this.WriteJSON(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (this Datum) WriteJSON(buf *bytes.Buffer) errors.Error {
	switch this.Type() {
	case NULL:
		buf.WriteString("null")
	case BOOLEAN:
		if this.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case NUMBER:
		buf.Write(strconv.AppendFloat(nil, this.n, 'g', -1, 64))
	case STRING:
		b, merr := json.Marshal(this.str.ToString())
		if merr != nil {
			return errors.NewGenericError("Error marshaling string value: %v", merr)
		}
		buf.Write(b)
	case BINARY:
		return encodeBase64Ptype(this.str).WriteJSON(buf)
	case ARRAY:
		size, err := this.ArraySize()
		if err != nil {
			return err
		}
		buf.WriteString("[")
		for i := 0; i < size; i++ {
			if i > 0 {
				buf.WriteString(",")
			}
			if err = this.uncheckedGet(i).WriteJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteString("]")
	case OBJECT:
		size, err := this.ObjectSize()
		if err != nil {
			return err
		}
		buf.WriteString("{")
		for i := 0; i < size; i++ {
			pair := this.uncheckedGetPair(i)
			if i > 0 {
				buf.WriteString(",")
			}
			b, merr := json.Marshal(pair.Name.ToString())
			if merr != nil {
				return errors.NewGenericError("Error marshaling object key: %v", merr)
			}
			buf.Write(b)
			buf.WriteString(":")
			if err = pair.Value.WriteJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteString("}")
	default:
		return errors.NewGenericError("Cannot marshal an uninitialized value.")
	}
	return nil
}

/*
ParseJSON builds a datum from a JSON document. Numbers must be finite,
strings validate as UTF-8 under version 1.14 and later, and duplicate
object keys are rejected. LITERAL carriers are legal at any depth here;
stray-literal enforcement happens on the merge/update path.
*/
func ParseJSON(b []byte, limits Limits, version Version) (Datum, errors.Error) {
	// The token decoder below replaces malformed UTF-8 instead of
	// reporting it, so the version gate runs on the raw document.
	if err := ValidateUTF8(version, string(b)); err != nil {
		return Datum{}, err
	}
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	d, err := decodeJSON(dec, limits, version)
	if err != nil {
		return Datum{}, err
	}
	if _, terr := dec.Token(); terr != io.EOF {
		return Datum{}, errors.NewGenericError("Trailing characters after JSON document.")
	}
	return d, nil
}

func decodeJSON(dec *gojson.Decoder, limits Limits, version Version) (Datum, errors.Error) {
	tok, terr := dec.Token()
	if terr != nil {
		return Datum{}, errors.NewGenericError("Invalid JSON: %v", terr)
	}
	switch tok := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return NewBoolean(tok), nil
	case gojson.Number:
		n, nerr := tok.Float64()
		if nerr != nil {
			return Datum{}, errors.NewGenericError("Non-finite number: %s", tok.String())
		}
		return NewNumber(n)
	case string:
		if err := ValidateUTF8(version, tok); err != nil {
			return Datum{}, err
		}
		return NewString(tok)
	case gojson.Delim:
		switch tok {
		case '[':
			out := NewArrayBuilder(limits)
			for dec.More() {
				elem, err := decodeJSON(dec, limits, version)
				if err != nil {
					return Datum{}, err
				}
				if err = out.Add(elem); err != nil {
					return Datum{}, err
				}
			}
			if _, terr = dec.Token(); terr != nil {
				return Datum{}, errors.NewGenericError("Invalid JSON: %v", terr)
			}
			return out.ToDatum(), nil
		case '{':
			builder := NewObjectBuilder()
			for dec.More() {
				keyTok, terr := dec.Token()
				if terr != nil {
					return Datum{}, errors.NewGenericError("Invalid JSON: %v", terr)
				}
				key, ok := keyTok.(string)
				if !ok {
					return Datum{}, errors.NewGenericError("Invalid JSON object key %v.", keyTok)
				}
				if err := ValidateUTF8(version, key); err != nil {
					return Datum{}, err
				}
				val, err := decodeJSON(dec, limits, version)
				if err != nil {
					return Datum{}, err
				}
				dup, err := builder.Add(key, val)
				if err != nil {
					return Datum{}, err
				}
				if dup {
					return Datum{}, errors.NewGenericError("Duplicate key `%s` in JSON.", key)
				}
			}
			if _, terr = dec.Token(); terr != nil {
				return Datum{}, errors.NewGenericError("Invalid JSON: %v", terr)
			}
			return builder.ToDatum([]string{LITERAL_TYPE})
		}
	}
	return Datum{}, errors.NewGenericError("Invalid JSON token %v.", tok)
}
