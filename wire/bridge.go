//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package wire

import (
	"github.com/reqldb/query/errors"
	"github.com/reqldb/query/value"
)

/*
FromDatum renders a datum as a wire message. With useJSON the whole
value ships as one R_JSON string; otherwise the tagged tree is emitted
structurally, with binary data as its base64 carrier object.
*/
func FromDatum(d value.Datum, useJSON bool) (*Datum, errors.Error) {
	if useJSON {
		b, err := d.MarshalJSON()
		if err != nil {
			return nil, errors.NewGenericError("Cannot render value as JSON: %v", err)
		}
		s := string(b)
		return &Datum{Type: Datum_R_JSON.Enum(), RStr: &s}, nil
	}
	return fromDatumStructural(d)
}

func fromDatumStructural(d value.Datum) (*Datum, errors.Error) {
	switch d.Type() {
	case value.NULL:
		return &Datum{Type: Datum_R_NULL.Enum()}, nil
	case value.BOOLEAN:
		b, _ := d.AsBool()
		return &Datum{Type: Datum_R_BOOL.Enum(), RBool: &b}, nil
	case value.NUMBER:
		n, _ := d.AsNumber()
		return &Datum{Type: Datum_R_NUM.Enum(), RNum: &n}, nil
	case value.STRING:
		str, _ := d.AsString()
		s := str.ToString()
		return &Datum{Type: Datum_R_STR.Enum(), RStr: &s}, nil
	case value.BINARY:
		// The carrier object crosses the wire; the BINARY variant
		// only exists in memory.
		carrier, err := value.BinaryCarrier(d)
		if err != nil {
			return nil, err
		}
		return fromDatumStructural(carrier)
	case value.ARRAY:
		size, err := d.ArraySize()
		if err != nil {
			return nil, err
		}
		rv := &Datum{Type: Datum_R_ARRAY.Enum(), RArray: make([]*Datum, 0, size)}
		for i := 0; i < size; i++ {
			elem, err := d.Get(i, value.THROW)
			if err != nil {
				return nil, err
			}
			wireElem, err := fromDatumStructural(elem)
			if err != nil {
				return nil, err
			}
			rv.RArray = append(rv.RArray, wireElem)
		}
		return rv, nil
	case value.OBJECT:
		size, err := d.ObjectSize()
		if err != nil {
			return nil, err
		}
		rv := &Datum{Type: Datum_R_OBJECT.Enum(), RObject: make([]*Datum_AssocPair, 0, size)}
		// Reverse order, so that things print the way we expect.
		for i := size; i > 0; i-- {
			pair, err := d.GetPair(i - 1)
			if err != nil {
				return nil, err
			}
			wireVal, err := fromDatumStructural(pair.Value)
			if err != nil {
				return nil, err
			}
			key := pair.Name.ToString()
			rv.RObject = append(rv.RObject, &Datum_AssocPair{Key: &key, Val: wireVal})
		}
		return rv, nil
	}
	return nil, errors.NewGenericError("Cannot send an uninitialized value.")
}

/*
ToDatum decodes a wire message. R_JSON routes through the JSON bridge;
the structural form validates strings per the version, rejects
duplicate object keys, and sanitizes pseudotype carriers with LITERAL
allowed.
*/
func ToDatum(d *Datum, limits value.Limits, version value.Version) (value.Datum, errors.Error) {
	switch d.GetType() {
	case Datum_R_NULL:
		return value.Null(), nil
	case Datum_R_BOOL:
		return value.NewBoolean(d.GetRBool()), nil
	case Datum_R_NUM:
		return value.NewNumber(d.GetRNum())
	case Datum_R_STR:
		if err := value.ValidateUTF8(version, d.GetRStr()); err != nil {
			return value.Datum{}, err
		}
		return value.NewString(d.GetRStr())
	case Datum_R_JSON:
		if err := value.ValidateUTF8(version, d.GetRStr()); err != nil {
			return value.Datum{}, err
		}
		return value.ParseJSON([]byte(d.GetRStr()), limits, version)
	case Datum_R_ARRAY:
		out := value.NewArrayBuilder(limits)
		out.Reserve(len(d.GetRArray()))
		for _, elem := range d.GetRArray() {
			ed, err := ToDatum(elem, limits, version)
			if err != nil {
				return value.Datum{}, err
			}
			if err = out.Add(ed); err != nil {
				return value.Datum{}, err
			}
		}
		return out.ToDatum(), nil
	case Datum_R_OBJECT:
		builder := value.NewObjectBuilder()
		for _, ap := range d.GetRObject() {
			if err := value.ValidateUTF8(version, ap.GetKey()); err != nil {
				return value.Datum{}, err
			}
			val, err := ToDatum(ap.GetVal(), limits, version)
			if err != nil {
				return value.Datum{}, err
			}
			dup, err := builder.Add(ap.GetKey(), val)
			if err != nil {
				return value.Datum{}, err
			}
			if dup {
				return value.Datum{}, errors.NewGenericError("Duplicate key %s in object.", ap.GetKey())
			}
		}
		return builder.ToDatum([]string{value.LITERAL_TYPE})
	}
	return value.Datum{}, errors.NewGenericError("Unrecognized datum type %d.", int32(d.GetType()))
}
