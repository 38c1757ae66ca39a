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
	"encoding/base64"
	"regexp"

	"github.com/reqldb/query/errors"
)

/*
An object carrying a string field named REQL_TYPE_FIELD is a
pseudotype: an ordinary object on the wire, interpreted specially in
memory. The registry recognizes TIME, GEOMETRY, LITERAL and BINARY;
anything else fails construction unless explicitly allowlisted.
*/
const REQL_TYPE_FIELD = "$reql_type$"

const (
	TIME_TYPE     = "TIME"
	GEOMETRY_TYPE = "GEOMETRY"
	LITERAL_TYPE  = "LITERAL"
	BINARY_TYPE   = "BINARY"
)

const (
	VALUE_FIELD      = "value"
	DATA_FIELD       = "data"
	EPOCH_TIME_FIELD = "epoch_time"
	TIMEZONE_FIELD   = "timezone"
)

// IsPtype reports whether this datum is a pseudotype: the BINARY
// variant, or an object with a $reql_type$ field.
func (this Datum) IsPtype() bool {
	if this.Type() == BINARY {
		return true
	}
	if this.Type() != OBJECT {
		return false
	}
	f, err := this.GetField(REQL_TYPE_FIELD, NOTHROW)
	return err == nil && f.Has()
}

func (this Datum) IsPtypeOf(reqlType string) bool {
	if reqlType == "" {
		return this.IsPtype()
	}
	if !this.IsPtype() {
		return false
	}
	rt, err := this.ReqlType()
	return err == nil && rt == reqlType
}

/*
ReqlType returns "BINARY" for the BINARY variant, and the $reql_type$
field otherwise. It fails if that field is not a string.
*/
func (this Datum) ReqlType() (string, errors.Error) {
	if this.Type() == BINARY {
		return BINARY_TYPE, nil
	}
	maybeReqlType, err := this.GetField(REQL_TYPE_FIELD, NOTHROW)
	if err != nil {
		return "", err
	}
	sanityCheck(maybeReqlType.Has(), "pseudotype object without a %s field", REQL_TYPE_FIELD)
	if maybeReqlType.Type() != STRING {
		return "", errors.NewGenericError("Error: Field `%s` must be a string (got `%s` of type %s):\n%s",
			REQL_TYPE_FIELD, maybeReqlType.TruncPrint(), maybeReqlType.TypeName(), this.TruncPrint())
	}
	str, _ := maybeReqlType.AsString()
	return str.ToString(), nil
}

// pseudoComparesAsObject: geometry compares by its object
// representation. That is not especially meaningful, but works for
// indexing etc.
func (this Datum) pseudoComparesAsObject() bool {
	if this.Type() != OBJECT {
		return false
	}
	rt, err := this.ReqlType()
	return err == nil && rt == GEOMETRY_TYPE
}

func (this Datum) pseudoCompare(version Version, rhs Datum) (int, errors.Error) {
	sanityCheck(this.IsPtype(), "pseudotype compare on a plain value")
	if this.Type() == BINARY {
		lhsData, err := this.AsBinary()
		if err != nil {
			return 0, err
		}
		rhsData, err := rhs.AsBinary()
		if err != nil {
			return 0, err
		}
		return lhsData.Compare(rhsData), nil
	}
	if rt, err := this.ReqlType(); err == nil && rt == TIME_TYPE {
		return timeCompare(version, this, rhs)
	}

	return 0, errors.NewGenericError("Incomparable type %s.", this.TypeName())
}

/*
maybeSanitizePtype validates and normalizes a freshly built object that
carries a $reql_type$ field. BINARY carriers are decoded and replaced
by the BINARY variant; LITERAL is only legal when allowlisted by the
caller (the top level of merge and update).
*/
func (this *Datum) maybeSanitizePtype(allowedPtypes []string) errors.Error {
	if !this.IsPtype() || this.Type() == BINARY {
		return nil
	}
	s, err := this.ReqlType()
	if err != nil {
		return err
	}
	switch s {
	case TIME_TYPE:
		return this.sanitizeTime()
	case LITERAL_TYPE:
		if !containsStr(allowedPtypes, LITERAL_TYPE) {
			return errors.NewGenericError("Stray literal keyword found: literal is only legal inside of " +
				"the object passed to merge or update and cannot nest inside other literals.")
		}
		return this.checkLiteralValid()
	case GEOMETRY_TYPE:
		// Semantic geometry validation is handled whenever a geometry
		// object is created or used. This is a syntactic check only.
		return this.sanitizeGeometry()
	case BINARY_TYPE:
		// Sanitization cannot be performed when loading from a shared
		// buffer.
		sanityCheck(this.internal == _INTERNAL_OBJECT, "sanitizing a buffer-backed binary carrier")
		data, err := this.decodeBase64Ptype()
		if err != nil {
			return err
		}
		*this = newBinaryDatum(data)
		return nil
	}
	return errors.NewGenericError("Unknown $reql_type$ `%s`.", this.TypeName())
}

var _TIMEZONE_RE = regexp.MustCompile(`^[+-][0-9]{2}:[0-9]{2}$`)

/*
A time carrier needs a finite epoch_time number and a timezone in
±HH:MM form. "Z" and the empty string normalize to "+00:00".
*/
func (this *Datum) sanitizeTime() errors.Error {
	epochTime, err := this.GetField(EPOCH_TIME_FIELD, NOTHROW)
	if err != nil {
		return err
	}
	if !epochTime.Has() || epochTime.Type() != NUMBER {
		return errors.NewGenericError("Invalid time object constructed (no field `%s`):\n%s",
			EPOCH_TIME_FIELD, this.TruncPrint())
	}
	tz, err := this.GetField(TIMEZONE_FIELD, NOTHROW)
	if err != nil {
		return err
	}
	if !tz.Has() {
		return errors.NewGenericError("Invalid time object constructed (no field `%s`):\n%s",
			TIMEZONE_FIELD, this.TruncPrint())
	}
	if tz.Type() != STRING {
		return errors.NewGenericError("Invalid time object constructed (field `%s` is not a string):\n%s",
			TIMEZONE_FIELD, this.TruncPrint())
	}
	tzStr, _ := tz.AsString()
	normalized, ok := normalizeTimezone(tzStr.ToString())
	if !ok {
		return errors.NewGenericError("Invalid timezone string `%s` (expected `[+-]HH:MM`).", tzStr.ToString())
	}
	if normalized != tzStr.ToString() {
		nd, err := NewString(normalized)
		if err != nil {
			return err
		}
		if err = this.ReplaceField(TIMEZONE_FIELD, nd); err != nil {
			return err
		}
	}
	return nil
}

func normalizeTimezone(tz string) (string, bool) {
	switch tz {
	case "", "Z", "UTC":
		return "+00:00", true
	}
	if !_TIMEZONE_RE.MatchString(tz) {
		return "", false
	}
	hh := (int(tz[1]-'0'))*10 + int(tz[2]-'0')
	mm := (int(tz[4]-'0'))*10 + int(tz[5]-'0')
	if hh > 24 || mm > 59 {
		return "", false
	}
	return tz, true
}

func timeCompare(version Version, lhs, rhs Datum) (int, errors.Error) {
	lhsEpoch, err := lhs.GetField(EPOCH_TIME_FIELD, THROW)
	if err != nil {
		return 0, err
	}
	rhsEpoch, err := rhs.GetField(EPOCH_TIME_FIELD, THROW)
	if err != nil {
		return 0, err
	}
	lhsNum, err := lhsEpoch.AsNumber()
	if err != nil {
		return 0, err
	}
	rhsNum, err := rhsEpoch.AsNumber()
	if err != nil {
		return 0, err
	}
	return derivedCompareFloat(lhsNum, rhsNum), nil
}

// sanitizeGeometry checks the carrier shape: a string `type` and, when
// present, an array `coordinates`.
func (this *Datum) sanitizeGeometry() errors.Error {
	geoType, err := this.GetField("type", NOTHROW)
	if err != nil {
		return err
	}
	if !geoType.Has() || geoType.Type() != STRING {
		return errors.NewGenericError("Invalid geometry object (no string field `type`):\n%s", this.TruncPrint())
	}
	coords, err := this.GetField("coordinates", NOTHROW)
	if err != nil {
		return err
	}
	if coords.Has() && coords.Type() != ARRAY {
		return errors.NewGenericError("Invalid geometry object (field `coordinates` is not an array):\n%s",
			this.TruncPrint())
	}
	return nil
}

// A literal carrier may hold at most the single extra field `value`.
func (this Datum) checkLiteralValid() errors.Error {
	size, err := this.ObjectSize()
	if err != nil {
		return err
	}
	for i := 0; i < size; i++ {
		pair := this.uncheckedGetPair(i)
		if !pair.Name.EqualStr(REQL_TYPE_FIELD) && !pair.Name.EqualStr(VALUE_FIELD) {
			return errors.NewGenericError("Invalid literal term with illegal key `%s`.", pair.Name.ToString())
		}
	}
	return nil
}

// decodeBase64Ptype pulls the base64 payload out of a BINARY carrier
// object.
func (this Datum) decodeBase64Ptype() (String, errors.Error) {
	data, err := this.GetField(DATA_FIELD, NOTHROW)
	if err != nil {
		return String{}, err
	}
	if !data.Has() || data.Type() != STRING {
		return String{}, errors.NewGenericError("Invalid binary pseudotype: lacking `%s` key.", DATA_FIELD)
	}
	str, _ := data.AsString()
	decoded, derr := base64.StdEncoding.DecodeString(str.ToString())
	if derr != nil {
		return String{}, errors.NewGenericError("Invalid base64 format for binary data: `%s`.", str.ToString())
	}
	return String{s: string(decoded)}, nil
}

// BinaryCarrier renders a BINARY datum as the base64 carrier object
// that crosses the wire and the JSON boundary.
func BinaryCarrier(d Datum) (Datum, errors.Error) {
	data, err := d.AsBinary()
	if err != nil {
		return Datum{}, err
	}
	return encodeBase64Ptype(data), nil
}

// encodeBase64Ptype renders binary data as its wire carrier object.
// The pairs are already in sorted key order.
func encodeBase64Ptype(data String) Datum {
	encoded := base64.StdEncoding.EncodeToString(data.Bytes())
	fields := []Pair{
		{Name: InternString(REQL_TYPE_FIELD), Value: Datum{internal: _INTERNAL_STRING, str: InternString(BINARY_TYPE)}},
		{Name: InternString(DATA_FIELD), Value: Datum{internal: _INTERNAL_STRING, str: InternString(encoded)}},
	}
	return Datum{internal: _INTERNAL_OBJECT, obj: &fields}
}

func containsStr(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
