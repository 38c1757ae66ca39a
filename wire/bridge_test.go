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
	"math"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqldb/query/value"
)

func parse(t *testing.T, src string) value.Datum {
	t.Helper()
	d, err := value.ParseJSON([]byte(src), value.DefaultLimits, value.VERSION_1_16_LATEST)
	require.NoError(t, err)
	return d
}

func TestStructuralRoundTrip(t *testing.T) {
	var tests = []string{
		`null`,
		`true`,
		`-2.5`,
		`"str"`,
		`[1,[2,"x"],null]`,
		`{"a":1,"b":{"c":[true]}}`,
	}

	for _, test := range tests {
		d := parse(t, test)
		msg, err := FromDatum(d, false)
		require.NoError(t, err, test)
		back, err := ToDatum(msg, value.DefaultLimits, value.VERSION_1_16_LATEST)
		require.NoError(t, err, test)
		assert.True(t, back.Equals(d), "round trip of %s gave %s", test, back)
	}
}

func TestObjectFieldsEmittedReversed(t *testing.T) {
	d := parse(t, `{"a":1,"b":2,"c":3}`)
	msg, err := FromDatum(d, false)
	require.NoError(t, err)

	require.Len(t, msg.GetRObject(), 3)
	// Fields go out in reverse key order, so clients print them the
	// way they were written.
	assert.Equal(t, "c", msg.GetRObject()[0].GetKey())
	assert.Equal(t, "b", msg.GetRObject()[1].GetKey())
	assert.Equal(t, "a", msg.GetRObject()[2].GetKey())
}

func TestBinaryCrossesAsCarrier(t *testing.T) {
	d := value.NewBinary([]byte("hello"))
	msg, err := FromDatum(d, false)
	require.NoError(t, err)

	// On the wire it is an object...
	assert.Equal(t, Datum_R_OBJECT, msg.GetType())

	// ...and decoding sanitizes it back into the BINARY variant.
	back, err := ToDatum(msg, value.DefaultLimits, value.VERSION_1_16_LATEST)
	require.NoError(t, err)
	assert.Equal(t, value.BINARY, back.Type())
	assert.True(t, back.Equals(d))
}

func TestJSONForm(t *testing.T) {
	d := parse(t, `{"a":[1,2],"b":"x"}`)
	msg, err := FromDatum(d, true)
	require.NoError(t, err)
	assert.Equal(t, Datum_R_JSON, msg.GetType())
	assert.Equal(t, `{"a":[1,2],"b":"x"}`, msg.GetRStr())

	back, err := ToDatum(msg, value.DefaultLimits, value.VERSION_1_16_LATEST)
	require.NoError(t, err)
	assert.True(t, back.Equals(d))
}

func TestDuplicateObjectKeysRejected(t *testing.T) {
	key := "a"
	one := float64(1)
	msg := &Datum{
		Type: Datum_R_OBJECT.Enum(),
		RObject: []*Datum_AssocPair{
			{Key: &key, Val: &Datum{Type: Datum_R_NUM.Enum(), RNum: &one}},
			{Key: &key, Val: &Datum{Type: Datum_R_NUM.Enum(), RNum: &one}},
		},
	}
	_, err := ToDatum(msg, value.DefaultLimits, value.VERSION_1_16_LATEST)
	assert.Error(t, err)
}

func TestNonFiniteRejected(t *testing.T) {
	inf := math.Inf(1)
	msg := &Datum{Type: Datum_R_NUM.Enum(), RNum: &inf}
	_, err := ToDatum(msg, value.DefaultLimits, value.VERSION_1_16_LATEST)
	assert.Error(t, err)
}

func TestProtoMarshalRoundTrip(t *testing.T) {
	d := parse(t, `{"k":[1,"two",null],"m":true}`)
	msg, err := FromDatum(d, false)
	require.NoError(t, err)

	b, perr := proto.Marshal(msg)
	require.NoError(t, perr)

	var decoded Datum
	require.NoError(t, proto.Unmarshal(b, &decoded))

	back, err := ToDatum(&decoded, value.DefaultLimits, value.VERSION_1_16_LATEST)
	require.NoError(t, err)
	assert.True(t, back.Equals(d))
}
