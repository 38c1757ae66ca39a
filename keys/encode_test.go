//  Copyright (c) 2014 ReqlDB, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package keys

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqldb/query/value"
)

func num(t *testing.T, n float64) value.Datum {
	t.Helper()
	d, err := value.NewNumber(n)
	require.NoError(t, err)
	return d
}

func str(t *testing.T, s string) value.Datum {
	t.Helper()
	d, err := value.NewString(s)
	require.NoError(t, err)
	return d
}

func arr(elems ...value.Datum) value.Datum {
	return value.NewArrayUnchecked(elems)
}

func timeDatum(t *testing.T, epoch float64) value.Datum {
	t.Helper()
	rt, err := value.NewString(value.TIME_TYPE)
	require.NoError(t, err)
	tz, err := value.NewString("+00:00")
	require.NoError(t, err)
	d, err := value.NewObject([]value.Pair{
		{Name: value.InternString(value.REQL_TYPE_FIELD), Value: rt},
		{Name: value.InternString(value.EPOCH_TIME_FIELD), Value: num(t, epoch)},
		{Name: value.InternString(value.TIMEZONE_FIELD), Value: tz},
	}, nil)
	require.NoError(t, err)
	return d
}

func TestNumKeyOrder(t *testing.T) {
	neg, err := PrintPrimary(num(t, -1))
	require.NoError(t, err)
	pos, err := PrintPrimary(num(t, 1))
	require.NoError(t, err)

	// memcmp order: encode(-1) < encode(1).
	assert.True(t, bytes.Compare(neg, pos) < 0)

	assert.Equal(t, byte('N'), neg[0])
	assert.True(t, strings.HasPrefix(string(pos), "Nbff0000000000000#1"))
	assert.True(t, strings.HasPrefix(string(neg), "N400fffffffffffff#-1"))
}

func TestBoolAndStringKeys(t *testing.T) {
	f, err := PrintPrimary(value.FALSE_DATUM)
	require.NoError(t, err)
	assert.Equal(t, StoreKey("Bf"), f)

	tr, err := PrintPrimary(value.TRUE_DATUM)
	require.NoError(t, err)
	assert.Equal(t, StoreKey("Bt"), tr)

	s, err := PrintPrimary(str(t, "abc"))
	require.NoError(t, err)
	assert.Equal(t, StoreKey("Sabc"), s)
}

func TestBinaryKeyEscaping(t *testing.T) {
	d := value.NewBinary([]byte{0x41, 0x00, 0x01, 0x42})
	key, err := PrintPrimary(d)
	require.NoError(t, err)
	assert.Equal(t, StoreKey("PBINARY:A\x01\x01\x01\x02B"), key)
	assert.NotContains(t, string(key), "\x00")
}

func TestArrayKeyFraming(t *testing.T) {
	key, err := PrintPrimary(arr(num(t, 1), str(t, "ab")))
	require.NoError(t, err)
	assert.Equal(t, StoreKey("A"+"Nbff0000000000000#1"+"\x00"+"Sab"+"\x00"), key)
}

func TestRejectedKeyTypes(t *testing.T) {
	_, err := PrintPrimary(value.Null())
	assert.Error(t, err)

	obj, oerr := value.NewObject(nil, nil)
	require.NoError(t, oerr)
	_, err = PrintPrimary(obj)
	assert.Error(t, err)

	// Arrays reject nulls and plain objects as elements too.
	_, err = PrintPrimary(arr(value.Null()))
	assert.Error(t, err)

	// Geometry is never a key.
	geoType, _ := value.NewString(value.GEOMETRY_TYPE)
	shape, _ := value.NewString("Point")
	geo, gerr := value.NewObject([]value.Pair{
		{Name: value.InternString(value.REQL_TYPE_FIELD), Value: geoType},
		{Name: value.InternString("type"), Value: shape},
		{Name: value.InternString("coordinates"), Value: arr(num(t, 0), num(t, 0))},
	}, nil)
	require.NoError(t, gerr)
	_, err = PrintPrimary(geo)
	assert.Error(t, err)
}

func TestPrimaryKeyTooLong(t *testing.T) {
	_, err := PrintPrimary(str(t, strings.Repeat("x", MAX_PRIMARY_KEY_SIZE)))
	assert.Error(t, err)

	key, err := PrintPrimary(str(t, strings.Repeat("x", MAX_PRIMARY_KEY_SIZE-1)))
	require.NoError(t, err)
	assert.Equal(t, MAX_PRIMARY_KEY_SIZE, len(key))
}

/*
The composed secondary key for STR "abc", primary "pk" and tag 7:
value encoding, the 1.14+ NUL terminator, the primary key, the 8-byte
little-endian tag, then the two offsets.
*/
func TestComposeSecondaryLayout(t *testing.T) {
	tag := uint64(7)
	key, err := PrintSecondary(value.VERSION_1_16_LATEST, str(t, "abc"), StoreKey("pk"), &tag)
	require.NoError(t, err)

	expected := []byte{
		0x53, 0x61, 0x62, 0x63, 0x00, // "Sabc" + terminator
		0x70, 0x6b, // "pk"
		0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // tag 7, little-endian
		0x05, 0x07, // pk_off, tag_off
	}
	assert.Equal(t, expected, []byte(key))

	// 1.13 omits the terminator.
	key, err = PrintSecondary(value.VERSION_1_13, str(t, "abc"), StoreKey("pk"), &tag)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x53, 0x61, 0x62, 0x63,
		0x70, 0x6b,
		0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x04, 0x06,
	}, []byte(key))
}

func TestParseSecondary(t *testing.T) {
	tag := uint64(0xdeadbeef)
	key, err := PrintSecondary(value.VERSION_1_16_LATEST, str(t, "abc"), StoreKey("pk"), &tag)
	require.NoError(t, err)

	components, err := ParseSecondary(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("Sabc\x00"), components.Secondary)
	assert.Equal(t, []byte("pk"), components.Primary)
	require.NotNil(t, components.TagNum)
	assert.Equal(t, tag, *components.TagNum)

	// Without a tag.
	key, err = PrintSecondary(value.VERSION_1_16_LATEST, str(t, "abc"), StoreKey("pk"), nil)
	require.NoError(t, err)
	components, err = ParseSecondary(key)
	require.NoError(t, err)
	assert.Nil(t, components.TagNum)
	assert.Equal(t, []byte("pk"), components.Primary)

	primary, err := ExtractPrimary(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pk"), primary)
	secondary, err := ExtractSecondary(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("Sabc\x00"), secondary)
}

func TestSecondaryTruncation(t *testing.T) {
	long := str(t, strings.Repeat("s", 400))
	primary := StoreKey(strings.Repeat("p", 20))
	tag := uint64(1)

	key, err := PrintSecondary(value.VERSION_1_16_LATEST, long, primary, &tag)
	require.NoError(t, err)
	assert.Equal(t, MAX_KEY_SIZE, len(key))
	assert.True(t, KeyIsTruncated(key))

	components, err := ParseSecondary(key)
	require.NoError(t, err)
	assert.Equal(t, TruncSize(len(primary)), len(components.Secondary))
	assert.Equal(t, []byte(primary), components.Primary)

	short, err := PrintSecondary(value.VERSION_1_16_LATEST, str(t, "s"), primary, &tag)
	require.NoError(t, err)
	assert.False(t, KeyIsTruncated(short))
}

func TestTruncatedSecondary(t *testing.T) {
	long := str(t, strings.Repeat("s", 400))
	key, err := TruncatedSecondary(long)
	require.NoError(t, err)
	assert.Equal(t, MaxTruncSize(), len(key))

	short, err := TruncatedSecondary(str(t, "s"))
	require.NoError(t, err)
	assert.Equal(t, StoreKey("Ss"), short)
}

func TestPrimaryRoundTrip(t *testing.T) {
	var tests = []value.Datum{
		num(t, 0),
		num(t, 1),
		num(t, -1),
		num(t, 1.5),
		num(t, -123456.789),
		num(t, 1e-300),
		str(t, ""),
		str(t, "abc"),
		value.TRUE_DATUM,
		value.FALSE_DATUM,
		value.NewBinary([]byte{0x00, 0x01, 0x02}),
		arr(),
		arr(num(t, 1), str(t, "x")),
		arr(arr(num(t, 1)), num(t, 2)),
		arr(arr(), arr(arr(str(t, "deep")))),
	}

	for _, d := range tests {
		key, err := PrintPrimary(d)
		require.NoError(t, err, "encode %s", d)
		decoded, err := ParsePrimary(key)
		require.NoError(t, err, "decode %s (key %q)", d, key)
		assert.True(t, decoded.Equals(d), "round trip of %s gave %s", d, decoded)
	}
}

/*
Key byte order must agree with the comparator under the latest regime
for every pair of primary-key-encodable datums.
*/
func TestKeyOrderMatchesCompareOrder(t *testing.T) {
	var samples = []value.Datum{
		num(t, -1e100),
		num(t, -2),
		num(t, -1),
		num(t, -0.5),
		num(t, 0),
		num(t, 0.5),
		num(t, 1),
		num(t, 2),
		num(t, 10),
		num(t, 1e100),
		str(t, ""),
		str(t, "a"),
		str(t, "ab"),
		str(t, "b"),
		value.FALSE_DATUM,
		value.TRUE_DATUM,
		value.NewBinary(nil),
		value.NewBinary([]byte{0x00}),
		value.NewBinary([]byte{0x00, 0x01}),
		value.NewBinary([]byte{0x02}),
		arr(),
		arr(num(t, 1)),
		arr(num(t, 1), num(t, 2)),
		arr(num(t, 2)),
		arr(str(t, "x")),
		arr(arr(num(t, 1))),
		timeDatum(t, -100),
		timeDatum(t, 0),
		timeDatum(t, 100.5),
	}

	keys := make([]StoreKey, len(samples))
	for i, d := range samples {
		key, err := PrintPrimary(d)
		require.NoError(t, err, "encode %s", d)
		keys[i] = key
	}

	for i := range samples {
		for j := range samples {
			cmp, err := samples[i].Compare(value.VERSION_1_16_LATEST, samples[j])
			require.NoError(t, err, "compare %s vs %s", samples[i], samples[j])
			assert.Equal(t, sign(cmp), sign(keys[i].Compare(keys[j])),
				"cmp(%s, %s) = %d but byte_cmp(%q, %q) = %d",
				samples[i], samples[j], cmp, keys[i], keys[j], keys[i].Compare(keys[j]))
		}
	}
}

func sign(i int) int {
	if i < 0 {
		return -1
	} else if i > 0 {
		return 1
	}
	return 0
}
