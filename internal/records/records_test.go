package records

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaterre/GEMS-PARM-01/internal/check"
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
	"github.com/malaterre/GEMS-PARM-01/internal/testutil"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

var acq = testutil.Acquisition{
	Serial: "A1B2C3",
	Date:   "20010908",
	Flag:   "Y",
	Time:   "01:46:40",
	Status: "DONE",
}

func mustResolve(t *testing.T, length int64) variant.Descriptor {
	t.Helper()
	d, err := variant.Resolve(length)
	require.NoError(t, err)
	return d
}

func decode(t *testing.T, data []byte, d variant.Descriptor) (*File, error) {
	t.Helper()
	return Decode(cursor.FromBytes(data), d)
}

func TestDecodeHeaderOnly(t *testing.T) {
	d := mustResolve(t, 2428)
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)
	require.Len(t, data, 2428)
	require.Equal(t, byte(0x00), data[0])

	f, err := decode(t, data, d)
	require.NoError(t, err)
	assert.Equal(t, "2428", f.Variant)
	assert.Equal(t, cursor.LittleEndian, f.Order)
	assert.Equal(t, variant.StatusHeaderOnly, f.Status)
	assert.Empty(t, f.Groups)
	assert.Equal(t, [4]uint32{1430323200, 44, 131072, 44}, f.Header.Unk1)
	assert.Equal(t, uint32(0x10000), f.Header.Unk2[1])
	assert.Equal(t, uint32(2048), f.Header.Unk2[3])
	assert.Equal(t, uint32(8), f.Header.Unk3[2])
	assert.Equal(t, f.Header.Unk4, f.Header.Unk5)
	assert.Equal(t, Span{Offset: 96, Length: 2332}, f.Unparsed)
}

func TestDecodeHeaderInvariantStopsDecode(t *testing.T) {
	d := mustResolve(t, 2428)
	h := testutil.ValidHeader(d)
	h.Unk2[3] = 9999
	data := testutil.NewBuilder(cursor.LittleEndian).Header(h).PadTo(2428).Bytes()

	_, err := decode(t, data, d)
	require.ErrorIs(t, err, check.ErrInvariantViolation)
	var v *check.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "unk2[3]", v.Field)
	assert.Equal(t, uint32(2048), v.Expected)
	assert.Equal(t, uint32(9999), v.Actual)
}

func TestDecodeTrailerMarker(t *testing.T) {
	d := mustResolve(t, 2420)
	build := func(marker uint32) []byte {
		return testutil.NewBuilder(cursor.BigEndian).
			Header(testutil.ValidHeader(d)).
			Zeros(2320).
			Words(marker).
			Bytes()
	}
	for _, marker := range []uint32{131072, 524288} {
		f, err := decode(t, build(marker), d)
		require.NoError(t, err, "marker %d", marker)
		trailer, ok := f.Group("trailer")
		require.True(t, ok)
		assert.Equal(t, []uint32{marker}, trailer.Words)
		assert.Equal(t, int64(2416), trailer.Offset)
		assert.Equal(t, Span{Offset: 2420}, f.Unparsed)
		body, ok := f.Group("body")
		require.True(t, ok)
		assert.Len(t, body.Raw, 2320)
	}
	for _, marker := range []uint32{0, 1, 131073, 262144} {
		_, err := decode(t, build(marker), d)
		require.ErrorIs(t, err, check.ErrInvariantViolation, "marker %d", marker)
		var v *check.Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, "trailer", v.Field)
		assert.Equal(t, int64(2416), v.Offset)
		assert.Equal(t, marker, v.Actual)
	}
}

func TestDecodeByteOrderPerVariant(t *testing.T) {
	tests := []struct {
		length  int64
		allowed []cursor.ByteOrder
	}{
		{length: 2420, allowed: []cursor.ByteOrder{cursor.BigEndian}},
		{length: 2428, allowed: []cursor.ByteOrder{cursor.LittleEndian}},
		{length: 2432, allowed: []cursor.ByteOrder{cursor.LittleEndian}},
		{length: 2436, allowed: []cursor.ByteOrder{cursor.LittleEndian}},
		{length: 3600, allowed: []cursor.ByteOrder{cursor.LittleEndian}},
		{length: 5648, allowed: []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian}},
		{length: 7336, allowed: []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian}},
		{length: 7480, allowed: []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian}},
	}
	for _, tt := range tests {
		d := mustResolve(t, tt.length)
		for _, order := range []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian} {
			f, err := decode(t, testutil.ValidFile(d, order, acq), d)
			if slices.Contains(tt.allowed, order) {
				require.NoError(t, err, "%d %s", tt.length, order)
				assert.Equal(t, order, f.Order)
				continue
			}
			require.ErrorIs(t, err, check.ErrInvariantViolation, "%d %s", tt.length, order)
			var v *check.Violation
			require.True(t, errors.As(err, &v))
			assert.Equal(t, "byte_order", v.Field)
			assert.Equal(t, int64(0), v.Offset)
			assert.Equal(t, order.String(), v.Actual)
		}
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	d := mustResolve(t, 2420)
	data := testutil.NewBuilder(cursor.BigEndian).Header(testutil.ValidHeader(d)).Zeros(1000).Bytes()
	_, err := decode(t, data, d)
	require.ErrorIs(t, err, cursor.ErrTruncatedInput)
	var te *cursor.TruncatedError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, int64(96), te.Offset)
	assert.Equal(t, 2320, te.Need)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	d := mustResolve(t, 2428)
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)[:40]
	_, err := decode(t, data, d)
	require.ErrorIs(t, err, cursor.ErrTruncatedInput)
}

func TestDecodeTrailingBytesOnCompleteLayout(t *testing.T) {
	d := mustResolve(t, 2420)
	data := testutil.NewBuilder(cursor.BigEndian).
		Header(testutil.ValidHeader(d)).
		Zeros(2320).
		Words(131072).
		Zeros(8).
		Bytes()
	_, err := decode(t, data, d)
	require.ErrorIs(t, err, ErrLengthMismatch)
	var lm *LengthMismatchError
	require.True(t, errors.As(err, &lm))
	assert.Equal(t, int64(2420), lm.Expected)
	assert.Equal(t, int64(2428), lm.Actual)
}

func TestDecodeLayoutShorterThanExpected(t *testing.T) {
	d := variant.Descriptor{
		Name:           "short",
		Length:         200,
		Constants:      mustResolve(t, 2428).Constants,
		Group6:         header.IntegerLayout,
		Status:         variant.StatusComplete,
		Groups:         []variant.GroupSpec{variant.Padding("pad", 4)},
		ExpectedLength: 200,
	}
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)
	_, err := decode(t, data, d)
	var lm *LengthMismatchError
	require.True(t, errors.As(err, &lm))
	assert.Equal(t, int64(200), lm.Expected)
	assert.Equal(t, int64(100), lm.Actual)
}

func TestDecodeAcquisitionRecord(t *testing.T) {
	for _, order := range []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian} {
		order := order
		t.Run(order.String(), func(t *testing.T) {
			d := testutil.AcquisitionLayout(mustResolve(t, 5648))
			f, err := decode(t, testutil.ValidFile(d, order, acq), d)
			require.NoError(t, err)
			assert.Equal(t, order, f.Order)
			assert.Equal(t, variant.StatusPartial, f.Status)

			unk7, ok := f.Group("unk7")
			require.True(t, ok)
			assert.Equal(t, f.Header.Unk4[:], unk7.Words)

			text, ok := f.Group("acquisition")
			require.True(t, ok)
			assert.Equal(t, int64(512), text.Offset)
			assert.Equal(t, []TextValue{
				{Name: "serial", Offset: 512, Value: "A1B2C3"},
				{Name: "date", Offset: 518, Value: "20010908"},
				{Name: "flag", Offset: 526, Value: "Y"},
				{Name: "time", Offset: 528, Value: "01:46:40"},
				{Name: "status", Offset: 536, Value: "DONE"},
			}, text.Text)
			assert.Equal(t, Span{Offset: 548, Length: 5100}, f.Unparsed)
		})
	}
}

func TestDecodeTextTrimsNulPadding(t *testing.T) {
	d := testutil.AcquisitionLayout(mustResolve(t, 7336))
	data := testutil.ValidFile(d, cursor.LittleEndian, testutil.Acquisition{})
	copy(data[536:546], "OK\x00\x00\x00\x00\x00\x00\x00\x00")
	f, err := decode(t, data, d)
	require.NoError(t, err)
	text, _ := f.Group("acquisition")
	assert.Equal(t, "OK", text.Text[4].Value)
	assert.Equal(t, "", text.Text[0].Value)
}

func TestDecodeTextRejectsControlBytes(t *testing.T) {
	d := testutil.AcquisitionLayout(mustResolve(t, 5648))
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)
	data[520] = 0x1B
	_, err := decode(t, data, d)
	var v *check.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "acquisition.date", v.Field)
	assert.Equal(t, int64(520), v.Offset)
}

func TestDecodePaddingNotZero(t *testing.T) {
	d := testutil.AcquisitionLayout(mustResolve(t, 5648))
	for _, at := range []int{112, 300, 511, 546, 547} {
		data := testutil.ValidFile(d, cursor.LittleEndian, acq)
		data[at] = 0xFF
		_, err := decode(t, data, d)
		require.ErrorIs(t, err, check.ErrPaddingNotZero, "offset %d", at)
		var pe *check.PaddingError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, int64(at), pe.Offset)
	}
}

func TestDecodeReembeddedVectorMismatch(t *testing.T) {
	d := testutil.AcquisitionLayout(mustResolve(t, 5648))
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)
	data[100]++
	_, err := decode(t, data, d)
	var v *check.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "unk7", v.Field)
	assert.Equal(t, "unk4", v.Against)
	assert.Equal(t, int64(96), v.Offset)
}

func TestDecodeLargeVariantsLeaveBodyUnparsed(t *testing.T) {
	for _, length := range []int64{5648, 7336} {
		d := mustResolve(t, length)
		data := testutil.NewBuilder(cursor.LittleEndian).Header(testutil.ValidHeader(d)).Bytes()
		for i := len(data); i < int(length); i++ {
			data = append(data, byte(i*7+3))
		}
		f, err := decode(t, data, d)
		require.NoError(t, err, "length %d", length)
		assert.Equal(t, variant.StatusPartial, f.Status)
		assert.Empty(t, f.Groups)
		assert.Equal(t, Span{Offset: 96, Length: length - 96}, f.Unparsed)
		assert.Equal(t, header.FloatLayout, f.Header.Layout)
	}
}

func TestDecodeConstantVector(t *testing.T) {
	d := variant.Descriptor{
		Name:      "constant",
		Length:    120,
		Constants: mustResolve(t, 2428).Constants,
		Group6:    header.IntegerLayout,
		Status:    variant.StatusHeaderOnly,
		Groups: []variant.GroupSpec{
			variant.Padding("pad", 4),
			variant.Vector("version", 3, variant.Check{Kind: variant.CheckConstant, Want: []uint32{1, 0, 7}}),
		},
	}
	for _, order := range []cursor.ByteOrder{cursor.LittleEndian, cursor.BigEndian} {
		order := order
		build := func(words ...uint32) []byte {
			return testutil.NewBuilder(order).Header(testutil.ValidHeader(d)).Zeros(4).Words(words...).PadTo(120).Bytes()
		}
		f, err := decode(t, build(1, 0, 7), d)
		require.NoError(t, err, order.String())
		version, ok := f.Group("version")
		require.True(t, ok)
		assert.Equal(t, []uint32{1, 0, 7}, version.Words)
		assert.Equal(t, int64(100), version.Offset)
		assert.Equal(t, Span{Offset: 112, Length: 8}, f.Unparsed)

		_, err = decode(t, build(1, 0, 8), d)
		require.ErrorIs(t, err, check.ErrInvariantViolation, order.String())
		var v *check.Violation
		require.True(t, errors.As(err, &v))
		assert.Equal(t, "version", v.Field)
		assert.Equal(t, int64(100), v.Offset)
		assert.Equal(t, []uint32{1, 0, 7}, v.Expected)
		assert.Equal(t, []uint32{1, 0, 8}, v.Actual)
	}
}

func TestDecodePartialVariant(t *testing.T) {
	d := mustResolve(t, 7480)
	f, err := decode(t, testutil.ValidFile(d, cursor.BigEndian, acq), d)
	require.NoError(t, err)
	assert.Equal(t, variant.StatusPartial, f.Status)
	assert.Empty(t, f.Groups)
	assert.Equal(t, Span{Offset: 96, Length: 7384}, f.Unparsed)
	assert.Equal(t, header.FloatLayout, f.Header.Layout)

	// A short-variant header does not pass as the long variant.
	short := testutil.ValidHeader(mustResolve(t, 2428))
	data := testutil.NewBuilder(cursor.BigEndian).Header(short).PadTo(7480).Bytes()
	_, err = decode(t, data, d)
	var v *check.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "unk1", v.Field)
}

func TestDecodeMalformedLead(t *testing.T) {
	d := mustResolve(t, 2428)
	data := testutil.ValidFile(d, cursor.LittleEndian, acq)
	data[0] = 0x01
	_, err := decode(t, data, d)
	require.ErrorIs(t, err, cursor.ErrMalformedHeader)
}

func TestDecodeOneOfMultiWord(t *testing.T) {
	d := variant.Descriptor{
		Name:      "multi",
		Length:    104,
		Constants: mustResolve(t, 2428).Constants,
		Group6:    header.IntegerLayout,
		Status:    variant.StatusHeaderOnly,
		Groups: []variant.GroupSpec{
			variant.Vector("markers", 2, variant.Check{Kind: variant.CheckOneOf, Candidates: []uint32{1, 2}}),
		},
	}
	data := testutil.NewBuilder(cursor.LittleEndian).Header(testutil.ValidHeader(d)).Words(2, 3).Bytes()
	_, err := decode(t, data, d)
	var v *check.Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "markers[1]", v.Field)
	assert.Equal(t, int64(100), v.Offset)
}
