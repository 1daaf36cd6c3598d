package icc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/klauspost/compress/zlib"

	"qiv/internal/pixfmt"
)

type tag struct {
	sig  string
	data []byte
}

func fixed(v float64) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(v*65536+0.5)))
	return b
}

func xyzTag(x, y, z float64) []byte {
	b := append([]byte("XYZ \x00\x00\x00\x00"), fixed(x)...)
	b = append(b, fixed(y)...)
	return append(b, fixed(z)...)
}

func gammaTag(g float64) []byte {
	b := []byte("curv\x00\x00\x00\x00\x00\x00\x00\x01")
	return binary.BigEndian.AppendUint16(b, uint16(g*256))
}

func srgbParaTag() []byte {
	b := []byte("para\x00\x00\x00\x00\x00\x03\x00\x00")
	for _, v := range []float64{2.4, 1 / 1.055, 0.055 / 1.055, 1 / 12.92, 0.04045} {
		b = append(b, fixed(v)...)
	}
	return b
}

func paraTag(fn uint16, params ...float64) []byte {
	b := binary.BigEndian.AppendUint16([]byte("para\x00\x00\x00\x00"), fn)
	b = append(b, 0, 0)
	for _, v := range params {
		b = append(b, fixed(v)...)
	}
	return b
}

func descTag(s string) []byte {
	b := []byte("desc\x00\x00\x00\x00")
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)+1))
	return append(append(b, s...), 0)
}

// buildProfile assembles a minimal profile with the given tags.
func buildProfile(colorSpace string, tags []tag) []byte {
	header := make([]byte, headerSize)
	copy(header[12:], "mntr")
	copy(header[16:], colorSpace)
	copy(header[20:], "XYZ ")
	copy(header[36:], "acsp")

	table := binary.BigEndian.AppendUint32(nil, uint32(len(tags)))
	offset := headerSize + 4 + 12*len(tags)
	var body []byte
	for _, t := range tags {
		table = append(table, t.sig...)
		table = binary.BigEndian.AppendUint32(table, uint32(offset+len(body)))
		table = binary.BigEndian.AppendUint32(table, uint32(len(t.data)))
		body = append(body, t.data...)
	}

	out := append(header, table...)
	out = append(out, body...)
	binary.BigEndian.PutUint32(out, uint32(len(out)))
	return out
}

func rgbTags(trc []byte) []tag {
	return []tag{
		{"rXYZ", xyzTag(0.4361, 0.2225, 0.0139)},
		{"gXYZ", xyzTag(0.3851, 0.7169, 0.0971)},
		{"bXYZ", xyzTag(0.1431, 0.0606, 0.7141)},
		{"rTRC", trc},
		{"gTRC", trc},
		{"bTRC", trc},
	}
}

func grayNative(v byte, order pixfmt.ByteOrder) *pixfmt.Native {
	src := pixfmt.NewSource(1, 1, 4)
	copy(src.Pix, []byte{v, v, v, 77})
	return pixfmt.Pack(src, order)
}

func TestParse(t *testing.T) {
	data := buildProfile("RGB ", append(rgbTags(gammaTag(2.2)), tag{"desc", descTag("Test RGB")}))
	p, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Description != "Test RGB" {
		t.Errorf("Description = %q", p.Description)
	}
	if p.Class != "mntr" {
		t.Errorf("Class = %q", p.Class)
	}
	if got := p.trc[0].Eval(0.5); got < 0.21 || got > 0.22 {
		t.Errorf("gamma 2.2 curve at 0.5 = %f", got)
	}
}

func TestParseErrors(t *testing.T) {
	valid := buildProfile("RGB ", rgbTags(gammaTag(1)))

	noSignature := append([]byte(nil), valid...)
	copy(noSignature[36:], "xxxx")

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", valid[:20], ErrCorrupt},
		{"missing signature", noSignature, ErrCorrupt},
		{"gray profile", buildProfile("GRAY", nil), ErrUnsupported},
		{"no curves", buildProfile("RGB ", rgbTags(gammaTag(1))[:3]), ErrUnsupported},
		{"lut profile", buildProfile("RGB ", []tag{{"A2B0", []byte("mft2\x00\x00\x00\x00")}}), ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Parse error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransformIdentity(t *testing.T) {
	p, err := Parse(buildProfile("RGB ", rgbTags(srgbParaTag())))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tr, err := NewTransform(p, SRGB())
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}

	for _, order := range []pixfmt.ByteOrder{pixfmt.LittleEndian, pixfmt.BigEndian} {
		for v := 0; v < 256; v += 5 {
			n := grayNative(byte(v), order)
			tr.Apply(n)
			c := n.NRGBAAt(0, 0)
			for _, got := range []uint8{c.R, c.G, c.B} {
				if d := int(got) - v; d < -1 || d > 1 {
					t.Fatalf("%v: value %d became %d", order, v, got)
				}
			}
			if c.A != 77 {
				t.Fatalf("%v: alpha changed to %d", order, c.A)
			}
		}
	}
}

func TestTransformLinearToSRGB(t *testing.T) {
	linear, err := Parse(buildProfile("RGB ", rgbTags(gammaTag(1))))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tr, err := NewTransform(linear, SRGB())
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}

	n := grayNative(128, pixfmt.NativeOrder())
	tr.Apply(n)
	if got := n.NRGBAAt(0, 0).G; got < 185 || got > 191 {
		t.Errorf("linear mid gray should encode near 188 in sRGB, got %d", got)
	}
}

func TestHostileCurves(t *testing.T) {
	tests := []struct {
		name    string
		trc     []byte
		wantErr bool
	}{
		{"negative gamma", paraTag(0, -1), true},
		{"zero gamma", paraTag(1, 0, 1, 0), true},
		{"zero slope", paraTag(2, 2.2, 0, 0.5, 0), true},
		{"negative base", paraTag(3, 2.4, -1, 0, 1, 0), true},
		{"root of negative", paraTag(3, 0.5, -2, 1, 1, 0), true},
		{"huge offset", paraTag(4, 1, 1, 0, 0, 0, 30000, 0), false},
		{"step at the end", paraTag(2, 2.4, -1, 1, 0), false},
		{"flat gamma", gammaTag(0), false},
		{"descending table", []byte("curv\x00\x00\x00\x00\x00\x00\x00\x02\xff\xff\x00\x00"), false},
		{"steep gamma", paraTag(0, 32767), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(buildProfile("RGB ", rgbTags(tt.trc)))
			var tr *Transform
			if err == nil {
				tr, err = NewTransform(p, SRGB())
			}
			if tt.wantErr {
				if !errors.Is(err, ErrCorrupt) {
					t.Fatalf("got %v, want ErrCorrupt", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for v := 0; v < 256; v++ {
				tr.Apply(grayNative(byte(v), pixfmt.LittleEndian))
			}
		})
	}
}

func TestApplyClampsNaN(t *testing.T) {
	tr := &Transform{m: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
	for c := range tr.in {
		for v := range tr.in[c] {
			tr.in[c][v] = math.NaN()
		}
		for i := range tr.out[c] {
			tr.out[c][i] = byte(i >> 4)
		}
	}
	n := grayNative(200, pixfmt.BigEndian)
	tr.Apply(n)
	if got := n.NRGBAAt(0, 0); got.R != 0 || got.G != 0 || got.B != 0 || got.A != 77 {
		t.Errorf("NaN input = %v, want black with alpha 77", got)
	}
}

func jpegSegment(marker byte, payload []byte) []byte {
	b := []byte{0xff, marker}
	b = binary.BigEndian.AppendUint16(b, uint16(len(payload)+2))
	return append(b, payload...)
}

func iccChunk(seq, count byte, data string) []byte {
	return append(append([]byte("ICC_PROFILE\x00"), seq, count), data...)
}

func TestExtractJPEG(t *testing.T) {
	var data []byte
	data = append(data, 0xff, 0xd8)
	data = append(data, jpegSegment(0xe0, []byte("JFIF\x00"))...)
	data = append(data, jpegSegment(0xe2, iccChunk(2, 2, "world"))...)
	data = append(data, jpegSegment(0xe2, iccChunk(1, 2, "hello "))...)
	data = append(data, jpegSegment(0xda, []byte{0, 0})...)
	data = append(data, 0x12, 0x34, 0xff, 0xd9)

	got, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("Extract = %q, want %q", got, "hello world")
	}

	missing := append([]byte{0xff, 0xd8}, jpegSegment(0xe2, iccChunk(2, 2, "world"))...)
	missing = append(missing, 0xff, 0xd9)
	if _, err := Extract(missing); !errors.Is(err, ErrCorrupt) {
		t.Errorf("missing chunk error = %v, want ErrCorrupt", err)
	}

	plain := append([]byte{0xff, 0xd8}, jpegSegment(0xe0, []byte("JFIF\x00"))...)
	if got, err := Extract(plain); got != nil || err != nil {
		t.Errorf("JPEG without profile = %q, %v", got, err)
	}
}

func pngChunk(typ string, body []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(body)))
	b = append(b, typ...)
	b = append(b, body...)
	return append(b, 0, 0, 0, 0)
}

func TestExtractPNG(t *testing.T) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write([]byte("profile bytes"))
	zw.Close()

	data := append([]byte(nil), pngSignature...)
	data = append(data, pngChunk("IHDR", make([]byte, 13))...)
	data = append(data, pngChunk("iCCP", append([]byte("name\x00\x00"), z.Bytes()...))...)
	data = append(data, pngChunk("IDAT", []byte{1, 2, 3})...)

	got, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if string(got) != "profile bytes" {
		t.Errorf("Extract = %q", got)
	}

	plain := append([]byte(nil), pngSignature...)
	plain = append(plain, pngChunk("IHDR", make([]byte, 13))...)
	plain = append(plain, pngChunk("IDAT", nil)...)
	if got, err := Extract(plain); got != nil || err != nil {
		t.Errorf("PNG without profile = %q, %v", got, err)
	}
}

func TestExtractOtherFormat(t *testing.T) {
	for _, header := range []string{"GIF89a", "BM\x00\x00", "II*\x00", "MM\x00*", ""} {
		if got, err := Extract([]byte(header)); got != nil || err != nil {
			t.Errorf("Extract(%q) = %q, %v", header, got, err)
		}
	}
}
