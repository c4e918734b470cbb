package ir

import "testing"

func TestIntegerWidths(t *testing.T) {
	valid := []uint16{1, 8, 16, 32, 64, 128, 160, 256}
	for _, bits := range valid {
		if !Integer(bits).Valid() {
			t.Errorf("u%d should be valid", bits)
		}
	}
	invalid := []uint16{0, 7, 24, 48, 96, 255, 512}
	for _, bits := range invalid {
		if Integer(bits).Valid() {
			t.Errorf("u%d should not be valid", bits)
		}
	}
}

func TestAddressIsU160(t *testing.T) {
	if Address() != Integer(160) {
		t.Errorf("address should be structurally identical to u160")
	}
	if got := Address().String(); got != "u160" {
		t.Errorf("address renders as %q, want u160", got)
	}
}

func TestBytesSugar(t *testing.T) {
	if Bytes(32) != Integer(256) {
		t.Errorf("bytes32 should be u256")
	}
	if Bytes(4) != Integer(32) {
		t.Errorf("bytes4 should be u32")
	}
	if Bytes(3).Valid() {
		t.Errorf("bytes3 maps to u24, which has no valid width")
	}
}

func TestPointerSpaces(t *testing.T) {
	cases := []struct {
		space AddressSpace
		want  string
		mut   bool
	}{
		{SpaceTransient, "ptr<transient>", true},
		{SpaceCalldata, "ptr<calldata>", false},
		{SpaceCode, "ptr<code>", false},
	}
	for _, tc := range cases {
		p := Pointer(tc.space)
		if !p.Valid() || !p.IsPtr() {
			t.Errorf("%s should be a valid pointer", tc.want)
		}
		if got := p.String(); got != tc.want {
			t.Errorf("pointer renders as %q, want %q", got, tc.want)
		}
		if tc.space.Mutable() != tc.mut {
			t.Errorf("%s mutability = %v, want %v", tc.space, tc.space.Mutable(), tc.mut)
		}
	}
}

func TestSizeBytes(t *testing.T) {
	cases := []struct {
		ty   Type
		want int
	}{
		{Boolean(), 1},
		{Integer(1), 1},
		{Integer(8), 1},
		{Integer(160), 20},
		{Integer(256), 32},
		{Pointer(SpaceTransient), 32},
		{Type{}, 0},
	}
	for _, tc := range cases {
		if got := tc.ty.SizeBytes(); got != tc.want {
			t.Errorf("SizeBytes(%s) = %d, want %d", tc.ty, got, tc.want)
		}
	}
}

func TestInvalidTypeIsNotSized(t *testing.T) {
	var zero Type
	if zero.Valid() {
		t.Error("zero type should be invalid")
	}
	if zero.Sized() {
		t.Error("zero type should not be sized")
	}
}
