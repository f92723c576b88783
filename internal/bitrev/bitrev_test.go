package bitrev

import "testing"

func TestReverse32(t *testing.T) {
	cases := map[uint32]uint32{
		0x00000000: 0x00000000,
		0x00000001: 0x80000000,
		0x80000000: 0x00000001,
		0x0000000f: 0xf0000000,
	}
	for in, want := range cases {
		if got := Reverse32(in); got != want {
			t.Fatalf("Reverse32(%#x) = %#x, want %#x", in, got, want)
		}
	}
}

func TestReverse32_Involution(t *testing.T) {
	for _, v := range []uint32{1, 2, 3, 12345, 0xdeadbeef} {
		if got := Reverse32(Reverse32(v)); got != v {
			t.Fatalf("Reverse32(Reverse32(%#x)) = %#x, want %#x", v, got, v)
		}
	}
}
