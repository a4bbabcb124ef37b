package bitset

import "testing"

func TestSetAndTest(t *testing.T) {
	s := New(128)
	if s.Test(0) || s.Test(127) {
		t.Fatal("new bitset should be all clear")
	}
	s.Set(0)
	s.Set(63)
	s.Set(64)
	s.Set(127)
	for _, i := range []int{0, 63, 64, 127} {
		if !s.Test(i) {
			t.Errorf("bit %d should be set", i)
		}
	}
	for _, i := range []int{1, 62, 65, 126} {
		if s.Test(i) {
			t.Errorf("bit %d should be clear", i)
		}
	}
}

func TestSetRange(t *testing.T) {
	s := New(64)
	s.SetRange(60, 64)
	for i := 0; i < 60; i++ {
		if s.Test(i) {
			t.Fatalf("bit %d should be clear before range", i)
		}
	}
	for i := 60; i < 64; i++ {
		if !s.Test(i) {
			t.Fatalf("bit %d should be set by range", i)
		}
	}
}

func TestClear(t *testing.T) {
	s := New(64)
	s.SetRange(0, 64)
	s.Clear()
	for i := 0; i < 64; i++ {
		if s.Test(i) {
			t.Fatalf("bit %d should be clear after Clear", i)
		}
	}
	if s.Len() != 64 {
		t.Fatalf("Len changed after Clear: got %d", s.Len())
	}
}

func TestClone(t *testing.T) {
	s := New(64)
	s.Set(5)
	clone := s.Clone()
	if !clone.Test(5) {
		t.Fatal("clone should carry over set bits")
	}
	s.Set(10)
	if clone.Test(10) {
		t.Fatal("mutating the original after Clone should not affect the clone")
	}
	clone.Set(20)
	if s.Test(20) {
		t.Fatal("mutating the clone should not affect the original")
	}
}

func TestLenSpansMultipleWords(t *testing.T) {
	s := New(200)
	if s.Len() != 200 {
		t.Fatalf("Len() = %d, want 200", s.Len())
	}
	s.Set(199)
	if !s.Test(199) {
		t.Fatal("bit 199 should be set")
	}
}
