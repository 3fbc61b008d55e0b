package typegraph

import (
	"math/rand"
	"testing"
)

func TestOffsetExpressionOrder(t *testing.T) {
	a := NewOffsetExpression(0)
	b := NewOffsetExpression(8)
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("offset dominates the order")
	}

	withStride := NewOffsetExpression(8)
	withStride.AddStride(4, 10)
	if !b.Less(withStride) {
		t.Fatalf("shorter stride sequence orders first")
	}

	unknown := NewOffsetExpression(8)
	unknown.AddStride(4, TripCountUnknown)
	if !unknown.Less(withStride) {
		t.Fatalf("unknown trip count orders before a bounded one")
	}
	if !unknown.Equal(unknown) {
		t.Fatalf("Equal must hold for identical expressions")
	}
}

func randomOE(rng *rand.Rand) OffsetExpression {
	oe := NewOffsetExpression(int64(rng.Intn(5)) * 4)
	for levels := rng.Intn(3); levels > 0; levels-- {
		tc := int64(rng.Intn(4))
		if tc == 0 {
			tc = TripCountUnknown
		}
		oe.AddStride(int64(rng.Intn(3)+1)*4, tc)
	}
	return oe
}

func TestOffsetExpressionOrderAxioms(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 2000; i++ {
		a, b, c := randomOE(rng), randomOE(rng), randomOE(rng)
		if a.Less(a) {
			t.Fatalf("irreflexivity violated for %v", a)
		}
		if a.Less(b) && b.Less(a) {
			t.Fatalf("antisymmetry violated for %v, %v", a, b)
		}
		if a.Less(b) && b.Less(c) && !a.Less(c) {
			t.Fatalf("transitivity violated for %v, %v, %v", a, b, c)
		}
		if !a.Less(b) && !b.Less(a) && !a.Equal(b) {
			t.Fatalf("incomparable distinct expressions %v, %v", a, b)
		}
	}
}

func TestOffsetExpressionString(t *testing.T) {
	oe := NewOffsetExpression(16)
	oe.AddStride(8, 4)
	oe.AddStride(2, TripCountUnknown)
	if got, want := oe.String(), "+16[8 x 4][2 x ?]"; got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestInstanceTagRejectsRaggedGeometry(t *testing.T) {
	oe := NewOffsetExpression(0)
	oe.Strides = append(oe.Strides, 8)
	mustPanic(t, "ragged stride/trip-count sequences", func() {
		InstanceTag(oe)
	})
}
