package simple

import (
	"context"
	"testing"
)

func TestGeneratorIsSequential(t *testing.T) {
	g := New("BK")

	for _, want := range []string{"BK1", "BK2", "BK3"} {
		got, err := g.GetID(context.Background())
		if err != nil {
			t.Fatal(err)
		}

		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
