package clustercache

import (
	"path/filepath"
	"testing"

	"github.com/typeforge/tfc/internal/cluster"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	entry := Entry{
		Holes:   []cluster.Path{{{Kind: "Right", Index: 0}}},
		Mapping: []int{0},
	}
	c.Put("Bin(*,V(price),Bin(-,L,L))", entry)

	got, ok := c.Get("Bin(*,V(price),Bin(-,L,L))")
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if got.ID == "" {
		t.Fatalf("expected Put to assign an id")
	}
	if len(got.Holes) != 1 || got.Holes[0][0].Kind != "Right" {
		t.Fatalf("unexpected holes round-trip: %#v", got.Holes)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatalf("expected a miss for an unknown signature")
	}
}

func TestNilCacheIsAlwaysAMiss(t *testing.T) {
	var c *Cache
	if _, ok := c.Get("anything"); ok {
		t.Fatalf("a nil cache must never report a hit")
	}
	c.Put("anything", Entry{}) // must not panic
}
