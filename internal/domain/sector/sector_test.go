package sector

import "testing"

func TestValidateRejectsOutOfRangeSecurity(t *testing.T) {
	s := &Sector{SecurityLevel: 11}
	if err := s.Validate(); err == nil {
		t.Fatal("expected out-of-range security level to be rejected")
	}
	s.SecurityLevel = 0
	if err := s.Validate(); err == nil {
		t.Fatal("expected zero security level to be rejected")
	}
}

func buildChain(n int) ([]*Sector, []*WarpLink) {
	sectors := make([]*Sector, n)
	links := make([]*WarpLink, 0, n-1)
	for i := 0; i < n; i++ {
		sectors[i] = &Sector{ID: string(rune('a' + i)), SecurityLevel: 5}
	}
	for i := 0; i < n-1; i++ {
		links = append(links, &WarpLink{
			ID: string(rune('a'+i)) + "-link", FromSectorID: sectors[i].ID,
			ToSectorID: sectors[i+1].ID, Bidirectional: true, TravelCost: 1,
		})
	}
	return sectors, links
}

func TestGraphConnectedToAll(t *testing.T) {
	sectors, links := buildChain(5)
	g := NewGraph(sectors, links)
	if !g.ConnectedToAll(sectors[0].ID) {
		t.Error("expected chain graph to be fully connected")
	}
}

func TestGraphPathExists(t *testing.T) {
	sectors, links := buildChain(4)
	g := NewGraph(sectors, links)
	if !g.PathExists(sectors[0].ID, sectors[3].ID) {
		t.Error("expected path from first to last sector in chain")
	}
	if !g.PathExists(sectors[3].ID, sectors[0].ID) {
		t.Error("expected bidirectional link to allow reverse path")
	}
}

func TestGraphShortestPath(t *testing.T) {
	sectors, links := buildChain(4)
	g := NewGraph(sectors, links)
	path := g.ShortestPath(sectors[0].ID, sectors[3].ID)
	if len(path) != 4 {
		t.Fatalf("expected a 4-sector path, got %v", path)
	}
	if path[0] != sectors[0].ID || path[3] != sectors[3].ID {
		t.Fatalf("expected path to start/end at the queried sectors, got %v", path)
	}
	if g.ShortestPath(sectors[0].ID, sectors[0].ID)[0] != sectors[0].ID {
		t.Fatal("expected a same-sector path to be a single-element slice")
	}
}

func TestGraphShortestPathNoRoute(t *testing.T) {
	sectors, links := buildChain(4)
	isolated := &Sector{ID: "isolated", SecurityLevel: 5}
	sectors = append(sectors, isolated)
	g := NewGraph(sectors, links)
	if path := g.ShortestPath(sectors[0].ID, "isolated"); path != nil {
		t.Fatalf("expected no path to an isolated sector, got %v", path)
	}
}

func TestGraphDisconnected(t *testing.T) {
	sectors, links := buildChain(4)
	isolated := &Sector{ID: "isolated", SecurityLevel: 5}
	sectors = append(sectors, isolated)
	g := NewGraph(sectors, links)
	if g.ConnectedToAll(sectors[0].ID) {
		t.Error("expected isolated sector to break full connectivity")
	}
}

func TestLinkDegree(t *testing.T) {
	sectors, links := buildChain(3)
	g := NewGraph(sectors, links)
	if g.LinkDegree(sectors[1].ID) != 2 {
		t.Errorf("expected middle sector to have degree 2, got %d", g.LinkDegree(sectors[1].ID))
	}
}
