package poker

import "testing"

func TestParseCard(t *testing.T) {
	c, err := ParseCard("As")
	if err != nil {
		t.Fatalf("parse As: %v", err)
	}
	if c.Rank != Ace || c.Suit != Spades {
		t.Fatalf("parsed %+v", c)
	}
	if c.String() != "As" {
		t.Fatalf("String() = %q, want As", c.String())
	}
	if _, err := ParseCard("Xx"); err == nil {
		t.Fatal("expected error for bad rank")
	}
	if _, err := ParseCard("A"); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestDeckDealsUniqueCards(t *testing.T) {
	d := NewDeck()
	d.Shuffle()
	seen := map[Card]bool{}
	for i := 0; i < 52; i++ {
		c := d.Deal()
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
}
