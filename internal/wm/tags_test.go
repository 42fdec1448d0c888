package wm

import "testing"

func newTaggedClient(tags ...string) *Client {
	c := &Client{}
	c.SetTags(tags)
	return c
}

func TestEvalScenarioWorkDiffDocsOrMail(t *testing.T) {
	a := newTaggedClient("work")
	b := newTaggedClient("work", "docs")
	cc := newTaggedClient("mail")
	u := Universe{Clients: []*Client{a, b, cc}}

	e, err := ParseExpr(`work \ docs | mail`)
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(e, u)
	if !got[a] || got[b] || !got[cc] {
		t.Fatalf("expected visible {A, C}, got a=%v b=%v c=%v", got[a], got[b], got[cc])
	}
}

func TestEvalStickyClientVisibleWhenNoTagsMatch(t *testing.T) {
	sticky := newTaggedClient(TagWildcard)
	other := newTaggedClient("work")
	u := Universe{Clients: []*Client{sticky, other}}

	e, err := ParseExpr("mail")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(e, u)
	if !got[sticky] {
		t.Fatal("expected the sticky client to be visible")
	}
	if got[other] {
		t.Fatal("did not expect the non-sticky, non-matching client to be visible")
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 visible client, got %d", len(got))
	}
}

func TestEvalEmptyAtomExcludesStickyClients(t *testing.T) {
	sticky := newTaggedClient(TagWildcard)
	u := Universe{Clients: []*Client{sticky}}

	e, err := ParseExpr(TagEmpty)
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(e, u)
	if got[sticky] {
		t.Fatal("sticky clients must not appear in eval(0)")
	}
	if len(got) != 0 {
		t.Fatal("expected eval(0) to be empty")
	}
}

func TestEvalComplementOfEmptyIsUniverse(t *testing.T) {
	a := newTaggedClient("work")
	b := newTaggedClient()
	u := Universe{Clients: []*Client{a, b}}

	e, err := ParseExpr("~0")
	if err != nil {
		t.Fatal(err)
	}
	got := Eval(e, u)
	if len(got) != 2 || !got[a] || !got[b] {
		t.Fatal("expected ~0 to equal the full universe")
	}
}

func TestEvalWildcardIsSubsetOfComplementOfEmptyButNotEqual(t *testing.T) {
	sticky := newTaggedClient(TagWildcard)
	untagged := newTaggedClient()
	u := Universe{Clients: []*Client{sticky, untagged}}

	star, err := ParseExpr(TagWildcard)
	if err != nil {
		t.Fatal(err)
	}
	notZero, err := ParseExpr("~0")
	if err != nil {
		t.Fatal(err)
	}
	starSet := Eval(star, u)
	notZeroSet := Eval(notZero, u)

	for c := range starSet {
		if !notZeroSet[c] {
			t.Fatal("expected * to be a subset of ~0")
		}
	}
	if len(starSet) == len(notZeroSet) {
		t.Fatal("expected * to be a strict subset of ~0 when an untagged client exists")
	}
}

func TestParsePrecedenceDiffBindsTighterThanOr(t *testing.T) {
	e, err := ParseExpr(`work \ docs | mail`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != exprOr {
		t.Fatalf("expected top-level node to be |, got %v", e.Kind)
	}
	if e.Left.Kind != exprDiff {
		t.Fatalf("expected left child to be \\, got %v", e.Left.Kind)
	}
}

func TestParseUnparseRoundTrip(t *testing.T) {
	cases := []string{
		"work",
		`work \ docs | mail`,
		"~(a & b)",
		"*",
		"0",
		".",
		"a & b & c",
	}
	for _, s := range cases {
		e1, err := ParseExpr(s)
		if err != nil {
			t.Fatalf("parse(%q): %v", s, err)
		}
		canon := Unparse(e1)
		e2, err := ParseExpr(canon)
		if err != nil {
			t.Fatalf("reparse(%q): %v", canon, err)
		}
		if Unparse(e2) != canon {
			t.Fatalf("round-trip mismatch: %q != %q", Unparse(e2), canon)
		}
	}
}

func TestParseRejectsUnbalancedParens(t *testing.T) {
	if _, err := ParseExpr("(work & mail"); err == nil {
		t.Fatal("expected an error for an unbalanced expression")
	}
}

func TestTagsetStackNeverPops(t *testing.T) {
	s := NewTagsetStack()
	if s.Depth() != 1 {
		t.Fatalf("expected a single initial frame, got %d", s.Depth())
	}
	s.Push("work")
	s.Push("mail")
	if s.Depth() != 3 {
		t.Fatalf("expected 3 frames after 2 pushes, got %d", s.Depth())
	}
	if s.Top() != "mail" {
		t.Fatalf("Top() = %q, want mail", s.Top())
	}
}

func TestSwitchingToSameExpressionTwiceChangesNothing(t *testing.T) {
	a := newTaggedClient("work")
	u := Universe{Clients: []*Client{a}}
	e, err := ParseExpr("work")
	if err != nil {
		t.Fatal(err)
	}
	first := Eval(e, u)
	second := Eval(e, u)
	if len(first) != len(second) || !first[a] || !second[a] {
		t.Fatal("expected identical evaluation results for the same expression")
	}
}
