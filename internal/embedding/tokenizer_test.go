package embedding

import "testing"

func TestSimpleTokenizer_SpecialTokens(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, types := tok.Tokenize("hello world", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(mask), len(types))
	}
	if ids[0] != 101 {
		t.Errorf("missing [CLS]: %d", ids[0])
	}
	// Two words, then [SEP] at position 3.
	if ids[3] != 102 {
		t.Errorf("missing [SEP]: %v", ids)
	}
	for i := 0; i < 4; i++ {
		if mask[i] != 1 {
			t.Errorf("attention mask at %d: %d", i, mask[i])
		}
	}
	for i := 4; i < 8; i++ {
		if mask[i] != 0 || ids[i] != 0 {
			t.Errorf("padding at %d: id=%d mask=%d", i, ids[i], mask[i])
		}
	}
	for i, v := range types {
		if v != 0 {
			t.Errorf("token type at %d: %d", i, v)
		}
	}
}

func TestSimpleTokenizer_TruncatesLongInput(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, mask, _ := tok.Tokenize("a b c d e f g h i j", 6)
	if len(ids) != 6 {
		t.Fatalf("length: %d", len(ids))
	}
	// Positions 1..4 hold words, position 5 holds [SEP].
	if ids[5] != 102 {
		t.Errorf("expected [SEP] at final slot: %v", ids)
	}
	for i := 0; i < 6; i++ {
		if mask[i] != 1 {
			t.Errorf("mask at %d: %d", i, mask[i])
		}
	}
}

func TestSimpleTokenizer_Deterministic(t *testing.T) {
	tok := &SimpleTokenizer{}
	a, _, _ := tok.Tokenize("the quick brown fox", 16)
	b, _, _ := tok.Tokenize("the quick brown fox", 16)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("token ids differ at %d", i)
		}
	}
}

func TestHashString(t *testing.T) {
	if HashString("word") != HashString("word") {
		t.Error("hash not deterministic")
	}
	if HashString("word") == HashString("different") {
		t.Error("distinct words collide")
	}
	for _, s := range []string{"", "a", "some fairly long string to push the hash around"} {
		if HashString(s) < 0 {
			t.Errorf("negative hash for %q", s)
		}
	}
}

func TestSplitWords(t *testing.T) {
	words := splitWords("  one\ttwo\nthree  ")
	if len(words) != 3 || words[0] != "one" || words[2] != "three" {
		t.Errorf("words: %v", words)
	}
	if got := splitWords(""); len(got) != 0 {
		t.Errorf("empty input: %v", got)
	}
}
