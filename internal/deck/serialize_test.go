package deck

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	t.Parallel()

	parser := testParser()

	first, err := parser.Parse(sampleDeck)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	second, err := parser.Parse(Serialize(first))
	if err != nil {
		t.Fatalf("parsing serialized deck returned error: %v", err)
	}

	if second.Config != first.Config {
		t.Errorf("expected config to survive round trip: %+v != %+v", second.Config, first.Config)
	}

	if second.Len() != first.Len() {
		t.Fatalf("expected %d slides after round trip, got %d", first.Len(), second.Len())
	}

	for i := range first.Slides {
		if second.Slides[i].Layout != first.Slides[i].Layout {
			t.Errorf("slide %d: layout changed from %q to %q", i, first.Slides[i].Layout, second.Slides[i].Layout)
		}
		if second.Slides[i].Title != first.Slides[i].Title {
			t.Errorf("slide %d: title changed from %q to %q", i, first.Slides[i].Title, second.Slides[i].Title)
		}
		if second.Slides[i].Body != first.Slides[i].Body {
			t.Errorf("slide %d: body changed from %q to %q", i, first.Slides[i].Body, second.Slides[i].Body)
		}
	}
}

func TestSerializeQuotesRiskyMetadataValues(t *testing.T) {
	t.Parallel()

	parser := testParser()

	source := "# First\n\n---\ncaption: \"Lifecycle: the big picture\"\n---\n\n# Second\n"
	first, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	second, err := parser.Parse(Serialize(first))
	if err != nil {
		t.Fatalf("parsing serialized deck returned error: %v", err)
	}

	if second.Slides[1].Meta["caption"] != "Lifecycle: the big picture" {
		t.Errorf("expected caption to survive round trip, got %q", second.Slides[1].Meta["caption"])
	}
}

func TestSerializeEmptyDeck(t *testing.T) {
	t.Parallel()

	if Serialize(nil) != "" {
		t.Errorf("expected empty output for nil deck")
	}
	if Serialize(&Deck{}) != "" {
		t.Errorf("expected empty output for deck without slides")
	}
}
