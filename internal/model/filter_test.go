package model

import (
	"net/url"
	"testing"
)

func TestParseFeedFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    FeedFilter
		wantErr bool
	}{
		{"empty", "", FeedFilter{}, false},
		{"brand trimmed", "brand=+Nike+", FeedFilter{Brand: "Nike"}, false},
		{"condition upper-cased", "condition=like_new", FeedFilter{Condition: ConditionLikeNew}, false},
		{"price range", "lowest=10&highest=50.5", FeedFilter{Lowest: 10, Highest: 50.5}, false},
		{"only highest", "highest=20", FeedFilter{Highest: 20}, false},
		{"size", "size=42", FeedFilter{Size: "42"}, false},
		{"unknown condition", "condition=BROKEN", FeedFilter{}, true},
		{"bad lowest", "lowest=cheap", FeedFilter{}, true},
		{"bad highest", "highest=x", FeedFilter{}, true},
		{"negative", "lowest=-1", FeedFilter{}, true},
		{"inverted range", "lowest=50&highest=10", FeedFilter{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got, err := ParseFeedFilter(v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFeedFilter(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFeedFilter(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFeedFilterEncodeParses(t *testing.T) {
	f := FeedFilter{Brand: "Nike", Condition: ConditionGood, Lowest: 5, Highest: 99.99, Size: "M"}
	v := url.Values{}
	f.Encode(v)

	got, err := ParseFeedFilter(v)
	if err != nil {
		t.Fatalf("ParseFeedFilter: %v", err)
	}
	if got != f {
		t.Errorf("got %+v, want %+v", got, f)
	}

	empty := url.Values{}
	FeedFilter{}.Encode(empty)
	if len(empty) != 0 {
		t.Errorf("empty filter encoded %v", empty)
	}
}
