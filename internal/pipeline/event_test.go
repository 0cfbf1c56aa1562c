package pipeline

import "testing"

func TestParseKind_RoundTripsKnownNames(t *testing.T) {
	for _, k := range []Kind{KindRunStart, KindSTTEnd, KindTTSStart, KindTTSEnd, KindRunEnd, KindError} {
		if got := ParseKind(k.String()); got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestParseKind_UnknownNames(t *testing.T) {
	for _, name := range []string{"", "stt-start", "intent-end", "RUN_START"} {
		if got := ParseKind(name); got != KindUnknown {
			t.Fatalf("ParseKind(%q) = %v, want unknown", name, got)
		}
	}
}

func TestDecode_FirstMatchWins(t *testing.T) {
	ev := Decode(Record{Kind: KindSTTEnd, Data: []Field{
		{Name: "lang", Value: "en"},
		{Name: "text", Value: "first"},
		{Name: "text", Value: "second"},
	}})
	got, ok := ev.(STTEnd)
	if !ok {
		t.Fatalf("unexpected event type %T", ev)
	}
	if got.Text != "first" {
		t.Fatalf("expected first occurrence, got %q", got.Text)
	}
}

func TestDecode_ErrorFieldsDefaultToEmpty(t *testing.T) {
	ev := Decode(Record{Kind: KindError, Data: []Field{{Name: "message", Value: "failed"}}})
	got, ok := ev.(Error)
	if !ok {
		t.Fatalf("unexpected event type %T", ev)
	}
	if got.Code != "" || got.Message != "failed" {
		t.Fatalf("unexpected error payload: %+v", got)
	}
}

func TestDecode_ErrorDuplicateCodeKeepsFirst(t *testing.T) {
	ev := Decode(Record{Kind: KindError, Data: []Field{
		{Name: "code", Value: "E1"},
		{Name: "code", Value: "E2"},
		{Name: "message", Value: "failed"},
	}})
	got := ev.(Error)
	if got.Code != "E1" || got.Message != "failed" {
		t.Fatalf("unexpected error payload: %+v", got)
	}
}

func TestDecode_TTSEndURL(t *testing.T) {
	ev := Decode(Record{Kind: KindTTSEnd, Data: []Field{{Name: "url", Value: "http://x/y.wav"}}})
	if got := ev.(TTSEnd); got.URL != "http://x/y.wav" {
		t.Fatalf("unexpected url: %q", got.URL)
	}
}

func TestDecode_UnknownKeepsWireName(t *testing.T) {
	ev := Decode(Record{Kind: KindUnknown, Name: "intent-start"})
	got, ok := ev.(Unknown)
	if !ok {
		t.Fatalf("unexpected event type %T", ev)
	}
	if got.Name != "intent-start" || got.Kind() != KindUnknown {
		t.Fatalf("unexpected unknown payload: %+v", got)
	}
}
