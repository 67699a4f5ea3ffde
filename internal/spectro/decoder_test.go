package spectro

import (
	"errors"
	"testing"
)

func TestDecoder_SingleLine(t *testing.T) {
	var d Decoder
	results := d.Feed([]byte("d#500#800\n"))

	if len(results) != 1 {
		t.Fatalf("Feed returned %d results, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected decode error: %v", results[0].Err)
	}
	want := Sample{Wavelength: 500, Intensity: 800}
	if results[0].Sample != want {
		t.Errorf("decoded %+v, want %+v", results[0].Sample, want)
	}
}

func TestDecoder_MalformedLineDoesNotHaltStream(t *testing.T) {
	var d Decoder
	results := d.Feed([]byte("foo#1#2\nd#600#900\n"))

	if len(results) != 2 {
		t.Fatalf("Feed returned %d results, want 2", len(results))
	}

	var malformed *MalformedLineError
	if !errors.As(results[0].Err, &malformed) {
		t.Fatalf("first result error = %v, want MalformedLineError", results[0].Err)
	}
	if malformed.Line != "foo#1#2" {
		t.Errorf("malformed line = %q, want %q", malformed.Line, "foo#1#2")
	}

	if results[1].Err != nil {
		t.Fatalf("line after malformed line failed to decode: %v", results[1].Err)
	}
	want := Sample{Wavelength: 600, Intensity: 900}
	if results[1].Sample != want {
		t.Errorf("decoded %+v, want %+v", results[1].Sample, want)
	}
}

func TestDecoder_PartialLineReassembly(t *testing.T) {
	var d Decoder

	results := d.Feed([]byte("d#500#"))
	if len(results) != 0 {
		t.Fatalf("partial line produced %d results, want 0", len(results))
	}
	if d.Pending() == 0 {
		t.Error("partial line not buffered")
	}

	results = d.Feed([]byte("800\n"))
	if len(results) != 1 {
		t.Fatalf("completed line produced %d results, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected decode error: %v", results[0].Err)
	}
	want := Sample{Wavelength: 500, Intensity: 800}
	if results[0].Sample != want {
		t.Errorf("decoded %+v, want %+v", results[0].Sample, want)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after complete line, want 0", d.Pending())
	}
}

func TestDecoder_MultipleLinesPerFeed(t *testing.T) {
	var d Decoder
	results := d.Feed([]byte("d#400#10\nd#410#20\nd#420#30\n"))

	if len(results) != 3 {
		t.Fatalf("Feed returned %d results, want 3", len(results))
	}
	wants := []Sample{
		{Wavelength: 400, Intensity: 10},
		{Wavelength: 410, Intensity: 20},
		{Wavelength: 420, Intensity: 30},
	}
	for i, want := range wants {
		if results[i].Err != nil {
			t.Fatalf("result %d: unexpected error: %v", i, results[i].Err)
		}
		if results[i].Sample != want {
			t.Errorf("result %d: decoded %+v, want %+v", i, results[i].Sample, want)
		}
	}
}

func TestDecoder_RejectsBadFrames(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"wrong prefix", "x#500#800\n"},
		{"too many tokens", "d#1#2#3\n"},
		{"too few tokens", "d#500\n"},
		{"non-integer wavelength", "d#abc#800\n"},
		{"non-integer intensity", "d#500#abc\n"},
		{"empty line", "\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d Decoder
			results := d.Feed([]byte(tc.line))
			if len(results) != 1 {
				t.Fatalf("Feed returned %d results, want 1", len(results))
			}
			var malformed *MalformedLineError
			if !errors.As(results[0].Err, &malformed) {
				t.Errorf("error = %v, want MalformedLineError", results[0].Err)
			}
		})
	}
}

func TestDecoder_TrimsCarriageReturn(t *testing.T) {
	var d Decoder
	results := d.Feed([]byte("d#500#800\r\n"))

	if len(results) != 1 {
		t.Fatalf("Feed returned %d results, want 1", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("CRLF-terminated line failed to decode: %v", results[0].Err)
	}
	want := Sample{Wavelength: 500, Intensity: 800}
	if results[0].Sample != want {
		t.Errorf("decoded %+v, want %+v", results[0].Sample, want)
	}
}

func TestDecoder_Reset(t *testing.T) {
	var d Decoder
	d.Feed([]byte("d#500#"))
	d.Reset()

	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after Reset, want 0", d.Pending())
	}

	// the stale partial must not corrupt the next line
	results := d.Feed([]byte("d#600#900\n"))
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("decode after Reset failed: %+v", results)
	}
	want := Sample{Wavelength: 600, Intensity: 900}
	if results[0].Sample != want {
		t.Errorf("decoded %+v, want %+v", results[0].Sample, want)
	}
}
