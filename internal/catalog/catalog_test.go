package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseBand(t *testing.T) {
	cases := []struct {
		in      string
		want    Band
		wantCol string
		wantErr bool
	}{
		{in: "g", want: BandG, wantCol: "phot_g_mean_mag"},
		{in: "bp", want: BandBP, wantCol: "phot_bp_mean_mag"},
		{in: "rp", want: BandRP, wantCol: "phot_rp_mean_mag"},
		{in: "", wantErr: true},
		{in: "G", wantErr: true},
		{in: "ir", wantErr: true},
	}
	for _, tc := range cases {
		b, err := ParseBand(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBand(%q): want error, got %q", tc.in, b)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBand(%q): %v", tc.in, err)
			continue
		}
		if b != tc.want {
			t.Errorf("ParseBand(%q) = %q, want %q", tc.in, b, tc.want)
		}
		if got := b.Column(); got != tc.wantCol {
			t.Errorf("Band(%q).Column() = %q, want %q", tc.in, got, tc.wantCol)
		}
	}
}

func TestSourceIDJSON(t *testing.T) {
	// Larger than float64 can hold exactly.
	id := SourceID(4472832130942575872)

	b, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"4472832130942575872"` {
		t.Fatalf("marshal = %s, want quoted digits", b)
	}

	var back SourceID
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != id {
		t.Fatalf("round trip = %d, want %d", back, id)
	}

	// A bare number is accepted too.
	if err := json.Unmarshal([]byte(`12345`), &back); err != nil {
		t.Fatalf("unmarshal bare number: %v", err)
	}
	if back != 12345 {
		t.Fatalf("bare number = %d, want 12345", back)
	}

	if err := json.Unmarshal([]byte(`"12,345"`), &back); err == nil {
		t.Fatal("want error for non-numeric source_id")
	}
}

func TestRowJSONShape(t *testing.T) {
	row := Row{IDOffset: 7, RA: 10.5, Dec: -3.25, Mag: 12.75}

	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"idoffset":7,"ra":10.5,"dec":-3.25,"mean_mag":12.75,` +
		`"parallax":null,"pmra":null,"pmdec":null}`
	if string(b) != want {
		t.Fatalf("minimal row:\n got %s\nwant %s", b, want)
	}

	px := 4.5
	id := SourceID(98765)
	row.Parallax = &px
	row.SourceID = &id
	b, err = json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, frag := range []string{`"parallax":4.5`, `"pmra":null`, `"source_id":"98765"`} {
		if !strings.Contains(string(b), frag) {
			t.Errorf("row JSON missing %s: %s", frag, b)
		}
	}
	if strings.Contains(string(b), "phot_g_mean_mag") {
		t.Errorf("unselected mag column serialized: %s", b)
	}
}

func TestResourceError(t *testing.T) {
	cause := errors.New("disk on fire")
	err := error(&ResourceError{Op: "open catalog", Err: cause})

	if got := err.Error(); got != "catalog: open catalog: disk on fire" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should reach the cause")
	}
	var re *ResourceError
	if !errors.As(err, &re) || re.Op != "open catalog" {
		t.Fatal("errors.As failed to recover the ResourceError")
	}
}
