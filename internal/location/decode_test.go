package location

import (
	"errors"
	"fmt"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		key      string
	}{
		{"brisbane", -27.4698, 153.0251, "4f2a9c"},
		{"negative lon", 51.5007, -0.1246, "a"},
		{"equator", 0, 0, "long-key-longer-than-the-payload-itself-by-quite-a-margin"},
		{"uuid key", -27.5, 153.01, "3b9f2c1d-8e47-4a6b-9c0d-5e1f2a3b4c5d"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := fmt.Sprintf(`{"lat":%v,"lon":%v}`, tc.lat, tc.lon)
			encoded := Encode(payload, tc.key)

			coords, err := Decode(encoded, tc.key)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if coords.Lat != tc.lat || coords.Lon != tc.lon {
				t.Errorf("Decode = (%v, %v), expected (%v, %v)", coords.Lat, coords.Lon, tc.lat, tc.lon)
			}
		})
	}
}

func TestDecodeStringCoordinates(t *testing.T) {
	// Some client iterations send coordinates as JSON strings
	encoded := Encode(`{"lat":"-27.4698","lon":"153.0251"}`, "key")

	coords, err := Decode(encoded, "key")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if coords.Lat != -27.4698 || coords.Lon != 153.0251 {
		t.Errorf("Decode = (%v, %v), expected (-27.4698, 153.0251)", coords.Lat, coords.Lon)
	}
}

func TestDecodeWrongKey(t *testing.T) {
	encoded := Encode(`{"lat":-27.4698,"lon":153.0251}`, "correct-key")

	// Decoding with the wrong key must not reproduce the original
	// coordinates; almost always this fails to parse as JSON at all.
	coords, err := Decode(encoded, "incorrect-key")
	if err == nil && coords.Lat == -27.4698 && coords.Lon == 153.0251 {
		t.Error("wrong key reproduced the original payload")
	}
}

func TestDecodeBadInput(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		key     string
	}{
		{"not base64", "!!!not-base64!!!", "key"},
		{"not json", Encode("just some text", "key"), "key"},
		{"missing fields", Encode(`{}`, "key"), "key"},
		{"non-numeric", Encode(`{"lat":"north","lon":"west"}`, "key"), "key"},
		{"out of range", Encode(`{"lat":123.0,"lon":0}`, "key"), "key"},
		{"empty key", Encode(`{"lat":1,"lon":2}`, "key"), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.encoded, tc.key); !errors.Is(err, ErrBadPayload) {
				t.Errorf("Decode error = %v, expected ErrBadPayload", err)
			}
		})
	}
}
