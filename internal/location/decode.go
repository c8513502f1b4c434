package location

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadPayload is returned for any undecodable location payload: bad
// base64, non-JSON plaintext, or non-numeric coordinates. Callers map it
// to a client-input error, never a server error.
var ErrBadPayload = errors.New("invalid coordinates payload")

// Coordinates is a decoded client position.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Decode reverses the client-side location obfuscation: base64 transport
// encoding over a byte-wise XOR of the JSON payload against the token
// value, cycled to the payload length. This is tamper-resistance, not
// confidentiality: the key travels with the request.
func Decode(encoded, key string) (Coordinates, error) {
	if key == "" {
		return Coordinates{}, fmt.Errorf("%w: empty key", ErrBadPayload)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	plain := xorBytes(raw, key)

	var payload struct {
		Lat json.Number `json:"lat"`
		Lon json.Number `json:"lon"`
	}
	if err := json.Unmarshal(plain, &payload); err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	lat, err := payload.Lat.Float64()
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad latitude", ErrBadPayload)
	}
	lon, err := payload.Lon.Float64()
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: bad longitude", ErrBadPayload)
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: coordinates out of range", ErrBadPayload)
	}

	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Encode applies the same XOR-then-base64 transform the client uses.
func Encode(payload, key string) string {
	return base64.StdEncoding.EncodeToString(xorBytes([]byte(payload), key))
}

func xorBytes(data []byte, key string) []byte {
	out := make([]byte, len(data))
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
