package domain

import (
	"testing"
	"unicode/utf8"
)

// Parsed IDs must round-trip through String and every ID kind must agree on
// what it accepts.
func FuzzParseIDs(f *testing.F) {
	for _, seed := range []string{
		"",
		"550e8400-e29b-41d4-a716-446655440000",
		"00000000-0000-0000-0000-000000000000",
		"pl_9f1c2e7a4b6d4e0f8a3b5c7d9e1f2a3b",
		string([]byte{0x00, 0xff}),
		"550e8400-e29b-41d4-a716-446655440000\x00",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		userID, errUser := ParseUserID(input)
		_, errPool := ParsePoolID(input)
		_, errContribution := ParseContributionID(input)

		if (errUser == nil) != (errPool == nil) || (errUser == nil) != (errContribution == nil) {
			t.Fatalf("id kinds disagree on %q", input)
		}
		if errUser != nil {
			return
		}
		if !utf8.ValidString(input) {
			t.Fatalf("accepted invalid utf8 %q", input)
		}
		again, err := ParseUserID(userID.String())
		if err != nil || again != userID {
			t.Fatalf("round trip of %q failed: %v", input, err)
		}
	})
}
