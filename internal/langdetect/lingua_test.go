package langdetect

import "testing"

func TestMatches(t *testing.T) {
	t.Parallel()

	if !Matches("", "en") {
		t.Fatalf("expected empty text to pass")
	}
	if !Matches("Bomb!", "en") {
		t.Fatalf("expected short text to pass")
	}
	if !Matches("Anything at all", "") {
		t.Fatalf("expected an empty language code to accept everything")
	}
	if !Matches("Lincoln High School bomb threat prompts evacuation of students and staff", "en") {
		t.Fatalf("expected English headline to match en")
	}
	if Matches("Amenaza de bomba en la escuela secundaria obliga a evacuar a los estudiantes", "en") {
		t.Fatalf("expected Spanish headline not to match en")
	}
}
