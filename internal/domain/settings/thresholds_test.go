package settings

import "testing"

func TestParseTierCutoffsSortsDescending(t *testing.T) {
	raw := `{"BRONZE":0,"PLATINUM":4.5,"SILVER":2.5,"GOLD":3.5}`
	cutoffs, err := ParseTierCutoffs(raw)
	if err != nil {
		t.Fatalf("ParseTierCutoffs: %v", err)
	}
	want := []string{"PLATINUM", "GOLD", "SILVER", "BRONZE"}
	for i, tier := range want {
		if cutoffs[i].Tier != tier {
			t.Fatalf("position %d: want %s, got %s", i, tier, cutoffs[i].Tier)
		}
	}
}

func TestParseTierCutoffsRejectsGarbage(t *testing.T) {
	if _, err := ParseTierCutoffs("not json"); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := ParseTierCutoffs("{}"); err == nil {
		t.Error("empty table should fail")
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	encoded, err := EncodeTierCutoffs(DefaultTierCutoffs())
	if err != nil {
		t.Fatalf("EncodeTierCutoffs: %v", err)
	}
	decoded, err := ParseTierCutoffs(encoded)
	if err != nil {
		t.Fatalf("ParseTierCutoffs: %v", err)
	}
	if len(decoded) != len(DefaultTierCutoffs()) {
		t.Fatalf("round trip lost entries: %d", len(decoded))
	}
	if decoded[0].Tier != "PLATINUM" || decoded[0].MinScore != 4.5 {
		t.Errorf("unexpected top cutoff: %+v", decoded[0])
	}

	gradeJSON, err := EncodeGradeCutoffs(DefaultGradeCutoffs())
	if err != nil {
		t.Fatalf("EncodeGradeCutoffs: %v", err)
	}
	grades, err := ParseGradeCutoffs(gradeJSON)
	if err != nil {
		t.Fatalf("ParseGradeCutoffs: %v", err)
	}
	if grades[0].Grade != "A" {
		t.Errorf("expected A first, got %+v", grades[0])
	}
}
