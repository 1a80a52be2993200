package game

import "testing"

func TestGameScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		home     string
		away     string
		wantHome int
		wantAway int
		wantOK   bool
	}{
		{name: "played", home: "3", away: "1", wantHome: 3, wantAway: 1, wantOK: true},
		{name: "padded", home: " 2", away: "2 ", wantHome: 2, wantAway: 2, wantOK: true},
		{name: "scheduled", home: "", away: "", wantOK: false},
		{name: "placeholder", home: "-", away: "0", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home, away, ok := Game{HomeTeamScore: tt.home, AwayTeamScore: tt.away}.Scores()
			if ok != tt.wantOK {
				t.Fatalf("Scores ok=%v want=%v", ok, tt.wantOK)
			}
			if ok && (home != tt.wantHome || away != tt.wantAway) {
				t.Fatalf("Scores=%d-%d want=%d-%d", home, away, tt.wantHome, tt.wantAway)
			}
		})
	}
}
