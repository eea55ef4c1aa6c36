package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyInput = `2
1
1000
3
3
1 0.5
2 0.1

3 0
2
1 2 5
2 3 7.5
`

func TestParseLegacy_ValidInput(t *testing.T) {
	s, err := ParseLegacy(strings.NewReader(legacyInput))

	require.NoError(t, err)
	assert.Equal(t, 2.0, s.SiteDelay)
	assert.Equal(t, 1.0, s.DT)
	assert.Equal(t, 1000.0, s.RunTime)
	assert.Equal(t, 3, s.RunNumber)
	assert.Equal(t, []SiteSpec{{ID: 1, Rate: 0.5}, {ID: 2, Rate: 0.1}, {ID: 3, Rate: 0}}, s.Sites)
	assert.Equal(t, []RoadSpec{{From: 1, To: 2, TravelTime: 5}, {From: 2, To: 3, TravelTime: 7.5}}, s.Roads)
	assert.NoError(t, s.Validate())
}

func TestParseLegacy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty", "", "site_delay"},
		{"bad float", "x\n", "site_delay"},
		{"fractional run number", "2\n1\n10\n1.5\n", "run_number"},
		{"truncated sites", "2\n1\n10\n1\n2\n1 0.5\n", "site 1"},
		{"short site line", "2\n1\n10\n1\n1\n1\n", "want 2 fields"},
		{"negative count", "2\n1\n10\n1\n-1\n", "non-negative"},
		{"bad road", "2\n1\n10\n1\n1\n1 0.5\n1\n1 two 3\n", "road endpoint"},
		{"missing road count", "2\n1\n10\n1\n1\n1 0.5\n", "road count"},
		{"huge site count", "2\n1\n10\n1\n9000000000000000000\n1 0.1\n", "site 1"},
		{"huge road count", "2\n1\n10\n1\n1\n1 0.5\n9000000000000000000\n", "road 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLegacy(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseLegacy_ErrorNamesLine(t *testing.T) {
	_, err := ParseLegacy(strings.NewReader("2\n1\n10\n1\n1\n1 abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 6")
}

func TestLoadLegacy_NamesScenarioAfterFile(t *testing.T) {
	path := writeFile(t, "city_center.txt", legacyInput)

	s, err := LoadLegacy(path)

	require.NoError(t, err)
	assert.Equal(t, "city_center", s.Name)
	assert.Len(t, s.Sites, 3)
}
