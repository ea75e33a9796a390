package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const householdYAML = `
name: household
label: Household survey
kind: entity
children:
  - id: 10
    name: village
    kind: text
    key: true
  - name: members
    kind: number
    number_type: integer
  - name: water_source
    kind: code
    codes:
      - {code: W, label: Well}
      - {code: R, label: River}
  - name: person
    kind: entity
    multiple: true
    children:
      - name: age
        kind: number
        number_type: integer
      - name: position
        kind: coordinate
        srs: EPSG:4326
`

func TestDecode_AssignsMissingIDs(t *testing.T) {
	m, err := Decode(strings.NewReader(householdYAML))
	require.NoError(t, err)

	root := m.Root()
	assert.Equal(t, 11, root.ID, "root gets the first id after the highest explicit one")
	assert.Equal(t, "Household survey", root.DisplayLabel())

	village, ok := m.Definition(10)
	require.True(t, ok)
	assert.True(t, village.Key)

	person := root.Children[3]
	assert.Equal(t, 14, person.ID)
	assert.Equal(t, 16, person.Children[1].ID)
	assert.Equal(t, "EPSG:4326", person.Children[1].SRS)
	assert.Equal(t, []domain.CodeItem{{Code: "W", Label: "Well"}, {Code: "R", Label: "River"}}, root.Children[2].CodeItems)
	assert.Equal(t, 7, m.Len())
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("name: x\nkind: entity\ncolour: red\n"))
	assert.Error(t, err)
}

func TestDecode_Validates(t *testing.T) {
	_, err := Decode(strings.NewReader("name: x\nkind: entity\n"))
	require.Error(t, err)
	var agg *AggregateError
	assert.ErrorAs(t, err, &agg)
}

func TestEncode_RoundTrip(t *testing.T) {
	m, err := Decode(strings.NewReader(householdYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))
	path := filepath.Join(t.TempDir(), "household.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Root(), again.Root())
}
