package sharing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSubjects_Array(t *testing.T) {
	subjects, err := DecodeSubjects([]byte(`[
		{"name":"Math","teachers":["Smith"],"colorHex":"#FF0000"},
		{"name":"Art","teachers":[],"colorHex":"#00FF00"}
	]`))

	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, SharedSubject{Name: "Math", Teachers: []string{"Smith"}, ColorHex: "#FF0000"}, subjects[0])
}

func TestDecodeSubjects_SingleObject(t *testing.T) {
	subjects, err := DecodeSubjects([]byte(` {"name":"Math","teachers":["Smith"],"colorHex":"#FF0000"} `))

	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Math", subjects[0].Name)
}

func TestDecodePeriods_Malformed(t *testing.T) {
	for _, payload := range []string{"", "not json", `{"index":"first"}`, `[{"index":1},`} {
		_, err := DecodePeriods([]byte(payload))
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", payload)
	}
}

func TestDecodePeriods_EmptyArray(t *testing.T) {
	periods, err := DecodePeriods([]byte(`[]`))

	require.NoError(t, err)
	assert.Empty(t, periods)
}
