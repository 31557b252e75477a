package tool

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSequentialID(t *testing.T) {
	require.Equal(t, "C000007", SequentialID("C", 7, 6))
	require.Equal(t, "P0001234", SequentialID("P", 1234, 7))
	require.Equal(t, "S1234567", SequentialID("S", 1234567, 6))
}

func TestIDWidth(t *testing.T) {
	require.Equal(t, MinIDWidth, IDWidth(0))
	require.Equal(t, MinIDWidth, IDWidth(1_000_000))
	require.Equal(t, 7, IDWidth(1_000_001))
	require.Equal(t, 8, IDWidth(25_000_000))
}

func TestGenerateUUIDV7(t *testing.T) {
	id, err := uuid.Parse(GenerateUUIDV7())
	require.NoError(t, err)
	require.Equal(t, uuid.Version(7), id.Version())
}
