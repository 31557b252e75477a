package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	b, err := json.Marshal(OKT(map[string]int{"customers": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"message":"ok","data":{"customers":3}}`, string(b))

	b, err = json.Marshal(ErrorT[any](APIResponseCodeNotFound, "unknown report"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":40400,"message":"not found","data":"unknown report"}`, string(b))

	assert.Equal(t, "unexpected error", APIResponseCode(1).Message())
}
