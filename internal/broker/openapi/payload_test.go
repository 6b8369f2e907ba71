package openapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/adapter/enum"
)

func TestChannelOfTag(t *testing.T) {
	assert.Equal(t, enum.TRChannelPrice, channelOfTag(tagPrice))
	assert.Equal(t, enum.TRChannelBalance, channelOfTag(tagBalance))
	assert.False(t, channelOfTag("opw99999").IsAvailable())
}

func TestTRResponseDecoding(t *testing.T) {
	raw := `{
		"trnm": "TR",
		"tag": "opt10001",
		"return_code": 0,
		"price": {"code": "005930", "cur_prc": "15000"}
	}`

	var resp trResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	assert.Equal(t, tagPrice, resp.Tag)

	price, err := toInt64(resp.Price.CurrentPrice)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), price)
}
