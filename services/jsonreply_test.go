package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

const recognitionReply = "```json\n" + `{
  "colorPrimary": "藏青色",
  "category": "外套",
  "type": "羽绒服",
  "style": ["休闲"],
  "pattern": "纯色",
  "season": ["冬"],
  "material": ["羽绒"],
  "thickness": "加厚",
  "warmthLevel": 5
}` + "\n```"

func TestParseJSONReplyStripsFences(t *testing.T) {
	result, err := ParseJSONReply[models.RecognitionResult](recognitionReply)
	require.NoError(t, err)
	assert.Equal(t, "藏青色", result.ColorPrimary)
	assert.Equal(t, models.CategoryOuterwear, result.Category)
	assert.Equal(t, 5, result.WarmthLevel)
}

func TestParseJSONReplyRejectsInvalidEnum(t *testing.T) {
	_, err := ParseJSONReply[models.RecognitionResult](`{"colorPrimary":"红","category":"帽子","type":"x","style":[],"pattern":"纯色","season":[],"thickness":"常规","warmthLevel":2}`)
	assert.ErrorIs(t, err, ErrMalformedAIResponse)
}

func TestParseJSONReplyMalformed(t *testing.T) {
	for _, raw := range []string{"", "抱歉，我无法识别", "```json\n{\"colorPrimary\": \n```"} {
		_, err := ParseJSONReply[models.RecognitionResult](raw)
		var malformed *MalformedResponseError
		require.ErrorAs(t, err, &malformed, raw)
		assert.Equal(t, raw, malformed.Raw)
	}
}

func TestParseJSONReplyList(t *testing.T) {
	recs, err := ParseJSONReply[[]models.OutfitRecommendation](`[{"id":"推荐1","clothingIds":["a","b"],"reason":"好看","score":90,"occasion":"日常","temperature":12}]`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"a", "b"}, recs[0].ClothingIDs)

	_, err = ParseJSONReply[[]models.OutfitRecommendation](`[]`)
	assert.ErrorIs(t, err, ErrMalformedAIResponse)

	_, err = ParseJSONReply[[]models.OutfitRecommendation](`[{"id":"推荐1","clothingIds":[],"reason":"x","score":90}]`)
	assert.ErrorIs(t, err, ErrMalformedAIResponse)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(` {"a":1} `))
}
