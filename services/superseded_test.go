package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

type weatherOutcome struct {
	data *models.WeatherData
	err  error
}

func TestWeatherSlowRequestDoesNotOverwriteNewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hold, entered, release := holdFirstCall()
	f.provider.hold = hold

	slow := make(chan weatherOutcome, 1)
	go func() {
		data, err := f.weather.Current(ctx, beijing, true)
		slow <- weatherOutcome{data, err}
	}()
	<-entered

	f.provider.setText("小雨")
	newer, err := f.weather.Current(ctx, beijing, true)
	require.NoError(t, err)
	assert.Equal(t, "小雨", newer.Current.Text)

	close(release)
	outcome := <-slow
	require.NoError(t, outcome.err)
	assert.Equal(t, "晴", outcome.data.Current.Text)

	cached := f.weather.Cached(ctx)
	require.NotNil(t, cached)
	assert.Equal(t, "小雨", cached.Current.Text)
}

type recommendOutcome struct {
	result *RecommendResult
	err    error
}

func TestRecommendSlowRequestDoesNotOverwriteNewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProfile(t)
	f.addGarments(t, "c1", "c2", "c3")
	staleReply := `[{"id":"旧","clothingIds":["c1","c2"],"reason":"旧的推荐","score":60,"occasion":"日常","temperature":12}]`
	f.ai.replies = []string{staleReply, recsReply}
	hold, entered, release := holdFirstCall()
	f.ai.hold = hold

	req := RecommendRequest{Occasion: "日常", Temperature: 12, Weather: "晴"}
	slow := make(chan recommendOutcome, 1)
	go func() {
		result, err := f.advisor.Recommend(ctx, req)
		slow <- recommendOutcome{result, err}
	}()
	<-entered

	forced := req
	forced.Force = true
	newer, err := f.advisor.Recommend(ctx, forced)
	require.NoError(t, err)
	require.Len(t, newer.Recommendations, 2)

	close(release)
	outcome := <-slow
	require.NoError(t, outcome.err)
	require.Len(t, outcome.result.Recommendations, 1)
	assert.Equal(t, "旧", outcome.result.Recommendations[0].ID)
	assert.False(t, outcome.result.Cached)

	cached, err := f.advisor.Recommend(ctx, req)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	require.Len(t, cached.Recommendations, 2)
	assert.Equal(t, "推荐1", cached.Recommendations[0].ID)
	assert.Equal(t, 2, f.ai.callCount())
}

type dailyOutcome struct {
	result *DailyResult
	err    error
}

func TestDailySlowRequestDoesNotOverwriteNewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addGarments(t, "c1")
	f.ai.replies = []string{`{"recommendation":"旧","clothingIds":["c1"]}`, `{"recommendation":"新","clothingIds":["c1"]}`}
	hold, entered, release := holdFirstCall()
	f.ai.hold = hold

	slow := make(chan dailyOutcome, 1)
	go func() {
		result, err := f.advisor.Daily(ctx, beijing, false)
		slow <- dailyOutcome{result, err}
	}()
	<-entered

	newer, err := f.advisor.Daily(ctx, beijing, true)
	require.NoError(t, err)
	assert.Equal(t, "新", newer.Recommendation)

	close(release)
	outcome := <-slow
	require.NoError(t, outcome.err)
	assert.Equal(t, "旧", outcome.result.Recommendation)

	cached, err := f.advisor.Daily(ctx, beijing, false)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, "新", cached.Recommendation)
}
