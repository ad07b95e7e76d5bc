package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"wardrobeapi/cache"
	"wardrobeapi/codec"
	"wardrobeapi/models"
	"wardrobeapi/store"
)

const (
	// MinRecommendationClothes is the wardrobe size needed for outfit
	// recommendations.
	MinRecommendationClothes = 3
	MinDailyClothes          = 1
)

// AdvisorService holds the AI driven flows: recognition, recommendations,
// the daily suggestion, chat and virtual try-on.
type AdvisorService struct {
	store   *store.Store
	ai      Completer
	weather *WeatherService
	recs    *cache.RecommendationCache
	daily   *cache.Slot[models.DailyRecommendation]
	seq     *cache.Sequencer
	opts    options
}

func NewAdvisorService(
	st *store.Store,
	ai Completer,
	weather *WeatherService,
	recs *cache.RecommendationCache,
	daily *cache.Slot[models.DailyRecommendation],
	seq *cache.Sequencer,
	opts ...Option,
) *AdvisorService {
	return &AdvisorService{
		store:   st,
		ai:      ai,
		weather: weather,
		recs:    recs,
		daily:   daily,
		seq:     seq,
		opts:    newOptions(opts),
	}
}

// Recognize asks the vision model to describe the garment in image.
func (a *AdvisorService) Recognize(ctx context.Context, image models.Blob) (*models.RecognitionResult, error) {
	if image.IsEmpty() || !codec.IsImage(image.Data) {
		return nil, fmt.Errorf("%w: recognition needs an image", ErrInvalidInput)
	}
	reply, err := a.ai.Complete(ctx, []Message{
		PartsMessage(RoleUser, TextPart(recognitionPrompt), ImagePart(codec.Encode(image))),
	})
	if err != nil {
		return nil, err
	}
	result, err := ParseJSONReply[models.RecognitionResult](reply)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type RecommendRequest struct {
	Occasion    string  `json:"occasion" validate:"required,max=50"`
	Temperature float64 `json:"temperature"`
	Weather     string  `json:"weather" validate:"required"`
	Force       bool    `json:"refresh"`
}

type RecommendResult struct {
	Occasion        string                        `json:"occasion"`
	Recommendations []models.OutfitRecommendation `json:"recommendations"`
	Weather         models.WeatherSnapshot        `json:"weather"`
	GeneratedAt     time.Time                     `json:"generated_at"`
	Cached          bool                          `json:"cached"`
}

func recommendResult(occasion string, e *cache.RecommendationEntry, cached bool) *RecommendResult {
	return &RecommendResult{
		Occasion:        occasion,
		Recommendations: e.Recommendations,
		Weather:         e.Weather,
		GeneratedAt:     e.GeneratedAt,
		Cached:          cached,
	}
}

// Recommend returns today's outfit recommendations for an occasion, asking
// the AI only when nothing is cached for it or when forced.
func (a *AdvisorService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	if err := models.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if req.Force {
		if err := a.recs.Invalidate(ctx, req.Occasion); err != nil {
			log.Warn().Err(err).Str("occasion", req.Occasion).Msg("failed to invalidate recommendations")
		}
	} else {
		entry, err := a.recs.Get(ctx, req.Occasion)
		if err != nil {
			log.Warn().Err(err).Msg("recommendation cache unavailable")
		} else if entry != nil {
			return recommendResult(req.Occasion, entry, true), nil
		}
	}

	profile, err := a.store.GetUserProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileRequired
	}
	if err != nil {
		return nil, err
	}
	clothes, err := a.store.GetAllClothes(ctx)
	if err != nil {
		return nil, err
	}
	if len(clothes) < MinRecommendationClothes {
		return nil, fmt.Errorf("%w: need at least %d, have %d", ErrNotEnoughClothes, MinRecommendationClothes, len(clothes))
	}

	ticket := a.seq.Begin(cache.RecommendationsKey + ":" + req.Occasion)
	reply, err := a.ai.Complete(ctx, []Message{
		TextMessage(RoleUser, recommendationPrompt(profile, clothes, req.Occasion, req.Temperature, req.Weather)),
	})
	if err != nil {
		return nil, err
	}
	recs, err := ParseJSONReply[[]models.OutfitRecommendation](reply)
	if err != nil {
		return nil, err
	}

	snapshot := models.WeatherSnapshot{Temp: req.Temperature, Text: req.Weather}
	fresh := &cache.RecommendationEntry{
		Date:            cache.LocalDate(a.opts.now(), a.opts.loc),
		Recommendations: recs,
		Weather:         snapshot,
		GeneratedAt:     a.opts.now(),
	}
	if !a.seq.IsLatest(ticket) {
		return recommendResult(req.Occasion, fresh, false), nil
	}
	entry, err := a.recs.Put(ctx, req.Occasion, recs, snapshot)
	if err != nil {
		reportCacheFailure(err, cache.RecommendationsKey)
		return recommendResult(req.Occasion, fresh, false), nil
	}
	return recommendResult(req.Occasion, entry, false), nil
}

type DailyResult struct {
	models.DailyRecommendation
	Cached bool `json:"cached"`
}

// Daily returns the outfit of the day, generated once per local day.
func (a *AdvisorService) Daily(ctx context.Context, locator Locator, force bool) (*DailyResult, error) {
	if force {
		if err := a.daily.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to clear daily recommendation")
		}
	} else {
		entry, err := a.daily.Get(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("daily cache unavailable")
		} else if entry != nil {
			return &DailyResult{DailyRecommendation: entry.Value, Cached: true}, nil
		}
	}

	clothes, err := a.store.GetAllClothes(ctx)
	if err != nil {
		return nil, err
	}
	if len(clothes) < MinDailyClothes {
		return nil, fmt.Errorf("%w: wardrobe is empty", ErrNotEnoughClothes)
	}
	weather, err := a.weather.Current(ctx, locator, false)
	if err != nil {
		return nil, err
	}
	profile, err := a.optionalProfile(ctx)
	if err != nil {
		return nil, err
	}

	ticket := a.seq.Begin(a.daily.Key())
	reply, err := a.ai.Complete(ctx, []Message{
		TextMessage(RoleUser, dailyPrompt(profile, clothes, weather)),
	})
	if err != nil {
		return nil, err
	}
	pick, err := ParseJSONReply[models.DailyPick](reply)
	if err != nil {
		return nil, err
	}

	now := a.opts.now()
	current := weather.Current
	rec := models.DailyRecommendation{
		Date:           cache.LocalDate(now, a.opts.loc),
		Recommendation: pick.Recommendation,
		ClothingIDs:    pick.ClothingIDs,
		Weather:        &current,
		CachedAt:       now,
	}
	if a.seq.IsLatest(ticket) {
		if _, err := a.daily.Put(ctx, rec); err != nil {
			reportCacheFailure(err, a.daily.Key())
		}
	}
	return &DailyResult{DailyRecommendation: rec}, nil
}

func (a *AdvisorService) optionalProfile(ctx context.Context) (*models.UserProfile, error) {
	profile, err := a.store.GetUserProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return profile, err
}

type ChatExchange struct {
	User      models.ChatMessage `json:"user"`
	Assistant models.ChatMessage `json:"assistant"`
}

// Chat persists the user turn, asks the advisor with the wardrobe, the
// profile, the cached weather and prior turns as context, and persists the
// reply. A failed completion leaves only the user turn stored.
func (a *AdvisorService) Chat(ctx context.Context, content string) (*ChatExchange, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	prior, err := a.store.GetChatMessages(ctx)
	if err != nil {
		return nil, err
	}
	user := models.ChatMessage{Role: models.RoleUser, Content: content}
	if err := a.store.AddChatMessage(ctx, &user); err != nil {
		return nil, err
	}

	clothes, err := a.store.GetAllClothes(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := a.optionalProfile(ctx)
	if err != nil {
		return nil, err
	}
	weather := a.weather.Cached(ctx)

	messages := make([]Message, 0, len(prior)+2)
	messages = append(messages, TextMessage(RoleSystem, chatContext(profile, clothes, weather)))
	for _, m := range prior {
		messages = append(messages, TextMessage(string(m.Role), m.Content))
	}
	messages = append(messages, TextMessage(RoleUser, content))

	reply, err := a.ai.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	assistant := models.ChatMessage{Role: models.RoleAssistant, Content: strings.TrimSpace(reply)}
	if err := a.store.AddChatMessage(ctx, &assistant); err != nil {
		return nil, err
	}
	return &ChatExchange{User: user, Assistant: assistant}, nil
}

type TryOnResult struct {
	// Image is a data URL or a remote URL, empty when the model answered
	// with text only.
	Image   string `json:"image,omitempty"`
	Content string `json:"content"`
}

var (
	dataURLPattern       = regexp.MustCompile(`data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*\]\((\S+?)\)`)
	bareURLPattern       = regexp.MustCompile(`https?://\S+\.(?:png|jpe?g|webp|gif)(?:\?\S*)?`)
)

// ExtractImage finds the generated image in a try-on reply.
func ExtractImage(reply string) string {
	if m := dataURLPattern.FindString(reply); m != "" {
		return m
	}
	if m := markdownImagePattern.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return bareURLPattern.FindString(reply)
}

// TryOn dresses the person in the garment using the try-on model.
func (a *AdvisorService) TryOn(ctx context.Context, person, garment models.Blob) (*TryOnResult, error) {
	if person.IsEmpty() || garment.IsEmpty() {
		return nil, fmt.Errorf("%w: try-on needs a person and a garment image", ErrInvalidInput)
	}
	reply, err := a.ai.CompleteTryOn(ctx, []Message{
		PartsMessage(RoleUser,
			TextPart(tryOnPrompt),
			ImagePart(codec.Encode(person)),
			ImagePart(codec.Encode(garment)),
		),
	})
	if err != nil {
		return nil, err
	}
	return &TryOnResult{Image: ExtractImage(reply), Content: reply}, nil
}

// TryOnClothing is TryOn with a cataloged garment's image.
func (a *AdvisorService) TryOnClothing(ctx context.Context, person models.Blob, clothingID string) (*TryOnResult, error) {
	c, err := a.store.GetClothing(ctx, clothingID)
	if err != nil {
		return nil, err
	}
	return a.TryOn(ctx, person, c.Image)
}

type AcceptRequest struct {
	Recommendation models.OutfitRecommendation `json:"recommendation"`
	Weather        *string                     `json:"weather"`
	Temperature    *float64                    `json:"temperature"`
	Rating         *int                        `json:"rating" validate:"omitempty,min=1,max=5"`
}

// AcceptRecommendation records a recommendation the user chose to wear.
func (a *AdvisorService) AcceptRecommendation(ctx context.Context, req AcceptRequest) (*models.OutfitHistory, error) {
	rec := req.Recommendation
	if len(rec.ClothingIDs) == 0 {
		return nil, fmt.Errorf("%w: recommendation has no garments", ErrInvalidInput)
	}
	temp := req.Temperature
	if temp == nil {
		temp = models.Float64Pointer(rec.Temperature)
	}
	h := &models.OutfitHistory{
		ClothingIDs: rec.ClothingIDs,
		Occasion:    rec.Occasion,
		Weather:     req.Weather,
		Temperature: temp,
		Rating:      req.Rating,
	}
	if rec.Reason != "" {
		h.AISuggestion = models.StrPointer(rec.Reason)
	}
	if err := a.store.AddOutfitHistory(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}
