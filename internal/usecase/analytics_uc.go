// File: internal/usecase/analytics_uc.go
package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/domain/ports/repository"
)

// Compile-time check
var _ AnalyticsUseCase = (*analyticsUC)(nil)

const (
	DefaultAnalyticsDays = 7
	MaxAnalyticsDays     = 90
	costWindowDays       = 30
	dailyWindowDays      = 7
)

// Recommendation accompanies every cost estimate.
const Recommendation = "Use free tier (Gemini, OpenRouter, Groq) for MVP. Upgrade to Qwen when free tier is exhausted."

type AnalyticsUseCase interface {
	Stats(ctx context.Context, userID string, days int) (*StatsReport, error)
	ToneBreakdown(ctx context.Context, userID string, days int) (*ToneReport, error)
	CostEstimate(ctx context.Context, userID string) (*CostReport, error)
	Daily(ctx context.Context, userID string) (*DailyReport, error)
}

type Period struct {
	Days int       `json:"days"`
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type StatsReport struct {
	model.UsageStats
	EstimatedCost float64 `json:"estimatedCost"`
	Period        Period  `json:"period"`
}

type ToneShare struct {
	Tone       string  `json:"tone"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ToneReport struct {
	Tones []ToneShare `json:"tones"`
	Total int         `json:"total"`
}

// ModelPrice is USD per 1K tokens for a provider tier.
type ModelPrice struct {
	ID         string
	Name       string
	PricePer1K float64
}

// PriceTable lists the tiers offered in cost estimates. Output tokens are
// assumed to be half the total, hence the 0.5 blend applied below.
var PriceTable = []ModelPrice{
	{ID: "gemini", Name: "Google Gemini (Free)"},
	{ID: "openrouter", Name: "OpenRouter (Free)"},
	{ID: "groq", Name: "Groq (Free)"},
	{ID: "qwen", Name: "Qwen 2.5", PricePer1K: 0.00008},
	{ID: "deepseek", Name: "DeepSeek-V3", PricePer1K: 0.00014},
	{ID: "gpt4mini", Name: "GPT-4 Mini", PricePer1K: 0.0015},
}

type ModelCost struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	CostPerRequest  float64 `json:"costPerRequest"`
	MonthlyEstimate float64 `json:"monthlyEstimate"`
}

type CurrentUsage struct {
	TotalRequests           int `json:"totalRequests"`
	TotalTokens             int `json:"totalTokens"`
	AverageTokensPerRequest int `json:"averageTokensPerRequest"`
}

type CostReport struct {
	CurrentUsage   CurrentUsage `json:"currentUsage"`
	Models         []ModelCost  `json:"models"`
	Recommendation string       `json:"recommendation"`
}

type DailyAverage struct {
	Requests            float64 `json:"requests"`
	Tokens              float64 `json:"tokens"`
	ResponseTimeSeconds float64 `json:"responseTime"`
}

type DailyReport struct {
	DailyAverage DailyAverage       `json:"dailyAverage"`
	WeeklyTotal  model.UsageStats   `json:"weeklyTotal"`
	Days         []model.DailyUsage `json:"days"`
}

type analyticsUC struct {
	usage repository.UsageRepository
	now   func() time.Time
}

func NewAnalyticsUseCase(usage repository.UsageRepository) *analyticsUC {
	return &analyticsUC{usage: usage, now: time.Now}
}

func (a *analyticsUC) window(ctx context.Context, userID string, days int) ([]model.DailyUsage, Period, error) {
	to := a.now().UTC()
	// whole UTC days, today included
	y, m, d := to.AddDate(0, 0, -(days - 1)).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	rows, err := a.usage.ListDaily(ctx, repository.NoTX, userID, from.Format("2006-01-02"))
	if err != nil {
		return nil, Period{}, err
	}
	return rows, Period{Days: days, From: from, To: to}, nil
}

func validDays(days int) (int, error) {
	if days == 0 {
		return DefaultAnalyticsDays, nil
	}
	if days < 1 || days > MaxAnalyticsDays {
		return 0, domain.ErrInvalidArgument
	}
	return days, nil
}

func (a *analyticsUC) Stats(ctx context.Context, userID string, days int) (*StatsReport, error) {
	days, err := validDays(days)
	if err != nil {
		return nil, err
	}
	rows, period, err := a.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	st := model.SumUsage(rows)
	// qwen input + output per-1K prices, blended
	cost := float64(st.TotalTokensUsed) * (0.00008/1000 + 0.00024/1000) * 0.5
	return &StatsReport{UsageStats: st, EstimatedCost: round(cost, 4), Period: period}, nil
}

func (a *analyticsUC) ToneBreakdown(ctx context.Context, userID string, days int) (*ToneReport, error) {
	days, err := validDays(days)
	if err != nil {
		return nil, err
	}
	rows, _, err := a.window(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	st := model.SumUsage(rows)
	out := &ToneReport{Tones: make([]ToneShare, 0, len(st.ToneBreakdown)), Total: st.TotalRequests}
	for tone, n := range st.ToneBreakdown {
		pct := 0.0
		if st.TotalRequests > 0 {
			pct = round(float64(n)/float64(st.TotalRequests)*100, 1)
		}
		out.Tones = append(out.Tones, ToneShare{Tone: tone, Count: n, Percentage: pct})
	}
	sort.Slice(out.Tones, func(i, j int) bool {
		if out.Tones[i].Count != out.Tones[j].Count {
			return out.Tones[i].Count > out.Tones[j].Count
		}
		return out.Tones[i].Tone < out.Tones[j].Tone
	})
	return out, nil
}

func (a *analyticsUC) CostEstimate(ctx context.Context, userID string) (*CostReport, error) {
	rows, _, err := a.window(ctx, userID, costWindowDays)
	if err != nil {
		return nil, err
	}
	st := model.SumUsage(rows)
	avg := 0.0
	if st.TotalRequests > 0 {
		avg = float64(st.TotalTokensUsed) / float64(st.TotalRequests)
	}
	rep := &CostReport{
		CurrentUsage: CurrentUsage{
			TotalRequests:           st.TotalRequests,
			TotalTokens:             st.TotalTokensUsed,
			AverageTokensPerRequest: int(math.Round(avg)),
		},
		Models:         make([]ModelCost, 0, len(PriceTable)),
		Recommendation: Recommendation,
	}
	for _, p := range PriceTable {
		perReq := avg * p.PricePer1K * 0.5
		rep.Models = append(rep.Models, ModelCost{
			ID:              p.ID,
			Name:            p.Name,
			CostPerRequest:  perReq,
			MonthlyEstimate: round(perReq*float64(st.TotalRequests)*30, 2),
		})
	}
	return rep, nil
}

func (a *analyticsUC) Daily(ctx context.Context, userID string) (*DailyReport, error) {
	rows, _, err := a.window(ctx, userID, dailyWindowDays)
	if err != nil {
		return nil, err
	}
	st := model.SumUsage(rows)
	return &DailyReport{
		DailyAverage: DailyAverage{
			Requests:            round(float64(st.TotalRequests)/dailyWindowDays, 1),
			Tokens:              math.Round(float64(st.TotalTokensUsed) / dailyWindowDays),
			ResponseTimeSeconds: round(st.AverageResponseTimeMs/1000, 2),
		},
		WeeklyTotal: st,
		Days:        rows,
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
