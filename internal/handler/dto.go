package handler

import (
	"time"

	"github.com/salasvega/easyvinted8-sub003/internal/model"
)

type InsightResponse struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Priority      string                 `json:"priority"`
	Title         string                 `json:"title"`
	Message       string                 `json:"message"`
	ActionLabel   string                 `json:"action_label"`
	ArticleIDs    []string               `json:"article_ids"`
	ArticleTitles []string               `json:"article_titles,omitempty"`
	Action        *model.SuggestedAction `json:"suggested_action,omitempty"`
	Status        string                 `json:"status"`
	CreatedAt     string                 `json:"created_at"`
	ExpiresAt     string                 `json:"expires_at"`
}

type CountsResponse struct {
	General    int `json:"general"`
	Pricing    int `json:"pricing"`
	Scheduling int `json:"scheduling"`
}

type InsightsResponse struct {
	General    []InsightResponse `json:"general"`
	Pricing    []InsightResponse `json:"pricing"`
	Scheduling []InsightResponse `json:"scheduling"`
	Counts     CountsResponse    `json:"counts"`
	Badge      int               `json:"badge"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func toInsightResponse(ins model.Insight) InsightResponse {
	return InsightResponse{
		ID:            ins.ID,
		Type:          ins.Type,
		Priority:      ins.Priority,
		Title:         ins.Title,
		Message:       ins.Message,
		ActionLabel:   ins.ActionLabel,
		ArticleIDs:    ins.ArticleIDs,
		ArticleTitles: ins.ArticleTitles,
		Action:        ins.Action,
		Status:        ins.Status,
		CreatedAt:     ins.CreatedAt.Format(time.RFC3339),
		ExpiresAt:     ins.ExpiresAt.Format(time.RFC3339),
	}
}
