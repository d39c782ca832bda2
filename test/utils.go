package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"stylistapi/models"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

// StylistServiceMock satisfies services.StylistServiceProvider with canned
// results, and records call arguments for assertions.
type StylistServiceMock struct {
	Inventory  *models.Inventory
	Reply      *models.ModelReply
	AnalyzeErr error
	ChatErr    error

	AnalyzedPaths []string
	ChatMessages  []string
	ChatHistories [][]models.ChatTurn
}

func (m *StylistServiceMock) AnalyzeVideo(ctx context.Context, videoPath string, lat, lon *float64) (*models.Inventory, error) {
	m.AnalyzedPaths = append(m.AnalyzedPaths, videoPath)
	if m.AnalyzeErr != nil {
		return nil, m.AnalyzeErr
	}
	return m.Inventory, nil
}

func (m *StylistServiceMock) GeneratePersona(ctx context.Context, inventory *models.Inventory, lat, lon *float64) *models.ModelReply {
	return m.Reply
}

func (m *StylistServiceMock) Chat(ctx context.Context, userMessage string, history []models.ChatTurn, inventory []models.ClothingItem, lat, lon *float64) (*models.ModelReply, error) {
	m.ChatMessages = append(m.ChatMessages, userMessage)
	m.ChatHistories = append(m.ChatHistories, history)
	if m.ChatErr != nil {
		return nil, m.ChatErr
	}
	return m.Reply, nil
}

// WeatherServiceMock satisfies services.WeatherServiceProvider.
type WeatherServiceMock struct {
	Snapshot *models.WeatherSnapshot
}

func (m *WeatherServiceMock) Fetch(ctx context.Context, lat, lon float64) *models.WeatherSnapshot {
	return m.Snapshot
}
