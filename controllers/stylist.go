package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"stylistapi/models"
	"stylistapi/services"
)

var allowedVideoExtensions = []string{".mp4", ".mov", ".webm", ".avi", ".mkv", ".3gp"}

// Request structs for validation
type ChatIn struct {
	UserMessage      string                `json:"user_message" validate:"required,max=4000"`
	ChatHistory      []models.ChatTurn     `json:"chat_history"`
	InventoryContext []models.ClothingItem `json:"inventory_context"`
	Lat              *float64              `json:"lat"`
	Lon              *float64              `json:"lon"`
}

type StylistController struct {
	Stylist services.StylistServiceProvider
}

func (controller *StylistController) StylistRoutes(e *echo.Echo) {
	e.POST("/analyze-video", controller.AnalyzeVideo)
	e.POST("/api/chat", controller.Chat)
}

// AnalyzeVideo accepts a multipart wardrobe video plus optional lat/lon form
// floats and answers with the extracted Inventory, or an {error} payload.
func (controller *StylistController) AnalyzeVideo(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Video file was not provided"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(allowedVideoExtensions, ext) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Unsupported video format %q", ext)})
	}

	lat := parseCoordinate(c.FormValue("lat"))
	lon := parseCoordinate(c.FormValue("lon"))

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read uploaded video"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Could not read uploaded video"})
	}

	tempPath, err := services.CreateTempFile(data, fileHeader.Filename)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not store uploaded video"})
	}
	defer os.Remove(tempPath)

	inventory, err := controller.Stylist.AnalyzeVideo(c.Request().Context(), tempPath, lat, lon)
	if err != nil {
		sentry.CaptureException(err)
		switch {
		case errors.Is(err, services.ErrNoCredentials):
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Service is not available, please try again a bit later"})
		case errors.Is(err, services.ErrAssetProcessingTimeout):
			return c.JSON(http.StatusGatewayTimeout, map[string]string{"error": "Video took too long to process, please try a shorter clip"})
		default:
			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusOK, inventory)
}

// Chat answers one conversation turn. Model fallback and the graceful
// degradation reply live inside the service, so besides bad input the only
// failure here is a missing credential pool.
func (controller *StylistController) Chat(c echo.Context) error {
	var req ChatIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	reply, err := controller.Stylist.Chat(c.Request().Context(), req.UserMessage, req.ChatHistory, req.InventoryContext, req.Lat, req.Lon)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Service is not available, please try again a bit later"})
	}
	return c.JSON(http.StatusOK, reply)
}

func parseCoordinate(raw string) *float64 {
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
