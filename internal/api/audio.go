package api

import (
	"errors"
	"io"
	"net/http"

	"virtual-therapy-demo/backend/ai"
	"virtual-therapy-demo/backend/internal/models"
	"virtual-therapy-demo/backend/internal/service"
	"virtual-therapy-demo/backend/pkg/config"
	"virtual-therapy-demo/backend/pkg/logger"
	"virtual-therapy-demo/backend/shared/observability"

	"github.com/gin-gonic/gin"
)

// AudioHandler handles speech-to-text, text-to-speech and clip serving
type AudioHandler struct {
	audio  *service.AudioService
	ai     *ai.Service
	logger *logger.Logger

	maxUploadSize int64
	defaultVoice  string
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(audio *service.AudioService, aiService *ai.Service, logger *logger.Logger) *AudioHandler {
	cfg := config.Get()
	return &AudioHandler{
		audio:         audio,
		ai:            aiService,
		logger:        logger,
		maxUploadSize: cfg.Audio.MaxUploadSize,
		defaultVoice:  cfg.Audio.DefaultVoice,
	}
}

// Transcribe converts an uploaded recording to text. Unlike chat replies
// there is no fallback here: a provider failure is reported to the caller.
func (h *AudioHandler) Transcribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An audio file is required"})
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio file is too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio file"})
		return
	}
	defer src.Close()

	audioData, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio file"})
		return
	}
	if len(audioData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is empty"})
		return
	}

	language := c.PostForm("language")

	transcription, err := h.ai.SpeechToText(c.Request.Context(), audioData, file.Filename, language)
	if err != nil {
		observability.ObserveTranscription("error")
		if errors.Is(err, ai.ErrSpeechUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Speech recognition is not configured"})
			return
		}
		h.logger.Error("Transcription failed", "error", err.Error(), "filename", file.Filename)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to transcribe audio"})
		return
	}

	observability.ObserveTranscription("ok")
	c.JSON(http.StatusOK, models.TranscriptionResponse{
		Text:       transcription.Text,
		Confidence: transcription.Confidence,
	})
}

// Synthesize converts text to a speech clip and returns the clip URL. The
// same text, voice and speed always map to the same clip id, so repeated
// requests refresh the cached clip instead of multiplying it.
func (h *AudioHandler) Synthesize(c *gin.Context) {
	var req models.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = h.defaultVoice
	}
	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}

	data, err := h.ai.TextToSpeech(c.Request.Context(), req.Text, voice, speed)
	if err != nil {
		if errors.Is(err, ai.ErrSpeechUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Speech synthesis is not configured"})
			return
		}
		h.logger.Error("Synthesis failed", "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to synthesize audio"})
		return
	}

	clipID := ai.ClipID(req.Text, voice, speed)
	clip, err := h.audio.StoreClip(c.Request.Context(), clipID, data, nil, clipID+".mp3", "audio/mpeg", models.AudioClipResponse)
	if err != nil {
		h.logger.Error("Could not store synthesized clip", "error", err.Error(), "clipID", clipID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store audio clip"})
		return
	}

	observability.ObserveSynthesis()
	c.JSON(http.StatusOK, gin.H{
		"clipId":   clip.ClipID,
		"audioUrl": "/api/audio/clips/" + clip.ClipID,
		"size":     clip.Size,
	})
}

// ServeClip streams a stored audio clip
func (h *AudioHandler) ServeClip(c *gin.Context) {
	clipID := c.Param("id")
	if clipID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Clip ID is required"})
		return
	}

	data, contentType, err := h.audio.GetClip(c.Request.Context(), clipID)
	if err != nil {
		switch err {
		case service.ErrClipNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Audio clip not found or expired"})
		default:
			h.logger.Error("Error loading clip", "error", err.Error(), "clipID", clipID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audio clip"})
		}
		return
	}

	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}
