package ai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// ErrSpeechUnavailable is returned when no speech provider is configured.
var ErrSpeechUnavailable = errors.New("speech provider not configured")

// Transcription is the result of a speech-to-text call.
type Transcription struct {
	Text       string
	Confidence *float64
}

// SpeechToText transcribes recorded audio with Whisper. Failures surface to
// the caller; there is no fallback because there is no text to recover.
func (s *Service) SpeechToText(ctx context.Context, audioData []byte, filename, language string) (*Transcription, error) {
	if s.cfg.OpenAIKey == "" {
		return nil, ErrSpeechUnavailable
	}
	if len(audioData) == 0 {
		return nil, errors.New("audio data cannot be empty")
	}
	if filename == "" {
		filename = "audio.webm"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("error creating form file: %v", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("error writing audio data: %v", err)
	}

	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return nil, fmt.Errorf("error writing form field: %v", err)
	}
	if language != "" {
		// Whisper expects the bare ISO 639-1 code, not a BCP 47 tag.
		code := language
		if i := strings.Index(code, "-"); i > 0 {
			code = code[:i]
		}
		if err := writer.WriteField("language", code); err != nil {
			return nil, fmt.Errorf("error writing form field: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart writer: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.OpenAIBaseURL+"/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("error creating STT request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making STT API request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading STT response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("STT API request failed with status code %d: %s", resp.StatusCode, string(respBody))
	}

	var sttResponse struct {
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(respBody, &sttResponse); err != nil {
		return nil, fmt.Errorf("error unmarshaling STT response: %v", err)
	}

	return &Transcription{Text: sttResponse.Text, Confidence: sttResponse.Confidence}, nil
}

// TextToSpeech synthesizes MP3 audio for text. The caller decides what to do
// on error; for chat turns the contract is to answer without audio.
func (s *Service) TextToSpeech(ctx context.Context, text, voice string, speed float64) ([]byte, error) {
	if s.cfg.OpenAIKey == "" {
		return nil, ErrSpeechUnavailable
	}
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}
	if voice == "" {
		voice = "alloy"
	}
	if speed <= 0 {
		speed = 1.0
	}

	type ttsRequest struct {
		Model string  `json:"model"`
		Voice string  `json:"voice"`
		Input string  `json:"input"`
		Speed float64 `json:"speed"`
	}

	jsonData, err := json.Marshal(ttsRequest{
		Model: "tts-1",
		Voice: voice,
		Input: text,
		Speed: speed,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling TTS request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.OpenAIBaseURL+"/audio/speech", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating TTS request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making TTS API request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TTS API request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading TTS response body: %v", err)
	}

	return audioData, nil
}

// ClipID derives a deterministic identifier for a synthesized clip so the
// same text/voice/speed combination maps to one cached entry.
func ClipID(text, voice string, speed float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f", text, voice, speed)))
	return hex.EncodeToString(sum[:16])
}
