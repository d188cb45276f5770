package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "therapy_chat_turns_total",
		Help: "Completed chat turns by response source (openai, deepseek, local, fallback, crisis).",
	}, []string{"source"})

	chatMoods = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "therapy_chat_moods_total",
		Help: "Assistant moods attached to chat replies.",
	}, []string{"mood"})

	transcriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "therapy_transcriptions_total",
		Help: "Speech-to-text requests by outcome.",
	}, []string{"outcome"})

	synthesizedClips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "therapy_synthesized_clips_total",
		Help: "Audio clips produced by text-to-speech.",
	})
)

// ObserveChatTurn records a completed chat turn and the mood sent back.
func ObserveChatTurn(source, mood string) {
	chatTurns.WithLabelValues(source).Inc()
	chatMoods.WithLabelValues(mood).Inc()
}

// ObserveTranscription records a speech-to-text attempt. Outcome is "ok" or
// "error".
func ObserveTranscription(outcome string) {
	transcriptions.WithLabelValues(outcome).Inc()
}

// ObserveSynthesis records one synthesized clip.
func ObserveSynthesis() {
	synthesizedClips.Inc()
}
