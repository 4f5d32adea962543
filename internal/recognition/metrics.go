package recognition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recognition loop metrics
	framesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablesight_frames_total",
			Help: "Total number of recognized frames",
		},
	)

	captureFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablesight_capture_failures_total",
			Help: "Total number of capture attempts that yielded no frame",
		},
	)

	recognitionFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablesight_recognition_failures_total",
			Help: "Total number of recognition cycles that failed",
		},
	)

	frameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablesight_frame_duration_seconds",
			Help:    "Recognition duration per frame in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	ocrDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablesight_ocr_duration_seconds",
			Help:    "Text zone OCR duration per frame in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	uncertainSlotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablesight_uncertain_card_slots_total",
			Help: "Total number of card slots recognized as uncertain",
		},
	)

	// Latest frame gauges
	boardCardsVisible = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablesight_board_cards_visible",
			Help: "Board cards recognized in the latest frame",
		},
	)

	validTextZones = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablesight_valid_text_zones",
			Help: "Text zones that passed validation in the latest frame",
		},
	)

	currentStreet = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablesight_current_street",
			Help: "Street of the latest frame (0=preflop, 1=flop, 2=turn, 3=river)",
		},
	)
)

// streetIndex maps a street to its gauge value.
func streetIndex(s Street) float64 {
	switch s {
	case StreetFlop:
		return 1
	case StreetTurn:
		return 2
	case StreetRiver:
		return 3
	default:
		return 0
	}
}
