package pitch

// Frame is one raw estimator output per analysis hop, produced by the
// capture context. A Frequency at or below zero marks "no pitch this hop".
type Frame struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
	RMS        float64 `json:"rms"`
	RMSDb      float64 `json:"rms_db"`
	GateOpen   bool    `json:"gate_open"`
	Timestamp  float64 `json:"timestamp"` // ms since capture start, sample-clock derived
}

// Observation is one smoothed, musically mapped pitch observation. When
// Voiced is false the pitch fields are meaningless and NoteName is empty.
type Observation struct {
	Timestamp float64 `json:"timestamp"` // ms since capture start
	Voiced    bool    `json:"voiced"`
	Frequency float64 `json:"frequency,omitempty"`
	MidiFloat float64 `json:"midi,omitempty"`
	NoteName  string  `json:"note,omitempty"`
	Cents     int     `json:"cents"`
	Level     float64 `json:"level"` // frame RMS in dB
	Stable    bool    `json:"stable"`
	GateOpen  bool    `json:"gate_open"`
}
