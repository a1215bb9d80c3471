package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/unixpickle/wav"

	"github.com/intune-audio/intune/grade"
	"github.com/intune-audio/intune/melody"
	"github.com/intune-audio/intune/pitch"
	"github.com/intune-audio/intune/session"
)

var (
	analyzeSensitivity string
	analyzeRange       string
	analyzeA4          float64
	analyzeBPM         float64
	analyzeMeter       string
	analyzeJSON        bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSensitivity, "sensitivity", "standard", "smoothing sensitivity: beginner, standard or advanced")
	analyzeCmd.Flags().StringVar(&analyzeRange, "range", "full", "vocal range preset: full, bass, tenor, alto or soprano")
	analyzeCmd.Flags().Float64Var(&analyzeA4, "a4", pitch.DefaultA4, "reference A4 frequency in Hz")
	analyzeCmd.Flags().Float64Var(&analyzeBPM, "bpm", 0, "override the melody tempo")
	analyzeCmd.Flags().StringVar(&analyzeMeter, "meter", "", "override the melody time signature, e.g. 6/8")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit the full report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <recording.wav> <melody.mid>",
	Short: "Grade a recorded performance against a reference melody",
	Long: `Runs a recorded WAV file through the full pitch pipeline and grades
it against the notes of a standard MIDI file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(args[0], args[1])
	},
}

func analyze(wavPath, midiPath string) error {
	mel, err := melody.LoadSMF(midiPath)
	if err != nil {
		return fmt.Errorf("loading melody: %w", err)
	}
	if analyzeBPM > 0 {
		mel.BPM = analyzeBPM
	}
	if analyzeMeter != "" {
		sig, err := melody.ParseTimeSignature(analyzeMeter)
		if err != nil {
			return err
		}
		mel.Signature = sig
	}

	samples, sampleRate, err := readWavMono(wavPath)
	if err != nil {
		return fmt.Errorf("reading recording: %w", err)
	}

	cfg := session.DefaultConfig().WithVocalRange(session.VocalRange(analyzeRange))
	cfg.SampleRate = sampleRate
	cfg.Sensitivity = pitch.Sensitivity(analyzeSensitivity)
	cfg.ReferenceA4 = analyzeA4
	cfg.UseFFTEstimator = true

	src := session.NewStreamSource(samples, 0)
	sess, err := session.New(cfg, src)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Init(context.Background()); err != nil {
		return err
	}
	if err := sess.Start(nil); err != nil {
		return err
	}
	<-src.Done()

	history, err := sess.Stop()
	if err != nil {
		return err
	}

	report := grade.Grade(history, mel)
	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report)
	return nil
}

// readWavMono loads a WAV file and downmixes interleaved channels to mono.
func readWavMono(path string) ([]float32, int, error) {
	sound, err := wav.ReadSoundFile(path)
	if err != nil {
		return nil, 0, err
	}

	raw := sound.Samples()
	channels := sound.Channels()
	if channels <= 1 {
		mono := make([]float32, len(raw))
		for i, s := range raw {
			mono[i] = float32(s)
		}
		return mono, sound.SampleRate(), nil
	}

	mono := make([]float32, 0, len(raw)/channels)
	for off := 0; off+channels <= len(raw); off += channels {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(raw[off+c])
		}
		mono = append(mono, float32(sum/float64(channels)))
	}
	return mono, sound.SampleRate(), nil
}

func printReport(r grade.Report) {
	fmt.Printf("Overall:   %5.1f\n", r.LeadershipScore)
	fmt.Printf("Pitch:     %5.1f\n", r.PitchScore)
	fmt.Printf("Rhythm:    %5.1f\n", r.RhythmScore)
	fmt.Printf("Stability: %5.1f\n", r.StabilityScore)
	fmt.Println()
	fmt.Printf("Matched %d of %d notes", r.Summary.MatchedNotes, r.Summary.TotalNotes)
	if r.Summary.MatchedNotes > 0 {
		fmt.Printf(" (avg %.1f cents off, avg %.0f ms off)", r.Summary.AvgCentsOff, r.Summary.AvgTimingOffMs)
	}
	fmt.Println()
	fmt.Println()
	for _, msg := range r.Diagnostics {
		fmt.Printf("  - %s\n", msg)
	}
}
