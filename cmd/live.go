package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/intune-audio/intune/grade"
	"github.com/intune-audio/intune/melody"
	"github.com/intune-audio/intune/pitch"
	"github.com/intune-audio/intune/session"
)

var (
	liveSensitivity string
	liveRange       string
	liveA4          float64
	liveDuration    time.Duration
	liveMelodyPath  string
)

func init() {
	liveCmd.Flags().StringVar(&liveSensitivity, "sensitivity", "standard", "smoothing sensitivity: beginner, standard or advanced")
	liveCmd.Flags().StringVar(&liveRange, "range", "full", "vocal range preset: full, bass, tenor, alto or soprano")
	liveCmd.Flags().Float64Var(&liveA4, "a4", pitch.DefaultA4, "reference A4 frequency in Hz")
	liveCmd.Flags().DurationVar(&liveDuration, "duration", 0, "stop automatically after this long (0 = run until interrupted)")
	liveCmd.Flags().StringVar(&liveMelodyPath, "melody", "", "MIDI file to grade the performance against on exit")
	rootCmd.AddCommand(liveCmd)
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Track pitch from the microphone in real time",
	Long: `Captures from the default input device and prints one line per
pitch observation. With --melody the captured performance is graded
when capture stops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return live()
	},
}

func live() error {
	var mel melody.Melody
	haveMelody := liveMelodyPath != ""
	if haveMelody {
		var err error
		mel, err = melody.LoadSMF(liveMelodyPath)
		if err != nil {
			return fmt.Errorf("loading melody: %w", err)
		}
	}

	cfg := session.DefaultConfig().WithVocalRange(session.VocalRange(liveRange))
	cfg.Sensitivity = pitch.Sensitivity(liveSensitivity)
	cfg.ReferenceA4 = liveA4

	sess, err := session.New(cfg, session.NewPortAudioSource())
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Init(context.Background()); err != nil {
		return err
	}
	if err := sess.Start(printObservation); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	if liveDuration > 0 {
		select {
		case <-sig:
		case <-time.After(liveDuration):
		}
	} else {
		<-sig
	}

	history, err := sess.Stop()
	if err != nil {
		return err
	}
	fmt.Printf("\ncaptured %d observations", len(history))
	if dropped := sess.DroppedFrames(); dropped > 0 {
		fmt.Printf(" (%d frames dropped)", dropped)
	}
	fmt.Println()

	if haveMelody {
		printReport(grade.Grade(history, mel))
	}
	return nil
}

func printObservation(obs pitch.Observation) {
	if !obs.Voiced {
		return
	}
	marker := " "
	if obs.Stable {
		marker = "*"
	}
	fmt.Printf("%8.0fms  %-4s %+4d cents  %6.1f Hz  %6.1f dB %s\n",
		obs.Timestamp, obs.NoteName, obs.Cents, obs.Frequency, obs.Level, marker)
}
