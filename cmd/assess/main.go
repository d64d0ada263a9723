package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"speecheval/config"
	"speecheval/services"
	"speecheval/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		vendor     string
		audioPath  string
		prompt     string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one recording with a speech-assessment vendor",
		Long: `Sends a local audio file and prompt to Language Confidence (lc),
SpeechAce (sa) or SpeechSuper (ss) and prints the normalized result as JSON.
Credentials come from the config file, .env or LC_API_KEY, SA_API_KEY,
SS_APP_KEY and SS_SECRET_KEY.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			utils.SetLevel(cfg.Log.Level)

			id, err := services.ParseVendorID(vendor)
			if err != nil {
				return err
			}
			adapter, ok := services.NewRegistry(cfg.Vendors).Lookup(id)
			if !ok {
				return fmt.Errorf("no adapter for %s", id)
			}

			mtype, err := mimetype.DetectFile(audioPath)
			if err != nil {
				return fmt.Errorf("failed to read audio: %w", err)
			}

			f, err := os.Open(audioPath)
			if err != nil {
				return fmt.Errorf("failed to open audio: %w", err)
			}
			defer f.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := adapter.Assess(ctx, services.AudioClip{
				Filename:    filepath.Base(audioPath),
				ContentType: mtype.String(),
				Reader:      f,
			}, prompt)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVarP(&vendor, "vendor", "v", "lc", "vendor key: lc, sa or ss")
	cmd.Flags().StringVarP(&audioPath, "file", "f", "", "audio file to assess")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "question the speaker was answering")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall time limit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
