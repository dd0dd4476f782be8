package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/capture"
	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

var storeTextCmd = &cobra.Command{
	Use:   "store-text",
	Short: "Store text from stdin in the history",
	Long: `Read UTF-8 text from stdin and add it to the clipboard history.

This is run by the watchers started with 'clipr listen'. Empty input is
ignored.`,
	Args: cobra.NoArgs,
	RunE: runStoreText,
}

var storeImageCmd = &cobra.Command{
	Use:   "store-image",
	Short: "Store an image from stdin in the history",
	Long: `Read image bytes from stdin and add them to the clipboard history.

Images larger than images.max_memory_size are written to the data directory
and stored as file references. Images larger than images.max_size are
rejected. Empty input is ignored.`,
	Args: cobra.NoArgs,
	RunE: runStoreImage,
}

var storeImageMIME string

func init() {
	storeImageCmd.Flags().StringVar(&storeImageMIME, "mime", "image/png", "MIME type of the image (empty to detect)")

	rootCmd.AddCommand(storeTextCmd)
	rootCmd.AddCommand(storeImageCmd)
}

func newCapturer(cfg *config.Config) *capture.Capturer {
	return capture.New(capture.Options{
		MaxImageSize:  cfg.MaxImageSize(),
		MaxMemorySize: cfg.MaxMemorySize(),
		ImagesDir:     config.ImagesDir(cfg.DataPath()),
	})
}

// runStoreText stores stdin as text.
func runStoreText(cmd *cobra.Command, _ []string) error {
	return storeFrom(cmd.InOrStdin(), func(c *capture.Capturer, r io.Reader) (history.Content, error) {
		return c.Text(r)
	})
}

// runStoreImage stores stdin as an image.
func runStoreImage(cmd *cobra.Command, _ []string) error {
	return storeFrom(cmd.InOrStdin(), func(c *capture.Capturer, r io.Reader) (history.Content, error) {
		return c.Image(r, storeImageMIME)
	})
}

func storeFrom(r io.Reader, read func(*capture.Capturer, io.Reader) (history.Content, error)) error {
	cfg := appConfig

	content, err := read(newCapturer(cfg), r)
	if errors.Is(err, capture.ErrEmpty) {
		printVerbose("Empty input, nothing stored")
		return nil
	}
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := capture.Record(store, content)
	if err != nil {
		return fmt.Errorf("failed to store clip: %w", err)
	}
	printVerbose("Stored entry %d (%s)", id, content.Preview(40))
	return nil
}

