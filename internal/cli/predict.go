package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/classify-ui/internal/model"
	"github.com/Brownie44l1/classify-ui/internal/ui"
)

func newPredictCmd(opts *options) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Upload one image and print its predictions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			client := opts.client()
			ctrl := ui.NewController(client)

			fmt.Fprintln(cmd.OutOrStdout(), "Processing image...")
			state := ctrl.Upload(cmd.Context(), filepath.Base(args[0]), data)

			if err := ui.RenderText(cmd.OutOrStdout(), state); err != nil {
				return err
			}
			if state.Error != "" {
				return &renderedError{msg: state.Error}
			}

			if savePath != "" {
				if err := saveImage(cmd.Context(), client, state.ImageURL, savePath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved processed image to %s\n", savePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "write the processed image to this path (e.g. "+ui.SaveFilename+")")
	return cmd
}

func saveImage(ctx context.Context, client *model.Client, imageURL, path string) error {
	if imageURL == "" {
		return errors.New("backend returned no processed image")
	}

	var data []byte
	var err error
	if ui.IsDataURL(imageURL) {
		data, _, err = ui.DecodeImageURL(imageURL)
	} else {
		data, _, err = client.FetchImage(ctx, imageURL)
	}
	if err != nil {
		return fmt.Errorf("failed to load processed image: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save processed image: %w", err)
	}
	return nil
}
