package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/services/blob"
)

func init() {
	rootCmd.AddCommand(imagesCmd)
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Uploads the captured images to the blob store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := blob.ListImages(cfg.ImageDir)
		if err != nil {
			return err
		}

		store, err := openBlobs()
		if err != nil {
			return err
		}
		defer store.Close()

		bar := newProgressBar(len(images), "Uploading images")
		uploaded, err := blob.LoadDir(cmd.Context(), store, cfg.ImageDir, func() {
			bar.Add(1)
		})
		bar.Finish()
		if err != nil {
			return err
		}

		color.Green("\n✓ Uploaded %d images to %s\n", uploaded, cfg.BlobDriver)
		return nil
	},
}
