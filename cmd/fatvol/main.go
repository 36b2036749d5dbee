// Command fatvol reads a raw FAT32 volume image without mounting it.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aligator/fatvol"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	log = logrus.New()

	verbose    bool
	skipChecks bool
	outputDir  string
)

func openVolume(imagePath string) (*fatvol.Volume, func(), error) {
	image, err := os.Open(imagePath)
	if err != nil {
		return nil, nil, err
	}

	log.WithField("image", imagePath).Debug("image opened")

	var volume *fatvol.Volume
	if skipChecks {
		volume, err = fatvol.OpenSkipChecks(image)
	} else {
		volume, err = fatvol.Open(image)
	}
	if err != nil {
		image.Close()
		return nil, nil, err
	}

	return volume, func() { image.Close() }, nil
}

func main() {
	root := &cobra.Command{
		Use:           "fatvol",
		Short:         "Read-only FAT32 volume image tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	root.PersistentFlags().BoolVar(&skipChecks, "skip-checks", false, "skip the structural volume validations")

	info := &cobra.Command{
		Use:   "info <image>",
		Short: "Print metadata about the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, closeImage, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer closeImage()

			_, err = volume.Report().WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list <image>",
		Short: "Recursively list the directory tree of the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, closeImage, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer closeImage()

			return volume.ListTree(cmd.OutOrStdout())
		},
	}

	get := &cobra.Command{
		Use:   "get <image> <path>",
		Short: "Extract a single file from the volume by its short name path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, closeImage, err := openVolume(args[0])
			if err != nil {
				return err
			}
			defer closeImage()

			destination, err := volume.ExtractTo(afero.NewOsFs(), outputDir, args[1])
			if err != nil {
				if errors.Is(err, fatvol.ErrNotFound) {
					return fmt.Errorf("file could not be found: %s", args[1])
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "File copied to %s\n", destination)
			return nil
		},
	}
	get.Flags().StringVarP(&outputDir, "output", "o", "output", "directory the extracted file is written to")

	root.AddCommand(info, list, get)

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
