package main

import (
	"fmt"

	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/service"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import homepage content from a seed JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				path = cfg.SeedFile
			}

			seeder := service.NewSeedService(service.NewContent(db.DB), log)
			report, err := seeder.ImportFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("seed %s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s\n", path)
			fmt.Fprintf(out, "  stats:          %d\n", report.Stats)
			fmt.Fprintf(out, "  brutal math:    %d\n", report.BrutalMathStats)
			fmt.Fprintf(out, "  features:       %d\n", report.Features)
			fmt.Fprintf(out, "  services:       %d\n", report.Services)
			fmt.Fprintf(out, "  comparison:     %d\n", report.Comparison)
			fmt.Fprintf(out, "  case studies:   %d\n", report.CaseStudies)
			fmt.Fprintf(out, "  process steps:  %d\n", report.ProcessSteps)
			fmt.Fprintf(out, "  social links:   %d\n", report.SocialLinks)
			fmt.Fprintf(out, "  gallery:        %d created, %d already present\n", report.GalleryCreated, report.GallerySkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed document (default: SEED_FILE)")
	return cmd
}
