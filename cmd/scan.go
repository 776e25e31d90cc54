package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/recognize"
	"github.com/arcanaland/cardsight/internal/table"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Detect and identify the cards in a table image",
	Long: `Scan finds every card-shaped quadrilateral in the image, straightens it and
matches it against the template catalog. Cards in the upper half of the image
are counted for the dealer, cards in the lower half for the player.

Examples:
  cardsight scan table.png
  cardsight scan --overlay found.png --threshold 0.8 table.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("threshold") {
			s.MatchThreshold, _ = cmd.Flags().GetFloat64("threshold")
		}
		if cmd.Flags().Changed("min-area") {
			s.MinContourArea, _ = cmd.Flags().GetFloat64("min-area")
		}
		workers, _ := cmd.Flags().GetInt("workers")
		overlay, _ := cmd.Flags().GetString("overlay")

		templates, err := loadTemplates(s)
		if err != nil {
			return err
		}
		img, err := catalog.LoadImage(args[0])
		if err != nil {
			return err
		}

		o := recognize.New(templates, s, recognize.WithWorkers(workers))
		defer o.Close()
		detections, err := o.Scan(img)
		if err != nil {
			return err
		}
		if len(detections) == 0 {
			pterm.Warning.Println("No cards detected")
			return nil
		}

		height := img.Bounds().Dy()
		rows := pterm.TableData{{"#", "Side", "Card", "Value", "Confidence", "Box"}}
		for i, d := range detections {
			name, value, conf := pterm.Gray("unrecognized"), "0", "-"
			if d.Matched {
				name = d.Name
				value = fmt.Sprint(card.Value(d.Name))
				conf = fmt.Sprintf("%.3f", d.Confidence)
			}
			rows = append(rows, []string{
				fmt.Sprint(i + 1),
				recognize.SideOf(d, height).String(),
				name,
				value,
				conf,
				d.Box.String(),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}

		dealer, player := recognize.Totals(detections, height)
		pterm.Info.Printfln("Dealer: %d  Player: %d", dealer, player)

		if overlay != "" {
			drawn, err := table.Overlay(img, detections, 4)
			if err != nil {
				return err
			}
			if err := writePNG(overlay, drawn); err != nil {
				return err
			}
			pterm.Success.Printfln("Overlay written to %s", overlay)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("overlay", "o", "", "Write the image with detected contours drawn on it")
	scanCmd.Flags().Float64("threshold", 0, "Minimum match confidence (default from config)")
	scanCmd.Flags().Float64("min-area", 0, "Minimum card area in px² (default from config)")
	scanCmd.Flags().IntP("workers", "w", 1, "Goroutines used to scan the catalog")
}

// writePNG encodes img to path
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	return nil
}
