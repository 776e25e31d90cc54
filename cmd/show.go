package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsight/internal/ansi"
	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/match"
)

var showCmd = &cobra.Command{
	Use:   "show [card_name]",
	Short: "Display a template image with ANSI art",
	Long: `Show renders a reference image from the template catalog in the terminal next
to its rank, suit, blackjack value and how well the matcher recognizes it.

Examples:
  cardsight show king_of_hearts
  cardsight show --templates ./my-cards ace_of_spades`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		width, _ := cmd.Flags().GetInt("width")

		s, err := loadSettings()
		if err != nil {
			return err
		}
		templates, err := loadTemplates(s)
		if err != nil {
			return err
		}

		img, ok := templates.Get(name)
		if !ok {
			return fmt.Errorf("no template named %q in %s", name, templates.Path)
		}

		c := card.Parse(name)
		b := img.Bounds()
		m := match.New(templates, match.WithThreshold(s.MatchThreshold))
		defer m.Close()
		res, matched := m.Match(img)

		info := []string{
			colorize.CyanString("Card:    ") + colorize.HiWhiteString(c.Name),
			colorize.CyanString("Catalog: ") + colorize.HiWhiteString(catalog.DisplayName(templates.Path)),
			colorize.CyanString("Rank:    ") + colorize.HiWhiteString(c.Rank),
			colorize.CyanString("Suit:    ") + colorize.HiWhiteString(c.Suit),
			colorize.CyanString("Value:   ") + colorize.HiWhiteString("%d", c.Value()),
			colorize.CyanString("Size:    ") + colorize.HiWhiteString("%dx%d", b.Dx(), b.Dy()),
		}
		switch {
		case !matched:
			info = append(info, colorize.CyanString("Match:   ")+colorize.RedString("unrecognized"))
		case res.Name != name:
			info = append(info, colorize.CyanString("Match:   ")+
				colorize.YellowString("%s (%.3f)", res.Name, res.Score))
		default:
			info = append(info, colorize.CyanString("Match:   ")+
				colorize.GreenString("%.3f", res.Score))
		}

		fmt.Println()
		fmt.Print(ansi.SideBySide(ansi.Render(img, width, true), info, 4))
		fmt.Println()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().Int("width", 32, "Width of the card art in columns")
}
