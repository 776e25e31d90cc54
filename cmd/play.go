package cmd

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardsight/internal/ansi"
	"github.com/arcanaland/cardsight/internal/catalog"
	"github.com/arcanaland/cardsight/internal/config"
	"github.com/arcanaland/cardsight/internal/detect"
	"github.com/arcanaland/cardsight/internal/game"
	"github.com/arcanaland/cardsight/internal/recognize"
	"github.com/arcanaland/cardsight/internal/table"
)

const (
	actionHit      = "Hit"
	actionStand    = "Stand"
	actionNewRound = "New round"
	actionQuit     = "Quit"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play blackjack against the dealer in the terminal",
	Long: `Play deals from the card images of your deck directory. Every hand total is
computed by recognizing the card images against the template catalog, and the
rendered table is scanned after each action.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		if width <= 0 {
			width = min(ansi.TerminalWidth()-4, 100)
		}

		templates, err := loadTemplates(s)
		if err != nil {
			return err
		}
		s.MinContourArea = detect.ScaleMinArea(s.MinContourArea, config.DefaultCardSize, s.CardSize)
		rec := recognize.New(templates, s)
		defer rec.Close()

		deck, err := catalog.LoadDeck(s.DeckDirectory, s.CardSize, s.CardBack)
		if err != nil {
			return err
		}
		images := make([]image.Image, len(deck))
		for i, img := range deck {
			images[i] = img
		}

		var synOpts []table.Option
		if back := loadBack(s); back != nil {
			synOpts = append(synOpts, table.WithBack(back))
		}
		syn, err := table.New(s, synOpts...)
		if err != nil {
			return err
		}

		g := game.New(images, rec, game.WithMemoize(s.MemoizeIdentity))
		p := &player{game: g, rec: rec, syn: syn, width: width}
		return p.run()
	},
}

func init() {
	RootCmd.AddCommand(playCmd)

	playCmd.Flags().Int("width", 0, "Width of the table art in columns (default: fit the terminal)")
}

// player drives a game from terminal input
type player struct {
	game  *game.Game
	rec   *recognize.Orchestrator
	syn   *table.Synthesizer
	width int
}

func (p *player) run() error {
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("jack", pterm.FgRed.ToStyle()),
	).Srender()
	if err != nil {
		slog.Debug("cannot render title", "error", err)
	}
	pterm.Print(title)

	for {
		if err := p.game.StartRound(); err != nil {
			if errors.Is(err, game.ErrDeckExhausted) {
				pterm.Error.Println(game.StatusExhausted)
				return nil
			}
			return err
		}

		for p.game.Phase() == game.PlayerTurn {
			p.render()
			action, err := pterm.DefaultInteractiveSelect.
				WithDefaultText("Select your next action").
				WithOptions([]string{actionHit, actionStand}).
				Show()
			if err != nil {
				return err
			}

			switch action {
			case actionHit:
				_, err = p.game.Hit()
			case actionStand:
				err = p.game.Stand()
			}
			if errors.Is(err, game.ErrDeckExhausted) {
				pterm.Warning.Println("The draw pile is empty, you have to stand")
				err = p.game.Stand()
			}
			if err != nil {
				return err
			}
		}

		p.render()
		next, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Round over").
			WithOptions([]string{actionNewRound, actionQuit}).
			Show()
		if err != nil {
			return err
		}
		if next == actionQuit {
			return nil
		}
	}
}

// render draws the table, scans it and prints the scores
func (p *player) render() {
	r := p.game.Round()
	scene := table.Scene{
		Dealer:     p.game.Images(r.Dealer),
		Player:     p.game.Images(r.Player),
		HideDealer: r.DealerHidden,
		ShowPile:   p.game.Remaining() > 0,
	}
	img := p.syn.Compose(scene)
	detections, err := p.rec.Scan(img)
	if err != nil {
		slog.Warn("cannot scan table", "round", r.ID, "error", err)
	}

	var shown image.Image = img
	if drawn, err := table.Overlay(img, detections, 4); err != nil {
		slog.Warn("cannot draw overlay", "round", r.ID, "error", err)
	} else {
		shown = drawn
	}

	height := img.Bounds().Dy()
	seen := make([]string, 0, len(detections))
	for _, d := range detections {
		seen = append(seen, pterm.Sprintfln("  %-6s %s", recognize.SideOf(d, height), table.Label(d)))
	}
	slog.Debug("table scan", "round", r.ID, "detections", len(detections))

	dealer := "?"
	if !r.DealerHidden {
		dealer = fmt.Sprint(p.game.HandValue(r.Dealer))
	}
	total := p.game.HandValue(r.Player)

	status := r.Status
	switch r.Result {
	case game.Win:
		status = pterm.LightGreen(status)
	case game.Lose:
		status = pterm.LightRed(status)
	case game.Draw:
		status = pterm.LightYellow(status)
	}

	info := strings.Join([]string{
		pterm.Sprintfln("Dealer: %s", pterm.LightCyan(dealer)),
		pterm.Sprintfln("Player: %s", pterm.LightCyan(total)),
		pterm.Sprintfln("Pile:   %d", p.game.Remaining()),
		pterm.Sprintfln("\nSeen:   %d", len(detections)),
		strings.Join(seen, ""),
		"\n" + status,
	}, "")

	pterm.Print(ansi.Render(shown, p.width, true))
	box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{{
		{Data: box.WithTitle(pterm.LightYellow("|BLACKJACK|")).WithTitleTopCenter().Sprint(info)},
	}}).Render()
}
