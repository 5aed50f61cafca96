package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"memory-duel/internal/config"
	"memory-duel/internal/game"
	"memory-duel/internal/logging"
)

var errQuit = errors.New("input closed before the game ended")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	player1 := flag.String("p1", "Player 1", "name of the first player")
	player2 := flag.String("p2", "Player 2", "name of the second player")
	gridSize := flag.Int("grid", cfg.DefaultGridSize, "cards per side; must be even")
	seed := flag.Int64("seed", time.Now().UnixNano(), "shuffle seed")
	flag.Parse()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	term := &terminal{out: os.Stdout}
	gs, err := game.StartGame(game.Settings{
		Player1Name: *player1,
		Player2Name: *player2,
		GridSize:    *gridSize,
		FacePool:    game.DefaultFacePool(cfg.FacePoolSize),
		Rand:        rand.New(rand.NewSource(*seed)),
		Listener:    term,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("could not start game", zap.Error(err))
	}

	if err := play(gs, os.Stdin, os.Stdout); err != nil {
		logger.Fatal("game aborted", zap.Error(err))
	}
}

// play reads card numbers until the game is over.
func play(gs *game.GameState, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for !gs.IsOver() {
		render(out, gs)
		fmt.Fprintf(out, "%s, pick a card: ", gs.CurrentPlayer().Name)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errQuit
		}

		id, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(out, "Enter a card number.")
			continue
		}
		if !gs.RequestFlip(id) {
			fmt.Fprintf(out, "Card %d can't be flipped.\n", id)
		}
	}
	return nil
}

// render prints the grid: ids for hidden cards, faces for face-up cards, dots
// for removed ones. Scores and the turn go underneath.
func render(out io.Writer, gs *game.GameState) {
	var b strings.Builder
	b.WriteString("\n")
	for i, card := range gs.Deck().Cards() {
		var cell string
		switch {
		case card.IsRemoved():
			cell = "."
		case card.IsFaceUp():
			cell = card.FaceValue
		default:
			cell = strconv.Itoa(card.ID)
		}
		fmt.Fprintf(&b, "%8s", cell)
		if (i+1)%gs.GridSize() == 0 {
			b.WriteString("\n")
		}
	}
	for i := 0; i < 2; i++ {
		p := gs.Player(i)
		fmt.Fprintf(&b, "%s: %d", p.Name, p.Score())
		if i == gs.CurrentPlayerIndex() {
			b.WriteString(" <")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Flips: %d\n", gs.FlipCount())
	io.WriteString(out, b.String())
}

// terminal narrates game events on a writer
type terminal struct {
	out io.Writer
}

func (t *terminal) OnFlip(card *game.Card) {
	fmt.Fprintf(t.out, "Card %d is %s\n", card.ID, card.FaceValue)
}

func (t *terminal) OnUnflip(card *game.Card) {}

func (t *terminal) OnMatch(first, second *game.Card, player *game.Player) {
	fmt.Fprintf(t.out, "Match! %s takes the %s pair and goes again.\n", player.Name, first.FaceValue)
}

func (t *terminal) OnTurnSwitch(index int) {
	fmt.Fprintln(t.out, "No match.")
}

func (t *terminal) OnGameOver(outcome game.Outcome) {
	fmt.Fprintf(t.out, "\n%s\n", outcome)
}
