package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	sokoban "github.com/SeamusWaldron/sokodle"
	"github.com/SeamusWaldron/sokodle/internal/recorder"
	"github.com/SeamusWaldron/sokodle/internal/session"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

var (
	playDate      string
	playUserLevel int64
	playFile      string
	playResume    bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a level in the terminal",
	Long: `Play today's daily level (or another level) in an interactive terminal UI.

Keyboard shortcuts:
  arrows / WASD - Move
  z / u         - Undo the last move
  r             - Restart the level
  q / Esc       - Quit (an unfinished game is kept for --resume)

The timer starts on the first move. Solving a daily level records your
moves and time.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playDate, "date", "", "Play the daily level for this date, YYYY-MM-DD (default: today)")
	playCmd.Flags().Int64Var(&playUserLevel, "level", 0, "Play a user-submitted level by id")
	playCmd.Flags().StringVar(&playFile, "file", "", "Play a level from a JSON or YAML file")
	playCmd.Flags().BoolVar(&playResume, "resume", false, "Continue the unfinished game")
	playCmd.MarkFlagsMutuallyExclusive("date", "level", "file", "resume")
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	wonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellStyles = map[rune]lipgloss.Style{
		sokoban.SymbolWall:         lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		sokoban.SymbolGoal:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		sokoban.SymbolBox:          lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		sokoban.SymbolBoxOnGoal:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		sokoban.SymbolPlayer:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		sokoban.SymbolPlayerOnGoal: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
)

// Messages
type tickMsg time.Time

// Model
type playModel struct {
	ctx  context.Context
	sess *recorder.Session

	title    string
	number   int // Daily level number for share text, 0 otherwise
	shareURL string

	elapsed  time.Duration
	err      error
	quitting bool
}

func newPlayModel(ctx context.Context, sess *recorder.Session, title string, number int, shareURL string) *playModel {
	return &playModel{
		ctx:      ctx,
		sess:     sess,
		title:    title,
		number:   number,
		shareURL: shareURL,
		elapsed:  sess.Game().Elapsed(),
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *playModel) tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "z", "u", "backspace":
			m.sess.Undo()

		case "r":
			m.sess.Restart()
			m.err = nil

		default:
			d, err := sokoban.ParseDirection(key)
			if err != nil {
				return m, nil
			}
			if _, err := m.sess.Move(m.ctx, d); err != nil {
				m.err = err
			}
		}
		m.elapsed = m.sess.Game().Elapsed()

	case tickMsg:
		m.elapsed = m.sess.Game().Elapsed()
		return m, m.tickCmd()
	}

	return m, nil
}

func (m *playModel) View() string {
	if m.quitting {
		if m.sess.Game().Phase() == sokoban.PhasePlaying {
			return "Game saved. Use 'sokodle play --resume' to continue.\n"
		}
		return "Goodbye!\n"
	}

	g := m.sess.Game()
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for y := 0; y < g.Scene().Rows(); y++ {
		for x := 0; x < g.Scene().Cols(); x++ {
			sym := g.Symbol(sokoban.Position{X: x, Y: y})
			if style, ok := cellStyles[sym]; ok {
				b.WriteString(style.Render(string(sym)))
			} else {
				b.WriteRune(sym)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	covered, total := g.GoalsCovered()
	b.WriteString(statusStyle.Render(fmt.Sprintf("Moves: %d   Time: %s   Goals: %d/%d",
		g.Moves(), sokoban.Score{Elapsed: m.elapsed}.FormatTime(), covered, total)))
	b.WriteString("\n")

	switch g.Phase() {
	case sokoban.PhaseNotPlaying:
		b.WriteString(statusStyle.Render("Make a move to start the timer"))
		b.WriteString("\n")
	case sokoban.PhaseWon:
		score, _ := g.Score()
		b.WriteString("\n")
		b.WriteString(wonStyle.Render("Solved!"))
		b.WriteString("\n\n")
		b.WriteString(score.ShareText(m.number, m.shareURL))
		b.WriteString("\n")
		if m.sess.Recorded() {
			b.WriteString(statusStyle.Render("Score recorded"))
			b.WriteString("\n")
		}
	}

	// Error
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Keys: arrows/wasd=move  z=undo  r=restart  q=quit"))
	b.WriteString("\n")

	return b.String()
}

func runPlay(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("play needs an interactive terminal")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stateFile, err := recorder.NewDefaultStateFile()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	ctx := cmd.Context()
	opts := []recorder.Option{
		recorder.WithAttempts(storage.NewAttemptRepository(db)),
		recorder.WithLogger(logger),
		recorder.WithClientIP("local"),
	}

	sess, title, number, err := openPlay(ctx, db, stateFile, opts)
	if err != nil {
		return err
	}

	model := newPlayModel(ctx, sess, title, number, cfg.ShareURL)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Keep an unfinished game for --resume
	if sess.Game().Phase() == sokoban.PhasePlaying {
		return stateFile.SetActivePlay(sess.State())
	}
	if stateFile.ActivePlay() != nil {
		return stateFile.ClearActivePlay()
	}
	return nil
}

// openPlay picks the level named by the flags and starts or resumes a
// session on it.
func openPlay(ctx context.Context, db *storage.DB, stateFile *recorder.StateFile, opts []recorder.Option) (*recorder.Session, string, int, error) {
	dailyRepo := storage.NewDailyLevelRepository(db)

	switch {
	case playResume:
		state := stateFile.ActivePlay()
		if state == nil {
			return nil, "", 0, errors.New("no unfinished game to resume")
		}
		sess, err := recorder.Resume(state, opts...)
		if err != nil {
			return nil, "", 0, err
		}
		title, number := "Sokoban", 0
		if state.Level.Kind == session.KindDaily {
			if level, err := dailyRepo.Get(ctx, state.Level.ID); err == nil && level != nil {
				number, _ = dailyRepo.Number(ctx, level)
				title = fmt.Sprintf("Sokodle #%d", number)
			}
		}
		return sess, title, number, nil

	case playFile != "":
		grid, err := readValidGrid(playFile)
		if err != nil {
			return nil, "", 0, err
		}
		return recorder.New(session.LevelRef{Kind: session.KindCustom}, grid, opts...), playFile, 0, nil

	case playUserLevel != 0:
		level, err := storage.NewUserLevelRepository(db).Get(ctx, playUserLevel)
		if err != nil {
			return nil, "", 0, err
		}
		if level == nil {
			return nil, "", 0, fmt.Errorf("level %d not found", playUserLevel)
		}
		ref := session.LevelRef{Kind: session.KindUser, ID: level.UserLevelID}
		title := fmt.Sprintf("Level %d by %s", level.UserLevelID, level.UserName)
		return recorder.New(ref, level.Layout, opts...), title, 0, nil

	default:
		date := playDate
		if date == "" {
			date = today()
		}
		level, err := dailyRepo.GetByDate(ctx, date)
		if err != nil {
			return nil, "", 0, err
		}
		if level == nil {
			return nil, "", 0, fmt.Errorf("no level scheduled for %s", date)
		}
		number, err := dailyRepo.Number(ctx, level)
		if err != nil {
			return nil, "", 0, err
		}
		if err := stateFile.SetLastDailyDate(date); err != nil {
			logger.Warn("failed to save state", "error", err)
		}
		ref := session.LevelRef{Kind: session.KindDaily, ID: level.DailyID}
		return recorder.New(ref, level.Layout, opts...), fmt.Sprintf("Sokodle #%d", number), number, nil
	}
}
