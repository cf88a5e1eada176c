package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jbaarsen/metromap/pkg/layout"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// watchCommand creates the watch command for live layout previews.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		generate string
		stations int
		perMove  bool
	)
	sf := &settingsFlags{}

	cmd := &cobra.Command{
		Use:   "watch [map.json]",
		Short: "Watch a layout run live in the terminal",
		Long: `Watch a layout run live in the terminal.

The watch command runs the same recalculation as 'layout' but renders each
intermediate snapshot as an ASCII grid while the run progresses. Press q to
cancel; the run then stops at the next pass boundary.

Watch is a preview and writes no output file; use 'layout' for that.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := sf.load(cmd)
			if err != nil {
				return err
			}
			settings.LiveUpdates = true
			settings.SnapshotPerMove = perMove

			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			if input == "" && generate == "" {
				return fmt.Errorf("nothing to watch: pass a map.json or --generate")
			}
			m, _, err := loadInput(input, generate, stations)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), m, settings)
		},
	}

	cmd.Flags().StringVar(&generate, "generate", "", "generate a benchmark map instead of reading one")
	cmd.Flags().IntVar(&stations, "stations", 12, "stations per line for --generate")
	cmd.Flags().BoolVar(&perMove, "per-move", false, "snapshot every accepted move instead of every pass")
	sf.register(cmd)

	return cmd
}

// runWatch drives a recalculation and a bubbletea program side by side: the
// run pushes snapshots into the stream, the program renders them.
func (c *CLI) runWatch(ctx context.Context, m *metro.Map, settings layout.Settings) error {
	stream := layout.NewStream(layout.DefaultStreamSize)
	// The controller gets no logger: log lines would tear the live view.
	ctrl := layout.NewController(nil, stream)

	model := watchModel{ctrl: ctrl, stream: stream}
	p := tea.NewProgram(model, tea.WithContext(ctx))

	go func() {
		res, err := ctrl.Recalculate(ctx, m, nil, settings)
		p.Send(runDoneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return err
	}

	wm, ok := final.(watchModel)
	if !ok || wm.res == nil {
		if wm.err != nil {
			return wm.err
		}
		return ctx.Err()
	}

	met := wm.res.Metrics
	printSuccess("Run %s", met.State)
	printKeyValue("Tries", fmt.Sprintf("%d", met.Tries))
	printKeyValue("Moves", fmt.Sprintf("%d", met.Moves))
	printKeyValue("Bends", fmt.Sprintf("%d", met.Bends))
	printKeyValue("Cost", fmt.Sprintf("%.2f", met.TotalCost))
	printKeyValue("Duration", met.Duration.String())
	return wm.err
}

// =============================================================================
// Bubbletea Model
// =============================================================================

type snapshotMsg layout.Snapshot

type streamClosedMsg struct{}

type runDoneMsg struct {
	res *layout.Result
	err error
}

type watchModel struct {
	ctrl   *layout.Controller
	stream *layout.Stream

	snap       *layout.Snapshot
	res        *layout.Result
	err        error
	cancelling bool
	width      int
	height     int
}

func (m watchModel) Init() tea.Cmd {
	return waitForSnapshot(m.stream.C())
}

// waitForSnapshot blocks on the stream and delivers the next snapshot as a
// message. The stream closes when the run finishes.
func waitForSnapshot(ch <-chan layout.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		snap := layout.Snapshot(msg)
		m.snap = &snap
		return m, waitForSnapshot(m.stream.C())

	case streamClosedMsg:
		// The run is wrapping up; runDoneMsg follows.
		return m, nil

	case runDoneMsg:
		m.res, m.err = msg.res, msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelling = true
			m.ctrl.Cancel()
			return m, nil
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	switch {
	case m.snap == nil:
		b.WriteString(StyleDim.Render("waiting for the first snapshot..."))
	default:
		b.WriteString(renderMap(m.snap.Map, m.viewportWidth(), m.viewportHeight()))
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	return b.String()
}

func (m watchModel) viewportWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 80
}

func (m watchModel) viewportHeight() int {
	if m.height > 2 {
		return m.height - 2
	}
	return 24
}

func (m watchModel) statusLine() string {
	if m.snap == nil {
		return StyleDim.Render("press q to cancel")
	}
	status := fmt.Sprintf("%s · try %d · %d moves", m.snap.State, m.snap.Try, m.snap.Moves)
	if m.cancelling {
		status += " · cancelling"
	} else {
		status += " · press q to cancel"
	}
	return StyleHighlight.Render(status)
}

// renderMap draws the map as an ASCII grid, stations as dots on their grid
// cells and edge paths as faint traces. Maps larger than the viewport are
// cropped around their center.
func renderMap(m *metro.Map, maxW, maxH int) string {
	stations := m.Stations()
	if len(stations) == 0 {
		return StyleDim.Render("(empty map)")
	}

	minX, maxX := stations[0].Pos.X, stations[0].Pos.X
	minY, maxY := stations[0].Pos.Y, stations[0].Pos.Y
	expand := func(x, y int) {
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, s := range stations {
		expand(s.Pos.X, s.Pos.Y)
	}
	for _, e := range m.Edges() {
		for _, n := range e.Path() {
			expand(n.X, n.Y)
		}
	}

	w, h := maxX-minX+1, maxY-minY+1
	offX, offY := minX, minY
	if w > maxW {
		offX += (w - maxW) / 2
		w = maxW
	}
	if h > maxH {
		offY += (h - maxH) / 2
		h = maxH
	}

	cells := make([][]rune, h)
	for y := range cells {
		cells[y] = make([]rune, w)
		for x := range cells[y] {
			cells[y][x] = ' '
		}
	}
	plot := func(x, y int, r rune) {
		x, y = x-offX, y-offY
		if x >= 0 && x < w && y >= 0 && y < h {
			cells[y][x] = r
		}
	}

	for _, e := range m.Edges() {
		for _, n := range e.Path() {
			plot(n.X, n.Y, '·')
		}
	}
	for _, s := range stations {
		r := '●'
		if s.Locked {
			r = '■'
		}
		plot(s.Pos.X, s.Pos.Y, r)
	}

	var b strings.Builder
	for y := range cells {
		b.WriteString(strings.TrimRight(string(cells[y]), " "))
		b.WriteString("\n")
	}
	return b.String()
}
