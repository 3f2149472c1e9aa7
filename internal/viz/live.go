package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spikesim/internal/experiment"
	"github.com/san-kum/spikesim/internal/snn"
	"github.com/san-kum/spikesim/internal/wta"
)

const (
	liveWidth       = 70
	historyCapacity = 2000
	maxStepsPerTick = 5000
)

type TickMsg time.Time

// LiveModel steps a prepared experiment a few steps per frame and shows
// the recent potential, spikes and learning state.
type LiveModel struct {
	net       *snn.Network
	model     *experiment.SBC
	trainer   *wta.Trainer
	threshold float64
	duration  float64

	stepsPerTick int
	running      bool
	done         bool
	err          error
	theme        Theme

	vHist []float64
	tHist []float64
}

// NewLiveModel wraps an experiment that has been Setup but not Run.
func NewLiveModel(exp *experiment.Experiment, stepsPerTick int) LiveModel {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return LiveModel{
		net:          exp.Network(),
		model:        exp.Model(),
		trainer:      exp.Trainer(),
		threshold:    exp.Config().Neuron.Threshold,
		duration:     exp.Duration(),
		stepsPerTick: stepsPerTick,
		running:      true,
		theme:        ThemeOcean,
		vHist:        make([]float64, 0, historyCapacity),
		tHist:        make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "t":
			m.theme = NextTheme(m.theme)
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to stepsPerTick steps, stopping at the end of the
// protocol or at the first engine error.
func (m *LiveModel) advance() {
	end := m.net.Dt() * 0.5
	for i := 0; i < m.stepsPerTick; i++ {
		if m.net.Time() >= m.duration-end {
			m.done = true
			return
		}
		if err := m.net.Step(); err != nil {
			m.err = err
			m.done = true
			return
		}
		m.push(m.net.Time(), m.model.Output.V()[0])
	}
}

func (m *LiveModel) push(t, v float64) {
	if len(m.vHist) == historyCapacity {
		copy(m.vHist, m.vHist[1:])
		copy(m.tHist, m.tHist[1:])
		m.vHist = m.vHist[:historyCapacity-1]
		m.tHist = m.tHist[:historyCapacity-1]
	}
	m.vHist = append(m.vHist, v)
	m.tHist = append(m.tHist, t)
}

func (m LiveModel) View() string {
	var s strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary)
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)

	s.WriteString(title.Render("SPIKESIM LIVE") + "  " + m.status() + "\n\n")

	if len(m.vHist) > 1 {
		chart := asciigraph.PlotMany([][]float64{Downsample(m.vHist, liveWidth), constant(m.threshold, min(len(m.vHist), liveWidth))},
			asciigraph.Height(8),
			asciigraph.Width(liveWidth),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(m.threshold),
			asciigraph.Caption("v[0]"),
		)
		s.WriteString(chart + "\n\n")

		t0, t1 := m.tHist[0], m.tHist[len(m.tHist)-1]
		spike := lipgloss.NewStyle().Foreground(m.theme.Spike)
		s.WriteString(spike.Render(Raster(m.model.SpikesOut.I, m.model.SpikesOut.T, m.model.Output.Size(), t0, t1+m.net.Dt(), liveWidth/2)))
		s.WriteString("\n")
	}

	s.WriteString(Row("Time", fmt.Sprintf("%.2f / %.2f ms", m.net.Time(), m.duration)) + "\n")
	s.WriteString(Row("Progress", ProgressBar(m.net.Time()/m.duration, 30)) + "\n")
	s.WriteString(Row("Output spikes", fmt.Sprintf("%d", m.model.SpikesOut.Len())) + "\n")
	s.WriteString(Row("Weights", FormatWeights(m.model.Syn.Weights())) + "\n")
	if m.trainer != nil {
		s.WriteString(Row("Winners", lastWinners(m.trainer.History(), 12)) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n" + muted.Render(fmt.Sprintf("space pause · +/- speed (%d steps/frame) · t theme (%s) · q quit", m.stepsPerTick, m.theme.Name)))
	return s.String()
}

func (m LiveModel) status() string {
	switch {
	case m.err != nil:
		return StatusPaused.Render("ERROR")
	case m.done:
		return StatusRunning.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

// Done reports whether the protocol has finished or failed.
func (m LiveModel) Done() bool { return m.done }
func (m LiveModel) Err() error { return m.err }

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func lastWinners(h *wta.History, n int) string {
	w := h.Winners()
	if len(w) > n {
		w = w[len(w)-n:]
	}
	parts := make([]string, len(w))
	for i, x := range w {
		if x == wta.NoWinner {
			parts[i] = "-"
		} else {
			parts[i] = fmt.Sprintf("%d", x)
		}
	}
	return strings.Join(parts, " ")
}
